package receipts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored receipts are served.
const URLPrefix = "/receipts/"

var ErrInvalidKey = errors.New("invalid receipt key")

// Blobs stores receipt files on the local disk.
type Blobs struct {
	dir string
}

// NewBlobs creates the directory if needed and returns a store rooted there.
func NewBlobs(dir string) (*Blobs, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return &Blobs{dir: dir}, nil
}

// Save writes data under a fresh key that keeps the original extension.
// It returns the key and the URL the receipt is served from.
func (b *Blobs) Save(name string, data []byte) (key, url string, err error) {
	key = uuid.New().String() + "." + Extension(name)
	if err := os.WriteFile(filepath.Join(b.dir, key), data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write receipt: %w", err)
	}
	return key, URLPrefix + key, nil
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && !strings.HasPrefix(key, ".")
}

// Exists reports whether a receipt is stored under key.
func (b *Blobs) Exists(key string) (bool, error) {
	if !validKey(key) {
		return false, ErrInvalidKey
	}
	info, err := os.Stat(filepath.Join(b.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat receipt %s: %w", key, err)
	}
	return info.Mode().IsRegular(), nil
}

// Open returns the stored receipt for key.
func (b *Blobs) Open(key string) (io.ReadSeekCloser, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(b.dir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt %s: %w", key, err)
	}
	return f, nil
}

// Handler serves stored receipts under URLPrefix.
func (b *Blobs) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := b.Open(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		http.ServeContent(w, r, r.URL.Path, fileModTime(f), f)
	}))
}

func fileModTime(f io.ReadSeekCloser) time.Time {
	if osf, ok := f.(*os.File); ok {
		if info, err := osf.Stat(); err == nil {
			return info.ModTime()
		}
	}
	return time.Time{}
}
