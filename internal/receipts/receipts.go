// Package receipts validates and stores the receipt images attached to bills.
package receipts

import (
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// AllowedExtensions lists the receipt file extensions employees may upload.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

var allowedContentTypes = []string{"image/jpeg", "image/png"}

// ValidationError reports a receipt that was refused before upload.
type ValidationError struct {
	FileName string
	Reason   string

	// MaxBytes is set when the file was refused for its size.
	MaxBytes int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("receipt %q rejected: %s", e.FileName, e.Reason)
}

// Message is the alert text shown to the employee.
func (e *ValidationError) Message() string {
	if e.MaxBytes > 0 {
		return fmt.Sprintf("Le fichier dépasse la taille maximale autorisée (%d Ko).", e.MaxBytes>>10)
	}
	return "Seuls les fichiers jpg, jpeg ou png sont acceptés."
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ValidateExtension accepts names ending in one of AllowedExtensions,
// case-insensitively.
func ValidateExtension(name string) error {
	ext := Extension(name)
	if ext == "" {
		return &ValidationError{FileName: name, Reason: "missing extension"}
	}
	if !slices.Contains(AllowedExtensions, ext) {
		return &ValidationError{FileName: name, Reason: "extension " + ext + " not allowed"}
	}
	return nil
}

// TooLarge reports a receipt refused because it exceeds maxBytes.
func TooLarge(name string, maxBytes int64) *ValidationError {
	return &ValidationError{FileName: name, Reason: fmt.Sprintf("larger than %d bytes", maxBytes), MaxBytes: maxBytes}
}

// ValidateContent sniffs data and accepts only JPEG and PNG images.
func ValidateContent(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{FileName: name, Reason: "empty file"}
	}
	contentType := http.DetectContentType(data)
	if !slices.Contains(allowedContentTypes, contentType) {
		return "", &ValidationError{FileName: name, Reason: "content type " + contentType + " not allowed"}
	}
	return contentType, nil
}
