package ui

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/metrics"
	"github.com/mmynk/billed/internal/models"
)

const testEmail = "employee@test.tld"

var pngBytes = []byte{
	0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R',
}

// fakeStore is an in-memory BillStore that counts calls.
type fakeStore struct {
	mu sync.Mutex

	bills     []models.Bill
	listErr   error
	createErr error
	uploadErr error

	listCalls   int
	createCalls int
	uploadCalls int
	created     []models.Bill
	uploaded    []string
}

func (f *fakeStore) List(ctx context.Context) ([]models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Bill(nil), f.bills...), nil
}

func (f *fakeStore) Create(ctx context.Context, bill models.Bill) (models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return models.Bill{}, f.createErr
	}
	bill.ID = "created-1"
	f.created = append(f.created, bill)
	return bill, nil
}

func (f *fakeStore) Upload(ctx context.Context, name, contentType string, data []byte) (models.FileRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	if f.uploadErr != nil {
		return models.FileRef{}, f.uploadErr
	}
	f.uploaded = append(f.uploaded, name)
	return models.FileRef{Name: name, URL: "/receipts/key-" + name, Key: "key-" + name}, nil
}

// fakeAuthenticator answers every login with a fixed token or error.
type fakeAuthenticator struct {
	token    string
	err      error
	gotEmail string
	gotType  models.UserType
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string, userType models.UserType) (string, error) {
	f.gotEmail = email
	f.gotType = userType
	return f.token, f.err
}

// fixtureBills returns four bills in no particular date order.
func fixtureBills() []models.Bill {
	mk := func(id, date, name string) models.Bill {
		return models.Bill{
			ID:     id,
			Email:  testEmail,
			Status: models.StatusPending,
			Name:   name,
			Type:   "Hôtel et logement",
			Amount: decimal.NewFromInt(400),
			VAT:    decimal.NewFromInt(80),
			Pct:    20,
			Date:   models.MustParseDate(date),
			File:   models.FileRef{Name: id + ".jpg", URL: "/receipts/" + id + ".jpg", Key: id + ".jpg"},
		}
	}
	return []models.Bill{
		mk("47qAXb6fIm2zOKkLzMro", "2004-04-04", "encore"),
		mk("BeKy5Mo4jkmdfPGYpTxZ", "2001-01-01", "test1"),
		mk("UIUZtnPQvnbFnB0ozvJh", "2003-03-03", "test3"),
		mk("qcCK3SzECmaZAGRrHjaC", "2002-02-02", "test2"),
	}
}

type testRouter struct {
	handler http.Handler
	jwt     *auth.JWTManager
	store   *fakeStore
	authn   *fakeAuthenticator
	metrics *metrics.Metrics
}

func newTestRouter(t *testing.T, store *fakeStore) *testRouter {
	t.Helper()
	return newTestRouterWith(t, store, func(*Config) {})
}

// newTestRouterWith lets a test adjust the router config before it is built.
func newTestRouterWith(t *testing.T, store *fakeStore, configure func(*Config)) *testRouter {
	t.Helper()
	jwtm := auth.NewJWTManager("test-secret", time.Hour)
	authn := &fakeAuthenticator{token: "signed-token"}
	m := metrics.New()

	cfg := Config{
		Store:          store,
		Authenticator:  authn,
		JWT:            jwtm,
		Metrics:        m,
		MaxUploadBytes: 1 << 20,
	}
	configure(&cfg)
	rt, err := NewRouter(cfg)
	require.NoError(t, err)

	return &testRouter{handler: rt.Handler(), jwt: jwtm, store: store, authn: authn, metrics: m}
}

func (tr *testRouter) token(t *testing.T, userType models.UserType) string {
	t.Helper()
	token, err := tr.jwt.Generate(&models.User{ID: "user-1", Email: testEmail, Type: userType})
	require.NoError(t, err)
	return token
}

// serve runs req through the router, signed in as userType unless it is empty.
func (tr *testRouter) serve(t *testing.T, req *http.Request, userType models.UserType) *httptest.ResponseRecorder {
	t.Helper()
	if userType != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tr.token(t, userType)})
	}
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validFormFields() map[string]string {
	return map[string]string{
		"expense-type": "Transports",
		"expense-name": "Vol Paris Londres",
		"datepicker":   "2022-06-01",
		"amount":       "348",
		"vat":          "70",
		"pct":          "",
		"commentary":   "séminaire",
	}
}

func parseDoc(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byTestID(n *html.Node, id string) []*html.Node {
	return findAll(n, func(n *html.Node) bool {
		v, ok := attr(n, "data-testid")
		return ok && v == id
	})
}

func byID(n *html.Node, id string) *html.Node {
	nodes := findAll(n, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, location, rec.Header().Get("Location"))
}
