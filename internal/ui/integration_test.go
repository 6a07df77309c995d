package ui

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/metrics"
	"github.com/mmynk/billed/internal/middleware"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/receipts"
	"github.com/mmynk/billed/internal/service"
	"github.com/mmynk/billed/internal/storage/sqlite"
	"github.com/mmynk/billed/internal/ui/views"
	"github.com/mmynk/billed/pkg/api/apiconnect"
)

// startStack runs the bill API on a temp database and the UI in front of it.
func startStack(t *testing.T) (uiURL string, browser *http.Client) {
	t.Helper()

	dir := t.TempDir()
	store, err := sqlite.New(filepath.Join(dir, "billed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := receipts.NewBlobs(filepath.Join(dir, "receipts"))
	require.NoError(t, err)

	jwtm := auth.NewJWTManager("integration-secret", time.Hour)
	authn := auth.NewPasswordAuthenticator(store)
	_, err = authn.Register(context.Background(), "employee@test.tld", "Employee", "password123", models.UserTypeEmployee)
	require.NoError(t, err)

	m := metrics.New()
	mux := http.NewServeMux()
	billsPath, billsHandler := apiconnect.NewBillServiceHandler(
		service.NewBillService(store, blobs, m, 1<<20),
		connect.WithInterceptors(middleware.RequireAuth(jwtm), middleware.LoggingInterceptor(m)),
	)
	mux.Handle(billsPath, billsHandler)
	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authn, jwtm, slog.Default()),
		connect.WithInterceptors(middleware.LoggingInterceptor(m)),
	)
	mux.Handle(authPath, authHandler)
	apiServer := httptest.NewServer(mux)
	t.Cleanup(apiServer.Close)

	remote := client.NewRemote(apiServer.Client(), apiServer.URL)
	rt, err := NewRouter(Config{Store: remote, Authenticator: remote, JWT: jwtm, Metrics: m, Receipts: blobs.Handler()})
	require.NoError(t, err)
	uiServer := httptest.NewServer(rt.Handler())
	t.Cleanup(uiServer.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return uiServer.URL, &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestEmployeeFlow(t *testing.T) {
	uiURL, browser := startStack(t)

	resp, err := browser.Get(uiURL + views.PathBills)
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Len(t, byTestID(parseDoc(t, body), "form-employee"), 1)

	resp, err = browser.PostForm(uiURL+views.PathLoginSubmit, url.Values{
		"email":    {"employee@test.tld"},
		"password": {"password123"},
	})
	require.NoError(t, err)
	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, views.PathBills, resp.Request.URL.Path)
	require.Contains(t, body, "Mes notes de frais")
	require.Empty(t, byTestID(parseDoc(t, body), "bill-row"))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	for k, v := range validFormFields() {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err = browser.Post(uiURL+views.PathNewBill, mw.FormDataContentType(), &form)
	require.NoError(t, err)
	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, views.PathBills, resp.Request.URL.Path)

	doc := parseDoc(t, body)
	rows := byTestID(doc, "bill-row")
	require.Len(t, rows, 1)
	require.Equal(t, "2022-06-01", textOf(byTestID(doc, "bill-date")[0]))
	require.Contains(t, textOf(rows[0]), "En attente")

	eye := byTestID(doc, "icon-eye")
	require.Len(t, eye, 1)
	href, _ := attr(eye[0], "href")

	resp, err = browser.Get(uiURL + href)
	require.NoError(t, err)
	body = readBody(t, resp)
	modal := byID(parseDoc(t, body), "modaleFile")
	require.NotNil(t, modal)
	src, _ := attr(byTestID(modal, "modal-image")[0], "src")
	require.True(t, strings.HasPrefix(src, receipts.URLPrefix))
	require.True(t, strings.HasSuffix(src, ".png"))

	resp, err = browser.Get(uiURL + src)
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(uiURL + src)
	require.NoError(t, err)
	body = readBody(t, resp)
	require.Equal(t, views.PathLogin, resp.Request.URL.Path)
	require.Len(t, byTestID(parseDoc(t, body), "form-employee"), 1)
}

func TestEmployeeFlow_RejectsGIF(t *testing.T) {
	uiURL, browser := startStack(t)

	resp, err := browser.PostForm(uiURL+views.PathLoginSubmit, url.Values{
		"email":    {"employee@test.tld"},
		"password": {"password123"},
	})
	require.NoError(t, err)
	readBody(t, resp)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("file", "receipt.gif")
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err = browser.Post(uiURL+views.PathChangeFile, mw.FormDataContentType(), &form)
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, byTestID(parseDoc(t, body), "file-alert"), 1)
}

func TestEmployeeFlow_WrongPassword(t *testing.T) {
	uiURL, browser := startStack(t)

	resp, err := browser.PostForm(uiURL+views.PathLoginSubmit, url.Values{
		"email":    {"employee@test.tld"},
		"password": {"wrong-password"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, msgBadCredentials)
}
