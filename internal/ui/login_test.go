package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/ui/views"
)

func loginRequest(email, password string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, views.PathLoginSubmit, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestLoginPage_Renders(t *testing.T) {
	tr := newTestRouter(t, &fakeStore{})

	rec := tr.serve(t, httptest.NewRequest(http.MethodGet, views.PathLogin, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, byTestID(parseDoc(t, rec.Body.String()), "form-employee"), 1)
}

func TestLoginPage_SkipsForSignedInEmployee(t *testing.T) {
	tr := newTestRouter(t, &fakeStore{})

	rec := tr.serve(t, httptest.NewRequest(http.MethodGet, views.PathLogin, nil), models.UserTypeEmployee)
	requireRedirect(t, rec, views.PathBills)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	tr := newTestRouter(t, &fakeStore{})

	rec := tr.serve(t, loginRequest(" employee@test.tld ", "password123"), "")
	requireRedirect(t, rec, views.PathBills)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	require.Equal(t, "signed-token", cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)

	require.Equal(t, testEmail, tr.authn.gotEmail)
	require.Equal(t, models.UserTypeEmployee, tr.authn.gotType)
}

func TestLogin_BadCredentials(t *testing.T) {
	tr := newTestRouter(t, &fakeStore{})
	tr.authn.err = client.NewNetworkError(http.StatusUnauthorized)

	rec := tr.serve(t, loginRequest(testEmail, "wrong"), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, sessionCookie(rec))

	doc := parseDoc(t, rec.Body.String())
	msg := byTestID(doc, "login-error")
	require.Len(t, msg, 1)
	require.Equal(t, msgBadCredentials, textOf(msg[0]))

	email, _ := attr(byTestID(doc, "employee-email-input")[0], "value")
	require.Equal(t, testEmail, email)
}

func TestLogin_ServerError(t *testing.T) {
	tr := newTestRouter(t, &fakeStore{})
	tr.authn.err = client.NewNetworkError(http.StatusInternalServerError)

	rec := tr.serve(t, loginRequest(testEmail, "password123"), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Erreur 500", textOf(byTestID(parseDoc(t, rec.Body.String()), "login-error")[0]))
}

func TestLogout_ClearsSession(t *testing.T) {
	tr := newTestRouter(t, &fakeStore{})

	rec := tr.serve(t, httptest.NewRequest(http.MethodPost, views.PathLogout, nil), models.UserTypeEmployee)
	requireRedirect(t, rec, views.PathLogin)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)
}
