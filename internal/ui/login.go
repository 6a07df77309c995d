package ui

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/ui/views"
)

const msgBadCredentials = "Email ou mot de passe incorrect."

// Login serves the login page and manages the session cookie.
type Login struct {
	authn  client.Authenticator
	views  *views.Views
	secure bool
}

// NewLogin creates the login container.
func NewLogin(authn client.Authenticator, v *views.Views, secureCookies bool) *Login {
	return &Login{authn: authn, views: v, secure: secureCookies}
}

// RegisterRoutes binds the login page and its events.
func (l *Login) RegisterRoutes(r chi.Router) {
	r.Get(views.PathLogin, l.ServePage)
	r.Post(views.PathLoginSubmit, l.HandleSubmit)
	r.Post(views.PathLogout, l.HandleLogout)
}

// ServePage renders the login form, or skips it for a signed-in employee.
func (l *Login) ServePage(w http.ResponseWriter, r *http.Request) {
	if s, ok := auth.SessionFrom(r.Context()); ok && s.IsEmployee() {
		OnNavigate(w, r, views.PathBills)
		return
	}
	render(r.Context(), w, l.views, http.StatusOK, views.RouteData{Pathname: views.PathLogin})
}

// HandleSubmit exchanges the employee credentials for a session cookie.
func (l *Login) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	token, err := l.authn.Login(r.Context(), email, password, models.UserTypeEmployee)
	if err != nil {
		status := http.StatusInternalServerError
		msg := err.Error()
		var netErr *client.NetworkError
		if errors.As(err, &netErr) {
			status = netErr.Status
			switch netErr.Status {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
				msg = msgBadCredentials
			}
		}
		slog.InfoContext(r.Context(), "Login failed", "email", email, "error", err)
		render(r.Context(), w, l.views, status, views.RouteData{
			Pathname: views.PathLogin,
			Data:     views.LoginData{Email: email},
			Error:    msg,
		})
		return
	}

	setSessionCookie(w, token, l.secure)
	OnNavigate(w, r, views.PathBills)
}

// HandleLogout drops the session and returns to the login page.
func (l *Login) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	OnNavigate(w, r, views.PathLogin)
}
