// Package ui is the server-rendered employee front end. Pages are rendered
// from html/template views and every user event is a plain form submission
// handled by a container.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/metrics"
	"github.com/mmynk/billed/internal/receipts"
	"github.com/mmynk/billed/internal/ui/views"
)

// SessionCookie holds the signed session token.
const SessionCookie = "user"

// Config wires the router to its collaborators.
type Config struct {
	Store         client.BillStore
	Authenticator client.Authenticator
	JWT           *auth.JWTManager
	Metrics       *metrics.Metrics

	// Receipts serves stored receipt images to signed-in employees. Nil
	// leaves receipts to be served elsewhere.
	Receipts http.Handler

	// MaxUploadBytes caps the multipart body of the new bill form.
	MaxUploadBytes int64

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Router dispatches browser requests to the page containers.
type Router struct {
	views    *views.Views
	jwt      *auth.JWTManager
	receipts http.Handler
	login    *Login
	bills   *Bills
	newBill *NewBill
}

// NewRouter builds the router and its containers.
func NewRouter(cfg Config) (*Router, error) {
	v, err := views.New()
	if err != nil {
		return nil, err
	}
	return &Router{
		views:    v,
		jwt:      cfg.JWT,
		receipts: cfg.Receipts,
		login:    NewLogin(cfg.Authenticator, v, cfg.SecureCookies),
		bills:    NewBills(cfg.Store, v),
		newBill:  NewNewBill(cfg.Store, v, cfg.Metrics, cfg.MaxUploadBytes),
	}, nil
}

// Handler returns the HTTP handler serving every page.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(rt.session)

	rt.login.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(requireEmployee)
		rt.bills.RegisterRoutes(r)
		rt.newBill.RegisterRoutes(r)
		if rt.receipts != nil {
			r.Handle(receipts.URLPrefix+"*", rt.receipts)
		}
	})
	return r
}

// OnNavigate moves the browser to path.
func OnNavigate(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// session reads the session cookie into the request context. Invalid or
// expired tokens are cleared.
func (rt *Router) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := rt.jwt.Validate(cookie.Value)
		if err != nil {
			slog.Debug("Dropping invalid session cookie", "error", err)
			clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		s := claims.Session()
		s.Token = cookie.Value
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}

func requireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.SessionFrom(r.Context())
		if !ok || !s.IsEmployee() {
			OnNavigate(w, r, views.PathLogin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// render writes a page, logging template failures.
func render(ctx context.Context, w http.ResponseWriter, v *views.Views, status int, rd views.RouteData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := v.Route(w, rd); err != nil {
		slog.ErrorContext(ctx, "Failed to render page", "path", rd.Pathname, "error", err)
	}
}

// renderError shows err in place of the page at pathname. An expired session
// sends the browser back to the login page instead.
func renderError(w http.ResponseWriter, r *http.Request, v *views.Views, pathname string, err error) {
	status := http.StatusInternalServerError
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		if netErr.Status == http.StatusUnauthorized {
			clearSessionCookie(w)
			OnNavigate(w, r, views.PathLogin)
			return
		}
		status = netErr.Status
	}
	slog.WarnContext(r.Context(), "Remote store rejected request", "path", pathname, "error", err)
	render(r.Context(), w, v, status, views.RouteData{Pathname: pathname, Error: err.Error()})
}
