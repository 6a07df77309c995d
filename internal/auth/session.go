package auth

import (
	"context"

	"github.com/mmynk/billed/internal/models"
)

// Session is the identity of the person using the UI. It replaces the
// browser-side "user" entry and travels explicitly through the context.
type Session struct {
	Type  models.UserType
	Email string

	// Token is the signed JWT the session was read from. It is forwarded to
	// the bill API on remote calls.
	Token string
}

// IsEmployee reports whether the session may open employee views.
func (s Session) IsEmployee() bool {
	return s.Type == models.UserTypeEmployee && s.Email != ""
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
