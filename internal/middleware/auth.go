package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/billed/internal/auth"
)

// GetEmail extracts the authenticated email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	s, _ := auth.SessionFrom(ctx)
	return s.Email
}

// RequireAuth returns an interceptor that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, and adds
// the session to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			session := claims.Session()
			session.Token = tokenString
			ctx = auth.WithSession(ctx, session)

			return next(ctx, req)
		}
	}
}

// ForwardSession returns a client interceptor that copies the session token
// found in the context into the Authorization header of outgoing calls.
func ForwardSession() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				if s, ok := auth.SessionFrom(ctx); ok && s.Token != "" {
					req.Header().Set("Authorization", "Bearer "+s.Token)
				}
			}
			return next(ctx, req)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}
