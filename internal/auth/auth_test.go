package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/billed/internal/models"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(&memUsers{users: map[string]*models.User{}})
	a.cost = bcrypt.MinCost
	return a
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	user, err := a.Register(ctx, "employee@test.tld", "Employee", "employee123", models.UserTypeEmployee)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "employee123" {
		t.Error("password must be hashed")
	}

	got, err := a.Authenticate(ctx, "employee@test.tld", "employee123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}

	if _, err := a.Authenticate(ctx, "employee@test.tld", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@test.tld", "employee123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegister_Errors(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	if _, err := a.Register(ctx, "a@a", "A", "short", models.UserTypeEmployee); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := a.Register(ctx, "a@a", "A", "long-enough", models.UserType("Guest")); !errors.Is(err, ErrInvalidUserType) {
		t.Errorf("expected ErrInvalidUserType, got %v", err)
	}
	if _, err := a.Register(ctx, "a@a", "A", "long-enough", models.UserTypeEmployee); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "a@a", "A", "long-enough", models.UserTypeEmployee); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("a@a", "A", "", models.UserTypeEmployee)

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	session := claims.Session()
	if session.Email != "a@a" || session.Type != models.UserTypeEmployee {
		t.Errorf("unexpected session %+v", session)
	}
	if !session.IsEmployee() {
		t.Error("expected employee session")
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("a@a", "A", "", models.UserTypeAdmin)

	other := NewJWTManager("other-secret", time.Hour)
	token, _ := other.Generate(user)
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	token, _ = expired.Generate(user)
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Email: "a@a"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := m.Validate(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for unsigned token, got %v", err)
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := SessionFrom(ctx); ok {
		t.Error("expected no session in empty context")
	}

	ctx = WithSession(ctx, Session{Type: models.UserTypeAdmin, Email: "admin@test.tld"})
	s, ok := SessionFrom(ctx)
	if !ok {
		t.Fatal("expected session")
	}
	if s.IsEmployee() {
		t.Error("admin session must not open employee views")
	}
}
