// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billed/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill and user storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateBill persists a new bill.
	// The bill.ID and bill.CreatedAt fields will be populated by the store when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID.
	// Returns an error wrapping ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsByEmail returns the bills submitted by email, in insertion order.
	ListBillsByEmail(ctx context.Context, email string) ([]models.Bill, error)

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns the user with that email, or nil if none exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the user with that ID, or nil if none exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
