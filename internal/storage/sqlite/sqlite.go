// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const billColumns = `id, email, status, name, type, amount, vat, pct, date,
	commentary, comment_admin, file_name, file_url, file_key, created_at`

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Status == "" {
		bill.Status = models.StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Email, string(bill.Status), bill.Name, bill.Type,
		bill.Amount, bill.VAT, bill.Pct, bill.Date.String(),
		nullable(bill.Commentary), nullable(bill.CommentAdmin),
		bill.File.Name, bill.File.URL, bill.File.Key, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`,
		billID,
	)

	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// ListBillsByEmail returns every bill submitted by email in insertion order.
func (s *SQLiteStore) ListBillsByEmail(ctx context.Context, email string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE email = ? ORDER BY rowid`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var (
		status       string
		date         string
		commentary   sql.NullString
		commentAdmin sql.NullString
	)

	err := row.Scan(
		&bill.ID, &bill.Email, &status, &bill.Name, &bill.Type,
		&bill.Amount, &bill.VAT, &bill.Pct, &date,
		&commentary, &commentAdmin,
		&bill.File.Name, &bill.File.URL, &bill.File.Key, &bill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	bill.Status = models.Status(status)
	if bill.Date, err = models.ParseDate(date); err != nil {
		return nil, err
	}
	if commentary.Valid {
		bill.Commentary = commentary.String
	}
	if commentAdmin.Valid {
		bill.CommentAdmin = commentAdmin.String
	}

	return bill, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
