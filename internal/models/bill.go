package models

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Status is the review state of a bill.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Label returns the French label shown to employees.
func (s Status) Label() string {
	switch s {
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return "En attente"
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// ExpenseTypes lists the categories an employee can pick on the new bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// IsExpenseType reports whether t is one of ExpenseTypes.
func IsExpenseType(t string) bool {
	return slices.Contains(ExpenseTypes, t)
}

// DefaultPct is the VAT percentage applied when the form leaves it empty.
const DefaultPct = 20

// FileRef points at an uploaded receipt.
type FileRef struct {
	// Name is the original file name as chosen by the employee.
	Name string

	// URL is where the receipt image can be fetched from.
	URL string

	// Key identifies the stored blob.
	Key string
}

// Bill represents an expense claim.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Email is the submitter's email address.
	Email string

	// Status is the review state. New bills are always pending.
	Status Status

	// Name is the short label of the expense (e.g., "Vol Paris Londres").
	Name string

	// Type is the expense category, one of ExpenseTypes.
	Type string

	// Amount is the amount paid, VAT included.
	Amount decimal.Decimal

	// VAT is the VAT amount, zero when not provided.
	VAT decimal.Decimal

	// Pct is the VAT percentage.
	Pct int

	// Date is the day the expense happened.
	Date Date

	// Commentary is the employee's optional note.
	Commentary string

	// CommentAdmin is the reviewer's optional note.
	CommentAdmin string

	// File is the uploaded receipt.
	File FileRef

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// SortByDateDesc orders bills most recent first. Bills sharing a date keep
// their relative order.
func SortByDateDesc(bills []Bill) {
	slices.SortStableFunc(bills, func(a, b Bill) int {
		return cmp.Compare(b.Date.Time().Unix(), a.Date.Time().Unix())
	})
}
