// Package convert maps domain models to and from API messages.
package convert

import (
	"fmt"

	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/pkg/api"
)

// BillToAPI returns the wire form of b.
func BillToAPI(b models.Bill) *api.Bill {
	return &api.Bill{
		ID:           b.ID,
		Email:        b.Email,
		Status:       string(b.Status),
		Name:         b.Name,
		Type:         b.Type,
		Amount:       b.Amount,
		VAT:          b.VAT,
		Pct:          int32(b.Pct),
		Date:         b.Date.String(),
		Commentary:   b.Commentary,
		CommentAdmin: b.CommentAdmin,
		FileName:     b.File.Name,
		FileURL:      b.File.URL,
		FileKey:      b.File.Key,
		CreatedAt:    b.CreatedAt,
	}
}

// BillFromAPI parses a wire bill. It fails when the date is not a calendar
// date or the status is unknown.
func BillFromAPI(b *api.Bill) (models.Bill, error) {
	if b == nil {
		return models.Bill{}, fmt.Errorf("bill is required")
	}
	date, err := models.ParseDate(b.Date)
	if err != nil {
		return models.Bill{}, err
	}
	status := models.Status(b.Status)
	if status != "" && !status.Valid() {
		return models.Bill{}, fmt.Errorf("unknown status %q", b.Status)
	}
	return models.Bill{
		ID:           b.ID,
		Email:        b.Email,
		Status:       status,
		Name:         b.Name,
		Type:         b.Type,
		Amount:       b.Amount,
		VAT:          b.VAT,
		Pct:          int(b.Pct),
		Date:         date,
		Commentary:   b.Commentary,
		CommentAdmin: b.CommentAdmin,
		File: models.FileRef{
			Name: b.FileName,
			URL:  b.FileURL,
			Key:  b.FileKey,
		},
		CreatedAt: b.CreatedAt,
	}, nil
}

// UserToAPI returns the public view of u.
func UserToAPI(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Type:        string(u.Type),
		CreatedAt:   u.CreatedAt,
	}
}
