package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billed/internal/models"
)

var hundred = decimal.NewFromInt(100)

// VATIncluded returns the VAT contained in an amount paid with pct percent
// VAT included, rounded to the cent.
// Based on: vat = amount × pct / (100 + pct)
func VATIncluded(amount decimal.Decimal, pct int) (decimal.Decimal, error) {
	if pct < 0 || pct > 100 {
		return decimal.Zero, fmt.Errorf("vat percentage %d out of range", pct)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount cannot be negative")
	}
	p := decimal.NewFromInt(int64(pct))
	return amount.Mul(p).Div(hundred.Add(p)).Round(2), nil
}

// Summary totals a list of bills.
type Summary struct {
	Count    int
	Amount   decimal.Decimal
	VAT      decimal.Decimal
	ByStatus map[models.Status]decimal.Decimal
}

// Summarize adds up amounts and VAT overall and per status.
func Summarize(bills []models.Bill) Summary {
	s := Summary{
		Amount:   decimal.Zero,
		VAT:      decimal.Zero,
		ByStatus: make(map[models.Status]decimal.Decimal),
	}
	for _, b := range bills {
		s.Count++
		s.Amount = s.Amount.Add(b.Amount)
		s.VAT = s.VAT.Add(b.VAT)
		s.ByStatus[b.Status] = s.ByStatus[b.Status].Add(b.Amount)
	}
	return s
}
