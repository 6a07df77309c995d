package convert

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/pkg/api"
)

func TestBillFromAPI_Errors(t *testing.T) {
	if _, err := BillFromAPI(nil); err == nil {
		t.Error("expected error for nil bill")
	}
	if _, err := BillFromAPI(&api.Bill{Date: "04 Avr. 04"}); err == nil {
		t.Error("expected error for non ISO date")
	}
	if _, err := BillFromAPI(&api.Bill{Date: "2004-04-04", Status: "archived"}); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestBillToAPI_KeepsFileRef(t *testing.T) {
	b := models.Bill{
		ID:     "47qAXb6fIm2zOKkLzMro",
		Status: models.StatusPending,
		Amount: decimal.NewFromInt(400),
		Date:   models.MustParseDate("2004-04-04"),
		File:   models.FileRef{Name: "preview-facture.jpg", URL: "/receipts/k.jpg", Key: "k.jpg"},
	}

	got := BillToAPI(b)
	if got.Date != "2004-04-04" || got.FileURL != "/receipts/k.jpg" || got.FileName != "preview-facture.jpg" {
		t.Errorf("unexpected wire bill %+v", got)
	}

	back, err := BillFromAPI(got)
	if err != nil {
		t.Fatalf("BillFromAPI failed: %v", err)
	}
	if back.File != b.File || !back.Amount.Equal(b.Amount) {
		t.Errorf("unexpected bill %+v", back)
	}
}
