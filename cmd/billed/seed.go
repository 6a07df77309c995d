package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/receipts"
	"github.com/mmynk/billed/internal/storage/sqlite"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample bills for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(nil)
			if err != nil {
				return err
			}

			store, err := sqlite.New(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			defer store.Close()

			blobs, err := receipts.NewBlobs(cfg.Storage.ReceiptsDir)
			if err != nil {
				return err
			}

			n, err := seedBills(cmd.Context(), store, blobs, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d bills for %s\n", n, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "employee email owning the bills")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

type sampleBill struct {
	name, typ, date, commentary string
	amount, vat                 int64
	pct                         int
	status                      models.Status
}

var sampleBills = []sampleBill{
	{"encore", "Hôtel et logement", "2004-04-04", "séminaire billed", 400, 80, 20, models.StatusPending},
	{"test1", "Services en ligne", "2001-01-01", "", 100, 20, 20, models.StatusRefused},
	{"test3", "Restaurants et bars", "2003-03-03", "", 300, 60, 20, models.StatusAccepted},
	{"test2", "Transports", "2002-02-02", "", 200, 40, 20, models.StatusPending},
}

// seedBills stores sampleBills for email, each with a placeholder receipt.
func seedBills(ctx context.Context, store *sqlite.SQLiteStore, blobs *receipts.Blobs, email string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	receipt, err := placeholderReceipt()
	if err != nil {
		return 0, err
	}

	for _, s := range sampleBills {
		fileName := s.name + ".png"
		key, url, err := blobs.Save(fileName, receipt)
		if err != nil {
			return 0, err
		}

		bill := &models.Bill{
			Email:      email,
			Status:     s.status,
			Name:       s.name,
			Type:       s.typ,
			Amount:     decimal.NewFromInt(s.amount),
			VAT:        decimal.NewFromInt(s.vat),
			Pct:        s.pct,
			Date:       models.MustParseDate(s.date),
			Commentary: s.commentary,
			File:       models.FileRef{Name: fileName, URL: url, Key: key},
		}
		if err := store.CreateBill(ctx, bill); err != nil {
			return 0, fmt.Errorf("seed bill %s: %w", s.name, err)
		}
	}
	return len(sampleBills), nil
}

// placeholderReceipt returns a small grey PNG.
func placeholderReceipt() ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xcc
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder receipt: %w", err)
	}
	return buf.Bytes(), nil
}
