package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billed/internal/convert"
	"github.com/mmynk/billed/internal/metrics"
	"github.com/mmynk/billed/internal/middleware"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/receipts"
	"github.com/mmynk/billed/internal/storage"
	"github.com/mmynk/billed/pkg/api"
	"github.com/mmynk/billed/pkg/api/apiconnect"
)

// DefaultMaxReceiptBytes bounds the size of an uploaded receipt.
const DefaultMaxReceiptBytes = 5 << 20

// BillService implements the Connect BillService
type BillService struct {
	apiconnect.UnimplementedBillServiceHandler
	store           storage.Store
	blobs           *receipts.Blobs
	metrics         *metrics.Metrics
	maxReceiptBytes int64
}

// NewBillService creates a new BillService with the given storage backends.
// m may be nil.
func NewBillService(store storage.Store, blobs *receipts.Blobs, m *metrics.Metrics, maxReceiptBytes int64) *BillService {
	if maxReceiptBytes <= 0 {
		maxReceiptBytes = DefaultMaxReceiptBytes
	}
	return &BillService{
		store:           store,
		blobs:           blobs,
		metrics:         m,
		maxReceiptBytes: maxReceiptBytes,
	}
}

// ListBills returns the caller's bills in the order they were stored.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	email := middleware.GetEmail(ctx)
	if email == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}

	bills, err := s.store.ListBillsByEmail(ctx, email)
	if err != nil {
		slog.Error("ListBills failed", "email", email, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Bill, len(bills))
	for i, b := range bills {
		out[i] = convert.BillToAPI(b)
	}

	slog.Info("ListBills successful", "email", email, "count", len(out))

	return connect.NewResponse(&api.ListBillsResponse{Bills: out}), nil
}

// CreateBill validates a new bill and persists it as pending for the caller.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	email := middleware.GetEmail(ctx)
	if email == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}

	bill, err := convert.BillFromAPI(req.Msg.Bill)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := validateBill(&bill); err != nil {
		slog.Warn("CreateBill validation failed", "email", email, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	found, err := s.blobs.Exists(bill.File.Key)
	if errors.Is(err, receipts.ErrInvalidKey) || (err == nil && !found) {
		slog.Warn("CreateBill references unknown receipt", "email", email, "key", bill.File.Key)
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", errUnknownReceipt, bill.File.Key))
	}
	if err != nil {
		slog.Error("CreateBill receipt lookup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	bill.File.URL = receipts.URLPrefix + bill.File.Key

	bill.ID = ""
	bill.Email = email
	bill.Status = models.StatusPending
	bill.CommentAdmin = ""
	bill.CreatedAt = 0
	if bill.Pct == 0 {
		bill.Pct = models.DefaultPct
	}

	if err := s.store.CreateBill(ctx, &bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if s.metrics != nil {
		s.metrics.BillsCreated.Inc()
	}

	slog.Info("Bill created", "bill_id", bill.ID, "email", email, "amount", bill.Amount.String())

	return connect.NewResponse(&api.CreateBillResponse{Bill: convert.BillToAPI(bill)}), nil
}

// UploadReceipt validates and stores a receipt image, returning where it can
// be fetched from.
func (s *BillService) UploadReceipt(ctx context.Context, req *connect.Request[api.UploadReceiptRequest]) (*connect.Response[api.UploadReceiptResponse], error) {
	email := middleware.GetEmail(ctx)
	if email == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}

	name := req.Msg.FileName
	slog.Info("UploadReceipt request received", "email", email, "file_name", name, "size", len(req.Msg.Data))

	if int64(len(req.Msg.Data)) > s.maxReceiptBytes {
		s.rejected("size")
		return nil, connect.NewError(connect.CodeInvalidArgument, receipts.TooLarge(name, s.maxReceiptBytes))
	}
	if err := receipts.ValidateExtension(name); err != nil {
		s.rejected("extension")
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if _, err := receipts.ValidateContent(name, req.Msg.Data); err != nil {
		s.rejected("content")
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	key, url, err := s.blobs.Save(name, req.Msg.Data)
	if err != nil {
		slog.Error("UploadReceipt failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Receipt stored", "key", key, "email", email)

	return connect.NewResponse(&api.UploadReceiptResponse{
		FileName: name,
		FileURL:  url,
		Key:      key,
	}), nil
}

func (s *BillService) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.ReceiptsRejected.WithLabelValues(reason).Inc()
	}
}

var (
	errAmountRequired = errors.New("amount must be greater than zero")
	errUnknownType    = errors.New("unknown expense type")
	errFileRequired   = errors.New("a receipt is required")
	errUnknownReceipt = errors.New("no stored receipt")
	errNegativeVAT    = errors.New("vat must not be negative")
	errPct            = errors.New("pct must be between 0 and 100")
)

// validateBill checks the fields an employee fills in on the new bill form.
func validateBill(b *models.Bill) error {
	if b.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if !b.Amount.IsPositive() {
		return errAmountRequired
	}
	if !models.IsExpenseType(b.Type) {
		return fmt.Errorf("%w: %q", errUnknownType, b.Type)
	}
	if b.VAT.IsNegative() {
		return errNegativeVAT
	}
	if b.Pct < 0 || b.Pct > 100 {
		return errPct
	}
	if b.File.Key == "" {
		return errFileRequired
	}
	if err := receipts.ValidateExtension(b.File.Name); err != nil {
		return err
	}
	return nil
}
