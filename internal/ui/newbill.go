package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/calculator"
	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/metrics"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/receipts"
	"github.com/mmynk/billed/internal/ui/views"
)

// DefaultMaxUploadBytes caps the receipt size when none is configured.
const DefaultMaxUploadBytes = 5 << 20

// formOverheadBytes is the room left in the request body for the text fields
// and multipart framing around the receipt.
const formOverheadBytes = 64 << 10

// FormError is a new bill form that cannot be turned into a bill.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

// NewBill is the container behind the new bill form.
type NewBill struct {
	store          client.BillStore
	views          *views.Views
	metrics        *metrics.Metrics
	maxUploadBytes int64
}

// NewNewBill creates the new bill container. m may be nil.
func NewNewBill(store client.BillStore, v *views.Views, m *metrics.Metrics, maxUploadBytes int64) *NewBill {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &NewBill{store: store, views: v, metrics: m, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes binds the new bill form and its events.
func (n *NewBill) RegisterRoutes(r chi.Router) {
	r.Get(views.PathNewBill, n.ServePage)
	r.Post(views.PathChangeFile, n.ServeChangeFile)
	r.Post(views.PathNewBill, n.ServeSubmit)
}

// ServePage renders an empty form.
func (n *NewBill) ServePage(w http.ResponseWriter, r *http.Request) {
	n.renderForm(w, r, http.StatusOK, views.NewBillData{})
}

// HandleChangeFile checks the chosen receipt and uploads it.
func (n *NewBill) HandleChangeFile(ctx context.Context, fh *multipart.FileHeader) (models.FileRef, error) {
	if err := receipts.ValidateExtension(fh.Filename); err != nil {
		n.countRejected("extension")
		return models.FileRef{}, err
	}
	if fh.Size > n.maxUploadBytes {
		n.countRejected("size")
		return models.FileRef{}, receipts.TooLarge(fh.Filename, n.maxUploadBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return models.FileRef{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("read upload: %w", err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	ref, err := n.store.Upload(ctx, fh.Filename, contentType, data)
	if err != nil {
		var netErr *client.NetworkError
		if errors.As(err, &netErr) && netErr.Status == http.StatusBadRequest {
			return models.FileRef{}, &receipts.ValidationError{FileName: fh.Filename, Reason: "refused by the bill API"}
		}
		return models.FileRef{}, err
	}
	return ref, nil
}

// HandleSubmit turns the form into a pending bill for the session user and
// creates it. An empty VAT is derived from the amount and percentage.
func (n *NewBill) HandleSubmit(ctx context.Context, form views.NewBillForm) (models.Bill, error) {
	bill, err := billFromForm(form)
	if err != nil {
		return models.Bill{}, err
	}
	if s, ok := auth.SessionFrom(ctx); ok {
		bill.Email = s.Email
	}
	return n.store.Create(ctx, bill)
}

// ServeChangeFile handles the file input change event.
func (n *NewBill) ServeChangeFile(w http.ResponseWriter, r *http.Request) {
	form, fh, err := n.parse(w, r)
	if err != nil {
		n.renderParseError(w, r, err)
		return
	}

	data := views.NewBillData{Form: form}
	if fh == nil {
		n.renderForm(w, r, http.StatusOK, data)
		return
	}

	ref, err := n.HandleChangeFile(r.Context(), fh)
	if err != nil {
		n.renderFileError(w, r, data, err)
		return
	}
	data.Form.File = ref
	n.renderForm(w, r, http.StatusOK, data)
}

// ServeSubmit handles the form submit event.
func (n *NewBill) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	form, fh, err := n.parse(w, r)
	if err != nil {
		n.renderParseError(w, r, err)
		return
	}

	data := views.NewBillData{Form: form}
	if fh != nil {
		ref, err := n.HandleChangeFile(r.Context(), fh)
		if err != nil {
			n.renderFileError(w, r, data, err)
			return
		}
		data.Form.File = ref
	}

	bill, err := n.HandleSubmit(r.Context(), data.Form)
	if err != nil {
		var formErr *FormError
		if errors.As(err, &formErr) {
			data.FormError = formErr.Message
			n.renderForm(w, r, http.StatusBadRequest, data)
			return
		}
		renderError(w, r, n.views, views.PathNewBill, err)
		return
	}

	slog.InfoContext(r.Context(), "Bill submitted", "bill_id", bill.ID, "email", bill.Email)
	OnNavigate(w, r, views.PathBills)
}

// parse reads the multipart form. The returned header is nil when no file
// was chosen.
func (n *NewBill) parse(w http.ResponseWriter, r *http.Request) (views.NewBillForm, *multipart.FileHeader, error) {
	limit := n.maxUploadBytes + formOverheadBytes
	if r.ContentLength > limit {
		n.countRejected("size")
		return views.NewBillForm{}, nil, receipts.TooLarge("", n.maxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(n.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			n.countRejected("size")
			return views.NewBillForm{}, nil, receipts.TooLarge("", n.maxUploadBytes)
		}
		return views.NewBillForm{}, nil, fmt.Errorf("formulaire illisible: %w", err)
	}

	form := views.NewBillForm{
		Type:       r.FormValue("expense-type"),
		Name:       strings.TrimSpace(r.FormValue("expense-name")),
		Date:       r.FormValue("datepicker"),
		Amount:     strings.TrimSpace(r.FormValue("amount")),
		VAT:        strings.TrimSpace(r.FormValue("vat")),
		Pct:        strings.TrimSpace(r.FormValue("pct")),
		Commentary: r.FormValue("commentary"),
		File: models.FileRef{
			Name: r.FormValue("file-name"),
			URL:  r.FormValue("file-url"),
			Key:  r.FormValue("file-key"),
		},
	}

	if r.MultipartForm == nil {
		return form, nil, nil
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 || files[0].Filename == "" {
		return form, nil, nil
	}
	return form, files[0], nil
}

func (n *NewBill) renderForm(w http.ResponseWriter, r *http.Request, status int, data views.NewBillData) {
	data.Types = models.ExpenseTypes
	render(r.Context(), w, n.views, status, views.RouteData{Pathname: views.PathNewBill, Data: data})
}

// renderParseError shows an oversized body as a file alert and anything
// else as a form error.
func (n *NewBill) renderParseError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *receipts.ValidationError
	if errors.As(err, &vErr) {
		n.renderFileError(w, r, views.NewBillData{}, err)
		return
	}
	n.renderForm(w, r, http.StatusBadRequest, views.NewBillData{FormError: err.Error()})
}

// renderFileError shows the file alert and clears the file input.
func (n *NewBill) renderFileError(w http.ResponseWriter, r *http.Request, data views.NewBillData, err error) {
	var vErr *receipts.ValidationError
	if !errors.As(err, &vErr) {
		renderError(w, r, n.views, views.PathNewBill, err)
		return
	}
	slog.InfoContext(r.Context(), "Receipt rejected", "file", vErr.FileName, "reason", vErr.Reason)
	data.Form.File = models.FileRef{}
	data.FileAlert = vErr.Message()
	n.renderForm(w, r, http.StatusBadRequest, data)
}

func (n *NewBill) countRejected(reason string) {
	if n.metrics != nil {
		n.metrics.ReceiptsRejected.WithLabelValues(reason).Inc()
	}
}

func billFromForm(form views.NewBillForm) (models.Bill, error) {
	if !models.IsExpenseType(form.Type) {
		return models.Bill{}, &FormError{Field: "expense-type", Message: "Type de dépense inconnu."}
	}

	date, err := models.ParseDate(form.Date)
	if err != nil {
		return models.Bill{}, &FormError{Field: "datepicker", Message: "Date invalide."}
	}

	amount, err := decimal.NewFromString(form.Amount)
	if err != nil || !amount.IsPositive() {
		return models.Bill{}, &FormError{Field: "amount", Message: "Montant invalide."}
	}

	pct := models.DefaultPct
	if form.Pct != "" {
		pct, err = strconv.Atoi(form.Pct)
		if err != nil || pct < 0 || pct > 100 {
			return models.Bill{}, &FormError{Field: "pct", Message: "Pourcentage de TVA invalide."}
		}
	}

	var vat decimal.Decimal
	if form.VAT != "" {
		vat, err = decimal.NewFromString(form.VAT)
		if err != nil || vat.IsNegative() {
			return models.Bill{}, &FormError{Field: "vat", Message: "TVA invalide."}
		}
	} else if vat, err = calculator.VATIncluded(amount, pct); err != nil {
		return models.Bill{}, &FormError{Field: "vat", Message: "TVA invalide."}
	}

	if form.File.Key == "" {
		return models.Bill{}, &FormError{Field: "file", Message: "Veuillez joindre un justificatif."}
	}

	return models.Bill{
		Status:     models.StatusPending,
		Name:       form.Name,
		Type:       form.Type,
		Amount:     amount,
		VAT:        vat,
		Pct:        pct,
		Date:       date,
		Commentary: form.Commentary,
		File:       form.File,
	}, nil
}
