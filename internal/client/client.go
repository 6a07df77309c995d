// Package client is the UI's view of the bill API: a store of bills that
// can be listed, created and given receipts.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billed/internal/convert"
	"github.com/mmynk/billed/internal/middleware"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/pkg/api"
	"github.com/mmynk/billed/pkg/api/apiconnect"
)

// BillStore is the remote store capability consumed by the UI.
type BillStore interface {
	// List returns the session user's bills in the order the API sent them.
	List(ctx context.Context) ([]models.Bill, error)

	// Create submits a new bill and returns it as stored.
	Create(ctx context.Context, bill models.Bill) (models.Bill, error)

	// Upload stores a receipt image and returns where it lives.
	Upload(ctx context.Context, name, contentType string, data []byte) (models.FileRef, error)
}

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string, userType models.UserType) (string, error)
}

// Remote implements BillStore and Authenticator over the Connect API. The
// session token found in the context is forwarded on each call.
type Remote struct {
	bills apiconnect.BillServiceClient
	auth  apiconnect.AuthServiceClient
}

var (
	_ BillStore     = (*Remote)(nil)
	_ Authenticator = (*Remote)(nil)
)

// NewRemote creates a client for the API served at baseURL.
func NewRemote(httpClient connect.HTTPClient, baseURL string) *Remote {
	forward := connect.WithInterceptors(middleware.ForwardSession())
	return &Remote{
		bills: apiconnect.NewBillServiceClient(httpClient, baseURL, forward),
		auth:  apiconnect.NewAuthServiceClient(httpClient, baseURL),
	}
}

func (r *Remote) List(ctx context.Context) ([]models.Bill, error) {
	resp, err := r.bills.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
	if err != nil {
		return nil, FromConnect(err)
	}

	bills := make([]models.Bill, 0, len(resp.Msg.Bills))
	for _, b := range resp.Msg.Bills {
		bill, err := convert.BillFromAPI(b)
		if err != nil {
			// One corrupted record should not hide the others.
			slog.Warn("Skipping malformed bill", "bill_id", b.ID, "error", err)
			continue
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func (r *Remote) Create(ctx context.Context, bill models.Bill) (models.Bill, error) {
	resp, err := r.bills.CreateBill(ctx, connect.NewRequest(&api.CreateBillRequest{
		Bill: convert.BillToAPI(bill),
	}))
	if err != nil {
		return models.Bill{}, FromConnect(err)
	}

	created, err := convert.BillFromAPI(resp.Msg.Bill)
	if err != nil {
		return models.Bill{}, fmt.Errorf("decode created bill: %w", err)
	}
	return created, nil
}

func (r *Remote) Upload(ctx context.Context, name, contentType string, data []byte) (models.FileRef, error) {
	resp, err := r.bills.UploadReceipt(ctx, connect.NewRequest(&api.UploadReceiptRequest{
		FileName:    name,
		ContentType: contentType,
		Data:        data,
	}))
	if err != nil {
		return models.FileRef{}, FromConnect(err)
	}
	return models.FileRef{
		Name: resp.Msg.FileName,
		URL:  resp.Msg.FileURL,
		Key:  resp.Msg.Key,
	}, nil
}

func (r *Remote) Login(ctx context.Context, email, password string, userType models.UserType) (string, error) {
	resp, err := r.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    email,
		Password: password,
		Type:     string(userType),
	}))
	if err != nil {
		return "", FromConnect(err)
	}
	return resp.Msg.Token, nil
}
