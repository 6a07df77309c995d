// Package api defines the messages exchanged with the Billed API.
//
// The services are served with Connect using the JSON codec in codec.go,
// so messages are plain Go structs rather than generated protobuf types.
package api

import "github.com/shopspring/decimal"

// Bill is the wire form of an expense claim.
type Bill struct {
	ID           string          `json:"id,omitempty"`
	Email        string          `json:"email,omitempty"`
	Status       string          `json:"status,omitempty"`
	Name         string          `json:"name,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	VAT          decimal.Decimal `json:"vat"`
	Pct          int32           `json:"pct"`
	Date         string          `json:"date"`
	Commentary   string          `json:"commentary,omitempty"`
	CommentAdmin string          `json:"commentAdmin,omitempty"`
	FileName     string          `json:"fileName,omitempty"`
	FileURL      string          `json:"fileUrl,omitempty"`
	FileKey      string          `json:"fileKey,omitempty"`
	CreatedAt    int64           `json:"createdAt,omitempty"`
}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type CreateBillRequest struct {
	Bill *Bill `json:"bill"`
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

// UploadReceiptRequest carries a receipt image. Data is base64 on the wire.
type UploadReceiptRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data"`
}

type UploadReceiptResponse struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	Key      string `json:"key"`
}

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	CreatedAt   int64  `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Type is the kind of account the user is logging in as. Empty accepts any.
	Type string `json:"type,omitempty"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Type        string `json:"type"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
