// Package apiconnect wires the Billed services to Connect handlers and clients.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billed/pkg/api"
)

const (
	// BillServiceName is the fully-qualified name of the BillService service.
	BillServiceName = "billed.v1.BillService"

	BillServiceListBillsProcedure     = "/billed.v1.BillService/ListBills"
	BillServiceCreateBillProcedure    = "/billed.v1.BillService/CreateBill"
	BillServiceUploadReceiptProcedure = "/billed.v1.BillService/UploadReceipt"
)

// BillServiceClient is a client for the billed.v1.BillService service.
type BillServiceClient interface {
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	UploadReceipt(context.Context, *connect.Request[api.UploadReceiptRequest]) (*connect.Response[api.UploadReceiptResponse], error)
}

// NewBillServiceClient constructs a client for the billed.v1.BillService
// service. The JSON codec is applied first so callers may override it.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &billServiceClient{
		listBills: connect.NewClient[api.ListBillsRequest, api.ListBillsResponse](
			httpClient, baseURL+BillServiceListBillsProcedure, opts...,
		),
		createBill: connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](
			httpClient, baseURL+BillServiceCreateBillProcedure, opts...,
		),
		uploadReceipt: connect.NewClient[api.UploadReceiptRequest, api.UploadReceiptResponse](
			httpClient, baseURL+BillServiceUploadReceiptProcedure, opts...,
		),
	}
}

type billServiceClient struct {
	listBills     *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	createBill    *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	uploadReceipt *connect.Client[api.UploadReceiptRequest, api.UploadReceiptResponse]
}

func (c *billServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) UploadReceipt(ctx context.Context, req *connect.Request[api.UploadReceiptRequest]) (*connect.Response[api.UploadReceiptResponse], error) {
	return c.uploadReceipt.CallUnary(ctx, req)
}

// BillServiceHandler is an implementation of the billed.v1.BillService service.
type BillServiceHandler interface {
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	UploadReceipt(context.Context, *connect.Request[api.UploadReceiptRequest]) (*connect.Response[api.UploadReceiptResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	listBills := connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...)
	createBill := connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...)
	uploadReceipt := connect.NewUnaryHandler(BillServiceUploadReceiptProcedure, svc.UploadReceipt, opts...)
	return "/" + BillServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BillServiceListBillsProcedure:
			listBills.ServeHTTP(w, r)
		case BillServiceCreateBillProcedure:
			createBill.ServeHTTP(w, r)
		case BillServiceUploadReceiptProcedure:
			uploadReceipt.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedBillServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBillServiceHandler struct{}

func (UnimplementedBillServiceHandler) ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("billed.v1.BillService.ListBills is not implemented"))
}

func (UnimplementedBillServiceHandler) CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("billed.v1.BillService.CreateBill is not implemented"))
}

func (UnimplementedBillServiceHandler) UploadReceipt(context.Context, *connect.Request[api.UploadReceiptRequest]) (*connect.Response[api.UploadReceiptResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("billed.v1.BillService.UploadReceipt is not implemented"))
}
