package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billed/pkg/api"
)

const (
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "billed.v1.AuthService"

	AuthServiceLoginProcedure    = "/billed.v1.AuthService/Login"
	AuthServiceRegisterProcedure = "/billed.v1.AuthService/Register"
)

// AuthServiceClient is a client for the billed.v1.AuthService service.
type AuthServiceClient interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
}

// NewAuthServiceClient constructs a client for the billed.v1.AuthService service.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &authServiceClient{
		login: connect.NewClient[api.LoginRequest, api.LoginResponse](
			httpClient, baseURL+AuthServiceLoginProcedure, opts...,
		),
		register: connect.NewClient[api.RegisterRequest, api.RegisterResponse](
			httpClient, baseURL+AuthServiceRegisterProcedure, opts...,
		),
	}
}

type authServiceClient struct {
	login    *connect.Client[api.LoginRequest, api.LoginResponse]
	register *connect.Client[api.RegisterRequest, api.RegisterResponse]
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

// AuthServiceHandler is an implementation of the billed.v1.AuthService service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	register := connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		case AuthServiceRegisterProcedure:
			register.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
