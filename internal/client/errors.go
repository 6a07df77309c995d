package client

import (
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
)

// NetworkError is a rejection from the remote store. Its message is what
// the UI shows in place of the page content.
type NetworkError struct {
	Status int
	Err    error
}

// NewNetworkError returns a NetworkError for an HTTP status.
func NewNetworkError(status int) *NetworkError {
	return &NetworkError{Status: status}
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Erreur %d", e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FromConnect turns an error returned by a Connect client into a
// NetworkError. Errors that already are NetworkErrors pass through.
func FromConnect(err error) error {
	if err == nil {
		return nil
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr
	}
	return &NetworkError{Status: HTTPStatus(connect.CodeOf(err)), Err: err}
}

// HTTPStatus maps a Connect code to the HTTP status used by the Connect
// protocol for it.
func HTTPStatus(code connect.Code) int {
	switch code {
	case connect.CodeCanceled:
		return 499
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeOutOfRange:
		return http.StatusBadRequest
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeAlreadyExists, connect.CodeAborted:
		return http.StatusConflict
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case connect.CodeUnimplemented:
		return http.StatusNotImplemented
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
