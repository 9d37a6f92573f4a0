package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

// ErrorKind classifies an API failure. Transport failures get their own
// kinds so callers can tell "the server said no" apart from "the server
// never answered".
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindTimeout      ErrorKind = "timeout"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindValidation   ErrorKind = "validation"
	KindRateLimited  ErrorKind = "rate_limited"
	KindServer       ErrorKind = "server"
	KindUnknown      ErrorKind = "unknown"
)

// APIError is the one error type everything above the HTTP chokepoint sees.
// Fields is populated for validation failures so forms can render them
// inline instead of showing a generic notification.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  []models.FieldError
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func classifyStatus(status int, fieldErrors []models.FieldError) ErrorKind {
	if status == http.StatusUnprocessableEntity || len(fieldErrors) > 0 {
		return KindValidation
	}
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimited
	}
	if status >= 500 {
		return KindServer
	}
	return KindUnknown
}

// IsRetryable reports whether a failure is worth retrying: any 4xx response
// never is, even when its status maps to no specific kind. Network, timeout,
// server and status-less unknown failures are.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status >= 400 && apiErr.Status < 500 {
		return false
	}
	switch apiErr.Kind {
	case KindNetwork, KindTimeout, KindServer, KindUnknown:
		return true
	}
	return false
}

// AsAPIError unwraps err into an APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
