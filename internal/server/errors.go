package server

import (
	"errors"
	"fmt"
	"net/http"
)

// MaxPageSize caps the limit parameter of /api/candidates.
const MaxPageSize = 1000

// ErrInvalidParam indicates a malformed query parameter
type ErrInvalidParam struct {
	Name   string
	Value  string
	Reason string
}

func (e *ErrInvalidParam) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Name, e.Value, e.Reason)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var paramErr *ErrInvalidParam
	if errors.As(err, &paramErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// publicMessage is the error text safe to show to clients.
func publicMessage(err error) string {
	var paramErr *ErrInvalidParam
	if errors.As(err, &paramErr) {
		return paramErr.Error()
	}
	return "failed to load candidates"
}
