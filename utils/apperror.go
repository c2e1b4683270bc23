// utils/apperror.go - Error taxonomy shared by services and controllers
package utils

import (
	"errors"
	"net/http"
)

// ValidationError marks a request rejected before any persistence.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// EditNotAllowedError marks an attempt to mutate a finalized submission
// whose categories have already progressed.
type EditNotAllowedError struct {
	Message string
}

func (e *EditNotAllowedError) Error() string { return e.Message }

// NotFoundError marks a lookup with no matching record.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// TransientNetworkError wraps a connectivity failure. Read paths may retry
// it once; write paths never do.
type TransientNetworkError struct {
	Err error
}

func (e *TransientNetworkError) Error() string {
	if e.Err == nil {
		return "transient network error"
	}
	return "transient network error: " + e.Err.Error()
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// RateLimitedError marks a backpressure rejection. Never retried
// automatically.
type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string { return e.Message }

// IsTransient reports whether err is eligible for the single read retry.
func IsTransient(err error) bool {
	var t *TransientNetworkError
	return errors.As(err, &t)
}

// HTTPStatus maps a taxonomy error to its response status. Unknown errors
// map to 500.
func HTTPStatus(err error) int {
	var (
		validation  *ValidationError
		notEditable *EditNotAllowedError
		notFound    *NotFoundError
		transient   *TransientNetworkError
		rateLimited *RateLimitedError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &notEditable):
		return http.StatusConflict
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
