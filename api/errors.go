package api

import (
	cerrors "chat-core/errors"
	"context"
	"errors"
	"net/http"
)

// Problem is the error body returned to clients.
type Problem struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusCode maps an error returned by the endpoints to an HTTP status and
// a stable error code. Internal details never leak into the message of a
// 5xx problem.
func StatusCode(err error) Problem {
	switch {
	case err == nil:
		return Problem{Status: http.StatusOK, Code: "ok"}
	case errors.Is(err, cerrors.ErrInvalidInput):
		return Problem{Status: http.StatusBadRequest, Code: "invalid_argument", Message: err.Error()}
	case errors.Is(err, cerrors.ErrUnauthenticated):
		return Problem{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication failed"}
	case errors.Is(err, cerrors.ErrForbidden):
		return Problem{Status: http.StatusForbidden, Code: "forbidden", Message: "access denied"}
	case errors.Is(err, cerrors.ErrNotFound):
		return Problem{Status: http.StatusNotFound, Code: "not_found", Message: err.Error()}
	case errors.Is(err, cerrors.ErrInvalidReference):
		return Problem{Status: http.StatusUnprocessableEntity, Code: "invalid_reference", Message: err.Error()}
	case errors.Is(err, cerrors.ErrConcurrentConflict):
		return Problem{Status: http.StatusConflict, Code: "conflict", Message: "concurrent modification, retry"}
	case errors.Is(err, cerrors.ErrRateLimited):
		return Problem{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
	case errors.Is(err, cerrors.ErrDepthExceeded):
		return Problem{Status: http.StatusUnprocessableEntity, Code: "depth_exceeded", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return Problem{Status: http.StatusGatewayTimeout, Code: "timeout", Message: "request timed out"}
	case errors.Is(err, context.Canceled):
		return Problem{Status: 499, Code: "canceled", Message: "request canceled"}
	default:
		return Problem{Status: http.StatusInternalServerError, Code: "internal_error", Message: "an unexpected error occurred"}
	}
}

// Retryable reports whether the caller may retry the same request later.
func Retryable(err error) bool {
	return errors.Is(err, cerrors.ErrRateLimited)
}
