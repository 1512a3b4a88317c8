package errors

import "fmt"

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrForbidden          = fmt.Errorf("forbidden")
	ErrInvalidReference   = fmt.Errorf("invalid reference")
	ErrDepthExceeded      = fmt.Errorf("thread depth exceeded")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrConcurrentConflict = fmt.Errorf("concurrent conflict")
	ErrStorageFailure     = fmt.Errorf("storage failure")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrUnauthenticated    = fmt.Errorf("unauthenticated")
	ErrInvalidPayload     = fmt.Errorf("invalid event payload")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
