// api/errors/access_errors.go
package errors

import "errors"

// Core error taxonomy. ErrNotFound deliberately covers both "truly absent"
// and "exists but the caller is unauthorized" so that responses never
// confirm the existence of a protected resource.
var (
	ErrUnauthenticated  = errors.New("caller identity not verified")
	ErrForbidden        = errors.New("insufficient attributes")
	ErrInvalidInput     = errors.New("invalid input")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("backing store unavailable")
	ErrInternalServer   = errors.New("internal server error")
)
