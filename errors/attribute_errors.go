// api/errors/attribute_errors.go
package errors

import "errors"

var (
	ErrAttributeNotFound  = errors.New("attribute not found")
	ErrAttributeConflict  = errors.New("attribute conflict")
	ErrInvalidGrantData   = errors.New("invalid grant data")
	ErrGrantNotFound      = errors.New("grant not found")
	ErrAuditorProhibited  = errors.New("attribute may not be granted to an auditor")
	ErrDatabaseOperation  = errors.New("database operation failed")
)
