// api/errors/credential_errors.go
package errors

import "errors"

var (
	ErrInvalidCredentialRequest = errors.New("invalid credential request")
)
