package errors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidData   = errors.New("invalid data type")
	ErrMalformedBody = errors.New("malformed request body")
)
