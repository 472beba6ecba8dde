// Package apperr defines sentinel errors shared between the service layer and
// its transports.
package apperr

import "errors"

var (
	// ErrNotFound marks lookups for records that do not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid marks payloads that failed validation.
	ErrInvalid = errors.New("invalid record")
)
