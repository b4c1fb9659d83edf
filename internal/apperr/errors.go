// Package apperr holds sentinel errors shared by the service and transport
// layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid input")
	ErrUnavailable   = errors.New("unavailable")
)
