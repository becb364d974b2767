package models

import "errors"

// Sentinel errors shared by repos and services. Handlers map these to HTTP
// status codes with errors.Is, so wrap them with fmt.Errorf("...: %w", err)
// when adding context.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
