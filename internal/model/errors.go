package model

import "errors"

// Validation errors. Handlers map these to 400 responses.
var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyPatch        = errors.New("patch has no fields")
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidField      = errors.New("invalid field value")
)
