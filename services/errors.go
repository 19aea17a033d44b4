package services

import "errors"

// Callers wrap these with fmt.Errorf("%w: ...") so controllers can classify
// the failure with errors.Is while the message keeps its context.
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrValidation         = errors.New("validation failed")
	ErrMissingData        = errors.New("missing data")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExternalService    = errors.New("external service failure")
)
