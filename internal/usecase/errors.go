package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrMissingCredentials    = errors.New("missing provider credentials")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
