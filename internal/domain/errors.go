package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrDataStoreUnavailable = errors.New("data store unavailable")
	ErrQueryExecution       = errors.New("query execution failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidMonth         = errors.New("month must be between 1 and 12")
)
