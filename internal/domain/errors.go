package domain

import "errors"

// Sentinel errors for the application.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrConflict         = errors.New("resource already exists")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("message store unavailable")
	ErrWriteRejected    = errors.New("write rejected by store")
)
