package store

import "errors"

var (
	// ErrOpenFailed is returned when the database cannot be opened or initialized
	ErrOpenFailed = errors.New("failed to open store")
	// ErrQueryFailed is returned when a read or write against the store fails
	ErrQueryFailed = errors.New("store query failed")
	// ErrInvalidValue is returned when a stored value cannot be encoded or decoded
	ErrInvalidValue = errors.New("invalid stored value")
	// ErrMissingTabID is returned when a tab-scoped key is requested without a tab id
	ErrMissingTabID = errors.New("tab id is required")
)
