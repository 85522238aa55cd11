package fetcher

import "errors"

var (
	// ErrInvalidURL is returned when the requested URL is not an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid policy URL")
	// ErrFetchFailed is returned when the policy document cannot be retrieved
	ErrFetchFailed = errors.New("failed to fetch policy")
	// ErrEmptyDocument is returned when a fetched document has no visible text
	ErrEmptyDocument = errors.New("policy document has no text")
)
