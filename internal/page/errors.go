package page

import "errors"

var (
	// ErrInvalidPageURL is returned when a page context is opened with an unusable URL
	ErrInvalidPageURL = errors.New("invalid page URL")
	// ErrParseFailed is returned when page HTML cannot be parsed
	ErrParseFailed = errors.New("failed to parse page HTML")
	// ErrNoInsertionPoint is returned when a mutation targets an element that does not exist
	ErrNoInsertionPoint = errors.New("no element matches the insertion selector")
	// ErrMissingTabID is returned when a page context is opened without a tab id
	ErrMissingTabID = errors.New("tab id is required")
	// ErrUnknownTab is returned when no page context exists for a tab
	ErrUnknownTab = errors.New("no page context for tab")
)
