package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrPageURLRequired is returned when a page is opened without a URL
	ErrPageURLRequired = errors.New("page url is required")
	// ErrHTMLRequired is returned when a page or mutation is posted without HTML
	ErrHTMLRequired = errors.New("html is required")
	// ErrSiteRequired is returned when discovery is requested without a site
	ErrSiteRequired = errors.New("site is required")
	// ErrDiscoveryDisabled is returned when no discoverer is configured
	ErrDiscoveryDisabled = errors.New("site discovery is disabled")
	// ErrNoResult is returned when a report is requested before any analysis ran
	ErrNoResult = errors.New("no analysis result available")
)
