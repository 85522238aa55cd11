package discovery

import "errors"

var (
	// ErrInvalidSite is returned when the site address is empty or not http(s)
	ErrInvalidSite = errors.New("invalid site for policy discovery")
	// ErrHomepageFetchFailed is returned when the homepage cannot be fetched for link extraction
	ErrHomepageFetchFailed = errors.New("failed to fetch homepage for link extraction")
)
