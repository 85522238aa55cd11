package classifier

import "errors"

var (
	// ErrMissingHref is returned when an anchor has no usable link target
	ErrMissingHref = errors.New("anchor has no href")
	// ErrMalformedURL is returned when an anchor target cannot be parsed
	ErrMalformedURL = errors.New("malformed anchor url")
)
