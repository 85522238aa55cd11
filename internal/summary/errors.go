package summary

import "errors"

// ErrEmptyResponse is returned when the model replies with no text
var ErrEmptyResponse = errors.New("model returned an empty response")
