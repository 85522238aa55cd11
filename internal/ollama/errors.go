package ollama

import "errors"

var (
	// ErrMissingBaseURL is returned when no Ollama URL is configured
	ErrMissingBaseURL = errors.New("ollama base URL is required")
	// ErrMissingModel is returned when no model name is configured
	ErrMissingModel = errors.New("ollama model is required")
	// ErrRequestFailed is returned when an Ollama API request fails
	ErrRequestFailed = errors.New("ollama request failed")
	// ErrUnexpectedStatus is returned when Ollama returns an unexpected HTTP status
	ErrUnexpectedStatus = errors.New("unexpected ollama response status")
	// ErrUnexpectedContentType is returned when Ollama answers with something other than JSON
	ErrUnexpectedContentType = errors.New("unexpected ollama response content type")
	// ErrMalformedResponse is returned when an Ollama JSON response cannot be decoded
	ErrMalformedResponse = errors.New("malformed ollama response")
	// ErrPullFailed is returned when a model pull reports an error
	ErrPullFailed = errors.New("ollama model pull failed")
	// ErrPullInProgress is returned when a second pull is started while one is running
	ErrPullInProgress = errors.New("ollama model pull already in progress")
)
