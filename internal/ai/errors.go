package ai

import "errors"

var (
	// ErrCapabilityAbsent is returned when no model host is available at all
	ErrCapabilityAbsent = errors.New("on-device model capability is not present")
	// ErrModelUnavailable is returned when the host reports the model cannot be used
	ErrModelUnavailable = errors.New("language model is unavailable")
	// ErrNeedsUserGesture is returned when starting a model download requires a user action
	ErrNeedsUserGesture = errors.New("model download requires a user gesture")
	// ErrDownloadSkipped is returned after the user declined the model download
	ErrDownloadSkipped = errors.New("model download was skipped by the user")
	// ErrSessionCreateFailed is returned when the host fails to create a session
	ErrSessionCreateFailed = errors.New("failed to create language model session")
	// ErrSessionUnavailable is returned after a creation failure until an explicit retry
	ErrSessionUnavailable = errors.New("language model session unavailable until retried")
	// ErrPromptFailed is returned when a prompt to an active session fails
	ErrPromptFailed = errors.New("language model prompt failed")
)
