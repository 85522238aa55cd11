package ai

import "strings"

// Availability is the host-reported state of the language model
type Availability string

const (
	// AvailabilityUnavailable means the model cannot be used on this host
	AvailabilityUnavailable Availability = "unavailable"
	// AvailabilityDownloadable means the model can be used after a download
	AvailabilityDownloadable Availability = "downloadable"
	// AvailabilityDownloading means a model download is in progress
	AvailabilityDownloading Availability = "downloading"
	// AvailabilityReady means a session can be created immediately
	AvailabilityReady Availability = "ready"
)

// ParseAvailability maps host availability strings onto the four states.
// The legacy "after-download" value is folded into downloadable, and
// unrecognized values are treated as unavailable.
func ParseAvailability(s string) Availability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ready", "readily", "available":
		return AvailabilityReady
	case "downloadable", "after-download":
		return AvailabilityDownloadable
	case "downloading":
		return AvailabilityDownloading
	default:
		return AvailabilityUnavailable
	}
}

// NeedsDownload reports whether the model must be downloaded before use
func (a Availability) NeedsDownload() bool {
	return a == AvailabilityDownloadable || a == AvailabilityDownloading
}

// State is the manager's view of the session lifecycle
type State string

const (
	// StateUnchecked means availability has not been observed yet
	StateUnchecked State = "unchecked"
	// StateUnavailable mirrors AvailabilityUnavailable
	StateUnavailable State = State(AvailabilityUnavailable)
	// StateDownloadable mirrors AvailabilityDownloadable
	StateDownloadable State = State(AvailabilityDownloadable)
	// StateDownloading mirrors AvailabilityDownloading
	StateDownloading State = State(AvailabilityDownloading)
	// StateReady means a live session exists
	StateReady State = State(AvailabilityReady)
)

// Trigger describes what initiated a session request
type Trigger int

const (
	// TriggerAutomatic is page initialization without user interaction
	TriggerAutomatic Trigger = iota
	// TriggerUser is a user-initiated action such as clicking analyze
	TriggerUser
	// TriggerDownload is the explicit download-model action
	TriggerDownload
)

// String returns the trigger name used in logs
func (t Trigger) String() string {
	switch t {
	case TriggerUser:
		return "user"
	case TriggerDownload:
		return "download"
	default:
		return "automatic"
	}
}
