package config

import "errors"

var (
	// ErrConfigUnmarshal is returned when the merged file and environment values do not fit Config
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")
	// ErrConfigRead is returned when the config file or environment cannot be loaded
	ErrConfigRead = errors.New("failed to read configuration")
	// ErrUnknownProvider is returned when ai.provider names no model host
	ErrUnknownProvider = errors.New("unknown ai provider")
	// ErrInvalidValue is returned when a setting is out of range
	ErrInvalidValue = errors.New("invalid configuration value")
)
