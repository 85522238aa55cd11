package cmd

import "errors"

var (
	// ErrNoInput is returned when analyze is run without --url or --file
	ErrNoInput = errors.New("one of --url or --file is required")
	// ErrAnalysisFailed is returned when the analysis view ends in an error
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrUnknownFormat is returned for an unsupported --format value
	ErrUnknownFormat = errors.New("unknown output format")
)
