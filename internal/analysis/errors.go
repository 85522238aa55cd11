package analysis

import "errors"

var (
	// ErrEmptyText is returned when manual analysis is requested with no text
	ErrEmptyText = errors.New("policy text is required")
	// ErrNoCurrentText is returned when deep analysis is requested before any analysis
	ErrNoCurrentText = errors.New("no policy text available for deep analysis")
	// ErrDeepAnalysisRequiresAI is returned when deep analysis is requested without a model session
	ErrDeepAnalysisRequiresAI = errors.New("deep analysis requires AI; download the model first")
	// ErrNoResponse is returned when the background replies with an empty failure
	ErrNoResponse = errors.New("no response from background")
)
