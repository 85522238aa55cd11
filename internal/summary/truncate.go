package summary

import "strings"

const (
	// MaxPromptChars is the largest input, in characters, sent to the model
	MaxPromptChars = 8000
	// boundaryRatio is the fraction of MaxPromptChars a sentence cutoff must pass
	boundaryRatio = 0.8
)

// Truncate shortens text to at most limit characters, preferring to cut just
// after the last sentence terminator or newline when that falls beyond 80%
// of the limit. A hard cut is marked with a trailing ellipsis. The second
// return value reports whether the text was shortened.
func Truncate(text string, limit int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}

	head := string(runes[:limit])

	cutoff := strings.LastIndexAny(head, ".!?\n")
	if cutoff >= 0 && len([]rune(head[:cutoff])) > int(float64(limit)*boundaryRatio) {
		return head[:cutoff+1], true
	}

	return head + "...", true
}
