package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/types"
)

// Request is a single analysis invocation
type Request struct {
	Text  string
	Mode  types.Mode
	URL   string
	Title string
}

// Generate summarizes req.Text with session when one is given, falling back
// silently to the heuristic on any model error. It never returns an empty
// summary.
func Generate(ctx context.Context, session ai.Session, req Request) types.AnalysisResult {
	words := WordCount(req.Text)

	result := types.AnalysisResult{
		WordCount:      words,
		CharacterCount: CharacterCount(req.Text),
		IsDeepAnalysis: req.Mode == types.ModeDeep,
		ReadingMinutes: ReadingMinutes(words),
		SourceURL:      req.URL,
		SourceTitle:    req.Title,
	}

	if session != nil {
		summary, truncated, err := prompt(ctx, session, req)
		if err == nil {
			result.Summary = summary
			result.UsedAI = true
			result.WasTruncated = truncated

			return result
		}

		log.Warn().Err(err).Str("mode", string(req.Mode)).Msg("model analysis failed, using basic analysis")
	}

	result.Summary, result.Topics = Heuristic(req.Text)

	return result
}

func prompt(ctx context.Context, session ai.Session, req Request) (string, bool, error) {
	input, truncated := Truncate(req.Text, MaxPromptChars)

	reply, err := session.Prompt(ctx, BuildPrompt(req.Mode, input))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ai.ErrPromptFailed, err)
	}

	if strings.TrimSpace(reply) == "" {
		return "", false, ErrEmptyResponse
	}

	if truncated {
		reply = TruncationNote(CharacterCount(req.Text)) + reply
	}

	return reply, truncated, nil
}
