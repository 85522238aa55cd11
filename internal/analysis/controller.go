// Package analysis drives the analysis view: automatic analysis of a policy
// URL, manual text analysis, deep analysis and the model download prompt.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/summary"
	"github.com/theopenlane/policypeek/internal/types"
)

// Phase is the section of the analysis view currently shown
type Phase string

const (
	// PhaseInput shows the manual input form
	PhaseInput Phase = "input"
	// PhaseDownloadPrompt asks the user to download the model or skip
	PhaseDownloadPrompt Phase = "download_prompt"
	// PhaseResult shows an analysis result
	PhaseResult Phase = "result"
	// PhaseError shows an error message
	PhaseError Phase = "error"
)

// Pending is an analysis deferred until the download prompt is answered
type Pending struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// View is the state rendered by the analysis surface
type View struct {
	Phase    Phase                 `json:"phase"`
	Result   *types.AnalysisResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
	Draft    string                `json:"draft,omitempty"`
	Pending  *Pending              `json:"pending,omitempty"`
	AI       ai.Status             `json:"ai"`
	CanDeep  bool                  `json:"can_deep"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Drafts persists the manual input draft
type Drafts interface {
	Draft(ctx context.Context) (string, error)
	SaveDraft(ctx context.Context, draft string) error
	ClearDraft(ctx context.Context) error
}

// Controller owns the analysis view state and its model session
type Controller struct {
	bus    *messaging.Bus
	models *ai.Manager
	drafts Drafts

	mu      sync.Mutex
	view    View
	current string
	pending *Pending
}

// New returns a controller showing the input form
func New(bus *messaging.Bus, models *ai.Manager, drafts Drafts) *Controller {
	return &Controller{
		bus:    bus,
		models: models,
		drafts: drafts,
		view:   View{Phase: PhaseInput},
	}
}

// Init opens the view. With a URL the policy is analyzed right away unless
// the model first needs a download, in which case the analysis is deferred
// behind the download prompt. Without a URL the input form and any saved
// draft are shown.
func (c *Controller) Init(ctx context.Context, pageURL, title string) View {
	_, err := c.session(ctx, ai.TriggerAutomatic)
	if errors.Is(err, ai.ErrNeedsUserGesture) {
		var pending *Pending
		if pageURL != "" {
			pending = &Pending{URL: pageURL, Title: title}
		}

		c.mu.Lock()
		c.pending = pending
		c.mu.Unlock()

		return c.show(ctx, View{Phase: PhaseDownloadPrompt})
	}

	if pageURL != "" {
		return c.AnalyzeURL(ctx, pageURL, title)
	}

	return c.show(ctx, View{Phase: PhaseInput})
}

// AnalyzeURL asks the background for the policy text and analyzes it
func (c *Controller) AnalyzeURL(ctx context.Context, pageURL, title string) View {
	resp, err := c.bus.AnalyzePolicy(ctx, pageURL, title)
	if err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("policy request failed")

		return c.show(ctx, View{Phase: PhaseError, Error: err.Error()})
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = ErrNoResponse.Error()
		}

		return c.show(ctx, View{Phase: PhaseError, Error: msg})
	}

	if resp.URL != "" {
		pageURL = resp.URL
	}

	if title == "" {
		title = resp.Title
	}

	// an automatic request uses a model that is already ready and never
	// starts a download; otherwise the heuristic summary is used
	session, _ := c.session(ctx, ai.TriggerAutomatic)

	result := c.run(ctx, session, summary.Request{Text: resp.Content, Mode: types.ModeBrief, URL: pageURL, Title: title})

	return c.show(ctx, View{Phase: PhaseResult, Result: &result})
}

// AnalyzeText analyzes manually entered text as a user action
func (c *Controller) AnalyzeText(ctx context.Context, text string) (View, error) {
	if strings.TrimSpace(text) == "" {
		return c.View(ctx), ErrEmptyText
	}

	session, _ := c.session(ctx, ai.TriggerUser)

	result := c.run(ctx, session, summary.Request{Text: text, Mode: types.ModeBrief})

	return c.show(ctx, View{Phase: PhaseResult, Result: &result}), nil
}

// Deep re-analyzes the current text with the detailed prompt. It needs a
// model session and never falls back to the heuristic up front.
func (c *Controller) Deep(ctx context.Context) (View, error) {
	c.mu.Lock()
	text := c.current
	c.mu.Unlock()

	if text == "" {
		return c.View(ctx), ErrNoCurrentText
	}

	session, err := c.session(ctx, ai.TriggerUser)
	if err != nil || session == nil {
		return c.View(ctx), ErrDeepAnalysisRequiresAI
	}

	c.mu.Lock()
	var source types.AnalysisResult
	if c.view.Result != nil {
		source = *c.view.Result
	}
	c.mu.Unlock()

	result := c.run(ctx, session, summary.Request{
		Text:  text,
		Mode:  types.ModeDeep,
		URL:   source.SourceURL,
		Title: source.SourceTitle,
	})

	return c.show(ctx, View{Phase: PhaseResult, Result: &result}), nil
}

// DownloadModel is the explicit download action. On success a deferred
// analysis continues; on failure the download prompt is shown again.
func (c *Controller) DownloadModel(ctx context.Context) View {
	if _, err := c.models.Download(ctx); err != nil {
		log.Error().Err(err).Msg("model download failed")

		return c.show(ctx, View{
			Phase: PhaseDownloadPrompt,
			Error: fmt.Sprintf("Failed to download AI model: %v. You can skip and use basic analysis instead.", err),
		})
	}

	return c.continuePending(ctx)
}

// SkipDownload declines the model download and continues without AI
func (c *Controller) SkipDownload(ctx context.Context) View {
	c.models.SkipDownload()

	return c.continuePending(ctx)
}

func (c *Controller) continuePending(ctx context.Context) View {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if pending != nil {
		return c.AnalyzeURL(ctx, pending.URL, pending.Title)
	}

	return c.show(ctx, View{Phase: PhaseInput})
}

// Reset starts a new analysis: the current text and the draft are cleared
func (c *Controller) Reset(ctx context.Context) View {
	c.mu.Lock()
	c.current = ""
	c.mu.Unlock()

	if err := c.drafts.ClearDraft(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clear draft")
	}

	return c.show(ctx, View{Phase: PhaseInput})
}

// SaveDraft persists the manual input as it is typed
func (c *Controller) SaveDraft(ctx context.Context, text string) error {
	return c.drafts.SaveDraft(ctx, text)
}

// View returns the current view with fresh model status
func (c *Controller) View(ctx context.Context) View {
	c.mu.Lock()
	v := c.view
	c.mu.Unlock()

	return c.decorate(ctx, v)
}

// session returns a model session for trigger. An unavailable model is
// detected before any session request is made.
func (c *Controller) session(ctx context.Context, trigger ai.Trigger) (ai.Session, error) {
	if existing := c.models.Session(); existing != nil {
		return existing, nil
	}

	if c.models.CheckAvailability(ctx) == ai.AvailabilityUnavailable {
		return nil, ai.ErrModelUnavailable
	}

	return c.models.RequestSession(ctx, trigger)
}

func (c *Controller) run(ctx context.Context, session ai.Session, req summary.Request) types.AnalysisResult {
	c.mu.Lock()
	c.current = req.Text
	c.mu.Unlock()

	return summary.Generate(ctx, session, req)
}

func (c *Controller) show(ctx context.Context, v View) View {
	c.mu.Lock()
	v.Pending = c.pending
	c.view = v
	c.mu.Unlock()

	return c.decorate(ctx, v)
}

func (c *Controller) decorate(ctx context.Context, v View) View {
	v.AI = c.models.Status()

	c.mu.Lock()
	v.CanDeep = c.current != "" && v.AI.HasSession
	c.mu.Unlock()

	if v.Phase == PhaseInput {
		draft, err := c.drafts.Draft(ctx)
		if err != nil {
			v.Warnings = append(v.Warnings, "saved draft could not be loaded")
		}

		v.Draft = draft
	}

	return v
}
