// Package background is the single long-lived context: it stores detected
// links, fetches policy text for the analysis view, reports model
// capabilities and sweeps stale link records.
package background

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/fetcher"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/types"
)

const (
	// DefaultRetention is how long stored links are kept
	DefaultRetention = 24 * time.Hour
	// DefaultSweepInterval is how often stale links are removed
	DefaultSweepInterval = time.Hour
)

// Store persists settings and per-tab links
type Store interface {
	Settings(ctx context.Context) (types.Settings, error)
	SaveLinks(ctx context.Context, tabID string, links types.StoredLinks) error
	SweepLinks(ctx context.Context, cutoff time.Time) (int, error)
}

// Fetcher retrieves the text of policy documents
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (fetcher.Document, error)
}

// Notifier announces newly detected links
type Notifier interface {
	NotifyLinks(ctx context.Context, pageURL string, links []types.PolicyLink) error
}

// Service is the background context
type Service struct {
	bus       *messaging.Bus
	store     Store
	fetcher   Fetcher
	models    *ai.Manager
	notifier  Notifier
	clock     clock.Clock
	retention time.Duration
	interval  time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithNotifier sets where link notifications are sent
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithClock sets the clock used for timestamps and the sweeper
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithRetention overrides DefaultRetention
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithSweepInterval overrides DefaultSweepInterval
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New returns the background service; models may wrap an unsupported provider
func New(bus *messaging.Bus, store Store, f Fetcher, models *ai.Manager, opts ...Option) *Service {
	s := &Service{
		bus:       bus,
		store:     store,
		fetcher:   f,
		models:    models,
		clock:     clock.New(),
		retention: DefaultRetention,
		interval:  DefaultSweepInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start registers the background endpoint on the bus
func (s *Service) Start() {
	s.bus.Register(messaging.Background, s.Router())
}

// Stop removes the background endpoint from the bus
func (s *Service) Stop() {
	s.bus.Unregister(messaging.Background)
}

// Router answers LINKS_DETECTED, ANALYZE_POLICY and GET_AI_CAPABILITIES
func (s *Service) Router() *messaging.Router {
	return &messaging.Router{
		OnLinksDetected:     s.handleLinksDetected,
		OnAnalyzePolicy:     s.handleAnalyzePolicy,
		OnGetAICapabilities: s.handleCapabilities,
	}
}

func (s *Service) handleLinksDetected(ctx context.Context, from messaging.Sender, msg messaging.LinksDetected) (messaging.Ack, error) {
	record := types.StoredLinks{
		Count:     msg.Count,
		Links:     msg.Links,
		Timestamp: s.clock.Now().UnixMilli(),
	}

	if err := s.store.SaveLinks(ctx, from.TabID, record); err != nil {
		return messaging.Ack{}, fmt.Errorf("%w: %v", ErrStoreLinks, err)
	}

	log.Info().Str("tab", from.TabID).Int("count", msg.Count).Msg("policy links stored")

	if s.notifier == nil || msg.Count == 0 {
		return messaging.Ack{Success: true}, nil
	}

	settings, err := s.store.Settings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load settings, skipping notification")

		return messaging.Ack{Success: true}, nil
	}

	if settings.NotificationsEnabled {
		if err := s.notifier.NotifyLinks(ctx, from.URL, msg.Links); err != nil {
			log.Warn().Err(err).Str("tab", from.TabID).Msg("failed to send link notification")
		}
	}

	return messaging.Ack{Success: true}, nil
}

func (s *Service) handleAnalyzePolicy(ctx context.Context, _ messaging.Sender, msg messaging.AnalyzePolicy) (messaging.AnalyzeResponse, error) {
	doc, err := s.fetcher.Fetch(ctx, msg.URL)
	if err != nil {
		log.Warn().Err(err).Str("url", msg.URL).Msg("failed to fetch policy")

		return messaging.AnalyzeResponse{Success: false, Error: err.Error()}, nil
	}

	log.Debug().Str("url", doc.URL).Str("source", string(doc.Source)).Int("chars", len(doc.Text)).Msg("policy fetched")

	return messaging.AnalyzeResponse{
		Success: true,
		Content: doc.Text,
		URL:     doc.URL,
		Title:   doc.Title,
	}, nil
}

func (s *Service) handleCapabilities(ctx context.Context, _ messaging.Sender, _ messaging.GetAICapabilities) (messaging.CapabilitiesResponse, error) {
	return messaging.CapabilitiesResponse{Availability: string(s.models.CheckAvailability(ctx))}, nil
}

// Sweep removes links stored longer than the retention period
func (s *Service) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.SweepLinks(ctx, s.clock.Now().Add(-s.retention))
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("swept stale policy links")
	}

	return removed, nil
}

// RunSweeper sweeps once immediately and then on every interval until ctx is done
func (s *Service) RunSweeper(ctx context.Context) error {
	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("link sweep failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
