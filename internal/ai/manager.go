package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"
)

// ProgressFunc receives download progress as a whole percentage
type ProgressFunc func(percent int)

// Status is a point-in-time snapshot of the manager
type Status struct {
	State      State `json:"state"`
	HasSession bool  `json:"has_session"`
	Skipped    bool  `json:"skipped"`
	Failed     bool  `json:"failed"`
	Progress   int   `json:"progress"`
}

// Manager owns at most one model session for a single context
type Manager struct {
	provider   Provider
	config     SessionConfig
	onProgress ProgressFunc

	// createMu serializes session creation so concurrent requests share one session
	createMu sync.Mutex

	mu       sync.Mutex
	state    State
	session  Session
	skipped  bool
	failed   error
	progress int
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithSessionConfig sets the configuration passed to the host on create
func WithSessionConfig(cfg SessionConfig) ManagerOption {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithProgress registers a callback for download progress
func WithProgress(fn ProgressFunc) ManagerOption {
	return func(m *Manager) {
		m.onProgress = fn
	}
}

// NewManager returns a manager in the unchecked state
func NewManager(provider Provider, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider: provider,
		config:   DefaultSessionConfig(),
		state:    StateUnchecked,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CheckAvailability queries the host. It never fails: an absent capability
// or a host error is reported as unavailable.
func (m *Manager) CheckAvailability(ctx context.Context) Availability {
	host, ok := m.provider.Host()
	if !ok {
		return AvailabilityUnavailable
	}

	availability, err := host.Availability(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("model availability check failed")

		return AvailabilityUnavailable
	}

	return availability
}

// RequestSession returns the live session, creating one if the host allows it
// for the given trigger
func (m *Manager) RequestSession(ctx context.Context, trigger Trigger) (Session, error) {
	m.createMu.Lock()
	defer m.createMu.Unlock()

	m.mu.Lock()
	session, skipped, failed := m.session, m.skipped, m.failed
	m.mu.Unlock()

	if session != nil {
		return session, nil
	}

	host, ok := m.provider.Host()
	if !ok {
		m.setState(StateUnavailable)

		return nil, ErrCapabilityAbsent
	}

	if failed != nil && trigger != TriggerDownload {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, failed)
	}

	availability := m.CheckAvailability(ctx)
	m.setState(State(availability))

	switch availability {
	case AvailabilityUnavailable:
		return nil, ErrModelUnavailable
	case AvailabilityDownloadable, AvailabilityDownloading:
		if skipped && trigger != TriggerDownload {
			return nil, ErrDownloadSkipped
		}

		if trigger == TriggerAutomatic {
			return nil, ErrNeedsUserGesture
		}
	}

	log.Info().Str("trigger", trigger.String()).Str("availability", string(availability)).Msg("creating model session")

	created, err := host.Create(ctx, m.config, m.monitor)
	if err != nil {
		if errors.Is(err, ErrNeedsUserGesture) {
			log.Debug().Err(err).Msg("model session needs a user gesture")

			return nil, err
		}

		m.mu.Lock()
		m.failed = err
		m.state = State(availability)
		m.mu.Unlock()

		log.Error().Err(err).Msg("failed to create model session")

		return nil, fmt.Errorf("%w: %v", ErrSessionCreateFailed, err)
	}

	m.mu.Lock()
	m.session = created
	m.state = StateReady
	m.failed = nil
	m.skipped = false
	m.mu.Unlock()

	return created, nil
}

// Download is the explicit download action; it clears skip and failure
// flags before requesting a session
func (m *Manager) Download(ctx context.Context) (Session, error) {
	m.mu.Lock()
	m.skipped = false
	m.failed = nil
	m.mu.Unlock()

	return m.RequestSession(ctx, TriggerDownload)
}

// SkipDownload records that the user declined the model download
func (m *Manager) SkipDownload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.skipped = true
}

// Release drops the live session, returning the manager to unchecked
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	m.state = StateUnchecked
	m.progress = 0
}

// Session returns the live session or nil
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session
}

// Status returns a snapshot of the manager
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		State:      m.state,
		HasSession: m.session != nil,
		Skipped:    m.skipped,
		Failed:     m.failed != nil,
		Progress:   m.progress,
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		m.state = s
	}
}

func (m *Manager) monitor(loaded float64) {
	percent := ProgressPercent(loaded)

	m.mu.Lock()
	m.progress = percent
	m.state = StateDownloading
	m.mu.Unlock()

	log.Debug().Int("percent", percent).Msg("model download progress")

	if m.onProgress != nil {
		m.onProgress(percent)
	}
}

// ProgressPercent converts a loaded fraction into a whole percentage in [0, 100]
func ProgressPercent(loaded float64) int {
	if math.IsNaN(loaded) || loaded <= 0 {
		return 0
	}

	if loaded >= 1 {
		return 100
	}

	return int(math.Round(loaded * 100)) //nolint:mnd
}
