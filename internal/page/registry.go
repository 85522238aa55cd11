package page

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/types"
)

// SettingsSource supplies the current user settings
type SettingsSource interface {
	Settings(ctx context.Context) (types.Settings, error)
}

// Registry tracks the open page contexts by tab
type Registry struct {
	bus      *messaging.Bus
	settings SettingsSource
	opts     []Option

	mu   sync.RWMutex
	tabs map[string]*Context
}

// NewRegistry returns an empty registry. Settings are read from source each
// time a page is opened and pushed with UpdateSettings when they change; a nil
// source uses the defaults.
func NewRegistry(bus *messaging.Bus, source SettingsSource, opts ...Option) *Registry {
	return &Registry{
		bus:      bus,
		settings: source,
		opts:     opts,
		tabs:     map[string]*Context{},
	}
}

// Open loads a page into a tab, replacing the tab's previous page
func (r *Registry) Open(ctx context.Context, tabID, pageURL string, html io.Reader) (*Context, error) {
	settings := types.DefaultSettings()

	if r.settings != nil {
		s, err := r.settings.Settings(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load settings, using defaults")
		} else {
			settings = s
		}
	}

	opts := append([]Option{WithSettings(settings)}, r.opts...)

	pc, err := Open(tabID, pageURL, html, r.bus, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if previous, ok := r.tabs[tabID]; ok {
		previous.Close()
	}

	r.tabs[tabID] = pc
	r.mu.Unlock()

	pc.Start(ctx)

	return pc, nil
}

// UpdateSettings pushes changed user settings to every open page context
func (r *Registry) UpdateSettings(s types.Settings) {
	r.mu.RLock()
	tabs := make([]*Context, 0, len(r.tabs))
	for _, pc := range r.tabs {
		tabs = append(tabs, pc)
	}
	r.mu.RUnlock()

	for _, pc := range tabs {
		pc.UpdateSettings(s)
	}

	log.Debug().Int("tabs", len(tabs)).Msg("settings pushed to open pages")
}

// Get returns the page context of a tab
func (r *Registry) Get(tabID string) (*Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pc, ok := r.tabs[tabID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}

	return pc, nil
}

// Close closes the page context of a tab
func (r *Registry) Close(tabID string) error {
	r.mu.Lock()
	pc, ok := r.tabs[tabID]
	delete(r.tabs, tabID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tabID)
	}

	pc.Close()

	return nil
}

// CloseAll closes every page context
func (r *Registry) CloseAll() {
	r.mu.Lock()
	tabs := r.tabs
	r.tabs = map[string]*Context{}
	r.mu.Unlock()

	for _, pc := range tabs {
		pc.Close()
	}
}

// TabText returns the visible text of an open tab showing pageURL
func (r *Registry) TabText(_ context.Context, pageURL string) (string, bool) {
	want, err := classifier.NormalizeURL(pageURL)
	if err != nil {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, pc := range r.tabs {
		have, err := classifier.NormalizeURL(pc.doc.URL())
		if err != nil || have != want {
			continue
		}

		return pc.Text(), true
	}

	return "", false
}
