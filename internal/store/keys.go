package store

import (
	"context"
	"fmt"
	"time"

	"github.com/theopenlane/policypeek/internal/types"
)

const (
	// KeyManualInputDraft holds the unsubmitted manual analysis text
	KeyManualInputDraft = "manualInputDraft"
	// KeyShowMagnifyingGlass toggles badge decorations
	KeyShowMagnifyingGlass = "showMagnifyingGlass"
	// KeyNotificationsEnabled toggles link notifications
	KeyNotificationsEnabled = "notificationsEnabled"
	// KeyAutoScan toggles scanning on page load
	KeyAutoScan = "autoScan"
	// linksPrefix prefixes the per-tab stored links keys
	linksPrefix = "links_"
)

// LinksKey returns the key under which links for tabID are stored
func LinksKey(tabID string) string {
	return linksPrefix + tabID
}

// Settings returns the stored settings, with defaults for unset keys
func (s *Store) Settings(ctx context.Context) (types.Settings, error) {
	settings := types.DefaultSettings()

	fields := []struct {
		key  string
		dest *bool
	}{
		{KeyShowMagnifyingGlass, &settings.ShowMagnifyingGlass},
		{KeyNotificationsEnabled, &settings.NotificationsEnabled},
		{KeyAutoScan, &settings.AutoScan},
	}

	for _, f := range fields {
		if _, err := s.Get(ctx, f.key, f.dest); err != nil {
			return types.DefaultSettings(), err
		}
	}

	return settings, nil
}

// SaveSettings stores each setting under its own key
func (s *Store) SaveSettings(ctx context.Context, settings types.Settings) error {
	values := map[string]bool{
		KeyShowMagnifyingGlass:  settings.ShowMagnifyingGlass,
		KeyNotificationsEnabled: settings.NotificationsEnabled,
		KeyAutoScan:             settings.AutoScan,
	}

	for key, value := range values {
		if err := s.Set(ctx, key, value); err != nil {
			return err
		}
	}

	return nil
}

// Draft returns the saved manual input draft, or "" when none exists
func (s *Store) Draft(ctx context.Context) (string, error) {
	var draft string

	if _, err := s.Get(ctx, KeyManualInputDraft, &draft); err != nil {
		return "", err
	}

	return draft, nil
}

// SaveDraft stores the manual input draft; an empty draft clears it
func (s *Store) SaveDraft(ctx context.Context, draft string) error {
	if draft == "" {
		return s.ClearDraft(ctx)
	}

	return s.Set(ctx, KeyManualInputDraft, draft)
}

// ClearDraft removes the manual input draft
func (s *Store) ClearDraft(ctx context.Context) error {
	return s.Delete(ctx, KeyManualInputDraft)
}

// SaveLinks records the links detected on a tab
func (s *Store) SaveLinks(ctx context.Context, tabID string, links types.StoredLinks) error {
	if tabID == "" {
		return ErrMissingTabID
	}

	return s.Set(ctx, LinksKey(tabID), links)
}

// Links returns the links stored for a tab and whether any were stored
func (s *Store) Links(ctx context.Context, tabID string) (types.StoredLinks, bool, error) {
	if tabID == "" {
		return types.StoredLinks{}, false, ErrMissingTabID
	}

	var links types.StoredLinks

	ok, err := s.Get(ctx, LinksKey(tabID), &links)

	return links, ok, err
}

// DeleteLinks removes the links stored for a tab
func (s *Store) DeleteLinks(ctx context.Context, tabID string) error {
	if tabID == "" {
		return ErrMissingTabID
	}

	return s.Delete(ctx, LinksKey(tabID))
}

// SweepLinks deletes stored links whose timestamp is before cutoff and
// returns how many entries were removed
func (s *Store) SweepLinks(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key LIKE ? ESCAPE '\' AND json_extract(value, '$.timestamp') < ?`,
		likePrefix(linksPrefix), cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("%w: sweep links: %v", ErrQueryFailed, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: sweep links: %v", ErrQueryFailed, err)
	}

	return int(n), nil
}
