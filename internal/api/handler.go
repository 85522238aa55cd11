// Package api provides the HTTP surface of PolicyPeek: the popup, analysis
// and options views plus the endpoints that load pages into tabs.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/analysis"
	"github.com/theopenlane/policypeek/internal/messaging"
	"github.com/theopenlane/policypeek/internal/page"
	"github.com/theopenlane/policypeek/internal/types"
)

// Store is the durable state the handlers read and write
type Store interface {
	Settings(ctx context.Context) (types.Settings, error)
	SaveSettings(ctx context.Context, settings types.Settings) error
	Draft(ctx context.Context) (string, error)
	SaveDraft(ctx context.Context, draft string) error
	ClearDraft(ctx context.Context) error
	Links(ctx context.Context, tabID string) (types.StoredLinks, bool, error)
	DeleteLinks(ctx context.Context, tabID string) error
}

// Discoverer finds the policy pages of a whole site
type Discoverer interface {
	Discover(ctx context.Context, siteURL string) ([]types.PolicyLink, error)
}

// Handler manages API endpoints
type Handler struct {
	bus        *messaging.Bus
	analysis   *analysis.Controller
	tabs       *page.Registry
	store      Store
	models     *ai.Manager
	discoverer Discoverer
	now        func() time.Time
}

// NewHandler wires the handlers to the running contexts. A nil discoverer
// disables site discovery.
func NewHandler(bus *messaging.Bus, controller *analysis.Controller, tabs *page.Registry, store Store, models *ai.Manager, discoverer Discoverer) *Handler {
	return &Handler{
		bus:        bus,
		analysis:   controller,
		tabs:       tabs,
		store:      store,
		models:     models,
		discoverer: discoverer,
		now:        time.Now,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string          `json:"status" example:"healthy"`
	Service      string          `json:"service" example:"policypeek"`
	Timestamp    string          `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Availability ai.Availability `json:"availability" example:"ready"`
}

// handleHealth returns service health status and the current model availability
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		Service:      "policypeek",
		Timestamp:    h.now().UTC().Format(time.RFC3339),
		Availability: h.models.CheckAvailability(r.Context()),
	})
}
