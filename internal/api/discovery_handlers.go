package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/theopenlane/policypeek/internal/discovery"
	"github.com/theopenlane/policypeek/internal/report"
	"github.com/theopenlane/policypeek/internal/types"
)

// DiscoverResponse lists the policy pages found for a site.
type DiscoverResponse struct {
	Site  string             `json:"site" example:"https://example.com"`
	Links []types.PolicyLink `json:"links"`
	Count int                `json:"count"`
}

// handleDiscover crawls the homepage and well-known policy paths of site.
// A Markdown report is returned when requested.
func (h *Handler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if h.discoverer == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrDiscoveryDisabled.Error(), nil)
		return
	}

	site := strings.TrimSpace(r.URL.Query().Get("site"))
	if site == "" {
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrSiteRequired.Error(), nil)
		return
	}

	links, err := h.discoverer.Discover(r.Context(), site)
	if err != nil {
		switch {
		case errors.Is(err, discovery.ErrInvalidSite):
			respondError(w, http.StatusBadRequest, errCodeValidation, err.Error(), nil)
		case errors.Is(err, discovery.ErrHomepageFetchFailed):
			respondError(w, http.StatusBadGateway, errCodeUnavailable, err.Error(), nil)
		default:
			respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		}

		return
	}

	links = lo.Ternary(links == nil, []types.PolicyLink{}, links)

	if wantsMarkdown(r) {
		respondMarkdown(w, func(w io.Writer) error {
			return report.Links(w, site, links)
		})

		return
	}

	respondOK(w, DiscoverResponse{Site: site, Links: links, Count: len(links)})
}
