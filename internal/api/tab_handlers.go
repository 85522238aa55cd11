package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/theopenlane/policypeek/internal/page"
	"github.com/theopenlane/policypeek/internal/report"
	"github.com/theopenlane/policypeek/internal/types"
)

// OpenPageRequest loads a page into a tab.
type OpenPageRequest struct {
	URL  string `json:"url" example:"https://example.com" description:"Address of the page"`
	HTML string `json:"html" description:"Full page HTML"`
}

// MutationRequest inserts an HTML fragment into an open page.
type MutationRequest struct {
	Selector string `json:"selector,omitempty" example:"footer" description:"Element the fragment is appended to, body when empty"`
	HTML     string `json:"html"`
}

// PageResponse describes an open page context.
type PageResponse struct {
	TabID  string             `json:"tab_id"`
	URL    string             `json:"url"`
	Title  string             `json:"title,omitempty"`
	Links  []types.PolicyLink `json:"links"`
	Badges []page.Badge       `json:"badges"`
}

// MutationResponse reports how many anchors a mutation added.
type MutationResponse struct {
	AddedAnchors int  `json:"added_anchors"`
	RescanQueued bool `json:"rescan_queued"`
}

// LinksResponse lists the policy links of a tab.
type LinksResponse struct {
	Links []types.PolicyLink `json:"links"`
	Count int                `json:"count"`
	// Source is "page" when the open page answered and "stored" otherwise
	Source string `json:"source"`
}

// RescanResponse reports the links found by a rescan.
type RescanResponse struct {
	Count int `json:"count"`
}

func (h *Handler) handleOpenPage(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	var req OpenPageRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error(), nil)
		return
	}

	switch {
	case strings.TrimSpace(req.URL) == "":
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrPageURLRequired.Error(), nil)
		return
	case strings.TrimSpace(req.HTML) == "":
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrHTMLRequired.Error(), nil)
		return
	}

	// the page context outlives this request
	pc, err := h.tabs.Open(context.WithoutCancel(r.Context()), tabID, req.URL, strings.NewReader(req.HTML))
	if err != nil {
		respondError(w, http.StatusBadRequest, errCodeValidation, err.Error(), nil)
		return
	}

	respondOK(w, pageResponse(pc))
}

func (h *Handler) handleMutation(w http.ResponseWriter, r *http.Request) {
	pc, ok := h.tab(w, r)
	if !ok {
		return
	}

	var req MutationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error(), nil)
		return
	}

	if strings.TrimSpace(req.HTML) == "" {
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrHTMLRequired.Error(), nil)
		return
	}

	added, err := pc.Mutate(req.Selector, req.HTML)
	if err != nil {
		status := http.StatusInternalServerError
		code := errCodeInternal

		if errors.Is(err, page.ErrNoInsertionPoint) {
			status, code = http.StatusUnprocessableEntity, errCodeValidation
		}

		respondError(w, status, code, err.Error(), nil)
		return
	}

	respondOK(w, MutationResponse{AddedAnchors: added, RescanQueued: added > 0})
}

// handleLinks asks the tab for its links over the bus and falls back to the
// stored record when the page does not answer. kind filters by link kind;
// format=markdown renders a report.
func (h *Handler) handleLinks(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	resp := LinksResponse{Source: "page"}

	live, err := h.bus.PolicyLinks(r.Context(), tabID)
	if err == nil {
		resp.Links = live.Links
	} else {
		log.Debug().Err(err).Str("tab", tabID).Msg("page did not answer, using stored links")

		stored, found, serr := h.store.Links(r.Context(), tabID)
		if serr != nil {
			respondError(w, http.StatusInternalServerError, errCodeInternal, serr.Error(), nil)
			return
		}

		if !found {
			respondError(w, http.StatusNotFound, errCodeNotFound, page.ErrUnknownTab.Error(), nil)
			return
		}

		resp.Links, resp.Source = stored.Links, "stored"
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		resp.Links = lo.Filter(resp.Links, func(l types.PolicyLink, _ int) bool {
			return l.Kind == kind
		})
	}

	resp.Links = lo.Ternary(resp.Links == nil, []types.PolicyLink{}, resp.Links)
	resp.Count = len(resp.Links)

	if wantsMarkdown(r) {
		pageURL := ""
		if pc, err := h.tabs.Get(tabID); err == nil {
			pageURL = pc.Document().URL()
		}

		respondMarkdown(w, func(w io.Writer) error {
			return report.Links(w, pageURL, resp.Links)
		})

		return
	}

	respondOK(w, resp)
}

func (h *Handler) handleRescan(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	resp, err := h.bus.Rescan(r.Context(), tabID)
	if err != nil {
		respondError(w, http.StatusNotFound, errCodeNotFound, err.Error(), nil)
		return
	}

	if !resp.Success {
		respondError(w, http.StatusInternalServerError, errCodeInternal, "rescan failed", nil)
		return
	}

	respondOK(w, RescanResponse{Count: resp.Count})
}

func (h *Handler) handleStoredLinks(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	stored, found, err := h.store.Links(r.Context(), tabID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	if !found {
		respondError(w, http.StatusNotFound, errCodeNotFound, page.ErrUnknownTab.Error(), nil)
		return
	}

	respondOK(w, stored)
}

// handleCloseTab closes the page context and drops its stored links
func (h *Handler) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	closeErr := h.tabs.Close(tabID)

	if err := h.store.DeleteLinks(r.Context(), tabID); err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	if closeErr != nil {
		log.Debug().Err(closeErr).Str("tab", tabID).Msg("no open page for closed tab")
	}

	w.WriteHeader(http.StatusNoContent)
}

// tab resolves the tabID path parameter or writes a 404
func (h *Handler) tab(w http.ResponseWriter, r *http.Request) (*page.Context, bool) {
	pc, err := h.tabs.Get(chi.URLParam(r, "tabID"))
	if err != nil {
		respondError(w, http.StatusNotFound, errCodeNotFound, err.Error(), nil)
		return nil, false
	}

	return pc, true
}

func pageResponse(pc *page.Context) PageResponse {
	return PageResponse{
		TabID:  pc.TabID(),
		URL:    pc.Document().URL(),
		Title:  pc.Document().Title(),
		Links:  lo.Ternary(pc.Links() == nil, []types.PolicyLink{}, pc.Links()),
		Badges: lo.Ternary(pc.Badges() == nil, []page.Badge{}, pc.Badges()),
	}
}
