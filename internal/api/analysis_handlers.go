package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/theopenlane/policypeek/internal/ai"
	"github.com/theopenlane/policypeek/internal/analysis"
	"github.com/theopenlane/policypeek/internal/report"
)

// AnalyzeTextRequest is a manual analysis of pasted policy text.
type AnalyzeTextRequest struct {
	Text string `json:"text" description:"Policy text to analyze"`
}

// DraftRequest replaces the saved manual input draft.
type DraftRequest struct {
	Draft string `json:"draft"`
}

// DraftResponse carries the saved manual input draft.
type DraftResponse struct {
	Draft string `json:"draft"`
}

// AIStatusResponse combines the fresh host availability with the session state.
type AIStatusResponse struct {
	Availability ai.Availability `json:"availability"`
	Status       ai.Status       `json:"status"`
}

// handleGetAnalysis opens the analysis view. With a url query parameter the
// policy is analyzed automatically; otherwise the current view is returned.
func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	title := r.URL.Query().Get("title")

	if pageURL != "" || r.URL.Query().Has("init") {
		respondOK(w, h.analysis.Init(r.Context(), pageURL, title))
		return
	}

	respondOK(w, h.analysis.View(r.Context()))
}

// handleAnalyzeText runs a manual analysis as a user action
func (h *Handler) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeTextRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error(), nil)
		return
	}

	view, err := h.analysis.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		respondError(w, http.StatusBadRequest, errCodeValidation, err.Error(), view)
		return
	}

	respondOK(w, view)
}

// handleDeepAnalysis re-analyzes the current text in detail
func (h *Handler) handleDeepAnalysis(w http.ResponseWriter, r *http.Request) {
	view, err := h.analysis.Deep(r.Context())
	if err != nil {
		status, code := http.StatusInternalServerError, errCodeInternal

		switch {
		case errors.Is(err, analysis.ErrNoCurrentText):
			status, code = http.StatusConflict, errCodeConflict
		case errors.Is(err, analysis.ErrDeepAnalysisRequiresAI):
			status, code = http.StatusServiceUnavailable, errCodeUnavailable
		}

		respondError(w, status, code, err.Error(), view)
		return
	}

	respondOK(w, view)
}

// handleResetAnalysis clears the current text and draft
func (h *Handler) handleResetAnalysis(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.analysis.Reset(r.Context()))
}

// handleAnalysisReport renders the current result as Markdown
func (h *Handler) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	view := h.analysis.View(r.Context())
	if view.Result == nil {
		respondError(w, http.StatusNotFound, errCodeNotFound, ErrNoResult.Error(), nil)
		return
	}

	respondMarkdown(w, func(w io.Writer) error {
		return report.Analysis(w, *view.Result)
	})
}

// handleAIStatus reports the model availability as seen by the background
func (h *Handler) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	resp := AIStatusResponse{
		Availability: ai.AvailabilityUnavailable,
		Status:       h.models.Status(),
	}

	caps, err := h.bus.AICapabilities(r.Context())
	if err == nil {
		resp.Availability = ai.ParseAvailability(caps.Availability)
	}

	respondOK(w, resp)
}

// handleDownloadModel is the explicit model download action
func (h *Handler) handleDownloadModel(w http.ResponseWriter, r *http.Request) {
	view := h.analysis.DownloadModel(r.Context())
	if view.Error != "" {
		respondError(w, http.StatusBadGateway, errCodeUnavailable, view.Error, view)
		return
	}

	respondOK(w, view)
}

// handleSkipDownload declines the model download
func (h *Handler) handleSkipDownload(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.analysis.SkipDownload(r.Context()))
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.store.Draft(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	respondOK(w, DraftResponse{Draft: draft})
}

func (h *Handler) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error(), nil)
		return
	}

	if err := h.analysis.SaveDraft(r.Context(), req.Draft); err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	respondOK(w, DraftResponse(req))
}

func (h *Handler) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearDraft(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	respondOK(w, DraftResponse{})
}
