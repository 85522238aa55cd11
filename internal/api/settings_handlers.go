package api

import (
	"net/http"

	"github.com/theopenlane/policypeek/internal/types"
)

// SettingsRequest updates any subset of the settings; omitted fields keep
// their stored value.
type SettingsRequest struct {
	ShowMagnifyingGlass  *bool `json:"showMagnifyingGlass,omitempty"`
	NotificationsEnabled *bool `json:"notificationsEnabled,omitempty"`
	AutoScan             *bool `json:"autoScan,omitempty"`
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	respondOK(w, settings)
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error(), nil)
		return
	}

	settings, err := h.store.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	settings = req.apply(settings)

	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	h.tabs.UpdateSettings(settings)

	respondOK(w, settings)
}

func (req SettingsRequest) apply(s types.Settings) types.Settings {
	if req.ShowMagnifyingGlass != nil {
		s.ShowMagnifyingGlass = *req.ShowMagnifyingGlass
	}

	if req.NotificationsEnabled != nil {
		s.NotificationsEnabled = *req.NotificationsEnabled
	}

	if req.AutoScan != nil {
		s.AutoScan = *req.AutoScan
	}

	return s
}
