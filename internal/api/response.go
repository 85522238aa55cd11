package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	errCodeInvalidRequest = "invalid_request"
	errCodeValidation     = "validation_failed"
	errCodeInternal       = "internal_error"
	errCodeUnavailable    = "service_unavailable"
	errCodeNotFound       = "not_found"
	errCodeConflict       = "conflict"
)

// Error represents a normalized API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// decodeJSONBody decodes a request body with strict unknown-field and trailing-token checks.
func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); err != io.EOF {
		return ErrMultipleJSONObjects
	}

	return nil
}

// writeJSON writes a JSON response and logs serialization failures.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", status).Msg("failed to encode JSON response")
	}
}

// respondOK writes a successful envelope around data.
func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// respondError writes a failed envelope. data, when set, carries the state
// the client should render alongside the error.
func respondError(w http.ResponseWriter, status int, code, message string, data any) {
	writeJSON(w, status, Response{
		Success: false,
		Data:    data,
		Error:   &Error{Code: code, Message: message},
	})
}

const markdownContentType = "text/markdown; charset=utf-8"

// wantsMarkdown reports whether the client asked for a Markdown rendering,
// either with format=markdown or an Accept header naming text/markdown
func wantsMarkdown(r *http.Request) bool {
	if r.URL.Query().Get("format") == "markdown" {
		return true
	}

	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		if mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(accept)); err == nil && mediaType == "text/markdown" {
			return true
		}
	}

	return false
}

// respondMarkdown renders into a buffer first so a rendering failure can
// still be reported as a JSON error
func respondMarkdown(w http.ResponseWriter, render func(io.Writer) error) {
	var buf bytes.Buffer

	if err := render(&buf); err != nil {
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", markdownContentType)
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("failed to write markdown response")
	}
}
