package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultMaxBodyBytes caps request bodies; pages are posted whole
	DefaultMaxBodyBytes int64 = 5 << 20
	// DefaultRequestTimeout bounds a request, including model downloads
	DefaultRequestTimeout = 10 * time.Minute
	compressionLevel      = 5
)

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(h *Handler, maxBodyBytes int64, timeout time.Duration) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(compressionLevel))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/", h.handleGetAnalysis)
			r.Post("/", h.handleAnalyzeText)
			r.Delete("/", h.handleResetAnalysis)
			r.Post("/deep", h.handleDeepAnalysis)
			r.Get("/report", h.handleAnalysisReport)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Get("/status", h.handleAIStatus)
			r.Post("/download", h.handleDownloadModel)
			r.Post("/skip", h.handleSkipDownload)
		})

		r.Get("/draft", h.handleGetDraft)
		r.Put("/draft", h.handlePutDraft)
		r.Delete("/draft", h.handleDeleteDraft)

		r.Get("/discover", h.handleDiscover)

		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handlePutSettings)

		r.Route("/tabs/{tabID}", func(r chi.Router) {
			r.Delete("/", h.handleCloseTab)
			r.Post("/page", h.handleOpenPage)
			r.Post("/mutations", h.handleMutation)
			r.Get("/links", h.handleLinks)
			r.Post("/rescan", h.handleRescan)
			r.Get("/stored", h.handleStoredLinks)
		})
	})

	return r
}
