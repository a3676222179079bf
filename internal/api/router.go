// internal/api/router.go
//
// GadgetCloud Forms – HTTP surface.
//
// Context
//   Three operations, routed through chi:
//
//     GET  /health  – liveness, version, timestamp
//     GET  /info    – API identity and allowed clients
//     POST /forms   – the submission pipeline
//
//   Everything else answers 404 `{"error": "Endpoint not found"}`.  The
//   middleware chain applies the mandatory headers, panic recovery, and
//   request-metadata enrichment to every route, so even the 404 carries
//   the API-version header.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/middleware"
	"github.com/gadgetcloud-io/forms-service/internal/requestinfo"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// Handler bundles the route dependencies.
type Handler struct {
	config   func() *config.Config
	pipeline *submission.Pipeline
}

// NewHandler builds the API handler.  cfg is a snapshot accessor so reloads
// apply without restarting the server.
func NewHandler(cfg func() *config.Config, pipe *submission.Pipeline) *Handler {
	return &Handler{config: cfg, pipeline: pipe}
}

// Router assembles the chi route tree with the full middleware chain.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.APIHeaders(h.config().Service.APIVersion))
	r.Use(requestinfo.Enrich)

	r.Get("/health", h.health)
	r.Get("/info", h.info)
	r.Post("/forms", h.submitForm)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
	})

	return r
}
