// internal/api/handlers.go
//
// Route handlers for the three API operations.
//
// Context
//   /health and /info read straight from the config snapshot.  /forms
//   bounds the body read at the configured payload ceiling (one byte of
//   headroom so the size gate still fires, with the declared
//   Content-Length as the reported figure), hands the raw bytes to the
//   pipeline, and maps the outcome to the response contract.
//   Bot-classified requests are indistinguishable from real successes on
//   the wire.
//
//------------------------------------------------------------------------------

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gadgetcloud-io/forms-service/internal/requestinfo"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// -----------------------------------------------------------------------------
// GET /health
// -----------------------------------------------------------------------------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	cfg := h.config()
	respond(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   cfg.Service.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------
// GET /info
// -----------------------------------------------------------------------------

func (h *Handler) info(w http.ResponseWriter, _ *http.Request) {
	cfg := h.config()
	respond(w, http.StatusOK, map[string]any{
		"name":               cfg.Service.Name,
		"version":            cfg.Service.Version,
		"api_version":        cfg.Service.APIVersion,
		"supported_versions": cfg.Service.SupportedVersions,
		"allowed_clients":    cfg.AllowedClients,
		"buildTime":          cfg.Service.BuildTime,
	})
}

// -----------------------------------------------------------------------------
// POST /forms
// -----------------------------------------------------------------------------

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	cfg := h.config()

	// Read at most maxPayload+1 bytes; the extra byte lets the size gate
	// fire on oversize bodies without an unbounded read.  The declared
	// Content-Length, when larger, is what the rejection message echoes.
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(cfg.Security.MaxPayloadSize)+1))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON in request body",
		})
		return
	}
	size := len(body)
	if cl := r.ContentLength; cl > int64(size) {
		size = int(cl)
	}

	src := submission.Source{UserAgent: userAgent(r)}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		src.IP = info.SourceIP()
	}

	outcome, rej := h.pipeline.Process(r.Context(), body, size, src)
	if rej != nil {
		payload := map[string]any{"error": rej.Message}
		if len(rej.Details) > 0 {
			details := make([]string, 0, len(rej.Details))
			for _, f := range rej.Details {
				details = append(details, f.Message)
			}
			payload["details"] = details
		}
		respond(w, rej.HTTPStatus(), payload)
		return
	}

	sub := outcome.Submission
	if !outcome.Persisted {
		// Disguised bot success: same shape and status as the real thing.
		respond(w, http.StatusCreated, map[string]any{
			"submissionId": sub.SubmissionID,
			"status":       submission.StatusReceived,
			"message":      "Form submitted successfully",
		})
		return
	}

	respond(w, http.StatusCreated, map[string]any{
		"submissionId": sub.SubmissionID,
		"timestamp":    sub.TimestampISO,
		"client":       sub.Client,
		"type":         sub.FormType,
		"status":       sub.Status,
		"message":      "Form submitted successfully",
	})
}

// userAgent mirrors the stored default for an absent header.
func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown"
}
