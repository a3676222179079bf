// internal/api/respond.go
//
// JSON response helper.
//
// All handler output funnels through respond so every body is encoded the
// same way.  The mandatory headers (content type, CORS, API version) are
// applied by the middleware chain, not here.

package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// respond writes status and the JSON encoding of body.
func respond(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are gone; nothing to do but record it.
		zap.S().Warnw("response encode failed", "err", err)
	}
}
