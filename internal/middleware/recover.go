// internal/middleware/recover.go
//
// Panic-recovery middleware.
//
// Any fault that escapes a handler is converted to a generic JSON 500
// with a best-effort message string; raw stack details never reach the
// caller.  The panic is logged with its stack for operators.

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Recover wraps next and converts panics into JSON 500 responses.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			zap.S().Errorw("handler panic",
				"path", r.URL.Path, "panic", rec, zap.Stack("stack"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "Internal server error",
				"message": fmt.Sprint(rec),
			})
		}()
		next.ServeHTTP(w, r)
	})
}
