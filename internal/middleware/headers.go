// internal/middleware/headers.go
//
// Response-header middleware.
//
// Injects the headers every forms-API response must carry:
//
//   • Content-Type              –  application/json
//   • Access-Control-Allow-Origin – "*" (browser form posts come from
//     arbitrary client sites)
//   • X-API-Version             –  sourced from config at wrap time
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP so handlers that write a body
//   inherit them; a handler may still override Content-Type first.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// APIHeaders sets the mandatory response headers for every request.
func APIHeaders(apiVersion string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Type", "application/json")
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("X-API-Version", apiVersion)
			next.ServeHTTP(w, r)
		})
	}
}
