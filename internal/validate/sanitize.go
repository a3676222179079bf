// internal/validate/sanitize.go
//
// GadgetCloud Forms – input sanitization.
//
// Context
//   String field values are escaped and truncated before persistence or
//   notification.  Only the four characters that open XSS vectors in the
//   notification emails are rewritten; everything else passes through, so
//   sanitization is idempotent on already-clean input.
//
//   Escaping runs before truncation.  A cut at the length limit may land
//   inside a multi-character entity; that ordering is long-standing wire
//   behavior and is kept as-is.
//
//------------------------------------------------------------------------------

package validate

import "strings"

// DefaultMaxSanitizedLen caps sanitized values when callers pass no limit.
const DefaultMaxSanitizedLen = 1000

var sanitizer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Sanitize escapes unsafe characters in value and truncates the result to
// maxLen bytes.  Non-string input is stringified and truncated without
// escaping.  maxLen <= 0 selects DefaultMaxSanitizedLen.
func Sanitize(value any, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxSanitizedLen
	}

	s, ok := value.(string)
	if !ok {
		return truncate(stringify(value), maxLen)
	}
	return truncate(sanitizer.Replace(s), maxLen)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
