// internal/validate/field.go
//
// GadgetCloud Forms – field-level validation.
//
// Context
//   Each submitted field is checked against a FieldConstraint drawn from the
//   global constraint table in configuration.  Constraints carry a type
//   (email, phone, text, object) plus optional type-specific parameters.
//   Validation is a pure function of (name, value, constraint); failures are
//   typed Reason values, never bare strings, so callers can branch on kind
//   while templates and API responses use the Message field.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package validate

import (
	"fmt"
	"regexp"
)

// -----------------------------------------------------------------------------
// Failure model
// -----------------------------------------------------------------------------

// Reason enumerates the kinds of field-validation failure.
type Reason string

const (
	MissingRequired Reason = "missing_required"
	InvalidFormat   Reason = "invalid_format"
	TooShort        Reason = "too_short"
	TooLong         Reason = "too_long"
	WrongType       Reason = "wrong_type"
)

// Failure describes a single field-validation failure.  Message is the
// user-facing wire string; Reason lets callers handle kinds exhaustively.
type Failure struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// -----------------------------------------------------------------------------
// Constraint model
// -----------------------------------------------------------------------------

// FieldConstraint is one entry of the global constraint table.  Zero values
// mean "not specified": MinLength/MaxLength of 0 disable the bound, an empty
// Pattern disables regex matching.
type FieldConstraint struct {
	Required  bool   `koanf:"required"  json:"required"`
	Type      string `koanf:"type"      json:"type"` // email | phone | text | object
	Pattern   string `koanf:"pattern"   json:"pattern,omitempty"`
	MinLength int    `koanf:"minLength" json:"minLength,omitempty"`
	MaxLength int    `koanf:"maxLength" json:"maxLength,omitempty"`
}

// -----------------------------------------------------------------------------
// Patterns
// -----------------------------------------------------------------------------

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
)

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// ValidateField checks value against c and returns nil on success.  Absent or
// empty values fail only when the constraint marks the field required;
// otherwise they pass without further checks.
func ValidateField(name string, value any, c FieldConstraint) *Failure {
	if isEmpty(value) {
		if c.Required {
			return &Failure{name, MissingRequired, name + " is required"}
		}
		return nil
	}

	switch c.Type {
	case "email":
		if !emailRe.MatchString(stringify(value)) {
			return &Failure{name, InvalidFormat, name + " must be a valid email address"}
		}

	case "phone":
		if !phoneRe.MatchString(stringify(value)) {
			return &Failure{name, InvalidFormat, name + " must be a valid phone number"}
		}

	case "text", "":
		s := stringify(value)
		if c.Pattern != "" && !prefixMatch(c.Pattern, s) {
			return &Failure{name, InvalidFormat, name + " format is invalid"}
		}
		if c.MinLength > 0 && len(s) < c.MinLength {
			return &Failure{name, TooShort,
				fmt.Sprintf("%s must be at least %d characters", name, c.MinLength)}
		}
		if c.MaxLength > 0 && len(s) > c.MaxLength {
			return &Failure{name, TooLong,
				fmt.Sprintf("%s must not exceed %d characters", name, c.MaxLength)}
		}

	case "object":
		if _, ok := value.(map[string]any); !ok {
			return &Failure{name, WrongType, name + " must be an object"}
		}
	}

	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// isEmpty reports whether a submitted value counts as absent: nil, "", false,
// numeric zero, or an empty array or map.  JSON decoding yields only these
// shapes.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// stringify renders any submitted value in its textual form.  JSON numbers
// arrive as float64; %v prints integers without a trailing ".0" only when the
// fraction is zero-free, so integral floats are special-cased.
func stringify(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// prefixMatch applies pattern at the start of s, mirroring a match that is
// anchored on the left but not the right.  Invalid patterns reject the value.
func prefixMatch(pattern, s string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
