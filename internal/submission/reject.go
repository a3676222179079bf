// internal/submission/reject.go
//
// GadgetCloud Forms – discriminated pipeline failure.
//
// Context
//   Every pre-persistence gate can short-circuit the pipeline with a
//   distinct, HTTP-mappable failure.  Kinds are an enumerable type rather
//   than matched strings, so the API layer handles them exhaustively and a
//   new gate cannot silently fall through to a generic 500.
//
//------------------------------------------------------------------------------

package submission

import (
	"net/http"

	"github.com/gadgetcloud-io/forms-service/internal/validate"
)

// Kind enumerates the pipeline's rejection categories.
type Kind string

const (
	PayloadTooLarge    Kind = "payload_too_large"
	InvalidJSON        Kind = "invalid_json"
	UnknownClient      Kind = "unknown_client"
	FormTypeNotAllowed Kind = "form_type_not_allowed"
	Throttled          Kind = "throttled"
	ValidationFailed   Kind = "validation_failed"
	Internal           Kind = "internal"
)

// Reject describes why a submission was refused before persistence.
// Details is populated only for ValidationFailed.
type Reject struct {
	Kind    Kind
	Message string
	Details []validate.Failure
}

// Error satisfies the error interface so a Reject can travel through
// error-returning call sites.
func (r *Reject) Error() string { return r.Message }

// HTTPStatus maps the rejection kind to its response status.
func (r *Reject) HTTPStatus() int {
	switch r.Kind {
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case Throttled:
		return http.StatusTooManyRequests
	case Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
