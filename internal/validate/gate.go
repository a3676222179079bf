// internal/validate/gate.go
//
// GadgetCloud Forms – pre-validation authorization gates.
//
// Context
//   Before field-level validation runs, a submission must clear four cheap
//   checks: raw payload size, honeypot bot trap, client whitelist, and
//   form-type-per-client whitelist.  Each gate is a pure function over its
//   inputs; the pipeline decides ordering and response policy.
//
//   The form-type set is read from per-client configuration, never from the
//   static validation-rules table, so disabling a form type for one client
//   cannot be bypassed by a rule entry that exists for another.
//
//------------------------------------------------------------------------------

package validate

import "fmt"

// -----------------------------------------------------------------------------
// Payload size
// -----------------------------------------------------------------------------

// CheckPayloadSize returns an error message when the payload exceeds
// maxSize bytes, or "" when the size is acceptable.  size is the caller's
// best figure for the full payload; HTTP handlers pass the declared
// Content-Length when it exceeds the bytes actually read, so the message
// echoes what the client sent rather than the server's read cap.
func CheckPayloadSize(size, maxSize int) string {
	if size > maxSize {
		return fmt.Sprintf("Payload size (%d bytes) exceeds maximum allowed (%d bytes)",
			size, maxSize)
	}
	return ""
}

// -----------------------------------------------------------------------------
// Honeypot
// -----------------------------------------------------------------------------

// CheckHoneypot reports whether the hidden trap field is present and truthy
// in the submitted data.  Legitimate browsers never populate it; a truthy
// value classifies the submission as a bot.  Falsy values (missing, "",
// false, 0) are not trapped.
func CheckHoneypot(formData map[string]any, honeypotField string) bool {
	v, present := formData[honeypotField]
	return present && !isEmpty(v)
}

// -----------------------------------------------------------------------------
// Client whitelist
// -----------------------------------------------------------------------------

// CheckClient verifies that client is a member of the allowed set.  An empty
// client is rejected outright; callers substitute the "noclient" sentinel
// before this check when the field was omitted.
func CheckClient(client string, allowed []string) string {
	if client == "" {
		return "Client parameter is required"
	}
	for _, a := range allowed {
		if a == client {
			return ""
		}
	}
	return "Invalid client: " + client
}

// -----------------------------------------------------------------------------
// Form-type whitelist
// -----------------------------------------------------------------------------

// CheckFormType verifies that formType is configured for client.  The lookup
// never falls back to a default entry: authorization uses the client's own
// set or fails.
func CheckFormType(formType, client string, allowedPerClient map[string][]string) string {
	if formType == "" {
		return "Form type is required"
	}
	types, ok := allowedPerClient[client]
	if !ok {
		return "No form types configured for client: " + client
	}
	for _, t := range types {
		if t == formType {
			return ""
		}
	}
	return fmt.Sprintf("Form type '%s' not allowed for client '%s'", formType, client)
}
