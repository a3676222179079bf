// internal/ratelimit/ratelimit.go
//
// GadgetCloud Forms – rate-limiting seam.
//
// Context
//   The submission pipeline consults a Limiter between the authorization
//   gates and field validation.  The production algorithm is intentionally
//   unimplemented: Allower admits everything, preserving current behavior
//   while keeping the hook point in place so a real per-IP limiter can be
//   injected without touching the pipeline.
//
//   Config carries rate_limiting.enabled and max_requests_per_ip for that
//   future implementation.
//
//------------------------------------------------------------------------------

package ratelimit

import "context"

// Limiter decides whether a submission from sourceIP on behalf of client may
// proceed.  A non-nil error means the caller should respond 429.
type Limiter interface {
	Allow(ctx context.Context, sourceIP, client string) error
}

// Allower is the always-allow placeholder Limiter.
type Allower struct{}

// Allow admits every request.
func (Allower) Allow(context.Context, string, string) error { return nil }
