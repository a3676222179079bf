// internal/submission/pipeline.go
//
// GadgetCloud Forms – submission-processing pipeline.
//
// Context
//   One Process call runs a submission through the fixed gate order:
//
//     size → parse → honeypot → client → form type → rate limit →
//     form-data validation → sanitization → persist → notify → outcome
//
//   Each gate before persistence short-circuits with a distinct Reject.
//   Honeypot hits exit early with a disguised success: the bot sees a
//   fresh submission id and status "received", but nothing is persisted
//   and no notification fires.  After persistence nothing can change the
//   accepted outcome: the fan-out runs on its own goroutine with a
//   cancel-free context, so a stalled relay can neither delay nor drop
//   the response, and notification failures are absorbed inside Fanout.
//
//   Collaborators are injected at construction, never ambient: the
//   pipeline is a pure orchestration over its own inputs plus the config
//   snapshot taken once at the top of Process.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package submission

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/metrics"
	"github.com/gadgetcloud-io/forms-service/internal/ratelimit"
	"github.com/gadgetcloud-io/forms-service/internal/validate"
)

// -----------------------------------------------------------------------------
// Collaborator contracts
// -----------------------------------------------------------------------------

// Store is the durable write the pipeline needs (see internal/store).
type Store interface {
	Put(ctx context.Context, sub *Submission) error
}

// Notifier fans out the post-persistence actions (see internal/notify).
// Implementations absorb their own failures and bound their own run time;
// the pipeline never waits on them.
type Notifier interface {
	Fanout(ctx context.Context, cfg *config.Config, sub *Submission)
}

// -----------------------------------------------------------------------------
// Pipeline
// -----------------------------------------------------------------------------

// Pipeline orchestrates gate checks, validation, persistence, and fan-out.
type Pipeline struct {
	config  func() *config.Config
	store   Store
	notify  Notifier
	limiter ratelimit.Limiter
	log     *zap.SugaredLogger
}

// NewPipeline wires the pipeline's collaborators.  cfg is a snapshot
// accessor so hot reloads apply to subsequent requests without locks.
func NewPipeline(
	cfg func() *config.Config,
	st Store,
	nt Notifier,
	lim ratelimit.Limiter,
	log *zap.SugaredLogger,
) *Pipeline {
	return &Pipeline{config: cfg, store: st, notify: nt, limiter: lim, log: log}
}

// Outcome is the accepted result of Process.  Persisted is false only for
// disguised bot successes.
type Outcome struct {
	Submission *Submission
	Persisted  bool
}

// request mirrors the accepted body shape.  `type`/`formType` and
// `data`/`formData` are interchangeable on the wire.
type request struct {
	Client  string         `json:"client"`
	Type    string         `json:"type"`
	AltType string         `json:"formType"`
	Data    map[string]any `json:"data"`
	AltData map[string]any `json:"formData"`
}

// Process runs one submission through every gate.  size is the full
// payload size as known to the caller; it is at least len(body), and
// larger when the transport truncated its read.  Exactly one of the
// returns is non-nil.
func (p *Pipeline) Process(ctx context.Context, body []byte, size int, src Source) (*Outcome, *Reject) {
	cfg := p.config()
	if size < len(body) {
		size = len(body)
	}

	// ── 1.  Payload size, before any parse work ─────────────────────────
	if msg := validate.CheckPayloadSize(size, cfg.Security.MaxPayloadSize); msg != "" {
		return nil, p.reject(PayloadTooLarge, msg)
	}

	// ── 2.  Parse ───────────────────────────────────────────────────────
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, p.reject(InvalidJSON, "Invalid JSON in request body")
	}

	client := req.Client
	if client == "" {
		client = "noclient"
	}
	formType := req.Type
	if formType == "" {
		formType = req.AltType
	}
	formData := req.Data
	if formData == nil {
		formData = req.AltData
	}
	if formData == nil {
		formData = map[string]any{}
	}

	// ── 3.  Honeypot: answer bots with a disguised success ──────────────
	if validate.CheckHoneypot(formData, cfg.Security.HoneypotField) {
		metrics.BotsTrapped.Inc()
		p.log.Infow("bot detected", "source_ip", src.IP, "client", client)
		return &Outcome{
			Submission: newSubmission(client, formType, nil, src),
			Persisted:  false,
		}, nil
	}

	// ── 4.  Client whitelist ────────────────────────────────────────────
	if msg := validate.CheckClient(client, cfg.AllowedClients); msg != "" {
		return nil, p.reject(UnknownClient, msg)
	}

	// ── 5.  Form-type whitelist (per client, never from the rules table) ─
	if msg := validate.CheckFormType(formType, client, cfg.AllowedFormTypes); msg != "" {
		return nil, p.reject(FormTypeNotAllowed, msg)
	}

	// ── 6.  Rate limit (placeholder policy, see internal/ratelimit) ─────
	if cfg.RateLimiting.Enabled {
		if err := p.limiter.Allow(ctx, src.IP, client); err != nil {
			return nil, p.reject(Throttled, err.Error())
		}
	}

	// ── 7.  Field validation, all failures collected ────────────────────
	failures := validate.ValidateFormData(
		formData,
		cfg.ValidationRules[formType],
		cfg.FieldConstraints,
	)
	if len(failures) > 0 {
		r := p.reject(ValidationFailed, "Validation failed")
		r.Details = failures
		return nil, r
	}

	// ── 8.  Sanitize string values; others pass through untouched ───────
	sanitized := make(map[string]any, len(formData))
	for key, value := range formData {
		if _, ok := value.(string); ok {
			sanitized[key] = validate.Sanitize(value, validate.DefaultMaxSanitizedLen)
		} else {
			sanitized[key] = value
		}
	}

	// ── 9.  Persist exactly once ────────────────────────────────────────
	sub := newSubmission(client, formType, sanitized, src)
	if err := p.store.Put(ctx, sub); err != nil {
		p.log.Errorw("submission store failed",
			"submission_id", sub.SubmissionID, "err", err)
		return nil, p.reject(Internal, "Failed to submit form")
	}
	metrics.SubmissionsAccepted.Inc()
	p.log.Infow("submission stored",
		"submission_id", sub.SubmissionID,
		"client", client,
		"form_type", formType,
	)

	// ── 10. Best-effort fan-out, off the request clock ──────────────────
	// The cancel-free context survives the caller's deadline; Fanout
	// bounds each action itself.
	go p.notify.Fanout(context.WithoutCancel(ctx), cfg, sub)

	return &Outcome{Submission: sub, Persisted: true}, nil
}

// reject counts and builds one rejection.
func (p *Pipeline) reject(kind Kind, msg string) *Reject {
	metrics.SubmissionsRejected.WithLabelValues(string(kind)).Inc()
	return &Reject{Kind: kind, Message: msg}
}
