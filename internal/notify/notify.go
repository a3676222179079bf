// internal/notify/notify.go
//
// GadgetCloud Forms – best-effort notification fan-out.
//
// Context
//   After a submission is persisted, three independent actions fire: the
//   admin notification email, the optional auto-reply, and the optional
//   webhook callback.  None of their outcomes affects the others or the
//   HTTP response, so they run concurrently in an errgroup and every
//   failure is caught here, logged, and counted.  Fanout itself never
//   returns an error.
//
//   The pipeline detaches Fanout from the request, so each action gets
//   its own deadline here; a stalled SMTP relay is cut off instead of
//   pinning a goroutine indefinitely.
//
//------------------------------------------------------------------------------

package notify

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/metrics"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// Notifier owns the outbound transports for the fan-out actions.
type Notifier struct {
	mailer Mailer
	http   *http.Client
}

// New constructs a Notifier.  httpClient may be nil; the webhook path then
// uses a dedicated client whose per-call timeout is set via context.
func New(mailer Mailer, httpClient *http.Client) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Notifier{mailer: mailer, http: httpClient}
}

// Fanout runs the three actions concurrently.  Each failure is isolated:
// logged, counted, and swallowed.
func (n *Notifier) Fanout(ctx context.Context, cfg *config.Config, sub *submission.Submission) {
	var g errgroup.Group

	g.Go(func() error {
		n.run(ctx, cfg, sub, "admin_email", n.sendAdminNotification)
		return nil
	})
	g.Go(func() error {
		n.run(ctx, cfg, sub, "auto_reply", n.sendAutoReply)
		return nil
	})
	g.Go(func() error {
		n.run(ctx, cfg, sub, "webhook", n.callWebhook)
		return nil
	})

	_ = g.Wait()
}

// actionTimeout caps one fan-out action.  The webhook path holds its own
// tighter bound; the mail paths rely on this one.
const actionTimeout = 30 * time.Second

// run executes one action under its own deadline and absorbs its failure.
func (n *Notifier) run(
	ctx context.Context,
	cfg *config.Config,
	sub *submission.Submission,
	name string,
	fn func(context.Context, *config.Config, *submission.Submission) error,
) {
	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	if err := fn(ctx, cfg, sub); err != nil {
		metrics.NotifyFailures.WithLabelValues(name).Inc()
		zap.S().Warnw("notification action failed",
			"action", name,
			"submission_id", sub.SubmissionID,
			"err", err,
		)
	}
}
