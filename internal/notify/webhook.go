// internal/notify/webhook.go
//
// GadgetCloud Forms – webhook callback.
//
// Context
//   Clients may register a webhook URL; after an accepted submission the
//   service POSTs a JSON payload there.  The call is best-effort with a
//   fixed 10-second ceiling, so a slow endpoint is a logged failure rather
//   than a stalled handler.  A missing URL is a silent skip, not an error.
//
//------------------------------------------------------------------------------

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// webhookTimeout is the fixed upper bound for the callback round trip.
const webhookTimeout = 10 * time.Second

// webhookPayload is the document POSTed to the client's endpoint.
type webhookPayload struct {
	SubmissionID string         `json:"submissionId"`
	Client       string         `json:"client"`
	FormType     string         `json:"formType"`
	Data         map[string]any `json:"data"`
	Timestamp    string         `json:"timestamp"`
}

// callWebhook POSTs the submission to the client's webhook URL, when set.
func (n *Notifier) callWebhook(ctx context.Context, cfg *config.Config, sub *submission.Submission) error {
	client, ok := cfg.Clients[sub.Client]
	if !ok || client.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(webhookPayload{
		SubmissionID: sub.SubmissionID,
		Client:       sub.Client,
		FormType:     sub.FormType,
		Data:         sub.FormData,
		Timestamp:    sub.TimestampISO,
	})
	if err != nil {
		return fmt.Errorf("notify: webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		client.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook post: %w", err)
	}
	defer resp.Body.Close()

	zap.S().Infow("webhook called",
		"url", client.WebhookURL,
		"status", resp.StatusCode,
		"submission_id", sub.SubmissionID,
	)
	return nil
}
