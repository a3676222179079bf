// internal/submission/submission.go
//
// GadgetCloud Forms – submission record.
//
// Context
//   A Submission is the immutable record built once every gate and every
//   validation check has passed.  It is persisted exactly once and then
//   handed, read-only, to the notification fan-out.  Status is always
//   "received" at creation; later workflow states belong to downstream
//   consumers of the store.
//
//------------------------------------------------------------------------------

package submission

import (
	"time"

	"github.com/google/uuid"
)

// StatusReceived is the only status a submission carries at creation.
const StatusReceived = "received"

// Submission is the persisted form-submission record.  JSON tags match the
// stored document and the webhook payload.
type Submission struct {
	SubmissionID string         `json:"submissionId" db:"submission_id"`
	Timestamp    int64          `json:"timestamp"    db:"ts"`
	TimestampISO string         `json:"timestampIso" db:"ts_iso"`
	Client       string         `json:"client"       db:"client"`
	FormType     string         `json:"formType"     db:"form_type"`
	FormData     map[string]any `json:"formData"     db:"-"`
	SourceIP     string         `json:"sourceIp"     db:"source_ip"`
	UserAgent    string         `json:"userAgent"    db:"user_agent"`
	Status       string         `json:"status"       db:"status"`
}

// Source carries the request metadata a submission is stamped with.
type Source struct {
	IP        string
	UserAgent string
}

// newSubmission assembles a record with a fresh ID and the current instant
// in both epoch and ISO-8601 forms.
func newSubmission(client, formType string, data map[string]any, src Source) *Submission {
	now := time.Now().UTC()
	return &Submission{
		SubmissionID: uuid.NewString(),
		Timestamp:    now.Unix(),
		TimestampISO: now.Format(time.RFC3339),
		Client:       client,
		FormType:     formType,
		FormData:     data,
		SourceIP:     src.IP,
		UserAgent:    src.UserAgent,
		Status:       StatusReceived,
	}
}
