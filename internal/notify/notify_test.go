// internal/notify/notify_test.go
//
// Unit-tests for the notification fan-out.
//
// Context
// -------
// A recording fake stands in for the SMTP mailer, and an httptest server
// receives the webhook.  The load-bearing behaviors:
//
//   • admin subject resolves the {client} placeholder from client config
//   • unknown clients fall back to the noclient entry for recipients
//   • auto-reply fires only when the template enables it and the data
//     carries an email address
//   • webhook posts the documented payload, and is skipped without a URL
//   • one action's failure never suppresses the others
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// -----------------------------------------------------------------------------
// Fakes and fixtures
// -----------------------------------------------------------------------------

type sentMail struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to []string, subject, text, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func (f *fakeMailer) bySubject(substr string) *sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sent {
		if strings.Contains(f.sent[i].Subject, substr) {
			return &f.sent[i]
		}
	}
	return nil
}

func notifyConfig(webhookURL string) *config.Config {
	return &config.Config{
		EmailTemplates: map[string]config.EmailTemplate{
			"contacts": {
				Subject:   "New contact form submission for {client}",
				AutoReply: true,
			},
			"quote": {Subject: "New quote request for {client}"},
		},
		Clients: map[string]config.Client{
			"noclient": {Name: "Fallback", NotificationEmail: "ops@example.com"},
			"acme": {
				Name:              "Acme Corp",
				NotificationEmail: "forms@acme.example",
				WebhookURL:        webhookURL,
			},
		},
	}
}

func contactSubmission(client string) *submission.Submission {
	return &submission.Submission{
		SubmissionID: "id-1",
		TimestampISO: "2026-01-01T00:00:00Z",
		Client:       client,
		FormType:     "contacts",
		FormData:     map[string]any{"name": "Ada", "email": "ada@example.com"},
		Status:       submission.StatusReceived,
	}
}

// -----------------------------------------------------------------------------
// Admin notification
// -----------------------------------------------------------------------------

func TestFanout_AdminNotification(t *testing.T) {
	fm := &fakeMailer{}
	n := New(fm, nil)

	n.Fanout(context.Background(), notifyConfig(""), contactSubmission("acme"))

	mail := fm.bySubject("New contact form submission for Acme Corp")
	require.NotNil(t, mail, "admin mail missing; sent: %+v", fm.sent)
	assert.Equal(t, []string{"forms@acme.example"}, mail.To)
	assert.Contains(t, mail.Text, "Submission ID: id-1")
	assert.Contains(t, mail.Text, "name: Ada")
	assert.Contains(t, mail.HTML, "<td style='padding:8px;border:1px solid #ddd;'>name</td>")
}

func TestFanout_NoTemplateMeansNoAdminMail(t *testing.T) {
	// With the template table empty there is no contacts fallback either;
	// nothing may go out with a zero-value subject.
	cfg := notifyConfig("")
	cfg.EmailTemplates = map[string]config.EmailTemplate{}

	fm := &fakeMailer{}
	n := New(fm, nil)
	n.Fanout(context.Background(), cfg, contactSubmission("acme"))

	fm.mu.Lock()
	defer fm.mu.Unlock()
	assert.Empty(t, fm.sent, "mail sent without a template: %+v", fm.sent)
}

func TestFanout_UnknownClientFallsBackToNoclient(t *testing.T) {
	fm := &fakeMailer{}
	n := New(fm, nil)

	n.Fanout(context.Background(), notifyConfig(""), contactSubmission("ghost"))

	mail := fm.bySubject("Fallback")
	require.NotNil(t, mail)
	assert.Equal(t, []string{"ops@example.com"}, mail.To)
}

// -----------------------------------------------------------------------------
// Auto-reply
// -----------------------------------------------------------------------------

func TestFanout_AutoReplyWithDefaults(t *testing.T) {
	fm := &fakeMailer{}
	n := New(fm, nil)

	n.Fanout(context.Background(), notifyConfig(""), contactSubmission("acme"))

	reply := fm.bySubject("Thank you for your submission")
	require.NotNil(t, reply, "auto-reply missing; sent: %+v", fm.sent)
	assert.Equal(t, []string{"ada@example.com"}, reply.To)
	assert.Contains(t, reply.HTML, "We have received your submission")
}

func TestFanout_AutoReplySkippedWithoutEmailField(t *testing.T) {
	fm := &fakeMailer{}
	n := New(fm, nil)

	sub := contactSubmission("acme")
	delete(sub.FormData, "email")
	n.Fanout(context.Background(), notifyConfig(""), sub)

	assert.Nil(t, fm.bySubject("Thank you"), "auto-reply sent without an email field")
	assert.NotNil(t, fm.bySubject("Acme Corp"), "admin mail must still go out")
}

func TestFanout_AutoReplySkippedWhenDisabled(t *testing.T) {
	fm := &fakeMailer{}
	n := New(fm, nil)

	sub := contactSubmission("acme")
	sub.FormType = "quote" // template without autoReply
	n.Fanout(context.Background(), notifyConfig(""), sub)

	assert.Nil(t, fm.bySubject("Thank you"))
}

// -----------------------------------------------------------------------------
// Webhook
// -----------------------------------------------------------------------------

func TestFanout_WebhookPostsPayload(t *testing.T) {
	var (
		mu      sync.Mutex
		gotBody map[string]any
		gotCT   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(&fakeMailer{}, srv.Client())
	n.Fanout(context.Background(), notifyConfig(srv.URL), contactSubmission("acme"))

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, gotBody, "webhook never called")
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "id-1", gotBody["submissionId"])
	assert.Equal(t, "acme", gotBody["client"])
	assert.Equal(t, "contacts", gotBody["formType"])
	assert.Equal(t, "2026-01-01T00:00:00Z", gotBody["timestamp"])
}

func TestFanout_WebhookSkippedWithoutURL(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	n := New(&fakeMailer{}, srv.Client())
	n.Fanout(context.Background(), notifyConfig(""), contactSubmission("acme"))

	assert.False(t, called)
}

// -----------------------------------------------------------------------------
// Failure isolation
// -----------------------------------------------------------------------------

func TestFanout_MailFailureDoesNotSuppressWebhook(t *testing.T) {
	var (
		mu     sync.Mutex
		called bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		called = true
		mu.Unlock()
	}))
	defer srv.Close()

	n := New(&fakeMailer{err: errors.New("relay down")}, srv.Client())

	// Must not panic, and the webhook must still fire.
	n.Fanout(context.Background(), notifyConfig(srv.URL), contactSubmission("acme"))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, called, "webhook suppressed by mail failure")
}
