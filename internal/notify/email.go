// internal/notify/email.go
//
// GadgetCloud Forms – notification and auto-reply composition.
//
// Context
//   Two emails may follow an accepted submission.  The admin notification
//   always goes to the client's configured address (noclient fallback for
//   informational lookups); its subject comes from the form type's template
//   with the {client} placeholder replaced by the client display name.  The
//   auto-reply goes back to the submitter, but only when the template
//   enables it and the submitted data carries an email field.
//
//   Form values land in these bodies already sanitized by the pipeline, so
//   composition is plain string assembly.
//
//------------------------------------------------------------------------------

package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// -----------------------------------------------------------------------------
// Admin notification
// -----------------------------------------------------------------------------

// sendAdminNotification composes and sends the new-submission email.  A
// form type with no template, and no contacts fallback, is a reportable
// failure rather than a mail with an empty subject.
func (n *Notifier) sendAdminNotification(ctx context.Context, cfg *config.Config, sub *submission.Submission) error {
	tpl, ok := cfg.EmailTemplate(sub.FormType)
	if !ok {
		return fmt.Errorf("no email template for form type %q", sub.FormType)
	}
	client := cfg.ClientConfig(sub.Client)

	subject := strings.ReplaceAll(tpl.Subject, "{client}", client.Name)

	var textRows, htmlRows strings.Builder
	for _, key := range sortedKeys(sub.FormData) {
		fmt.Fprintf(&textRows, "%s: %v\n", key, sub.FormData[key])
		fmt.Fprintf(&htmlRows,
			"<tr><td style='padding:8px;border:1px solid #ddd;'>%s</td>"+
				"<td style='padding:8px;border:1px solid #ddd;'>%v</td></tr>",
			key, sub.FormData[key])
	}

	text := fmt.Sprintf(`New form submission received!

Client: %s
Submission ID: %s
Form Type: %s
Timestamp: %s

Form Data:
%s
---
This is an automated notification from GadgetCloud Forms.
`, client.Name, sub.SubmissionID, sub.FormType, sub.TimestampISO, textRows.String())

	html := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px;">
      New Form Submission Received
    </h2>
    <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
      <p><strong>Client:</strong> %s</p>
      <p><strong>Submission ID:</strong> %s</p>
      <p><strong>Form Type:</strong> %s</p>
      <p><strong>Timestamp:</strong> %s</p>
    </div>
    <h3 style="color: #2c3e50;">Form Data:</h3>
    <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
      <thead>
        <tr style="background-color: #3498db; color: white;">
          <th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Field</th>
          <th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Value</th>
        </tr>
      </thead>
      <tbody>%s</tbody>
    </table>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
    <p style="color: #7f8c8d; font-size: 12px;">
      This is an automated notification from GadgetCloud Forms.
    </p>
  </div>
</body>
</html>`, client.Name, sub.SubmissionID, sub.FormType, sub.TimestampISO, htmlRows.String())

	return n.mailer.Send(ctx, []string{client.NotificationEmail}, subject, text, html)
}

// -----------------------------------------------------------------------------
// Auto-reply
// -----------------------------------------------------------------------------

// sendAutoReply confirms receipt to the submitter when the form type's
// template enables it and the data carries an email address.  Skipping is
// not an error.
func (n *Notifier) sendAutoReply(ctx context.Context, cfg *config.Config, sub *submission.Submission) error {
	tpl, ok := cfg.EmailTemplates[sub.FormType]
	if !ok || !tpl.AutoReply {
		return nil
	}

	userEmail, _ := sub.FormData["email"].(string)
	if userEmail == "" {
		return nil
	}

	client := cfg.ClientConfig(sub.Client)

	subject := tpl.AutoReplySubject
	if subject == "" {
		subject = "Thank you for your submission"
	}
	message := tpl.AutoReplyMessage
	if message == "" {
		message = "We have received your submission and will get back to you soon."
	}

	html := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2c3e50;">%s</h2>
    <p>%s</p>
    <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
      <p><strong>Your submission details:</strong></p>
      <p>Form Type: %s</p>
      <p>Submitted: %s UTC</p>
    </div>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
    <p style="color: #7f8c8d; font-size: 12px;">
      This is an automated message. Please do not reply to this email.
    </p>
  </div>
</body>
</html>`, client.Name, message, sub.FormType, time.Now().UTC().Format("2006-01-02 15:04:05"))

	return n.mailer.Send(ctx, []string{userEmail}, subject, "", html)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// sortedKeys gives the email bodies a stable field order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
