package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/utils"

	"github.com/kr/text"
)

// Message is one outbound email. From is filled in by the mailer.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a message and returns the provider's delivery id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendMailer delivers through the Resend HTTP API.
type ResendMailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: utils.ResendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	if m.apiKey == "" {
		return "", errors.New("RESEND_API_KEY not configured")
	}
	return utils.SendResendEmail(ctx, m.client, m.endpoint, m.apiKey, utils.EmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) (string, error) {
	log.Printf("📧 [DEV email] to=%s subject=%q\n%s", utils.MaskEmail(msg.To), msg.Subject, msg.Text)
	return "dev", nil
}

// NewMailer picks Resend when an API key is configured and the log mailer otherwise.
func NewMailer(apiKey, from string) Mailer {
	if apiKey == "" {
		utils.SafeWarn("RESEND_API_KEY not set, emails will only be logged")
		return LogMailer{}
	}
	return NewResendMailer(apiKey, from)
}

// ============================================================================
// TEMPLATES
// ============================================================================

var inviteHTML = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background-color:#f3f4f6;">
  <table role="presentation" style="max-width:600px;margin:40px auto;background:#ffffff;border-radius:12px;">
    <tr><td style="padding:32px;">
      <h2 style="margin:0 0 16px 0;color:#1f2937;">You're invited: {{.Title}}</h2>
      <p style="margin:0 0 8px 0;color:#4b5563;"><strong>When:</strong> {{.When}}</p>
      <p style="margin:0 0 24px 0;color:#4b5563;"><strong>Where:</strong> {{.Where}}</p>
      <a href="{{.Link}}" style="display:inline-block;padding:14px 28px;background:#2563eb;color:#ffffff;text-decoration:none;border-radius:8px;font-weight:600;">Respond to invite</a>
      <p style="margin:24px 0 0 0;color:#9ca3af;font-size:13px;">Or open this link: {{.Link}}</p>
    </td></tr>
  </table>
</body>
</html>`))

var signInHTML = template.Must(template.New("signin").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;">
  <p>Your Corralio sign-in code is:</p>
  <p style="font-size:28px;font-weight:bold;letter-spacing:6px;">{{.Code}}</p>
  <p style="color:#6b7280;">It expires in {{.Minutes}} minutes. If you did not ask for it, ignore this email.</p>
</body>
</html>`))

const emailTimeLayout = "Mon, Jan 2 2006 at 3:04 PM MST"

// InviteMessage builds the invite email for one recipient.
func InviteMessage(to string, e *models.Event, link string) Message {
	where := e.LocationText
	if where == "" {
		where = "TBA"
	}
	data := struct {
		Title, When, Where, Link string
	}{e.Title, e.StartsAt.Format(emailTimeLayout), where, link}

	var html bytes.Buffer
	if err := inviteHTML.Execute(&html, data); err != nil {
		// static template, only fails on a write error
		utils.SafeError("invite template: %v", err)
	}

	body := fmt.Sprintf("You're invited to %s on %s at %s. Open the link below to accept, decline or answer maybe.",
		data.Title, data.When, data.Where)
	plain := strings.Join([]string{text.Wrap(body, 72), "", link, ""}, "\n")

	return Message{
		To:      to,
		Subject: "You're invited: " + e.Title,
		HTML:    html.String(),
		Text:    plain,
	}
}

// SignInMessage builds the email carrying a one-time sign-in code.
func SignInMessage(to, code string) Message {
	minutes := int(utils.SignInCodePeriod / time.Minute)
	var html bytes.Buffer
	if err := signInHTML.Execute(&html, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		utils.SafeError("sign-in template: %v", err)
	}

	body := fmt.Sprintf("Your Corralio sign-in code is %s. It expires in %d minutes. If you did not ask for it, ignore this email.", code, minutes)
	return Message{
		To:      to,
		Subject: "Your Corralio sign-in code",
		HTML:    html.String(),
		Text:    text.Wrap(body, 72) + "\n",
	}
}
