package service

import (
	"bytes"
	"context"
	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/util"
	"fmt"
	"text/template"

	"github.com/resend/resend-go/v2"
)

type EmailType string

const (
	EmailWelcome           EmailType = "welcome"
	EmailLogin             EmailType = "login"
	EmailMagicLink         EmailType = "magic_link"
	EmailPasswordReset     EmailType = "password_reset"
	EmailEmailConfirmation EmailType = "email_confirmation"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

// EmailService sends transactional mail through Resend. One hard-coded HTML
// template per type; the request's data bag feeds the interpolation. No
// queueing or retry: a provider error is the caller's error.
type EmailService struct {
	client    *resend.Client
	from      string
	templates map[EmailType]emailTemplate
}

func NewEmailService(cfg config.ResendConfig) *EmailService {
	return &EmailService{
		client:    resend.NewClient(cfg.APIKey),
		from:      cfg.From,
		templates: buildTemplates(),
	}
}

// SendAuthEmail renders the template for the given type and sends it.
// Returns the provider's message id.
func (s *EmailService) SendAuthEmail(ctx context.Context, to string, emailType EmailType, data map[string]interface{}) (string, error) {
	tpl, ok := s.templates[emailType]
	if !ok {
		return "", util.ErrUnknownEmailTemplate
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	var html bytes.Buffer
	if err := tpl.body.Execute(&html, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: tpl.subject,
		Html:    html.String(),
	})
	if err != nil {
		return "", err
	}

	return sent.Id, nil
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=zero").Parse(body))
}

func buildTemplates() map[EmailType]emailTemplate {
	const layout = `<div style="font-family:sans-serif;max-width:560px;margin:0 auto;padding:24px">
<h2 style="color:#ff6d5a">%s</h2>
%s
<p style="color:#888;font-size:12px;margin-top:32px">FlowLearn — learn workflow automation by doing.</p>
</div>`

	return map[EmailType]emailTemplate{
		EmailWelcome: {
			subject: "Welcome to FlowLearn!",
			body: mustTemplate("welcome", fmt.Sprintf(layout,
				"Welcome aboard, {{.name}}!",
				`<p>Your account is ready. Take the level assessment to get challenges matched to your skill, and start earning XP today.</p>`)),
		},
		EmailLogin: {
			subject: "New sign-in to your FlowLearn account",
			body: mustTemplate("login", fmt.Sprintf(layout,
				"New sign-in",
				`<p>Your account was just signed in to{{if .device}} from {{.device}}{{end}}. If this wasn't you, reset your password now.</p>`)),
		},
		EmailMagicLink: {
			subject: "Your FlowLearn sign-in link",
			body: mustTemplate("magic_link", fmt.Sprintf(layout,
				"Sign in with one click",
				`<p><a href="{{.link}}" style="background:#ff6d5a;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Sign in to FlowLearn</a></p>
<p>This link expires in 15 minutes. If you didn't request it, ignore this email.</p>`)),
		},
		EmailPasswordReset: {
			subject: "Reset your FlowLearn password",
			body: mustTemplate("password_reset", fmt.Sprintf(layout,
				"Password reset",
				`<p><a href="{{.link}}" style="background:#ff6d5a;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Choose a new password</a></p>
<p>If you didn't request a reset, you can safely ignore this email.</p>`)),
		},
		EmailEmailConfirmation: {
			subject: "Confirm your email address",
			body: mustTemplate("email_confirmation", fmt.Sprintf(layout,
				"Confirm your email",
				`<p><a href="{{.link}}" style="background:#ff6d5a;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Confirm email</a></p>`)),
		},
	}
}
