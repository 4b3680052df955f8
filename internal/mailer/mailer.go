package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
)

// Mailer sends the transactional emails the worker consumes from the
// queue: registration, invitation, forgot-password keys and mention
// notifications.
type Mailer struct {
	addr    string
	auth    smtp.Auth
	from    string
	baseURL string
	log     zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger) *Mailer {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &Mailer{
		addr:    fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth:    auth,
		from:    cfg.MailFrom,
		baseURL: cfg.PublicBaseURL,
		log:     log,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func (m *Mailer) SendRegistrationKey(to, key string) error {
	body := fmt.Sprintf(
		"Welcome to PmDragon.\n\n"+
			"Follow the link to finish your registration:\n%s/auth/verify/%s\n\n"+
			"The link is valid for 24 hours.",
		m.baseURL, key)
	return m.send(to, "Confirm your registration", body)
}

func (m *Mailer) SendInvitationKey(to, workspace, key string) error {
	body := fmt.Sprintf(
		"You were invited to the %s workspace on PmDragon.\n\n"+
			"Follow the link to join:\n%s/auth/invite/%s\n\n"+
			"The link is valid for 24 hours.",
		workspace, m.baseURL, key)
	return m.send(to, "Workspace invitation", body)
}

func (m *Mailer) SendForgotPasswordKey(to, key string) error {
	body := fmt.Sprintf(
		"Someone requested a password reset for this address.\n\n"+
			"Follow the link to set a new password:\n%s/auth/restore/%s\n\n"+
			"If it was not you, ignore this email.",
		m.baseURL, key)
	return m.send(to, "Password reset", body)
}

func (m *Mailer) SendMentionNotification(to, author, message string, issueID int64) error {
	body := fmt.Sprintf(
		"%s mentioned you in an issue message:\n\n%s\n\n%s/issues/%d",
		author, message, m.baseURL, issueID)
	return m.send(to, "You were mentioned", body)
}
