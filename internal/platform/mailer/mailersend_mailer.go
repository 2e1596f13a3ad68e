package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendDemoCredentials(toEmail, toName, username, password string, expiresAt time.Time) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your TrialDesk demo account"
	html := fmt.Sprintf(`
		<h2>Your demo account is ready</h2>
		<p>Hi %s,</p>
		<p>Use the credentials below to sign in:</p>
		<p>Username: <strong>%s</strong><br>Password: <strong>%s</strong></p>
		<p>Access expires on <strong>%s</strong>.</p>
		<p>If you didn't request a demo account, please ignore this email.</p>
	`, toName, username, password, expiresAt.Format(time.RFC1123))

	text := fmt.Sprintf("Hi %s,\n\nYour demo account is ready.\n\nUsername: %s\nPassword: %s\n\nAccess expires on %s.",
		toName, username, password, expiresAt.Format(time.RFC1123))

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendAssignmentNotice(toEmail, toName, customerName, company string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "New trial request assigned to you"
	html := fmt.Sprintf(`
		<h2>New assignment</h2>
		<p>Hi %s,</p>
		<p>A new trial request from <strong>%s</strong> (%s) has been assigned to you.</p>
	`, toName, customerName, company)

	text := fmt.Sprintf("Hi %s,\n\nA new trial request from %s (%s) has been assigned to you.", toName, customerName, company)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}

var _ Service = (*MailerSendClient)(nil)
