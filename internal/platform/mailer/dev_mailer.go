package mailer

import (
	"fmt"
	"time"

	"github.com/smartcardai/trialdesk/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendDemoCredentials(toEmail, toName, username, password string, expiresAt time.Time) error {
	logger.Info("📧 [DEV MAIL] Demo Credentials Email",
		"to", toEmail,
		"name", toName,
		"username", username,
		"expires_at", expiresAt,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 DEMO CREDENTIALS EMAIL (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s (%s)\n"+
		"Subject: Your TrialDesk demo account\n"+
		"\n"+
		"Username: %s\n"+
		"Password: %s\n"+
		"Expires:  %s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, toName, username, password, expiresAt.Format(time.RFC1123))

	return nil
}

func (d *DevMailer) SendAssignmentNotice(toEmail, toName, customerName, company string) error {
	logger.Info("📧 [DEV MAIL] Assignment Notice Email",
		"to", toEmail,
		"name", toName,
		"customer", customerName,
		"company", company,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 ASSIGNMENT NOTICE EMAIL (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s (%s)\n"+
		"Subject: New trial request assigned to you\n"+
		"\n"+
		"Customer: %s\n"+
		"Company:  %s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, toName, customerName, company)

	return nil
}

var _ Service = (*DevMailer)(nil)
