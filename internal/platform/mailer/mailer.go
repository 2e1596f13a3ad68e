package mailer

import "time"

type Service interface {
	SendDemoCredentials(toEmail, toName, username, password string, expiresAt time.Time) error
	SendAssignmentNotice(toEmail, toName, customerName, company string) error
}
