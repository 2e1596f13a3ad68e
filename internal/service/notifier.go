package service

import (
	"context"
	"fmt"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

// Notifier fans domain events out into pull notifications. Every send
// is best-effort: a failed insert is logged and never propagated, so
// notification trouble cannot fail the operation that triggered it.
type Notifier struct {
	notifications sqlite.NotificationRepo
}

func NewNotifier(notifications sqlite.NotificationRepo) *Notifier {
	return &Notifier{notifications: notifications}
}

func (n *Notifier) notify(ctx context.Context, note *domain.Notification) {
	if _, err := n.notifications.Create(ctx, note); err != nil {
		logger.ErrorContext(ctx, "Failed to create notification",
			"error", err,
			"recipient_type", note.RecipientType,
			"title", note.Title,
		)
	}
}

func (n *Notifier) TrialRegistered(ctx context.Context, t *domain.TrialRequest) {
	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientAdmin,
		Title:             "New trial request",
		Message:           fmt.Sprintf("%s %s from %s requested a trial", t.FirstName, t.LastName, t.Company),
		Type:              domain.NotifyInfo,
		RelatedEntityType: "trial_request",
		RelatedEntityID:   &t.ID,
	})
}

// TrialAssigned tells every affected side about an assignment change:
// admin always, the new intern when there is one, and the intern who
// just lost the request when prevInternID names someone else.
func (n *Notifier) TrialAssigned(ctx context.Context, t *domain.TrialRequest, intern *domain.Intern, prevInternID *int64) {
	customer := fmt.Sprintf("%s %s", t.FirstName, t.LastName)

	if prevInternID != nil && (intern == nil || *prevInternID != intern.ID) {
		n.notify(ctx, &domain.Notification{
			RecipientType:     domain.RecipientIntern,
			RecipientID:       prevInternID,
			Title:             "Assignment removed",
			Message:           fmt.Sprintf("Trial request from %s is no longer assigned to you", customer),
			Type:              domain.NotifyWarning,
			RelatedEntityType: "trial_request",
			RelatedEntityID:   &t.ID,
		})
	}

	if intern == nil {
		n.notify(ctx, &domain.Notification{
			RecipientType:     domain.RecipientAdmin,
			Title:             "Trial request unassigned",
			Message:           fmt.Sprintf("Request from %s is no longer assigned", customer),
			Type:              domain.NotifyWarning,
			RelatedEntityType: "trial_request",
			RelatedEntityID:   &t.ID,
		})
		return
	}

	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientAdmin,
		Title:             "Trial request assigned",
		Message:           fmt.Sprintf("Request from %s assigned to %s", customer, intern.Name),
		Type:              domain.NotifySuccess,
		RelatedEntityType: "trial_request",
		RelatedEntityID:   &t.ID,
	})
	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientIntern,
		RecipientID:       &intern.ID,
		Title:             "New assignment",
		Message:           fmt.Sprintf("Trial request from %s (%s) was assigned to you", customer, t.Company),
		Type:              domain.NotifyInfo,
		RelatedEntityType: "trial_request",
		RelatedEntityID:   &t.ID,
	})
}

// TrialStatusChanged reports the new status only; the previous status
// stays out of the message.
func (n *Notifier) TrialStatusChanged(ctx context.Context, t *domain.TrialRequest) {
	customer := fmt.Sprintf("%s %s", t.FirstName, t.LastName)
	msg := fmt.Sprintf("Request from %s is now %q", customer, t.Status)

	kind := domain.NotifyInfo
	if t.Status.IsCompleted() {
		kind = domain.NotifySuccess
	}

	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientAdmin,
		Title:             "Trial status updated",
		Message:           msg,
		Type:              kind,
		RelatedEntityType: "trial_request",
		RelatedEntityID:   &t.ID,
	})
	if t.AssignedInternID != nil {
		n.notify(ctx, &domain.Notification{
			RecipientType:     domain.RecipientIntern,
			RecipientID:       t.AssignedInternID,
			Title:             "Trial status updated",
			Message:           msg,
			Type:              kind,
			RelatedEntityType: "trial_request",
			RelatedEntityID:   &t.ID,
		})
	}
}

// InternNoteAdded goes to admin: the note was written by the assigned
// intern, so only the other party needs to hear about it.
func (n *Notifier) InternNoteAdded(ctx context.Context, entityType string, entityID int64, internName, customer string) {
	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientAdmin,
		Title:             "Intern note added",
		Message:           fmt.Sprintf("%s left a note on the request from %s", internName, customer),
		Type:              domain.NotifyInfo,
		RelatedEntityType: entityType,
		RelatedEntityID:   &entityID,
	})
}

// AdminNoteAdded goes to the assigned intern, if any.
func (n *Notifier) AdminNoteAdded(ctx context.Context, entityType string, entityID int64, internID *int64, customer string) {
	if internID == nil {
		return
	}
	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientIntern,
		RecipientID:       internID,
		Title:             "Admin note added",
		Message:           fmt.Sprintf("Admin left a note on the demo account for %s", customer),
		Type:              domain.NotifyInfo,
		RelatedEntityType: entityType,
		RelatedEntityID:   &entityID,
	})
}

func (n *Notifier) DemoCreated(ctx context.Context, d *domain.DemoCredential) {
	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientAdmin,
		Title:             "New demo account",
		Message:           fmt.Sprintf("Demo credentials created for %s %s (%s)", d.FirstName, d.LastName, d.Email),
		Type:              domain.NotifyInfo,
		RelatedEntityType: "demo_credential",
		RelatedEntityID:   &d.ID,
	})
}

func (n *Notifier) DemoAssigned(ctx context.Context, d *domain.DemoCredential, intern *domain.Intern) {
	customer := fmt.Sprintf("%s %s", d.FirstName, d.LastName)

	if intern == nil {
		n.notify(ctx, &domain.Notification{
			RecipientType:     domain.RecipientAdmin,
			Title:             "Demo account unassigned",
			Message:           fmt.Sprintf("Demo account for %s is no longer assigned", customer),
			Type:              domain.NotifyWarning,
			RelatedEntityType: "demo_credential",
			RelatedEntityID:   &d.ID,
		})
		return
	}

	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientAdmin,
		Title:             "Demo account assigned",
		Message:           fmt.Sprintf("Demo account for %s assigned to %s", customer, intern.Name),
		Type:              domain.NotifySuccess,
		RelatedEntityType: "demo_credential",
		RelatedEntityID:   &d.ID,
	})
	n.notify(ctx, &domain.Notification{
		RecipientType:     domain.RecipientIntern,
		RecipientID:       &intern.ID,
		Title:             "New demo assignment",
		Message:           fmt.Sprintf("Demo account for %s (%s) was assigned to you", customer, d.Company),
		Type:              domain.NotifyInfo,
		RelatedEntityType: "demo_credential",
		RelatedEntityID:   &d.ID,
	})
}
