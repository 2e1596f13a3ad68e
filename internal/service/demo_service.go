package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/platform/mailer"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/events"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

type DemoService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.DemoCredential, error)
	Get(ctx context.Context, id int64) (*domain.DemoCredential, error)
	List(ctx context.Context) ([]domain.DemoCredential, error)
	ListByIntern(ctx context.Context, internID int64) ([]domain.DemoCredential, error)
	Update(ctx context.Context, id int64, patch domain.DemoPatch) (*domain.DemoCredential, error)
	Delete(ctx context.Context, id int64) error
	Regenerate(ctx context.Context, id int64) (*domain.DemoCredential, error)
	Assign(ctx context.Context, demoID int64, internID *int64) (*domain.DemoCredential, error)
	UpdateAdminNote(ctx context.Context, id int64, note string) (*domain.DemoCredential, error)
	AddInternNote(ctx context.Context, actorInternID, demoID int64, note string) (*domain.DemoCredential, error)
}

type demoService struct {
	demos    sqlite.DemoRepo
	interns  sqlite.InternRepo
	notifier *Notifier
	mail     mailer.Service
	eventBus events.Publisher
}

func NewDemoService(
	demos sqlite.DemoRepo,
	interns sqlite.InternRepo,
	notifier *Notifier,
	mail mailer.Service,
	eventBus events.Publisher,
) DemoService {
	return &demoService{
		demos:    demos,
		interns:  interns,
		notifier: notifier,
		mail:     mail,
		eventBus: eventBus,
	}
}

// Register provisions a demo account straight from the public signup
// form: generated credentials, ten days of access, credentials emailed
// to the customer.
func (s *demoService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.DemoCredential, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	d := &domain.DemoCredential{
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Company:              strings.TrimSpace(req.Company),
		Phone:                strings.TrimSpace(req.Phone),
		Username:             domain.GenerateDemoUsername(req.FirstName),
		Password:             domain.GenerateDemoPassword(),
		SelectedIntegrations: req.SelectedIntegrations,
		IsActive:             true,
		ExpiresAt:            time.Now().UTC().Add(domain.DemoLifetime),
	}

	created, err := s.demos.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	s.notifier.DemoCreated(ctx, created)
	s.publish(ctx, events.DemoCreated, events.DemoCreatedEvent{
		DemoID:    created.ID,
		Email:     created.Email,
		Username:  created.Username,
		ExpiresAt: created.ExpiresAt,
	})

	name := fmt.Sprintf("%s %s", created.FirstName, created.LastName)
	if err := s.mail.SendDemoCredentials(created.Email, name, created.Username, created.Password, created.ExpiresAt); err != nil {
		logger.ErrorContext(ctx, "Failed to send demo credentials email",
			"error", err, "demo_id", created.ID)
	}

	return created, nil
}

func (s *demoService) Get(ctx context.Context, id int64) (*domain.DemoCredential, error) {
	return s.demos.GetByID(ctx, id)
}

func (s *demoService) List(ctx context.Context) ([]domain.DemoCredential, error) {
	return s.demos.List(ctx)
}

func (s *demoService) ListByIntern(ctx context.Context, internID int64) ([]domain.DemoCredential, error) {
	return s.demos.ListByIntern(ctx, internID)
}

func (s *demoService) Update(ctx context.Context, id int64, patch domain.DemoPatch) (*domain.DemoCredential, error) {
	return s.demos.Update(ctx, id, patch)
}

func (s *demoService) Delete(ctx context.Context, id int64) error {
	return s.demos.Delete(ctx, id)
}

// Regenerate issues a fresh username and password, restarts the ten-day
// clock and re-sends the credentials email.
func (s *demoService) Regenerate(ctx context.Context, id int64) (*domain.DemoCredential, error) {
	current, err := s.demos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The letter block is name-derived, so a fresh draw can land on the
	// current value. Reroll until both credentials actually change.
	username := domain.GenerateDemoUsername(current.FirstName)
	for username == current.Username {
		username = domain.GenerateDemoUsername(current.FirstName)
	}
	password := domain.GenerateDemoPassword()
	for password == current.Password {
		password = domain.GenerateDemoPassword()
	}
	expiresAt := time.Now().UTC().Add(domain.DemoLifetime)

	updated, err := s.demos.Regenerate(ctx, id, username, password, expiresAt)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.DemoRegenerated, events.DemoRegeneratedEvent{
		DemoID:    updated.ID,
		ExpiresAt: updated.ExpiresAt,
	})

	name := fmt.Sprintf("%s %s", updated.FirstName, updated.LastName)
	if err := s.mail.SendDemoCredentials(updated.Email, name, updated.Username, updated.Password, updated.ExpiresAt); err != nil {
		logger.ErrorContext(ctx, "Failed to send demo credentials email",
			"error", err, "demo_id", updated.ID)
	}

	return updated, nil
}

// Assign records the responsible intern without touching workload
// counters.
func (s *demoService) Assign(ctx context.Context, demoID int64, internID *int64) (*domain.DemoCredential, error) {
	var intern *domain.Intern
	if internID != nil {
		var err error
		intern, err = s.interns.GetByID(ctx, *internID)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.demos.Assign(ctx, demoID, internID)
	if err != nil {
		return nil, err
	}

	s.notifier.DemoAssigned(ctx, updated, intern)
	s.publish(ctx, events.DemoAssigned, events.DemoAssignedEvent{
		DemoID:     updated.ID,
		InternID:   internID,
		AssignedAt: time.Now().UTC(),
	})

	return updated, nil
}

func (s *demoService) UpdateAdminNote(ctx context.Context, id int64, note string) (*domain.DemoCredential, error) {
	updated, err := s.demos.UpdateAdminNote(ctx, id, note)
	if err != nil {
		return nil, err
	}

	customer := fmt.Sprintf("%s %s", updated.FirstName, updated.LastName)
	s.notifier.AdminNoteAdded(ctx, "demo_credential", updated.ID, updated.AssignedInternID, customer)

	return updated, nil
}

// AddInternNote lets the assigned intern attach a note; anyone else is
// denied.
func (s *demoService) AddInternNote(ctx context.Context, actorInternID, demoID int64, note string) (*domain.DemoCredential, error) {
	d, err := s.demos.GetByID(ctx, demoID)
	if err != nil {
		return nil, err
	}
	if d.AssignedInternID == nil || *d.AssignedInternID != actorInternID {
		return nil, domain.ErrAccessDenied
	}

	updated, err := s.demos.UpdateInternNote(ctx, demoID, note)
	if err != nil {
		return nil, err
	}

	customer := fmt.Sprintf("%s %s", updated.FirstName, updated.LastName)
	s.notifier.InternNoteAdded(ctx, "demo_credential", updated.ID, updated.InternName, customer)

	return updated, nil
}

func (s *demoService) publish(ctx context.Context, subject string, payload any) {
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
