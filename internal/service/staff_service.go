package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/events"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

type StaffService interface {
	Create(ctx context.Context, req *domain.CreateInternRequest) (*domain.Intern, error)
	Get(ctx context.Context, id int64) (*domain.Intern, error)
	List(ctx context.Context) ([]domain.Intern, error)
	Update(ctx context.Context, id int64, patch domain.InternPatch) (*domain.Intern, error)
	UpdateCredentials(ctx context.Context, id int64, creds *domain.InternCredentials) (*domain.Intern, error)
	Delete(ctx context.Context, id int64) error
}

type staffService struct {
	interns  sqlite.InternRepo
	eventBus events.Publisher
}

func NewStaffService(interns sqlite.InternRepo, eventBus events.Publisher) StaffService {
	return &staffService{interns: interns, eventBus: eventBus}
}

func (s *staffService) Create(ctx context.Context, req *domain.CreateInternRequest) (*domain.Intern, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}

	status := domain.InternActive
	if req.Status != "" {
		status, _ = domain.ParseInternStatus(req.Status)
	}

	in := &domain.Intern{
		Name:           strings.TrimSpace(req.Name),
		Username:       strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash:   hash,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		Whatsapp:       strings.TrimSpace(req.Whatsapp),
		Specialization: strings.TrimSpace(req.Specialization),
		Integrations:   req.Integrations,
		Status:         status,
	}

	created, err := s.interns.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.InternCreated, events.InternCreatedEvent{
		InternID: created.ID,
		Username: created.Username,
	})

	return created, nil
}

func (s *staffService) Get(ctx context.Context, id int64) (*domain.Intern, error) {
	return s.interns.GetByID(ctx, id)
}

func (s *staffService) List(ctx context.Context) ([]domain.Intern, error) {
	return s.interns.List(ctx)
}

func (s *staffService) Update(ctx context.Context, id int64, patch domain.InternPatch) (*domain.Intern, error) {
	if err := validateStruct(&patch); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if _, ok := domain.ParseInternStatus(*patch.Status); !ok {
			return nil, domain.NewValidationError("status must be one of: active inactive on_leave")
		}
	}
	return s.interns.Update(ctx, id, patch)
}

func (s *staffService) UpdateCredentials(ctx context.Context, id int64, creds *domain.InternCredentials) (*domain.Intern, error) {
	if err := validateStruct(creds); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(creds.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}

	return s.interns.UpdateCredentials(ctx, id, strings.ToLower(strings.TrimSpace(creds.Username)), hash)
}

// Delete removes the intern; their trial and demo assignments are
// cleared by the store in the same transaction.
func (s *staffService) Delete(ctx context.Context, id int64) error {
	if err := s.interns.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.InternDeleted, events.InternDeletedEvent{
		InternID:  id,
		DeletedAt: time.Now().UTC(),
	})
	return nil
}

func (s *staffService) publish(ctx context.Context, subject string, payload any) {
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
