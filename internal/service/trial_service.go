package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/platform/mailer"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/events"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

var validate = validator.New()

// validateStruct runs tag validation and converts the first failure
// into a client-safe message.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return domain.NewValidationError(fmt.Sprintf("%s is required", field))
		case "email":
			return domain.NewValidationError(fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			return domain.NewValidationError(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "oneof":
			return domain.NewValidationError(fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			return domain.NewValidationError(fmt.Sprintf("%s is invalid", field))
		}
	}
	return domain.NewValidationError("invalid request")
}

type TrialService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TrialRequest, error)
	Get(ctx context.Context, id int64) (*domain.TrialRequest, error)
	List(ctx context.Context, limit, offset int) ([]domain.TrialRequest, error)
	ListByIntern(ctx context.Context, internID int64) ([]domain.TrialRequest, error)
	Update(ctx context.Context, id int64, patch domain.TrialPatch) (*domain.TrialRequest, error)
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, requestID int64, internID *int64) (*domain.TrialRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.TrialRequest, error)
	MergeProject(ctx context.Context, id int64, fields map[string]any) (*domain.TrialRequest, error)
	AddInternNote(ctx context.Context, actorInternID, requestID int64, note string) (*domain.TrialRequest, error)
}

type trialService struct {
	trials   sqlite.TrialRepo
	interns  sqlite.InternRepo
	notifier *Notifier
	mail     mailer.Service
	eventBus events.Publisher
}

func NewTrialService(
	trials sqlite.TrialRepo,
	interns sqlite.InternRepo,
	notifier *Notifier,
	mail mailer.Service,
	eventBus events.Publisher,
) TrialService {
	return &trialService{
		trials:   trials,
		interns:  interns,
		notifier: notifier,
		mail:     mail,
		eventBus: eventBus,
	}
}

func (s *trialService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TrialRequest, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	accountType := domain.AccountType(req.AccountType)
	if accountType == "" {
		accountType = domain.AccountTypeLD
	}

	t := &domain.TrialRequest{
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Company:              strings.TrimSpace(req.Company),
		Phone:                strings.TrimSpace(req.Phone),
		IndustryDomain:       strings.TrimSpace(req.IndustryDomain),
		PrimaryUseCase:       req.PrimaryUseCase,
		SelectedIntegrations: req.SelectedIntegrations,
		AccountType:          accountType,
	}

	created, err := s.trials.Create(ctx, t)
	if err != nil {
		return nil, err
	}

	s.notifier.TrialRegistered(ctx, created)
	s.publish(ctx, events.TrialCreated, events.TrialCreatedEvent{
		RequestID:   created.ID,
		Email:       created.Email,
		Company:     created.Company,
		AccountType: string(created.AccountType),
		CreatedAt:   created.CreatedAt,
	})

	return created, nil
}

func (s *trialService) Get(ctx context.Context, id int64) (*domain.TrialRequest, error) {
	return s.trials.GetByID(ctx, id)
}

func (s *trialService) List(ctx context.Context, limit, offset int) ([]domain.TrialRequest, error) {
	return s.trials.List(ctx, limit, offset)
}

func (s *trialService) ListByIntern(ctx context.Context, internID int64) ([]domain.TrialRequest, error) {
	return s.trials.ListByIntern(ctx, internID)
}

func (s *trialService) Update(ctx context.Context, id int64, patch domain.TrialPatch) (*domain.TrialRequest, error) {
	if err := validateStruct(&patch); err != nil {
		return nil, err
	}
	return s.trials.Update(ctx, id, patch)
}

func (s *trialService) Delete(ctx context.Context, id int64) error {
	if err := s.trials.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TrialDeleted, events.TrialDeletedEvent{
		RequestID: id,
		DeletedAt: time.Now().UTC(),
	})
	return nil
}

// Assign moves a request between interns, keeping assigned counters in
// step, then tells both parties and emails the new intern.
func (s *trialService) Assign(ctx context.Context, requestID int64, internID *int64) (*domain.TrialRequest, error) {
	var intern *domain.Intern
	if internID != nil {
		var err error
		intern, err = s.interns.GetByID(ctx, *internID)
		if err != nil {
			return nil, err
		}
	}

	updated, prev, err := s.trials.Assign(ctx, requestID, internID)
	if err != nil {
		return nil, err
	}

	s.notifier.TrialAssigned(ctx, updated, intern, prev)
	s.publish(ctx, events.TrialAssigned, events.TrialAssignedEvent{
		RequestID:  updated.ID,
		InternID:   internID,
		PrevIntern: prev,
		AssignedAt: time.Now().UTC(),
	})

	if intern != nil && intern.Email != "" {
		customer := fmt.Sprintf("%s %s", updated.FirstName, updated.LastName)
		if err := s.mail.SendAssignmentNotice(intern.Email, intern.Name, customer, updated.Company); err != nil {
			logger.ErrorContext(ctx, "Failed to send assignment notice",
				"error", err, "intern_id", intern.ID, "request_id", updated.ID)
		}
	}

	return updated, nil
}

func (s *trialService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.TrialRequest, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, domain.NewValidationError("status is required")
	}

	updated, _, err := s.trials.UpdateStatus(ctx, id, domain.TrialStatus(status))
	if err != nil {
		return nil, err
	}

	s.notifier.TrialStatusChanged(ctx, updated)
	s.publish(ctx, events.TrialStatusChanged, events.TrialStatusChangedEvent{
		RequestID: updated.ID,
		Status:    string(updated.Status),
		UpdatedAt: updated.UpdatedAt,
	})

	return updated, nil
}

func (s *trialService) MergeProject(ctx context.Context, id int64, fields map[string]any) (*domain.TrialRequest, error) {
	if len(fields) == 0 {
		return nil, domain.NewValidationError("project info must not be empty")
	}
	return s.trials.MergeProject(ctx, id, fields)
}

// AddInternNote lets the assigned intern attach a note; anyone else is
// denied.
func (s *trialService) AddInternNote(ctx context.Context, actorInternID, requestID int64, note string) (*domain.TrialRequest, error) {
	t, err := s.trials.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if t.AssignedInternID == nil || *t.AssignedInternID != actorInternID {
		return nil, domain.ErrAccessDenied
	}

	updated, err := s.trials.UpdateInternNote(ctx, requestID, note)
	if err != nil {
		return nil, err
	}

	customer := fmt.Sprintf("%s %s", updated.FirstName, updated.LastName)
	s.notifier.InternNoteAdded(ctx, "trial_request", updated.ID, updated.InternName, customer)

	return updated, nil
}

func (s *trialService) publish(ctx context.Context, subject string, payload any) {
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
