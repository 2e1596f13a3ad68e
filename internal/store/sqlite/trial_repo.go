package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
)

type TrialRepo interface {
	Create(ctx context.Context, t *domain.TrialRequest) (*domain.TrialRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.TrialRequest, error)
	List(ctx context.Context, limit, offset int) ([]domain.TrialRequest, error)
	ListByIntern(ctx context.Context, internID int64) ([]domain.TrialRequest, error)
	Update(ctx context.Context, id int64, patch domain.TrialPatch) (*domain.TrialRequest, error)
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, requestID int64, internID *int64) (*domain.TrialRequest, *int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TrialStatus) (*domain.TrialRequest, domain.TrialStatus, error)
	MergeProject(ctx context.Context, id int64, fields map[string]any) (*domain.TrialRequest, error)
	UpdateInternNote(ctx context.Context, id int64, note string) (*domain.TrialRequest, error)
}

type TrialRepoImpl struct{ db *sql.DB }

func NewTrialRepo(db *sql.DB) *TrialRepoImpl { return &TrialRepoImpl{db: db} }

const trialCols = `t.id, t.first_name, t.last_name, t.email, t.company, t.phone,
t.industry_domain, t.primary_use_case, t.account_type, t.status,
t.assigned_intern_id, t.selected_integrations, t.session_dates, t.project_info,
t.feedback, t.next_steps, t.intern_note, t.api_username, t.api_password,
t.created_at, t.updated_at`

const trialSelect = `SELECT ` + trialCols + `, i.name
FROM trial_requests t LEFT JOIN interns i ON t.assigned_intern_id = i.id`

func scanTrial(s scanner) (*domain.TrialRequest, error) {
	var (
		t            domain.TrialRequest
		useCase      sql.NullString
		integrations sql.NullString
		sessionDates sql.NullString
		projectInfo  sql.NullString
		internID     sql.NullInt64
		internName   sql.NullString
	)
	err := s.Scan(
		&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.Company, &t.Phone,
		&t.IndustryDomain, &useCase, &t.AccountType, &t.Status,
		&internID, &integrations, &sessionDates, &projectInfo,
		&t.Feedback, &t.NextSteps, &t.InternNote, &t.APIUsername, &t.APIPassword,
		&t.CreatedAt, &t.UpdatedAt,
		&internName,
	)
	if err != nil {
		return nil, err
	}
	t.PrimaryUseCase = domain.ParseStringList(useCase.String)
	t.SelectedIntegrations = domain.ParseStringList(integrations.String)
	t.SessionDates = domain.ParseStringList(sessionDates.String)
	t.ProjectInfo = domain.ParseJSONObject(projectInfo.String)
	t.AssignedInternID = int64Ptr(internID)
	t.InternName = internName.String
	return &t, nil
}

func (r *TrialRepoImpl) Create(ctx context.Context, t *domain.TrialRequest) (*domain.TrialRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if t.Status == "" {
		t.Status = t.AccountType.DefaultStatus()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check-then-insert per the original flow; the UNIQUE constraint is
	// the backstop against a racing insert.
	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM trial_requests WHERE email = ?`, t.Email).Scan(&existing)
	if err == nil {
		return nil, domain.ErrDuplicateEmail
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `INSERT INTO trial_requests (
		first_name, last_name, email, company, phone,
		industry_domain, primary_use_case, account_type, status,
		selected_integrations, session_dates, project_info,
		feedback, next_steps, intern_note, api_username, api_password,
		created_at, updated_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.FirstName, t.LastName, t.Email, t.Company, t.Phone,
		t.IndustryDomain, t.PrimaryUseCase.Encode(), t.AccountType, t.Status,
		t.SelectedIntegrations.Encode(), t.SessionDates.Encode(), t.ProjectInfo.Encode(),
		t.Feedback, t.NextSteps, t.InternNote, t.APIUsername, t.APIPassword,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	created, err := scanTrial(tx.QueryRowContext(ctx, trialSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TrialRepoImpl) GetByID(ctx context.Context, id int64) (*domain.TrialRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	t, err := scanTrial(r.db.QueryRowContext(ctx, trialSelect+` WHERE t.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *TrialRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.TrialRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, trialSelect+` ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrials(rows, limit)
}

func (r *TrialRepoImpl) ListByIntern(ctx context.Context, internID int64) ([]domain.TrialRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, trialSelect+` WHERE t.assigned_intern_id = ? ORDER BY t.created_at DESC, t.id DESC`, internID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrials(rows, 16)
}

func collectTrials(rows *sql.Rows, sizeHint int) ([]domain.TrialRequest, error) {
	ts := make([]domain.TrialRequest, 0, sizeHint)
	for rows.Next() {
		t, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, *t)
	}
	return ts, rows.Err()
}

func (r *TrialRepoImpl) Update(ctx context.Context, id int64, patch domain.TrialPatch) (*domain.TrialRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sets := make([]string, 0, 14)
	args := make([]any, 0, 15)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.IndustryDomain != nil {
		add("industry_domain", *patch.IndustryDomain)
	}
	if patch.PrimaryUseCase != nil {
		add("primary_use_case", patch.PrimaryUseCase.Encode())
	}
	if patch.SelectedIntegrations != nil {
		add("selected_integrations", patch.SelectedIntegrations.Encode())
	}
	if patch.SessionDates != nil {
		add("session_dates", patch.SessionDates.Encode())
	}
	if patch.Feedback != nil {
		add("feedback", *patch.Feedback)
	}
	if patch.NextSteps != nil {
		add("next_steps", *patch.NextSteps)
	}
	if patch.APIUsername != nil {
		add("api_username", *patch.APIUsername)
	}
	if patch.APIPassword != nil {
		add("api_password", *patch.APIPassword)
	}

	if len(sets) > 0 {
		add("updated_at", time.Now().UTC())
		args = append(args, id)
		q := `UPDATE trial_requests SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
		res, err := r.db.ExecContext(ctx, q, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrDuplicateEmail
			}
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.ErrNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *TrialRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM trial_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Assign moves the request to a new intern (or to nobody). Unassigning
// the old intern, assigning the new one and both counter updates are a
// single transaction; the previous assignee is returned so callers can
// notify both parties.
func (r *TrialRepoImpl) Assign(ctx context.Context, requestID int64, internID *int64) (*domain.TrialRequest, *int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var current sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT assigned_intern_id FROM trial_requests WHERE id = ?`, requestID).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	prev := int64Ptr(current)

	now := time.Now().UTC()

	if internID != nil {
		var exists int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM interns WHERE id = ?`, *internID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("intern %d: %w", *internID, domain.ErrNotFound)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	if prev != nil {
		_, err = tx.ExecContext(ctx, `UPDATE interns
			SET assigned_count = assigned_count - 1, updated_at = ?
			WHERE id = ?`, now, *prev)
		if err != nil {
			return nil, nil, err
		}
	}

	if internID != nil {
		_, err = tx.ExecContext(ctx, `UPDATE trial_requests
			SET assigned_intern_id = ?, status = ?, updated_at = ?
			WHERE id = ?`, *internID, domain.TrialAssigned, now, requestID)
		if err != nil {
			return nil, nil, err
		}
		_, err = tx.ExecContext(ctx, `UPDATE interns
			SET assigned_count = assigned_count + 1, updated_at = ?
			WHERE id = ?`, now, *internID)
		if err != nil {
			return nil, nil, err
		}
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE trial_requests
			SET assigned_intern_id = NULL, status = ?, updated_at = ?
			WHERE id = ?`, domain.TrialPending, now, requestID)
		if err != nil {
			return nil, nil, err
		}
	}

	if prev != nil {
		if err := recomputeSuccessRateTx(ctx, tx, *prev, now); err != nil {
			return nil, nil, err
		}
	}
	if internID != nil {
		if err := recomputeSuccessRateTx(ctx, tx, *internID, now); err != nil {
			return nil, nil, err
		}
	}

	updated, err := scanTrial(tx.QueryRowContext(ctx, trialSelect+` WHERE t.id = ?`, requestID))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return updated, prev, nil
}

// UpdateStatus applies a status transition. Only transitions that cross
// the completed boundary touch the assigned intern's counters.
func (r *TrialRepoImpl) UpdateStatus(ctx context.Context, id int64, status domain.TrialStatus) (*domain.TrialRequest, domain.TrialStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	var (
		oldStatus domain.TrialStatus
		internID  sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, `SELECT status, assigned_intern_id FROM trial_requests WHERE id = ?`, id).
		Scan(&oldStatus, &internID)
	if err == sql.ErrNoRows {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `UPDATE trial_requests SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	if err != nil {
		return nil, "", err
	}

	if internID.Valid {
		entering := status.IsCompleted() && !oldStatus.IsCompleted()
		leaving := !status.IsCompleted() && oldStatus.IsCompleted()

		if entering {
			_, err = tx.ExecContext(ctx, `UPDATE interns
				SET completed_count = completed_count + 1, updated_at = ?
				WHERE id = ?`, now, internID.Int64)
		} else if leaving {
			_, err = tx.ExecContext(ctx, `UPDATE interns
				SET completed_count = MAX(completed_count - 1, 0), updated_at = ?
				WHERE id = ?`, now, internID.Int64)
		}
		if err != nil {
			return nil, "", err
		}
		if entering || leaving {
			if err := recomputeSuccessRateTx(ctx, tx, internID.Int64, now); err != nil {
				return nil, "", err
			}
		}
	}

	updated, err := scanTrial(tx.QueryRowContext(ctx, trialSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, "", err
	}
	if err := tx.Commit(); err != nil {
		return nil, "", err
	}
	return updated, oldStatus, nil
}

func (r *TrialRepoImpl) MergeProject(ctx context.Context, id int64, fields map[string]any) (*domain.TrialRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var stored sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT project_info FROM trial_requests WHERE id = ?`, id).Scan(&stored)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	merged := domain.ParseJSONObject(stored.String).Merge(fields)
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `UPDATE trial_requests SET project_info = ?, updated_at = ? WHERE id = ?`,
		merged.Encode(), now, id)
	if err != nil {
		return nil, err
	}

	updated, err := scanTrial(tx.QueryRowContext(ctx, trialSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TrialRepoImpl) UpdateInternNote(ctx context.Context, id int64, note string) (*domain.TrialRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE trial_requests SET intern_note = ?, updated_at = ? WHERE id = ?`,
		note, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

var _ TrialRepo = (*TrialRepoImpl)(nil)
