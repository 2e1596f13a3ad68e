package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
)

type InternRepo interface {
	Create(ctx context.Context, in *domain.Intern) (*domain.Intern, error)
	GetByID(ctx context.Context, id int64) (*domain.Intern, error)
	GetByUsername(ctx context.Context, username string) (*domain.Intern, error)
	List(ctx context.Context) ([]domain.Intern, error)
	Update(ctx context.Context, id int64, patch domain.InternPatch) (*domain.Intern, error)
	UpdateCredentials(ctx context.Context, id int64, username, passwordHash string) (*domain.Intern, error)
	Delete(ctx context.Context, id int64) error
	RecomputeSuccessRate(ctx context.Context, id int64) error
}

type InternRepoImpl struct{ db *sql.DB }

func NewInternRepo(db *sql.DB) *InternRepoImpl { return &InternRepoImpl{db: db} }

const internCols = `id, name, username, password_hash, email, phone, whatsapp,
specialization, integrations, status, assigned_count, completed_count,
success_rate, created_at, updated_at`

func scanIntern(s scanner) (*domain.Intern, error) {
	var (
		in           domain.Intern
		integrations sql.NullString
	)
	err := s.Scan(
		&in.ID, &in.Name, &in.Username, &in.PasswordHash, &in.Email, &in.Phone, &in.Whatsapp,
		&in.Specialization, &integrations, &in.Status, &in.AssignedCount, &in.CompletedCount,
		&in.SuccessRate, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	in.Integrations = domain.ParseStringList(integrations.String)
	return &in, nil
}

func (r *InternRepoImpl) Create(ctx context.Context, in *domain.Intern) (*domain.Intern, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if in.Status == "" {
		in.Status = domain.InternActive
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO interns (
		name, username, password_hash, email, phone, whatsapp,
		specialization, integrations, status, created_at, updated_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		in.Name, in.Username, in.PasswordHash, in.Email, in.Phone, in.Whatsapp,
		in.Specialization, in.Integrations.Encode(), in.Status, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewValidationError("username is already taken")
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *InternRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Intern, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	in, err := scanIntern(r.db.QueryRowContext(ctx, `SELECT `+internCols+` FROM interns WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return in, err
}

func (r *InternRepoImpl) GetByUsername(ctx context.Context, username string) (*domain.Intern, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	in, err := scanIntern(r.db.QueryRowContext(ctx, `SELECT `+internCols+` FROM interns WHERE username = ?`, username))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return in, err
}

func (r *InternRepoImpl) List(ctx context.Context) ([]domain.Intern, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+internCols+` FROM interns ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ins := make([]domain.Intern, 0, 16)
	for rows.Next() {
		in, err := scanIntern(rows)
		if err != nil {
			return nil, err
		}
		ins = append(ins, *in)
	}
	return ins, rows.Err()
}

func (r *InternRepoImpl) Update(ctx context.Context, id int64, patch domain.InternPatch) (*domain.Intern, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Whatsapp != nil {
		add("whatsapp", *patch.Whatsapp)
	}
	if patch.Specialization != nil {
		add("specialization", *patch.Specialization)
	}
	if patch.Integrations != nil {
		add("integrations", patch.Integrations.Encode())
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	if len(sets) > 0 {
		add("updated_at", time.Now().UTC())
		args = append(args, id)
		res, err := r.db.ExecContext(ctx, `UPDATE interns SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
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
	}

	return r.GetByID(ctx, id)
}

func (r *InternRepoImpl) UpdateCredentials(ctx context.Context, id int64, username, passwordHash string) (*domain.Intern, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE interns
		SET username = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`, username, passwordHash, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewValidationError("username is already taken")
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
	return r.GetByID(ctx, id)
}

// Delete removes the intern and nulls out every reference to them on
// trial requests and demo credentials. References are cleared, never
// cascaded, in the same transaction.
func (r *InternRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM interns WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `UPDATE trial_requests
		SET assigned_intern_id = NULL, updated_at = ?
		WHERE assigned_intern_id = ?`, now, id)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE demo_credentials
		SET assigned_intern_id = NULL, updated_at = ?
		WHERE assigned_intern_id = ?`, now, id)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM interns WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *InternRepoImpl) RecomputeSuccessRate(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, successRateQuery, time.Now().UTC(), id)
	return err
}

// success_rate = completed/assigned*100 when assigned > 0, else 0.
const successRateQuery = `UPDATE interns
	SET success_rate = CASE
		WHEN assigned_count > 0 THEN completed_count * 100.0 / assigned_count
		ELSE 0.0
	END, updated_at = ?
	WHERE id = ?`

func recomputeSuccessRateTx(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, successRateQuery, now, id)
	return err
}

var _ InternRepo = (*InternRepoImpl)(nil)
