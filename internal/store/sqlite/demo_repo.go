package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
)

type DemoRepo interface {
	Create(ctx context.Context, d *domain.DemoCredential) (*domain.DemoCredential, error)
	GetByID(ctx context.Context, id int64) (*domain.DemoCredential, error)
	List(ctx context.Context) ([]domain.DemoCredential, error)
	ListByIntern(ctx context.Context, internID int64) ([]domain.DemoCredential, error)
	Update(ctx context.Context, id int64, patch domain.DemoPatch) (*domain.DemoCredential, error)
	Delete(ctx context.Context, id int64) error
	Regenerate(ctx context.Context, id int64, username, password string, expiresAt time.Time) (*domain.DemoCredential, error)
	Assign(ctx context.Context, demoID int64, internID *int64) (*domain.DemoCredential, error)
	UpdateAdminNote(ctx context.Context, id int64, note string) (*domain.DemoCredential, error)
	UpdateInternNote(ctx context.Context, id int64, note string) (*domain.DemoCredential, error)
}

type DemoRepoImpl struct{ db *sql.DB }

func NewDemoRepo(db *sql.DB) *DemoRepoImpl { return &DemoRepoImpl{db: db} }

const demoCols = `d.id, d.first_name, d.last_name, d.email, d.company, d.phone,
d.username, d.password, d.selected_integrations, d.is_active, d.expires_at,
d.assigned_intern_id, i.name, d.admin_note, d.intern_note, d.created_at, d.updated_at`

const demoSelect = `SELECT ` + demoCols + ` FROM demo_credentials d
	LEFT JOIN interns i ON i.id = d.assigned_intern_id`

func scanDemo(s scanner) (*domain.DemoCredential, error) {
	var (
		d            domain.DemoCredential
		integrations sql.NullString
		internID     sql.NullInt64
		internName   sql.NullString
	)
	err := s.Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.Company, &d.Phone,
		&d.Username, &d.Password, &integrations, &d.IsActive, &d.ExpiresAt,
		&internID, &internName, &d.AdminNote, &d.InternNote, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.SelectedIntegrations = domain.ParseStringList(integrations.String)
	d.AssignedInternID = int64Ptr(internID)
	d.InternName = internName.String
	return &d, nil
}

// Create rejects the email when another active credential already
// carries it; expired or deactivated rows do not block re-signup. The
// partial unique index backstops the check under concurrent writers.
func (r *DemoRepoImpl) Create(ctx context.Context, d *domain.DemoCredential) (*domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM demo_credentials WHERE email = ? AND is_active = 1`, d.Email).Scan(&existing)
	if err == nil {
		return nil, domain.ErrDuplicateActiveEmail
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `INSERT INTO demo_credentials (
		first_name, last_name, email, company, phone,
		username, password, selected_integrations, is_active, expires_at,
		assigned_intern_id, admin_note, intern_note, created_at, updated_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.FirstName, d.LastName, d.Email, d.Company, d.Phone,
		d.Username, d.Password, d.SelectedIntegrations.Encode(), d.IsActive, d.ExpiresAt,
		nullInt64(d.AssignedInternID), d.AdminNote, d.InternNote, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateActiveEmail
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *DemoRepoImpl) GetByID(ctx context.Context, id int64) (*domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	d, err := scanDemo(r.db.QueryRowContext(ctx, demoSelect+` WHERE d.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return d, err
}

func (r *DemoRepoImpl) List(ctx context.Context) ([]domain.DemoCredential, error) {
	return r.list(ctx, demoSelect+` ORDER BY d.created_at DESC, d.id DESC`)
}

func (r *DemoRepoImpl) ListByIntern(ctx context.Context, internID int64) ([]domain.DemoCredential, error) {
	return r.list(ctx, demoSelect+` WHERE d.assigned_intern_id = ? ORDER BY d.created_at DESC, d.id DESC`, internID)
}

func (r *DemoRepoImpl) list(ctx context.Context, query string, args ...any) ([]domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	demos := make([]domain.DemoCredential, 0, 16)
	for rows.Next() {
		d, err := scanDemo(rows)
		if err != nil {
			return nil, err
		}
		demos = append(demos, *d)
	}
	return demos, rows.Err()
}

func (r *DemoRepoImpl) Update(ctx context.Context, id int64, patch domain.DemoPatch) (*domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
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
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.SelectedIntegrations != nil {
		add("selected_integrations", patch.SelectedIntegrations.Encode())
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	if len(sets) > 0 {
		add("updated_at", time.Now().UTC())
		args = append(args, id)
		res, err := r.db.ExecContext(ctx, `UPDATE demo_credentials SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrDuplicateActiveEmail
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

func (r *DemoRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM demo_credentials WHERE id = ?`, id)
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

// Regenerate swaps in fresh credentials, restarts the expiry clock and
// reactivates the row.
func (r *DemoRepoImpl) Regenerate(ctx context.Context, id int64, username, password string, expiresAt time.Time) (*domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE demo_credentials
		SET username = ?, password = ?, expires_at = ?, is_active = 1, updated_at = ?
		WHERE id = ?`, username, password, expiresAt, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateActiveEmail
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

// Assign points the credential at an intern, or clears the assignment
// when internID is nil. Demo assignments never move the intern's
// workload counters; those track trial requests only.
func (r *DemoRepoImpl) Assign(ctx context.Context, demoID int64, internID *int64) (*domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if internID != nil {
		var exists int64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM interns WHERE id = ?`, *internID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	res, err := r.db.ExecContext(ctx, `UPDATE demo_credentials
		SET assigned_intern_id = ?, updated_at = ?
		WHERE id = ?`, nullInt64(internID), time.Now().UTC(), demoID)
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
	return r.GetByID(ctx, demoID)
}

func (r *DemoRepoImpl) UpdateAdminNote(ctx context.Context, id int64, note string) (*domain.DemoCredential, error) {
	return r.updateNote(ctx, id, "admin_note", note)
}

func (r *DemoRepoImpl) UpdateInternNote(ctx context.Context, id int64, note string) (*domain.DemoCredential, error) {
	return r.updateNote(ctx, id, "intern_note", note)
}

func (r *DemoRepoImpl) updateNote(ctx context.Context, id int64, col, note string) (*domain.DemoCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE demo_credentials SET `+col+` = ?, updated_at = ? WHERE id = ?`,
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

var _ DemoRepo = (*DemoRepoImpl)(nil)
