package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"
)

// RateLimitRepo implements a fixed-window limiter backed by the
// rate_limits table, so limits survive restarts and apply across
// processes sharing the database file.
type RateLimitRepo interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type RateLimitRepoImpl struct{ db *sql.DB }

func NewRateLimitRepo(db *sql.DB) *RateLimitRepoImpl { return &RateLimitRepoImpl{db: db} }

// hashKey keeps raw client addresses out of the database file.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Allow reports whether the caller identified by key may proceed, and
// records the attempt. Expired windows are pruned opportunistically.
func (r *RateLimitRepoImpl) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	hashed := hashKey(key)
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_limits WHERE expires_at <= ?`, now); err != nil {
		return false, err
	}

	var count int
	err = tx.QueryRowContext(ctx, `SELECT count FROM rate_limits WHERE key = ?`, hashed).Scan(&count)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `INSERT INTO rate_limits (key, count, window_start, expires_at)
			VALUES (?, 1, ?, ?)`, hashed, now, now.Add(window))
		if err != nil {
			return false, err
		}
		return true, tx.Commit()
	case err != nil:
		return false, err
	}

	if count >= limit {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `UPDATE rate_limits SET count = count + 1 WHERE key = ?`, hashed); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

var _ RateLimitRepo = (*RateLimitRepoImpl)(nil)
