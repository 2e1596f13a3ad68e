package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/smartcardai/trialdesk/internal/domain"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	List(ctx context.Context, rt domain.RecipientType, recipientID *int64, limit int, unreadOnly bool) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, rt domain.RecipientType, recipientID *int64) (int, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, rt domain.RecipientType, recipientID *int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type NotificationRepoImpl struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const notificationCols = `id, recipient_type, recipient_id, title, message, type,
read_status, related_entity_type, related_entity_id, created_at`

func scanNotification(s scanner) (*domain.Notification, error) {
	var (
		n           domain.Notification
		recipientID sql.NullInt64
		relatedID   sql.NullInt64
	)
	err := s.Scan(
		&n.ID, &n.RecipientType, &recipientID, &n.Title, &n.Message, &n.Type,
		&n.ReadStatus, &n.RelatedEntityType, &relatedID, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.RecipientID = int64Ptr(recipientID)
	n.RelatedEntityID = int64Ptr(relatedID)
	return &n, nil
}

func (r *NotificationRepoImpl) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if n.Type == "" {
		n.Type = domain.NotifyInfo
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO notifications (
		recipient_type, recipient_id, title, message, type,
		read_status, related_entity_type, related_entity_id, created_at
	) VALUES (?,?,?,?,?,?,?,?,?)`,
		n.RecipientType, nullInt64(n.RecipientID), n.Title, n.Message, n.Type,
		n.ReadStatus, n.RelatedEntityType, nullInt64(n.RelatedEntityID), now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	out := *n
	out.ID = id
	out.CreatedAt = now
	return &out, nil
}

// recipientClause matches admin-wide rows when recipientID is nil and
// exactly one intern's rows otherwise.
func recipientClause(rt domain.RecipientType, recipientID *int64) (string, []any) {
	if recipientID == nil {
		return "recipient_type = ? AND recipient_id IS NULL", []any{rt}
	}
	return "recipient_type = ? AND recipient_id = ?", []any{rt, *recipientID}
}

func (r *NotificationRepoImpl) List(ctx context.Context, rt domain.RecipientType, recipientID *int64, limit int, unreadOnly bool) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args := recipientClause(rt, recipientID)
	var sb strings.Builder
	sb.WriteString(`SELECT ` + notificationCols + ` FROM notifications WHERE ` + where)
	if unreadOnly {
		sb.WriteString(` AND read_status = 0`)
	}
	sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	if limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ns := make([]domain.Notification, 0, 16)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		ns = append(ns, *n)
	}
	return ns, rows.Err()
}

func (r *NotificationRepoImpl) UnreadCount(ctx context.Context, rt domain.RecipientType, recipientID *int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args := recipientClause(rt, recipientID)
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE `+where+` AND read_status = 0`, args...,
	).Scan(&count)
	return count, err
}

func (r *NotificationRepoImpl) MarkRead(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read_status = 1 WHERE id = ?`, id)
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

func (r *NotificationRepoImpl) MarkAllRead(ctx context.Context, rt domain.RecipientType, recipientID *int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args := recipientClause(rt, recipientID)
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_status = 1 WHERE `+where+` AND read_status = 0`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationRepoImpl) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
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

var _ NotificationRepo = (*NotificationRepoImpl)(nil)
