package service

import (
	"context"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
)

const defaultNotificationLimit = 50

// NotificationView is the list payload plus the unread counter the UI
// polls for.
type NotificationView struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type NotificationService interface {
	List(ctx context.Context, rt domain.RecipientType, recipientID *int64, limit int, unreadOnly bool) (*NotificationView, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, rt domain.RecipientType, recipientID *int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type notificationService struct {
	notifications sqlite.NotificationRepo
}

func NewNotificationService(notifications sqlite.NotificationRepo) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) List(ctx context.Context, rt domain.RecipientType, recipientID *int64, limit int, unreadOnly bool) (*NotificationView, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	ns, err := s.notifications.List(ctx, rt, recipientID, limit, unreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.UnreadCount(ctx, rt, recipientID)
	if err != nil {
		return nil, err
	}

	return &NotificationView{Notifications: ns, UnreadCount: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	return s.notifications.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, rt domain.RecipientType, recipientID *int64) (int64, error) {
	return s.notifications.MarkAllRead(ctx, rt, recipientID)
}

func (s *notificationService) Delete(ctx context.Context, id int64) error {
	return s.notifications.Delete(ctx, id)
}
