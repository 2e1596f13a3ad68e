package domain

import "time"

type RecipientType string

const (
	RecipientAdmin  RecipientType = "admin"
	RecipientIntern RecipientType = "intern"
)

func ParseRecipientType(s string) (RecipientType, bool) {
	switch RecipientType(s) {
	case RecipientAdmin, RecipientIntern:
		return RecipientType(s), true
	default:
		return "", false
	}
}

type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

// Notification is an informational row surfaced to admin or a specific
// intern. RecipientID is nil for admin-wide notifications. The related
// entity reference is loose: no referential integrity is enforced.
type Notification struct {
	ID            int64            `json:"id"`
	RecipientType RecipientType    `json:"recipient_type"`
	RecipientID   *int64           `json:"recipient_id,omitempty"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Type          NotificationType `json:"type"`
	ReadStatus    bool             `json:"read_status"`

	RelatedEntityType string `json:"related_entity_type,omitempty"`
	RelatedEntityID   *int64 `json:"related_entity_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
