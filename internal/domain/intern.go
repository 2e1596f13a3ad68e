package domain

import "time"

type InternStatus string

const (
	InternActive   InternStatus = "active"
	InternInactive InternStatus = "inactive"
	InternOnLeave  InternStatus = "on_leave"
)

func ParseInternStatus(s string) (InternStatus, bool) {
	switch InternStatus(s) {
	case InternActive, InternInactive, InternOnLeave:
		return InternStatus(s), true
	default:
		return "", false
	}
}

// Intern is a staff member assignable to trial requests and demo
// accounts. SuccessRate is derived from the two counters and always
// recomputed in the store, never patched directly.
type Intern struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	Username     string `json:"username"`
	PasswordHash string `json:"-"`

	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`

	Specialization string       `json:"specialization"`
	Integrations   StringList   `json:"integrations"`
	Status         InternStatus `json:"status"`

	AssignedCount  int     `json:"assigned_count"`
	CompletedCount int     `json:"completed_count"`
	SuccessRate    float64 `json:"success_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateInternRequest struct {
	Name           string     `json:"name" validate:"required"`
	Username       string     `json:"username" validate:"required,min=3"`
	Password       string     `json:"password" validate:"required,min=6"`
	Email          string     `json:"email" validate:"required,email"`
	Phone          string     `json:"phone"`
	Whatsapp       string     `json:"whatsapp"`
	Specialization string     `json:"specialization"`
	Integrations   StringList `json:"integrations"`
	Status         string     `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
}

type InternPatch struct {
	Name           *string     `json:"name,omitempty"`
	Email          *string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string     `json:"phone,omitempty"`
	Whatsapp       *string     `json:"whatsapp,omitempty"`
	Specialization *string     `json:"specialization,omitempty"`
	Integrations   *StringList `json:"integrations,omitempty"`
	Status         *string     `json:"status,omitempty" validate:"omitempty,oneof=active inactive on_leave"`
}

type InternCredentials struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}
