package domain

import "time"

// DemoLifetime is how long demo credentials stay valid after creation
// or regeneration.
const DemoLifetime = 10 * 24 * time.Hour

// DemoCredential is a time-boxed demo account. The password stays
// plaintext because it is handed to the customer and redisplayed in the
// admin view; it authenticates nothing inside this system.
type DemoCredential struct {
	ID int64 `json:"id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`

	Username string `json:"username"`
	Password string `json:"password"`

	SelectedIntegrations StringList `json:"selected_integrations"`

	IsActive  bool      `json:"is_active"`
	ExpiresAt time.Time `json:"expires_at"`

	AssignedInternID *int64 `json:"assigned_intern_id,omitempty"`
	InternName       string `json:"intern_name,omitempty"`

	AdminNote  string `json:"admin_note,omitempty"`
	InternNote string `json:"intern_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DemoPatch struct {
	FirstName            *string     `json:"first_name,omitempty"`
	LastName             *string     `json:"last_name,omitempty"`
	Company              *string     `json:"company,omitempty"`
	Phone                *string     `json:"phone,omitempty"`
	SelectedIntegrations *StringList `json:"selected_integrations,omitempty"`
	IsActive             *bool       `json:"is_active,omitempty"`
}
