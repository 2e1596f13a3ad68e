package domain

import "time"

type TrialStatus string

const (
	TrialPending    TrialStatus = "pending"
	TrialAssigned   TrialStatus = "assigned"
	TrialCompleted  TrialStatus = "completed"
	TrialDemoActive TrialStatus = "demo_active"
)

// Admins may set free-text statuses beyond the well-known ones, so
// there is no closed Parse helper here. Only the completed boundary
// carries bookkeeping semantics.
func (s TrialStatus) IsCompleted() bool { return s == TrialCompleted }

type AccountType string

const (
	AccountTypeLD   AccountType = "ld"
	AccountTypeDemo AccountType = "demo"
)

// DefaultStatus returns the lifecycle status a fresh request starts in.
func (t AccountType) DefaultStatus() TrialStatus {
	if t == AccountTypeDemo {
		return TrialDemoActive
	}
	return TrialPending
}

type TrialRequest struct {
	ID int64 `json:"id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`

	IndustryDomain string      `json:"industry_domain"`
	PrimaryUseCase StringList  `json:"primary_use_case"`
	AccountType    AccountType `json:"account_type"`
	Status         TrialStatus `json:"status"`

	AssignedInternID *int64 `json:"assigned_intern_id,omitempty"`
	InternName       string `json:"intern_name,omitempty"`

	SelectedIntegrations StringList `json:"selected_integrations"`
	SessionDates         StringList `json:"session_dates"`
	ProjectInfo          JSONObject `json:"project_info"`
	Feedback             string     `json:"feedback,omitempty"`
	NextSteps            string     `json:"next_steps,omitempty"`
	InternNote           string     `json:"intern_note,omitempty"`

	APIUsername string `json:"api_username,omitempty"`
	APIPassword string `json:"api_password,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterRequest is the signup payload. JSON keys follow the public
// form fields.
type RegisterRequest struct {
	FirstName            string     `json:"firstName" validate:"required"`
	LastName             string     `json:"lastName" validate:"required"`
	Email                string     `json:"email" validate:"required,email"`
	Company              string     `json:"company" validate:"required"`
	Phone                string     `json:"phone" validate:"required"`
	IndustryDomain       string     `json:"industryDomain"`
	PrimaryUseCase       StringList `json:"primaryUseCase"`
	SelectedIntegrations StringList `json:"selectedIntegrations"`
	AccountType          string     `json:"accountType" validate:"omitempty,oneof=ld demo"`
}

// TrialPatch carries the admin-editable fields of a trial request. Nil
// pointers leave the column untouched.
type TrialPatch struct {
	FirstName            *string     `json:"first_name,omitempty"`
	LastName             *string     `json:"last_name,omitempty"`
	Email                *string     `json:"email,omitempty" validate:"omitempty,email"`
	Company              *string     `json:"company,omitempty"`
	Phone                *string     `json:"phone,omitempty"`
	IndustryDomain       *string     `json:"industry_domain,omitempty"`
	PrimaryUseCase       *StringList `json:"primary_use_case,omitempty"`
	SelectedIntegrations *StringList `json:"selected_integrations,omitempty"`
	SessionDates         *StringList `json:"session_dates,omitempty"`
	Feedback             *string     `json:"feedback,omitempty"`
	NextSteps            *string     `json:"next_steps,omitempty"`
	APIUsername          *string     `json:"api_username,omitempty"`
	APIPassword          *string     `json:"api_password,omitempty"`
}
