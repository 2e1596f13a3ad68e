package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smartcardai/trialdesk/pkg/logger"
)

// Publisher is the outbound side of the event bus. Publishing is
// best-effort: callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSBus struct {
	conn *nats.Conn
}

func NewNATSBus(url string) (*NATSBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSBus{conn: conn}, nil
}

func (n *NATSBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopBus is used when no NATS URL is configured. Events are dropped
// after a debug log line.
type NoopBus struct{}

func NewNoopBus() *NoopBus { return &NoopBus{} }

func (n *NoopBus) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}

func (n *NoopBus) Close() error { return nil }

// Event subjects
const (
	TrialCreated       = "trial.created"
	TrialAssigned      = "trial.assigned"
	TrialStatusChanged = "trial.status_changed"
	TrialDeleted       = "trial.deleted"

	DemoCreated     = "demo.created"
	DemoRegenerated = "demo.regenerated"
	DemoAssigned    = "demo.assigned"

	InternCreated = "intern.created"
	InternDeleted = "intern.deleted"
)

// Event payloads
type TrialCreatedEvent struct {
	RequestID   int64     `json:"request_id"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	AccountType string    `json:"account_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type TrialAssignedEvent struct {
	RequestID  int64     `json:"request_id"`
	InternID   *int64    `json:"intern_id,omitempty"`
	PrevIntern *int64    `json:"prev_intern_id,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

type TrialStatusChangedEvent struct {
	RequestID int64     `json:"request_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TrialDeletedEvent struct {
	RequestID int64     `json:"request_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type DemoCreatedEvent struct {
	DemoID    int64     `json:"demo_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DemoRegeneratedEvent struct {
	DemoID    int64     `json:"demo_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DemoAssignedEvent struct {
	DemoID     int64     `json:"demo_id"`
	InternID   *int64    `json:"intern_id,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

type InternCreatedEvent struct {
	InternID int64  `json:"intern_id"`
	Username string `json:"username"`
}

type InternDeletedEvent struct {
	InternID  int64     `json:"intern_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
