// Package audit captures an append-only trail of account and record events.
// Events flow through an async worker into a sink: Kafka when brokers are
// configured, an in-memory store otherwise.
package audit

import (
	"context"
	"time"

	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionUserRegistered Action = "user_registered"
	ActionUserLoggedIn   Action = "user_logged_in"
	ActionUserLoggedOut  Action = "user_logged_out"
	ActionLoginFailed    Action = "login_failed"
	ActionClientCreated  Action = "client_created"
	ActionClientUpdated  Action = "client_updated"
	ActionVisitCreated   Action = "visit_created"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    id.UserID `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Subject   string    `json:"subject,omitempty"` // affected record ID
	Reason    string    `json:"reason,omitempty"`  // failure classification
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what services depend on; the async publisher implements it.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}
