// Package session models the session lifecycle as an explicit state machine.
//
// States: Unknown (initial, auth status not yet resolved), Anonymous, and
// Authenticated. The only legal transitions are:
//
//	Unknown       -> Anonymous        (resolved with no account)
//	Unknown       -> Authenticated    (resolved with an account)
//	Anonymous     -> Authenticated    (login or registration)
//	Authenticated -> Anonymous        (logout or revoked token)
//
// Every other transition is an invariant violation. The session stream
// handler drives one machine per subscriber and emits a session-changed
// event on each transition.
package session

import (
	"sync"

	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

// State is the session resolution state.
type State string

const (
	StateUnknown       State = "unknown"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Identity is the resolved account attached to an authenticated state.
type Identity struct {
	UserID id.UserID `json:"user_id"`
	Email  string    `json:"email"`
}

// Machine tracks one subscriber's session state. Safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	state    State
	identity Identity
}

// NewMachine starts in StateUnknown.
func NewMachine() *Machine {
	return &Machine{state: StateUnknown}
}

// Current returns the state and, when authenticated, the identity.
func (m *Machine) Current() (State, Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.identity
}

// Resolve moves Unknown to Anonymous or Authenticated once the initial auth
// status is known.
func (m *Machine) Resolve(identity *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateUnknown {
		return dErrors.New(dErrors.CodeInvariantViolation, "session already resolved")
	}
	if identity == nil {
		m.state = StateAnonymous
		return nil
	}
	m.state = StateAuthenticated
	m.identity = *identity
	return nil
}

// Login moves Anonymous to Authenticated.
func (m *Machine) Login(identity Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateAnonymous:
		m.state = StateAuthenticated
		m.identity = identity
		return nil
	case StateUnknown:
		return dErrors.New(dErrors.CodeInvariantViolation, "session not yet resolved")
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "session already authenticated")
	}
}

// Logout moves Authenticated to Anonymous.
func (m *Machine) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return dErrors.New(dErrors.CodeInvariantViolation, "no authenticated session")
	}
	m.state = StateAnonymous
	m.identity = Identity{}
	return nil
}
