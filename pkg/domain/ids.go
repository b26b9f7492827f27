// Package domain holds shared domain primitives: typed identifiers that make
// cross-entity ID mixups a compile error instead of a data leak.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

// Typed IDs. Each wraps a UUID so a VisitID can never be passed where a
// ClientID is expected.
type (
	UserID    uuid.UUID
	ClientID  uuid.UUID
	VisitID   uuid.UUID
	SessionID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseClientID validates and converts a string into a ClientID.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client")
	return ClientID(u), err
}

// ParseVisitID validates and converts a string into a VisitID.
func ParseVisitID(s string) (VisitID, error) {
	u, err := parseUUID(s, "visit")
	return VisitID(u), err
}

// ParseSessionID validates and converts a string into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session")
	return SessionID(u), err
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id ClientID) String() string  { return uuid.UUID(id).String() }
func (id VisitID) String() string   { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ClientID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id VisitID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText implementations keep JSON encoding as plain UUID strings.
func (id UserID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ClientID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id VisitID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ClientID) UnmarshalText(b []byte) error {
	parsed, err := ParseClientID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VisitID) UnmarshalText(b []byte) error {
	parsed, err := ParseVisitID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	parsed, err := ParseSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
