package models

import (
	"strings"
	"time"

	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
)

// User is an authenticated account. The password hash never serializes.
//
// Invariants:
//   - Email is non-empty and contains an @ with a dot in the domain part
//   - PasswordHash is non-empty
type User struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewUser(userID id.UserID, email, passwordHash string, now time.Time) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// ValidateEmail applies the same shape check the login form applied: a
// non-empty local part, an @, and a dotted domain.
func ValidateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return dErrors.New(dErrors.CodeBadRequest, "el correo electrónico no es válido")
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return dErrors.New(dErrors.CodeBadRequest, "el correo electrónico no es válido")
	}
	return nil
}
