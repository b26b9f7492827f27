// Package user persists accounts. Memory and Postgres implementations share
// one behavioral contract; the memory store backs unit tests and dev mode.
package user

import (
	"context"

	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
)

// Store is the account persistence contract.
//
// Create returns sentinel.ErrConflict when the email is already registered
// (case-insensitive). Find methods return sentinel.ErrNotFound for unknown
// accounts.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
