// Package store persists clients. Memory and Postgres implementations share
// one behavioral contract; the memory store backs unit tests and dev mode.
package store

import (
	"context"

	"github.com/Rolando1980/client-geo-logger/internal/client/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
)

// Store is the client persistence contract.
//
// Owner-scoped methods treat a record owned by another user as absent and
// return sentinel.ErrNotFound: ownership is the only access-control
// boundary, so existence must not leak across it. ListByOwner orders by
// name ascending. There is no delete.
type Store interface {
	Create(ctx context.Context, client *models.Client) error
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, clientID id.ClientID) (*models.Client, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
}
