// Package store persists visits. Visits are append-only: the contract has
// no update or delete.
package store

import (
	"context"

	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
)

// Store is the visit persistence contract.
//
// Owner-scoped reads treat another user's visit as absent and return
// sentinel.ErrNotFound. ListByOwner orders by creation time descending.
type Store interface {
	Create(ctx context.Context, visit *models.Visit) error
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, visitID id.VisitID) (*models.Visit, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Visit, error)
}
