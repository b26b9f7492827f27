package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

// InMemory keeps visits in a map. It favors clarity over performance.
type InMemory struct {
	mu     sync.RWMutex
	visits map[id.VisitID]*models.Visit
}

func NewInMemory() *InMemory {
	return &InMemory{visits: make(map[id.VisitID]*models.Visit)}
}

func (s *InMemory) Create(_ context.Context, visit *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.visits[visit.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *visit
	s.visits[visit.ID] = &cp
	return nil
}

func (s *InMemory) FindByOwnerAndID(_ context.Context, ownerID id.UserID, visitID id.VisitID) (*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visits[visitID]
	if !ok || v.UserID != ownerID {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visit
	for _, v := range s.visits {
		if v.UserID == ownerID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
