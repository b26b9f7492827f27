package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Rolando1980/client-geo-logger/internal/client/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

// InMemory keeps clients in a map. It favors clarity over performance.
type InMemory struct {
	mu      sync.RWMutex
	clients map[id.ClientID]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[id.ClientID]*models.Client)}
}

func (s *InMemory) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[client.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *client
	s.clients[client.ID] = &cp
	return nil
}

func (s *InMemory) FindByOwnerAndID(_ context.Context, ownerID id.UserID, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok || c.UserID != ownerID {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Client
	for _, c := range s.clients {
		if c.UserID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.clients[client.ID]
	if !ok || existing.UserID != client.UserID {
		return sentinel.ErrNotFound
	}
	cp := *client
	s.clients[client.ID] = &cp
	return nil
}
