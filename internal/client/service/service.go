// Package service implements the client lifecycle: create, update, fetch,
// and list. Records are owner-scoped and never deleted.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	"github.com/Rolando1980/client-geo-logger/internal/client/models"
	"github.com/Rolando1980/client-geo-logger/internal/client/store"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

const (
	msgClientNotFound = "cliente no encontrado"
	msgUnknown        = "no se pudo completar la operación"
)

// Notifier pushes a "snapshot invalidated" tick to live-read subscribers of
// a topic. The watch bridge satisfies it.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

// Topic names the live-read topic carrying one owner's client snapshots.
func Topic(ownerID id.UserID) string {
	return "clients:" + ownerID.String()
}

// Service orchestrates client writes and reads for the authenticated owner.
type Service struct {
	clients store.Store
	watch   Notifier
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(clients store.Store, watch Notifier, auditor audit.Emitter, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		clients: clients,
		watch:   watch,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Create validates the draft, stamps the internal fields, and persists a new
// client owned by the calling user.
func (s *Service) Create(ctx context.Context, d models.Draft) (*models.Client, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	c, err := models.NewClient(
		id.ClientID(uuid.New()),
		ownerID,
		requestcontext.UserEmail(ctx),
		d,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.clients.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	if s.metrics != nil {
		s.metrics.ClientsCreated.Inc()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionClientCreated,
		UserID:    ownerID,
		Email:     requestcontext.UserEmail(ctx),
		Subject:   c.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
	s.watch.Notify(ctx, Topic(ownerID))

	return c, nil
}

// Update replaces the user-editable fields of an owned client. Internal
// fields and ownership survive. A client owned by someone else reads as
// absent.
func (s *Service) Update(ctx context.Context, clientID id.ClientID, d models.Draft) (*models.Client, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.clients.FindByOwnerAndID(ctx, ownerID, clientID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if err := c.ApplyUpdate(d, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, s.mapStoreErr(err)
	}

	if s.metrics != nil {
		s.metrics.ClientsUpdated.Inc()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionClientUpdated,
		UserID:    ownerID,
		Email:     requestcontext.UserEmail(ctx),
		Subject:   c.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
	s.watch.Notify(ctx, Topic(ownerID))

	return c, nil
}

// Get fetches one owned client.
func (s *Service) Get(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.FindByOwnerAndID(ctx, ownerID, clientID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return c, nil
}

// List returns the owner's clients ordered by name. A non-empty search term
// filters case-insensitively over name, document number, and district.
func (s *Service) List(ctx context.Context, search string) ([]*models.Client, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	search = strings.TrimSpace(strings.ToLower(search))
	if search == "" {
		return clients, nil
	}
	filtered := clients[:0:0]
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), search) ||
			strings.Contains(strings.ToLower(c.DocumentNumber), search) ||
			strings.Contains(strings.ToLower(c.District), search) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *Service) owner(ctx context.Context) (id.UserID, error) {
	ownerID := requestcontext.UserID(ctx)
	if ownerID.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "no authenticated session")
	}
	return ownerID, nil
}

func (s *Service) mapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msgClientNotFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
}
