// Package service implements visit registration and the dashboard summary.
// A visit is written once and never changed.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	clientModels "github.com/Rolando1980/client-geo-logger/internal/client/models"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/visit/aggregate"
	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
	"github.com/Rolando1980/client-geo-logger/internal/visit/store"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

// RecentLimit is how many visits the dashboard's recent-activity panel shows.
const RecentLimit = 3

const (
	msgClientNotFound = "cliente no encontrado"
	msgVisitNotFound  = "visita no encontrada"
	msgUnknown        = "no se pudo completar la operación"
)

// Notifier pushes a "snapshot invalidated" tick to live-read subscribers of
// a topic. The watch bridge satisfies it.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

// ClientDirectory is the slice of the client store the visit flow needs: a
// visit may only reference a client the caller owns, and the dashboard
// counts the owner's clients.
type ClientDirectory interface {
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, clientID id.ClientID) (*clientModels.Client, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*clientModels.Client, error)
}

// Topic names the live-read topic carrying one owner's visit snapshots.
func Topic(ownerID id.UserID) string {
	return "visits:" + ownerID.String()
}

// Summary is the dashboard payload, recomputed from the full visit list on
// every request.
type Summary struct {
	TotalClients    int                  `json:"total_clients"`
	TotalVisits     int                  `json:"total_visits"`
	VisitsToday     int                  `json:"visits_today"`
	VisitsThisMonth int                  `json:"visits_this_month"`
	VisitsByDay     []aggregate.DayCount `json:"visits_by_day"`
	MonthVisits     []*models.Visit      `json:"month_visits"`
	Recent          []*models.Visit      `json:"recent"`
}

// Service orchestrates visit writes and dashboard reads.
type Service struct {
	visits  store.Store
	clients ClientDirectory
	watch   Notifier
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(visits store.Store, clients ClientDirectory, watch Notifier, auditor audit.Emitter, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		visits:  visits,
		clients: clients,
		watch:   watch,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Create validates the draft and persists a new visit. The referenced client
// must belong to the caller; its name is denormalized onto the visit. A
// draft without captured coordinates is rejected before any store call.
func (s *Service) Create(ctx context.Context, d models.Draft) (*models.Visit, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByOwnerAndID(ctx, ownerID, d.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, msgClientNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	v, err := models.NewVisit(
		id.VisitID(uuid.New()),
		ownerID,
		client.Name,
		d,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.visits.Create(ctx, v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	if s.metrics != nil {
		s.metrics.VisitsCreated.Inc()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionVisitCreated,
		UserID:    ownerID,
		Email:     requestcontext.UserEmail(ctx),
		Subject:   v.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
	s.watch.Notify(ctx, Topic(ownerID))

	return v, nil
}

// Get fetches one owned visit.
func (s *Service) Get(ctx context.Context, visitID id.VisitID) (*models.Visit, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.visits.FindByOwnerAndID(ctx, ownerID, visitID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, msgVisitNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}
	return v, nil
}

// List returns the owner's visits, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Visit, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}
	return visits, nil
}

// Dashboard assembles the summary: totals, today's and this month's counts,
// the zero-filled daily series, the month's visits (for the map view), and
// the recent-activity trio.
func (s *Service) Dashboard(ctx context.Context) (*Summary, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	visits, err := s.visits.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}
	clients, err := s.clients.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	now := requestcontext.Now(ctx)
	month := aggregate.Month(visits, now)
	return &Summary{
		TotalClients:    len(clients),
		TotalVisits:     len(visits),
		VisitsToday:     len(aggregate.Today(visits, now)),
		VisitsThisMonth: len(month),
		VisitsByDay:     aggregate.DailySeries(visits, now),
		MonthVisits:     month,
		Recent:          aggregate.Recent(visits, RecentLimit),
	}, nil
}

func (s *Service) owner(ctx context.Context) (id.UserID, error) {
	ownerID := requestcontext.UserID(ctx)
	if ownerID.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "no authenticated session")
	}
	return ownerID, nil
}
