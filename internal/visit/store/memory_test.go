package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

type VisitStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	owner id.UserID
}

func (s *VisitStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.owner = id.UserID(uuid.New())
}

func TestVisitStoreSuite(t *testing.T) {
	suite.Run(t, new(VisitStoreSuite))
}

func (s *VisitStoreSuite) newVisit(owner id.UserID, created time.Time) *models.Visit {
	return &models.Visit{
		ID:         id.VisitID(uuid.New()),
		UserID:     owner,
		ClientID:   id.ClientID(uuid.New()),
		ClientName: "Empresa ABC",
		Purpose:    models.PurposeSale,
		Latitude:   -12.0464,
		Longitude:  -77.0428,
		Date:       created.Format(models.DateLayout),
		Time:       created.Format(models.TimeLayout),
		CreatedAt:  created,
	}
}

func (s *VisitStoreSuite) TestRoundTrip() {
	visit := s.newVisit(s.owner, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, visit))

	found, err := s.store.FindByOwnerAndID(s.ctx, s.owner, visit.ID)
	s.Require().NoError(err)
	s.Equal(visit, found)
}

func (s *VisitStoreSuite) TestOwnerScoping() {
	visit := s.newVisit(s.owner, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, visit))
	other := id.UserID(uuid.New())

	_, err := s.store.FindByOwnerAndID(s.ctx, other, visit.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	list, err := s.store.ListByOwner(s.ctx, other)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *VisitStoreSuite) TestListNewestFirst() {
	base := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	oldest := s.newVisit(s.owner, base)
	middle := s.newVisit(s.owner, base.Add(time.Hour))
	newest := s.newVisit(s.owner, base.Add(2*time.Hour))
	for _, v := range []*models.Visit{middle, oldest, newest} {
		s.Require().NoError(s.store.Create(s.ctx, v))
	}

	list, err := s.store.ListByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(newest.ID, list[0].ID)
	s.Equal(middle.ID, list[1].ID)
	s.Equal(oldest.ID, list[2].ID)
}

func (s *VisitStoreSuite) TestCreateRejectsDuplicateID() {
	visit := s.newVisit(s.owner, time.Now())
	s.Require().NoError(s.store.Create(s.ctx, visit))
	s.ErrorIs(s.store.Create(s.ctx, visit), sentinel.ErrConflict)
}
