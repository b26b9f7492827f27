package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	"github.com/Rolando1980/client-geo-logger/internal/client/document"
	"github.com/Rolando1980/client-geo-logger/internal/client/models"
	"github.com/Rolando1980/client-geo-logger/internal/client/store"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

// recordingNotifier captures watch notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *recordingNotifier) Notify(_ context.Context, topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.topics)
}

type ClientServiceSuite struct {
	suite.Suite
	service  *Service
	notifier *recordingNotifier
	owner    id.UserID
	ctx      context.Context
}

func (s *ClientServiceSuite) SetupTest() {
	s.notifier = &recordingNotifier{}
	s.service = New(
		store.NewInMemory(),
		s.notifier,
		audit.Nop{},
		metrics.NewForTest(),
		slog.New(slog.DiscardHandler),
	)
	s.owner = id.UserID(uuid.New())
	ctx := requestcontext.WithUserID(context.Background(), s.owner)
	ctx = requestcontext.WithUserEmail(ctx, "ana@example.com")
	s.ctx = requestcontext.WithTime(ctx, time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
}

func TestClientServiceSuite(t *testing.T) {
	suite.Run(t, new(ClientServiceSuite))
}

func (s *ClientServiceSuite) draft(name string) models.Draft {
	return models.Draft{
		Name:           name,
		Address:        "Av. Arequipa 1234",
		District:       "Miraflores",
		Province:       "Lima",
		Department:     "Lima",
		DocumentType:   document.TypeRUC,
		DocumentNumber: "20123456789",
	}
}

func (s *ClientServiceSuite) asOwner(owner id.UserID) context.Context {
	return requestcontext.WithUserID(context.Background(), owner)
}

func (s *ClientServiceSuite) TestCreate() {
	s.Run("stamps internal fields and notifies", func() {
		c, err := s.service.Create(s.ctx, s.draft("Empresa ABC"))
		s.Require().NoError(err)
		s.Equal(s.owner, c.UserID)
		s.Equal(models.DefaultStatus, c.Status)
		s.Equal("ana@example.com", c.Seller)
		s.Equal(1, s.notifier.count())
		s.Equal(Topic(s.owner), s.notifier.topics[0])
	})

	s.Run("rejects an invalid draft without notifying", func() {
		before := s.notifier.count()
		_, err := s.service.Create(s.ctx, models.Draft{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal(before, s.notifier.count())
	})

	s.Run("rejects an unauthenticated context", func() {
		_, err := s.service.Create(context.Background(), s.draft("Empresa ABC"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ClientServiceSuite) TestUpdate() {
	created, err := s.service.Create(s.ctx, s.draft("Empresa ABC"))
	s.Require().NoError(err)

	s.Run("replaces editable fields, keeps internal ones", func() {
		d := s.draft("Empresa ABC SAC")
		updated, err := s.service.Update(s.ctx, created.ID, d)
		s.Require().NoError(err)
		s.Equal("Empresa ABC SAC", updated.Name)
		s.Equal(created.Seller, updated.Seller)
		s.Equal(created.CreatedAt, updated.CreatedAt)
	})

	s.Run("another user's update reads as not found", func() {
		other := s.asOwner(id.UserID(uuid.New()))
		_, err := s.service.Update(other, created.ID, s.draft("Tomada"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ClientServiceSuite) TestGetAndOwnerScoping() {
	created, err := s.service.Create(s.ctx, s.draft("Empresa ABC"))
	s.Require().NoError(err)

	got, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)

	other := s.asOwner(id.UserID(uuid.New()))
	_, err = s.service.Get(other, created.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("cliente no encontrado", dErrors.MessageOf(err))
}

func (s *ClientServiceSuite) TestList() {
	for _, name := range []string{"Consultora 123", "Distribuidora XYZ", "Empresa ABC"} {
		_, err := s.service.Create(s.ctx, s.draft(name))
		s.Require().NoError(err)
	}

	s.Run("returns everything ordered by name", func() {
		list, err := s.service.List(s.ctx, "")
		s.Require().NoError(err)
		s.Require().Len(list, 3)
		s.Equal("Consultora 123", list[0].Name)
	})

	s.Run("filters case-insensitively by name", func() {
		list, err := s.service.List(s.ctx, "xyz")
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal("Distribuidora XYZ", list[0].Name)
	})

	s.Run("filters by document number", func() {
		list, err := s.service.List(s.ctx, "20123456789")
		s.Require().NoError(err)
		s.Len(list, 3)
	})

	s.Run("no match yields an empty list", func() {
		list, err := s.service.List(s.ctx, "zzzz")
		s.Require().NoError(err)
		s.Empty(list)
	})
}
