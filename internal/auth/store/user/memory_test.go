package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(email string) *models.User {
	return &models.User{
		ID:           id.UserID(uuid.New()),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now(),
	}
}

func (s *UserStoreSuite) TestCreateAndLookups() {
	u := s.newUser("ana@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Run("finds by ID", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, found.Email)
	})

	s.Run("finds by email case-insensitively", func() {
		found, err := s.store.FindByEmail(s.ctx, "ANA@Example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("unknown ID reads as absent", func() {
		_, err := s.store.FindByID(s.ctx, id.UserID(uuid.New()))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown email reads as absent", func() {
		_, err := s.store.FindByEmail(s.ctx, "nadie@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *UserStoreSuite) TestEmailUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("ana@example.com")))

	err := s.store.Create(s.ctx, s.newUser("ANA@EXAMPLE.COM"))
	s.ErrorIs(err, sentinel.ErrConflict, "uniqueness is case-insensitive")
}
