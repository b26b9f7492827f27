//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	"github.com/Rolando1980/client-geo-logger/internal/auth/store/user"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
	"github.com/Rolando1980/client-geo-logger/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.Postgres
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "visits", "clients", "users"))
}

func (s *PostgresUserStoreSuite) newUser(email string) *models.User {
	return &models.User{
		ID:           id.UserID(uuid.New()),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresUserStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	u := s.newUser("ana@example.com")
	s.Require().NoError(s.store.Create(ctx, u))

	byID, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)

	byEmail, err := s.store.FindByEmail(ctx, "ANA@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *PostgresUserStoreSuite) TestCaseInsensitiveUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("ana@example.com")))
	s.Require().ErrorIs(s.store.Create(ctx, s.newUser("Ana@Example.com")), sentinel.ErrConflict)
}

func (s *PostgresUserStoreSuite) TestUnknownLookups() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, id.UserID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByEmail(ctx, "nadie@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
