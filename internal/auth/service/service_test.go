package service

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/Rolando1980/client-geo-logger/internal/auth/store/user Store

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	"github.com/Rolando1980/client-geo-logger/internal/auth/service/mocks"
	jwttoken "github.com/Rolando1980/client-geo-logger/internal/jwt_token"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
)

type AuthServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	users      *mocks.MockUserStore
	revocation *mocks.MockRevocationList
	service    *Service
	ctx        context.Context
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.revocation = mocks.NewMockRevocationList(s.ctrl)
	tokens := jwttoken.NewJWTService("test-key", "test", "test")
	s.service = New(
		s.users,
		s.revocation,
		tokens,
		time.Hour,
		audit.Nop{},
		metrics.NewForTest(),
		slog.New(slog.DiscardHandler),
	)
	s.ctx = context.Background()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) TestRegister() {
	s.Run("rejects invalid email", func() {
		_, err := s.service.Register(s.ctx, "not-an-email", "secret123")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects weak password", func() {
		_, err := s.service.Register(s.ctx, "ana@example.com", "12345")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("la contraseña debe tener al menos 6 caracteres", dErrors.MessageOf(err))
	})

	s.Run("maps duplicate email to conflict", func() {
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.service.Register(s.ctx, "ana@example.com", "secret123")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("el correo electrónico ya está registrado", dErrors.MessageOf(err))
	})

	s.Run("creates the account and signs in", func() {
		var created *models.User
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) error {
				created = u
				return nil
			})

		sess, err := s.service.Register(s.ctx, "Ana@Example.com", "secret123")
		s.Require().NoError(err)
		s.Require().NotNil(created)
		s.Equal("ana@example.com", created.Email, "email is stored lowercased")
		s.NotEmpty(sess.Token)
		s.Equal(int64(3600), sess.ExpiresIn)
		s.Equal(created.ID, sess.User.ID)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
	})
}

func (s *AuthServiceSuite) TestLogin() {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	s.Require().NoError(err)
	account := &models.User{Email: "ana@example.com", PasswordHash: string(hash)}

	s.Run("classifies unknown user", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Login(s.ctx, "ana@example.com", "secret123")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("usuario no encontrado", dErrors.MessageOf(err))
	})

	s.Run("classifies wrong password", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(account, nil)

		_, err := s.service.Login(s.ctx, "ana@example.com", "wrong-pass")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("contraseña incorrecta", dErrors.MessageOf(err))
	})

	s.Run("classifies invalid email before touching the store", func() {
		_, err := s.service.Login(s.ctx, "not-an-email", "secret123")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("succeeds with correct credentials", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(account, nil)

		sess, err := s.service.Login(s.ctx, " Ana@example.com ", "secret123")
		s.Require().NoError(err)
		s.NotEmpty(sess.Token)
		s.Equal(account.Email, sess.User.Email)
	})
}

func (s *AuthServiceSuite) TestLogout() {
	s.Run("revokes the token for its remaining lifetime", func() {
		expiresAt := time.Now().Add(time.Hour)
		s.revocation.EXPECT().Revoke(gomock.Any(), "some-jti", gomock.Any()).Return(nil)

		s.NoError(s.service.Logout(s.ctx, "some-jti", expiresAt))
	})

	s.Run("wraps revocation store failures", func() {
		s.revocation.EXPECT().Revoke(gomock.Any(), "some-jti", gomock.Any()).Return(context.DeadlineExceeded)

		err := s.service.Logout(s.ctx, "some-jti", time.Now().Add(time.Hour))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
