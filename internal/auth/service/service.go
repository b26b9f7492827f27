// Package service implements registration, login, and logout. Failures are
// classified into a fixed set of user-facing messages; the caller always
// stays on an interactive path (nothing here is fatal).
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	"github.com/Rolando1980/client-geo-logger/internal/auth/store/revocation"
	"github.com/Rolando1980/client-geo-logger/internal/auth/store/user"
	jwttoken "github.com/Rolando1980/client-geo-logger/internal/jwt_token"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/platform/sentinel"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

// MinPasswordLength mirrors the hosted provider's weak-password rule.
const MinPasswordLength = 6

// Classified user-facing messages (the UI is Spanish, like the product).
const (
	msgUserNotFound  = "usuario no encontrado"
	msgWrongPassword = "contraseña incorrecta"
	msgEmailInUse    = "el correo electrónico ya está registrado"
	msgWeakPassword  = "la contraseña debe tener al menos 6 caracteres"
	msgUnknown       = "no se pudo completar la operación"
)

// Session is the authenticated result returned to the transport layer.
type Session struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *models.User `json:"user"`
}

// Service orchestrates the account lifecycle.
type Service struct {
	users      user.Store
	revocation revocation.List
	tokens     *jwttoken.JWTService
	tokenTTL   time.Duration
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(
	users user.Store,
	revocation revocation.List,
	tokens *jwttoken.JWTService,
	tokenTTL time.Duration,
	auditor audit.Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:      users,
		revocation: revocation,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
	}
}

// Register creates an account and signs the new user in.
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, dErrors.New(dErrors.CodeBadRequest, msgWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	u, err := models.NewUser(id.UserID(uuid.New()), email, string(hash), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, msgEmailInUse)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionUserRegistered,
		UserID:    u.ID,
		Email:     u.Email,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})

	return s.issueSession(u)
}

// Login verifies credentials and mints an access token. Failures are
// classified: invalid email, user not found, wrong password, unknown.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := models.ValidateEmail(email); err != nil {
		s.recordLoginFailure(ctx, email, "invalid_email")
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLoginFailure(ctx, email, "user_not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, msgUserNotFound)
		}
		s.recordLoginFailure(ctx, email, "store_error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.recordLoginFailure(ctx, email, "wrong_password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgWrongPassword)
	}

	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues("success").Inc()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionUserLoggedIn,
		UserID:    u.ID,
		Email:     u.Email,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})

	return s.issueSession(u)
}

// Logout revokes the presented token for its remaining lifetime. Idempotent:
// revoking an already-revoked token succeeds.
func (s *Service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if err := s.revocation.Revoke(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionUserLoggedOut,
		UserID:    requestcontext.UserID(ctx),
		Email:     requestcontext.UserEmail(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// CurrentUser loads the account behind an authenticated context.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated session")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, msgUserNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}
	return u, nil
}

func (s *Service) issueSession(u *models.User) (*Session, error) {
	token, err := s.tokens.GenerateAccessToken(uuid.UUID(u.ID), u.Email, uuid.New(), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgUnknown)
	}
	return &Session{
		Token:     token,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
		User:      u,
	}, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, email, reason string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues("failure").Inc()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionLoginFailed,
		Email:     email,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
}
