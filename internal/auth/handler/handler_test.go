package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"github.com/Rolando1980/client-geo-logger/internal/audit"
	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	authService "github.com/Rolando1980/client-geo-logger/internal/auth/service"
	"github.com/Rolando1980/client-geo-logger/internal/auth/store/revocation"
	"github.com/Rolando1980/client-geo-logger/internal/auth/store/user"
	jwttoken "github.com/Rolando1980/client-geo-logger/internal/jwt_token"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/platform/middleware"
	"github.com/Rolando1980/client-geo-logger/internal/watch"
)

type hubNotifier struct {
	hub *watch.Hub
}

func (n hubNotifier) Notify(_ context.Context, topic string) {
	n.hub.Publish(topic)
}

// AuthHandlerSuite wires the real service, stores, and middleware so the
// tests cover the whole login round trip, token validation included.
type AuthHandlerSuite struct {
	suite.Suite
	router  chi.Router
	hub     *watch.Hub
	revoked *revocation.InMemory
}

func (s *AuthHandlerSuite) SetupTest() {
	s.hub = watch.NewHub()
	s.revoked = revocation.NewInMemory()

	logger := slog.New(slog.DiscardHandler)
	m := metrics.NewForTest()
	tokens := jwttoken.NewJWTService("test-signing-key", "client-geo-logger", "client-geo-logger")
	svc := authService.New(user.NewInMemory(), s.revoked, tokens, time.Hour, audit.Nop{}, m, logger)
	requireAuth := middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(tokens), s.revoked, logger)

	h := New(svc, tokens, s.revoked, s.hub, hubNotifier{hub: s.hub}, logger, m, requireAuth)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) credentials(email, password string) *bytes.Reader {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	s.Require().NoError(err)
	return bytes.NewReader(body)
}

func (s *AuthHandlerSuite) register(email, password string) authService.Session {
	req := httptest.NewRequest(http.MethodPost, "/auth/register", s.credentials(email, password))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusCreated, w.Code)

	var sess authService.Session
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &sess))
	return sess
}

func (s *AuthHandlerSuite) TestRegister() {
	s.Run("returns a session with a usable token", func() {
		sess := s.register("ana@example.com", "secreto123")
		s.NotEmpty(sess.Token)
		s.Equal(int64(3600), sess.ExpiresIn)
		s.Equal("ana@example.com", sess.User.Email)
	})

	s.Run("rejects a duplicate email with the Spanish message", func() {
		s.register("dup@example.com", "secreto123")

		req := httptest.NewRequest(http.MethodPost, "/auth/register", s.credentials("dup@example.com", "secreto123"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusConflict, w.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("el correo electrónico ya está registrado", resp["message"])
	})

	s.Run("rejects a weak password", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", s.credentials("otra@example.com", "abc"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("la contraseña debe tener al menos 6 caracteres", resp["message"])
	})

	s.Run("rejects a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AuthHandlerSuite) TestLogin() {
	s.register("ana@example.com", "secreto123")

	s.Run("succeeds with the right password", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", s.credentials("ana@example.com", "secreto123"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Require().Equal(http.StatusOK, w.Code)

		var sess authService.Session
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &sess))
		s.NotEmpty(sess.Token)
	})

	s.Run("classifies a wrong password", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", s.credentials("ana@example.com", "equivocada"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("contraseña incorrecta", resp["message"])
	})

	s.Run("classifies an unknown user", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", s.credentials("nadie@example.com", "secreto123"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusNotFound, w.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("usuario no encontrado", resp["message"])
	})
}

func (s *AuthHandlerSuite) TestSession() {
	sess := s.register("ana@example.com", "secreto123")

	s.Run("returns the current user for a valid token", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Require().Equal(http.StatusOK, w.Code)

		var u models.User
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &u))
		s.Equal("ana@example.com", u.Email)
	})

	s.Run("rejects a missing token", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("rejects a garbage token", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *AuthHandlerSuite) TestLogout() {
	sess := s.register("ana@example.com", "secreto123")

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusNoContent, w.Code)

	s.Run("the revoked token no longer opens the session", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("a second logout with the revoked token is rejected", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *AuthHandlerSuite) streamBody(prepare func(*http.Request)) string {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/auth/session/stream", nil).WithContext(ctx)
	if prepare != nil {
		prepare(req)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w.Body.String()
}

func (s *AuthHandlerSuite) TestSessionStream() {
	sess := s.register("ana@example.com", "secreto123")

	s.Run("an anonymous caller resolves to the anonymous state", func() {
		body := s.streamBody(nil)
		s.Contains(body, "event: session")
		s.Contains(body, `"state":"anonymous"`)
	})

	s.Run("a valid bearer token resolves to the authenticated state", func() {
		body := s.streamBody(func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+sess.Token)
		})
		s.Contains(body, `"state":"authenticated"`)
		s.Contains(body, `"email":"ana@example.com"`)
	})

	s.Run("the token query parameter works where headers cannot be set", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		req := httptest.NewRequest(http.MethodGet, "/auth/session/stream?token="+sess.Token, nil).WithContext(ctx)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Contains(w.Body.String(), `"state":"authenticated"`)
	})

	s.Run("a revoked token resolves to the anonymous state", func() {
		logout := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		logout.Header.Set("Authorization", "Bearer "+sess.Token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, logout)
		s.Require().Equal(http.StatusNoContent, w.Code)

		body := s.streamBody(func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+sess.Token)
		})
		s.Contains(body, `"state":"anonymous"`)
	})
}
