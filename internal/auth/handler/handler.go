// Package handler exposes the account endpoints and the session stream. The
// stream drives a session state machine per subscriber: it resolves the
// presented token on connect and emits a session event on every transition.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rolando1980/client-geo-logger/internal/auth/models"
	authService "github.com/Rolando1980/client-geo-logger/internal/auth/service"
	"github.com/Rolando1980/client-geo-logger/internal/auth/session"
	jwttoken "github.com/Rolando1980/client-geo-logger/internal/jwt_token"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/platform/middleware"
	"github.com/Rolando1980/client-geo-logger/internal/transport/http/shared"
	"github.com/Rolando1980/client-geo-logger/internal/watch"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

const heartbeatInterval = 25 * time.Second

// Service defines the account operations the handler relies on.
type Service interface {
	Register(ctx context.Context, email, password string) (*authService.Session, error)
	Login(ctx context.Context, email, password string) (*authService.Session, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Notifier pushes a "session changed" tick to stream subscribers of a topic.
// The watch bridge satisfies it.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

// Topic names the live-read topic carrying one user's session transitions.
func Topic(userID id.UserID) string {
	return "session:" + userID.String()
}

// Handler handles the account endpoints.
type Handler struct {
	logger     *slog.Logger
	accounts   Service
	tokens     *jwttoken.JWTService
	revocation middleware.RevocationChecker
	hub        *watch.Hub
	notify     Notifier
	metrics    *metrics.Metrics
	auth       func(http.Handler) http.Handler
}

// New creates an auth Handler. auth is the RequireAuth middleware applied to
// the authenticated routes.
func New(
	accounts Service,
	tokens *jwttoken.JWTService,
	revocation middleware.RevocationChecker,
	hub *watch.Hub,
	notify Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
	auth func(http.Handler) http.Handler,
) *Handler {
	return &Handler{
		logger:     logger,
		accounts:   accounts,
		tokens:     tokens,
		revocation: revocation,
		hub:        hub,
		notify:     notify,
		metrics:    m,
		auth:       auth,
	}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/session/stream", h.handleSessionStream)
	r.Group(func(gr chi.Router) {
		gr.Use(h.auth)
		gr.Post("/auth/logout", h.handleLogout)
		gr.Get("/auth/session", h.handleSession)
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sess, err := h.accounts.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "registration failed", err)
		return
	}
	h.notify.Notify(ctx, Topic(sess.User.ID))
	shared.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sess, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "login failed", err)
		return
	}
	h.notify.Notify(ctx, Topic(sess.User.ID))
	shared.WriteJSON(w, http.StatusOK, sess)
}

// handleLogout revokes the presented token. The claims are re-parsed from
// the Authorization header because revocation needs the token's JTI and
// expiry, which the auth middleware does not carry into the context.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := h.bearerClaims(r)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
		return
	}

	if err := h.accounts.Logout(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		h.writeServiceError(ctx, w, "logout failed", err)
		return
	}
	h.notify.Notify(ctx, Topic(requestcontext.UserID(ctx)))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := h.accounts.CurrentUser(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "session lookup failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

// sessionEvent is the payload of each session stream event.
type sessionEvent struct {
	State  session.State `json:"state"`
	UserID string        `json:"user_id,omitempty"`
	Email  string        `json:"email,omitempty"`
}

// handleSessionStream resolves the caller's auth status and streams session
// transitions. The route skips the auth middleware on purpose: an anonymous
// caller resolves to the anonymous state instead of a 401.
func (h *Handler) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	machine := session.NewMachine()
	claims := h.streamClaims(ctx, r)

	var identity *session.Identity
	if claims != nil {
		userID, err := id.ParseUserID(claims.UserID)
		if err == nil {
			identity = &session.Identity{UserID: userID, Email: claims.Email}
		}
	}
	if err := machine.Resolve(identity); err != nil {
		shared.WriteError(w, err)
		return
	}

	var ticks <-chan struct{}
	if identity != nil {
		ticks = h.hub.Subscribe(ctx, Topic(identity.UserID))
	}

	if h.metrics != nil {
		h.metrics.StreamsActive.WithLabelValues("session").Inc()
		defer h.metrics.StreamsActive.WithLabelValues("session").Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if !h.emitSession(w, flusher, machine) {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			// A tick on the session topic means login or logout happened
			// somewhere. Re-check revocation: a revoked token flips this
			// stream to anonymous.
			if claims != nil && h.tokenRevoked(ctx, claims.ID) {
				if err := machine.Logout(); err == nil {
					if !h.emitSession(w, flusher, machine) {
						return
					}
				}
				claims = nil
			}
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) emitSession(w http.ResponseWriter, flusher http.Flusher, machine *session.Machine) bool {
	state, identity := machine.Current()
	event := sessionEvent{State: state}
	if state == session.StateAuthenticated {
		event.UserID = identity.UserID.String()
		event.Email = identity.Email
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return false
	}
	if _, err := w.Write([]byte("event: session\ndata: ")); err != nil {
		return false
	}
	if _, err := w.Write(payload); err != nil {
		return false
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

// streamClaims extracts valid, unrevoked claims from the request, or nil for
// an anonymous caller. EventSource cannot set headers, so the stream also
// accepts the token as a query parameter.
func (h *Handler) streamClaims(ctx context.Context, r *http.Request) *jwttoken.Claims {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	if h.tokenRevoked(ctx, claims.ID) {
		return nil
	}
	return claims
}

func (h *Handler) bearerClaims(r *http.Request) (*jwttoken.Claims, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token")
	}
	return h.tokens.ValidateToken(token)
}

func (h *Handler) tokenRevoked(ctx context.Context, jti string) bool {
	if h.revocation == nil {
		return false
	}
	revoked, err := h.revocation.IsRevoked(ctx, jti)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check token revocation", "error", err)
		return false
	}
	return revoked
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
