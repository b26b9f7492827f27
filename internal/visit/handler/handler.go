// Package handler exposes the visit endpoints and the dashboard, including
// the live snapshot stream backed by the watch hub.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/transport/http/shared"
	"github.com/Rolando1980/client-geo-logger/internal/visit/models"
	visitService "github.com/Rolando1980/client-geo-logger/internal/visit/service"
	"github.com/Rolando1980/client-geo-logger/internal/watch"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

const heartbeatInterval = 25 * time.Second

// Service defines the visit operations the handler relies on.
type Service interface {
	Create(ctx context.Context, d models.Draft) (*models.Visit, error)
	Get(ctx context.Context, visitID id.VisitID) (*models.Visit, error)
	List(ctx context.Context) ([]*models.Visit, error)
	Dashboard(ctx context.Context) (*visitService.Summary, error)
}

// Handler handles visit and dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	visits  Service
	hub     *watch.Hub
	metrics *metrics.Metrics
	auth    func(http.Handler) http.Handler
}

// New creates a visit Handler. auth is the RequireAuth middleware shared by
// every route here.
func New(visits Service, hub *watch.Hub, logger *slog.Logger, m *metrics.Metrics, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:  logger,
		visits:  visits,
		hub:     hub,
		metrics: m,
		auth:    auth,
	}
}

// Register registers the visit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(h.auth)
		gr.Route("/api/visits", func(vr chi.Router) {
			vr.Post("/", h.handleCreate)
			vr.Get("/", h.handleList)
			vr.Get("/purposes", h.handlePurposes)
			vr.Get("/stream", h.handleStream)
			vr.Get("/{visitID}", h.handleGet)
		})
		gr.Get("/api/dashboard", h.handleDashboard)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.WarnContext(ctx, "invalid create visit request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	v, err := h.visits.Create(ctx, draft)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create visit", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	visitID, err := id.ParseVisitID(chi.URLParam(r, "visitID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid visit id"))
		return
	}

	v, err := h.visits.Get(ctx, visitID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get visit", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	visits, err := h.visits.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list visits", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{Visits: visits, Count: len(visits)})
}

// handlePurposes returns the fixed purpose enumeration the visit form
// renders as its dropdown.
func (h *Handler) handlePurposes(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string][]models.Purpose{"purposes": models.Purposes()})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.visits.Dashboard(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to build dashboard", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}

type listResponse struct {
	Visits []*models.Visit `json:"visits"`
	Count  int             `json:"count"`
}

// handleStream pushes the owner's dashboard summary as a server-sent event
// on connect and again after every visit written by any instance.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	topic := visitService.Topic(requestcontext.UserID(ctx))
	ticks := h.hub.Subscribe(ctx, topic)

	if h.metrics != nil {
		h.metrics.StreamsActive.WithLabelValues("visits").Inc()
		defer h.metrics.StreamsActive.WithLabelValues("visits").Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if !h.emitSnapshot(ctx, w, flusher) {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !h.emitSnapshot(ctx, w, flusher) {
				return
			}
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) emitSnapshot(ctx context.Context, w http.ResponseWriter, flusher http.Flusher) bool {
	summary, err := h.visits.Dashboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read visit snapshot",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return false
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return false
	}
	if _, err := w.Write([]byte("event: snapshot\ndata: ")); err != nil {
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
