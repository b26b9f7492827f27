// Package handler exposes the client endpoints, including the live snapshot
// stream backed by the watch hub.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rolando1980/client-geo-logger/internal/client/models"
	clientService "github.com/Rolando1980/client-geo-logger/internal/client/service"
	"github.com/Rolando1980/client-geo-logger/internal/platform/metrics"
	"github.com/Rolando1980/client-geo-logger/internal/transport/http/shared"
	"github.com/Rolando1980/client-geo-logger/internal/watch"
	id "github.com/Rolando1980/client-geo-logger/pkg/domain"
	dErrors "github.com/Rolando1980/client-geo-logger/pkg/domain-errors"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 25 * time.Second

// Service defines the client operations the handler relies on.
type Service interface {
	Create(ctx context.Context, d models.Draft) (*models.Client, error)
	Update(ctx context.Context, clientID id.ClientID, d models.Draft) (*models.Client, error)
	Get(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context, search string) ([]*models.Client, error)
}

// Handler handles client endpoints.
type Handler struct {
	logger  *slog.Logger
	clients Service
	hub     *watch.Hub
	metrics *metrics.Metrics
	auth    func(http.Handler) http.Handler
}

// New creates a client Handler. auth is the RequireAuth middleware shared by
// every route here.
func New(clients Service, hub *watch.Hub, logger *slog.Logger, m *metrics.Metrics, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:  logger,
		clients: clients,
		hub:     hub,
		metrics: m,
		auth:    auth,
	}
}

// Register registers the client routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(h.auth)
		gr.Route("/api/clients", func(cr chi.Router) {
			cr.Post("/", h.handleCreate)
			cr.Get("/", h.handleList)
			cr.Get("/stream", h.handleStream)
			cr.Get("/{clientID}", h.handleGet)
			cr.Put("/{clientID}", h.handleUpdate)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.WarnContext(ctx, "invalid create client request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.clients.Create(ctx, draft)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create client", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return
	}

	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.WarnContext(ctx, "invalid update client request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.clients.Update(ctx, clientID, draft)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update client", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return
	}

	c, err := h.clients.Get(ctx, clientID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get client", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.clients.List(ctx, r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list clients", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, listResponse{Clients: clients, Count: len(clients)})
}

type listResponse struct {
	Clients []*models.Client `json:"clients"`
	Count   int              `json:"count"`
}

// handleStream pushes the owner's full client list as a server-sent event on
// connect and again after every change notification. Notifications coalesce,
// so a burst of writes may produce a single refreshed snapshot.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	topic := clientService.Topic(requestcontext.UserID(ctx))
	ticks := h.hub.Subscribe(ctx, topic)

	if h.metrics != nil {
		h.metrics.StreamsActive.WithLabelValues("clients").Inc()
		defer h.metrics.StreamsActive.WithLabelValues("clients").Dec()
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

// emitSnapshot re-reads the store and writes one SSE snapshot event. Reports
// whether the stream is still usable.
func (h *Handler) emitSnapshot(ctx context.Context, w http.ResponseWriter, flusher http.Flusher) bool {
	clients, err := h.clients.List(ctx, "")
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read client snapshot",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return false
	}
	payload, err := json.Marshal(listResponse{Clients: clients, Count: len(clients)})
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
