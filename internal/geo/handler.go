package geo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rolando1980/client-geo-logger/internal/transport/http/shared"
	"github.com/Rolando1980/client-geo-logger/pkg/requestcontext"
)

// Handler exposes the one-shot location capture endpoint the visit form
// calls before submitting.
type Handler struct {
	locator *Locator
	auth    func(http.Handler) http.Handler
}

func NewHandler(locator *Locator, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{locator: locator, auth: auth}
}

// Register registers the geolocation route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(h.auth)
		gr.Get("/api/geo/locate", h.handleLocate)
	})
}

func (h *Handler) handleLocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fix, err := h.locator.Locate(ctx, requestcontext.ClientIP(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, fix)
}
