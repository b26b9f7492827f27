package location

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rolando1980/client-geo-logger/internal/transport/http/shared"
)

// Handler serves the static catalog the client form renders as cascading
// department / province / district selects.
type Handler struct {
	auth func(http.Handler) http.Handler
}

func NewHandler(auth func(http.Handler) http.Handler) *Handler {
	return &Handler{auth: auth}
}

// Register registers the catalog routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(h.auth)
		gr.Route("/api/locations", func(lr chi.Router) {
			lr.Get("/", h.handleRows)
			lr.Get("/departments", h.handleDepartments)
			lr.Get("/provinces", h.handleProvinces)
			lr.Get("/districts", h.handleDistricts)
		})
	})
}

func (h *Handler) handleRows(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string][]Row{"locations": Rows()})
}

func (h *Handler) handleDepartments(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string][]string{"departments": Departments()})
}

func (h *Handler) handleProvinces(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	shared.WriteJSON(w, http.StatusOK, map[string][]string{"provinces": ProvincesOf(department)})
}

func (h *Handler) handleDistricts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	districts := DistrictsOf(q.Get("department"), q.Get("province"))
	shared.WriteJSON(w, http.StatusOK, map[string][]string{"districts": districts})
}
