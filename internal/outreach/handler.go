// AngelaMos | 2026
// handler.go

package outreach

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/outreach/queue", h.Queue)
		r.Get("/outreach/high-priority", h.HighPriority)
		r.Get("/outreach/active-users", h.ActiveUsers)
		r.Get("/dashboard/stats", h.Stats)
	})
}

func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Queue(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"queue": items})
}

func (h *Handler) HighPriority(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.HighPriority(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"alerts": items})
}

func (h *Handler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ActiveUsers(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"users": items})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}
