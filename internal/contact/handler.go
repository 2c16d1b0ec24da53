// AngelaMos | 2026
// handler.go

package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/contacts", h.ListContacts)
		r.Post("/contacts", h.CreateContact)
		r.Get("/contacts/{contactID}", h.GetContact)
		r.Put("/contacts/{contactID}", h.UpdateContact)
		r.Delete("/contacts/{contactID}", h.DeleteContact)
	})
}

// ListContacts returns a paginated contact list with optional filters.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	params := ListContactsParams{
		Page:           parseIntQuery(r, "page", 1),
		PageSize:       parseIntQuery(r, "page_size", 50),
		Search:         r.URL.Query().Get("search"),
		Priority:       r.URL.Query().Get("priority"),
		Status:         r.URL.Query().Get("status"),
		AccountManager: r.URL.Query().Get("account_manager"),
	}

	contacts, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToContactResponseList(contacts),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	contact, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.BadRequest(w, "contact already exists")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToContactResponse(contact))
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	contact, err := h.service.Get(r.Context(), contactID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToContactResponse(contact))
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	var req UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	contact, err := h.service.Update(r.Context(), contactID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToContactResponse(contact))
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	if err := h.service.Delete(r.Context(), contactID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
