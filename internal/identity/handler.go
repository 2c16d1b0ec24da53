// AngelaMos | 2026
// handler.go

package identity

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

// Verifier checks a webhook delivery's signature headers against the
// raw payload. *svix.Webhook satisfies it.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

var _ Verifier = (*svix.Webhook)(nil)

// Handler receives signup events from the auth provider. Signature
// verification fails closed: an unverifiable delivery is rejected, not
// processed.
type Handler struct {
	contacts *contact.Service
	verifier Verifier
	logger   *slog.Logger
}

func NewHandler(
	contacts *contact.Service,
	verifier Verifier,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		contacts: contacts,
		verifier: verifier,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, ratelimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(ratelimit)

		r.Post("/webhook/clerk", h.ClerkWebhook)
	})
}

func (h *Handler) ClerkWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error: "Could not read request body",
		})
		return
	}

	if err := h.verifier.Verify(payload, r.Header); err != nil {
		h.logger.Warn("clerk webhook signature rejected",
			slog.String("error", err.Error()),
		)
		h.writeJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error: "Invalid webhook signature",
		})
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.writeJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error: "Invalid webhook payload",
		})
		return
	}

	if event.Type != "user.created" {
		h.logger.Info("clerk event ignored",
			slog.String("type", event.Type),
		)
		h.writeJSON(w, http.StatusOK, webhookResponse{
			Success: true,
			Message: "Event ignored",
		})
		return
	}

	created, err := h.contacts.IngestIdentity(r.Context(), contact.IdentityParams{
		ExternalID: event.Data.ID,
		Email:      event.Data.primaryEmail(),
		FirstName:  event.Data.FirstName,
		LastName:   event.Data.LastName,
		Phone:      event.Data.primaryPhone(),
		Notes:      "New signup via Clerk",
	})
	if err != nil {
		h.logger.Error("clerk signup ingest failed",
			slog.String("clerk_user_id", event.Data.ID),
			slog.String("error", err.Error()),
		)
		h.writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{
			Error: "Failed to add user to CRM",
		})
		return
	}

	h.logger.Info("contact ingested from clerk signup",
		slog.String("contact_id", created.ID),
	)

	h.writeJSON(w, http.StatusOK, webhookResponse{
		Success: true,
		Message: "User added to CRM",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("write response", slog.String("error", err.Error()))
	}
}
