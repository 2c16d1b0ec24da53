// AngelaMos | 2026
// handler.go

package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

// noteDateLayout matches the short date the notifier's operators are
// used to seeing in contact notes, e.g. 7/22/2025.
const noteDateLayout = "1/2/2006"

// Handler ingests signup notifications. The notifier speaks the Google
// Chat webhook dialect, so the message endpoint answers with a
// Chat-compatible message resource.
type Handler struct {
	contacts *contact.Service
	space    string
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(
	contacts *contact.Service,
	space string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		contacts: contacts,
		space:    space,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterChatRoutes mounts the Chat-shaped message endpoint. It lives
// under the API prefix so the notifier's spaces URL keeps its shape.
func (h *Handler) RegisterChatRoutes(r chi.Router, ratelimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(ratelimit)

		r.Post("/spaces/{space}/messages", h.PostMessage)
	})
}

func (h *Handler) RegisterWebhookRoutes(r chi.Router, ratelimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(ratelimit)

		r.Post("/webhook/production-signup", h.ProductionSignup)
		r.Post("/webhook/google-chat", h.GoogleChat)
		r.Post("/webhook/simulate", h.Simulate)
	})
}

// PostMessage accepts a notifier message posted to the Chat-shaped
// endpoint. The body is lenient: a Chat message with labeled text, or
// the signup fields as plain JSON keys.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	space := chi.URLParam(r, "space")
	if space == "" {
		space = h.space
	}

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeChatError(w, http.StatusBadRequest, "invalid request body", "INVALID_ARGUMENT")
		return
	}

	params, ok := h.paramsFromRequest(req)
	if !ok {
		h.writeChatError(w, http.StatusBadRequest, "message has no signup fields", "INVALID_ARGUMENT")
		return
	}

	created, err := h.contacts.Ingest(r.Context(), params)
	if err != nil {
		h.logger.Error("chat message ingest failed",
			slog.String("space", space),
			slog.String("error", err.Error()),
		)
		h.writeChatError(w, http.StatusInternalServerError, "failed to add user to CRM", "INTERNAL_ERROR")
		return
	}

	h.logger.Info("contact ingested from chat message",
		slog.String("space", space),
		slog.String("contact_id", created.ID),
	)

	h.writeJSON(w, http.StatusOK, chatMessageAck{
		Name:       fmt.Sprintf("spaces/%s/messages/%s", space, created.ID),
		Sender:     chatSender{Name: "CRM System"},
		Text:       "User successfully added to CRM",
		CreateTime: h.now().UTC().Format(time.RFC3339),
	})
}

// ProductionSignup is the notifier's direct webhook alias. Same
// payload and response shape as the Chat message endpoint, addressed
// to the configured space.
func (h *Handler) ProductionSignup(w http.ResponseWriter, r *http.Request) {
	h.PostMessage(w, r)
}

// GoogleChat is the strict Chat webhook: the body must carry a
// notifier message with a Username line, either as raw text or under
// the Chat event's message.text.
func (h *Handler) GoogleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error: "Invalid message format",
		})
		return
	}

	text := messageText(body)

	fields, ok := ExtractFields(text)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, webhookErrorResponse{
			Error: "Invalid message format",
		})
		return
	}

	created, err := h.contacts.Ingest(r.Context(), h.paramsFromFields(fields))
	if err != nil {
		h.logger.Error("google chat ingest failed",
			slog.String("error", err.Error()),
		)
		h.writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{
			Error: "Failed to add user",
		})
		return
	}

	h.logger.Info("contact ingested from google chat webhook",
		slog.String("contact_id", created.ID),
	)

	h.writeJSON(w, http.StatusOK, webhookSuccessResponse{
		Success: true,
		Message: "User added successfully from Google Chat",
		User:    toIngestedUser(created),
	})
}

// Simulate seeds two representative signups so the pipeline can be
// exercised end to end without the notifier.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	notes := "Simulated webhook user added on " + h.now().Format(noteDateLayout)

	samples := []contact.IngestParams{
		{
			Email:     "yao.c@vpigroup.com.au",
			FirstName: "Yao",
			LastName:  "Chen",
			Phone:     "+61481858864",
			CreatedAt: "2025-07-22 03:21:02.099000",
			Notes:     notes,
		},
		{
			Email:     "vaughan.david@gmail.com",
			FirstName: "David",
			LastName:  "Vaughan",
			Phone:     "+61484494400",
			CreatedAt: "2025-07-22 04:01:58.477000",
			Notes:     notes,
		},
	}

	users := make([]ingestedUser, 0, len(samples))
	for _, params := range samples {
		created, err := h.contacts.Ingest(r.Context(), params)
		if err != nil {
			h.logger.Error("simulated ingest failed",
				slog.String("email", params.Email),
				slog.String("error", err.Error()),
			)
			h.writeJSON(w, http.StatusInternalServerError, webhookErrorResponse{
				Error: "Failed to simulate webhook",
			})
			return
		}
		users = append(users, toIngestedUser(created))
	}

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Success: true,
		Message: fmt.Sprintf("Simulated %d webhook users", len(users)),
		Users:   users,
	})
}

// paramsFromRequest prefers fields extracted from the message text,
// falling back to the direct JSON keys. Username doubles as the email
// on both shapes.
func (h *Handler) paramsFromRequest(req chatMessageRequest) (contact.IngestParams, bool) {
	if req.Text != "" {
		if fields, ok := ExtractFields(req.Text); ok {
			return h.paramsFromFields(fields), true
		}
	}

	email := req.Username
	if email == "" {
		email = req.Email
	}
	if strings.TrimSpace(email) == "" {
		return contact.IngestParams{}, false
	}

	phone := req.PhoneNumber
	if phone == "" {
		phone = req.Phone
	}

	return contact.IngestParams{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     phone,
		CreatedAt: req.CreatedAt,
		Notes:     h.chatNote(),
	}, true
}

func (h *Handler) paramsFromFields(fields Fields) contact.IngestParams {
	return contact.IngestParams{
		Email:     fields.Username,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Phone:     fields.PhoneNumber,
		CreatedAt: fields.CreatedAt,
		Notes:     h.chatNote(),
	}
}

func (h *Handler) chatNote() string {
	return "Auto-added from Google Chat webhook on " + h.now().Format(noteDateLayout)
}

// messageText digs the notifier text out of a strict webhook body:
// a Chat event with message.text, a bare {text}, or raw text.
func messageText(body []byte) string {
	var event googleChatEvent
	if err := json.Unmarshal(body, &event); err == nil {
		if event.Message.Text != "" {
			return event.Message.Text
		}
		if event.Text != "" {
			return event.Text
		}
	}
	return string(body)
}

func toIngestedUser(c *contact.Contact) ingestedUser {
	return ingestedUser{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Company:   c.Company,
		Priority:  c.Priority,
	}
}

func (h *Handler) writeChatError(
	w http.ResponseWriter,
	code int,
	message, status string,
) {
	h.writeJSON(w, code, chatErrorResponse{
		Error: chatErrorBody{
			Code:    code,
			Message: message,
			Status:  status,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("write response", slog.String("error", err.Error()))
	}
}
