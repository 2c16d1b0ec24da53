// AngelaMos | 2026
// handler.go

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Handler struct {
	service       *Service
	webhookSecret string
	logger        *slog.Logger
}

func NewHandler(
	service *Service,
	webhookSecret string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, ratelimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(ratelimit)

		r.Post("/webhook/stripe", h.StripeWebhook)
	})
}

func (h *Handler) RegisterContactRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/contacts/{contactID}/invoices", h.ListContactInvoices)
	})
}

// StripeWebhook verifies and dispatches billing events. Processing
// failures come back as a 500 so Stripe redelivers the event; only an
// accepted event is answered with a 200.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Could not read request body",
		})
		return
	}

	event, err := webhook.ConstructEvent(
		payload,
		r.Header.Get("Stripe-Signature"),
		h.webhookSecret,
	)
	if err != nil {
		h.logger.Warn("stripe webhook signature rejected",
			slog.String("error", err.Error()),
		)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid webhook signature",
		})
		return
	}

	var procErr error
	switch string(event.Type) {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		procErr = h.handleSubscription(r, event)

	case "invoice.payment_succeeded":
		procErr = h.handleInvoice(r, event, h.service.HandlePaymentSucceeded)

	case "invoice.payment_failed":
		procErr = h.handleInvoice(r, event, h.service.HandlePaymentFailed)

	default:
		h.logger.Info("stripe event ignored",
			slog.String("type", string(event.Type)),
		)
	}

	if procErr != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Event processing failed",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) handleSubscription(r *http.Request, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("decode subscription event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := h.service.HandleSubscriptionChange(r.Context(), toSubscriptionEvent(&sub)); err != nil {
		h.logger.Error("handle subscription event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

func (h *Handler) handleInvoice(
	r *http.Request,
	event stripe.Event,
	handle func(ctx context.Context, event InvoiceEvent) error,
) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		h.logger.Error("decode invoice event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := handle(r.Context(), toInvoiceEvent(&inv)); err != nil {
		h.logger.Error("handle invoice event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

// ListContactInvoices returns the recorded invoices for a contact.
func (h *Handler) ListContactInvoices(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	invoices, err := h.service.ListInvoicesForContact(r.Context(), contactID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, InvoiceListResponse{
		Invoices: ToInvoiceResponseList(invoices),
	})
}

func toSubscriptionEvent(sub *stripe.Subscription) SubscriptionEvent {
	event := SubscriptionEvent{
		Status: string(sub.Status),
	}

	if sub.Customer != nil {
		event.CustomerID = sub.Customer.ID
	}

	if sub.CurrentPeriodStart > 0 {
		event.CurrentPeriodStart = time.Unix(sub.CurrentPeriodStart, 0).UTC()
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		price := sub.Items.Data[0].Price
		if price != nil {
			event.PriceNickname = price.Nickname
			event.UnitAmount = price.UnitAmount
			event.Currency = string(price.Currency)
			if price.Recurring != nil {
				event.Interval = string(price.Recurring.Interval)
			}
			if price.Product != nil {
				event.ProductID = price.Product.ID
			}
		}
	}

	return event
}

func toInvoiceEvent(inv *stripe.Invoice) InvoiceEvent {
	event := InvoiceEvent{
		InvoiceID:        inv.ID,
		CustomerEmail:    inv.CustomerEmail,
		AmountPaid:       inv.AmountPaid,
		Currency:         string(inv.Currency),
		Status:           string(inv.Status),
		HostedInvoiceURL: inv.HostedInvoiceURL,
	}

	if inv.Customer != nil {
		event.CustomerID = inv.Customer.ID
	}

	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
		event.PaidAt = time.Unix(inv.StatusTransitions.PaidAt, 0).UTC()
	}

	return event
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("write response", slog.String("error", err.Error()))
	}
}
