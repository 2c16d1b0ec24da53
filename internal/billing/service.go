// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voqo-dev/crm-backend/internal/contact"
	"github.com/voqo-dev/crm-backend/internal/core"
)

// CustomerResolver looks up processor-side objects that only arrive as
// ids on webhook payloads.
type CustomerResolver interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
	ProductName(ctx context.Context, productID string) (string, error)
}

// SubscriptionEvent is the slice of a processor subscription the CRM
// cares about.
type SubscriptionEvent struct {
	CustomerID         string
	Status             string
	PriceNickname      string
	UnitAmount         int64
	Currency           string
	Interval           string
	ProductID          string
	CurrentPeriodStart time.Time
}

// InvoiceEvent is the slice of a processor invoice the CRM records.
type InvoiceEvent struct {
	InvoiceID        string
	CustomerID       string
	CustomerEmail    string
	AmountPaid       int64
	Currency         string
	Status           string
	HostedInvoiceURL string
	PaidAt           time.Time
}

type Service struct {
	invoices Repository
	contacts contact.Repository
	resolver CustomerResolver
	logger   *slog.Logger
}

func NewService(
	invoices Repository,
	contacts contact.Repository,
	resolver CustomerResolver,
	logger *slog.Logger,
) *Service {
	return &Service{
		invoices: invoices,
		contacts: contacts,
		resolver: resolver,
		logger:   logger,
	}
}

// HandleSubscriptionChange refreshes a contact's billing columns from
// a subscription lifecycle event. Contacts are matched by the customer
// email on the processor side; events for emails the CRM has never
// seen are logged and dropped.
func (s *Service) HandleSubscriptionChange(
	ctx context.Context,
	event SubscriptionEvent,
) error {
	email, err := s.resolver.CustomerEmail(ctx, event.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}
	if email == "" {
		s.logger.Warn("subscription event for customer without email",
			slog.String("customer_id", event.CustomerID),
		)
		return nil
	}

	productName := ""
	if event.ProductID != "" {
		productName, err = s.resolver.ProductName(ctx, event.ProductID)
		if err != nil {
			s.logger.Warn("product lookup failed",
				slog.String("product_id", event.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}

	update := contact.SubscriptionUpdate{
		Status:           event.Status,
		StripeCustomerID: event.CustomerID,
		ProductName:      productName,
		PlanName:         planName(event),
	}

	if event.Status == "active" && !event.CurrentPeriodStart.IsZero() {
		start := event.CurrentPeriodStart
		update.LastPaymentDate = &start
	}

	err = s.contacts.UpdateSubscriptionByEmail(ctx, email, update)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.Warn("subscription event for unknown contact",
			slog.String("email", email),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("subscription updated",
		slog.String("email", email),
		slog.String("status", event.Status),
	)

	return nil
}

// HandlePaymentSucceeded records the invoice and refreshes the
// contact's last payment date. The insert is keyed on the processor
// invoice id, so redeliveries are no-ops.
func (s *Service) HandlePaymentSucceeded(
	ctx context.Context,
	event InvoiceEvent,
) error {
	email := event.CustomerEmail
	if email == "" && event.CustomerID != "" {
		resolved, err := s.resolver.CustomerEmail(ctx, event.CustomerID)
		if err != nil {
			return fmt.Errorf("resolve customer: %w", err)
		}
		email = resolved
	}
	if email == "" {
		s.logger.Warn("payment event without customer email",
			slog.String("invoice_id", event.InvoiceID),
		)
		return nil
	}

	paidAt := event.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	inserted, err := s.invoices.InsertIfNew(ctx, &Invoice{
		ID:               uuid.New().String(),
		StripeInvoiceID:  event.InvoiceID,
		Email:            strings.ToLower(email),
		AmountPaid:       event.AmountPaid,
		Currency:         event.Currency,
		Status:           event.Status,
		HostedInvoiceURL: event.HostedInvoiceURL,
		PaidAt:           paidAt,
	})
	if err != nil {
		return err
	}

	if !inserted {
		s.logger.Info("invoice already recorded",
			slog.String("invoice_id", event.InvoiceID),
		)
		return nil
	}

	err = s.contacts.SetLastPaymentDateByEmail(ctx, email, paidAt)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.Warn("payment for unknown contact",
			slog.String("email", email),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("payment recorded",
		slog.String("email", email),
		slog.String("invoice_id", event.InvoiceID),
	)

	return nil
}

// HandlePaymentFailed only logs; the dunning flow lives with the
// processor, and the outreach ranker reacts to the subscription status.
func (s *Service) HandlePaymentFailed(
	ctx context.Context,
	event InvoiceEvent,
) error {
	email := event.CustomerEmail
	if email == "" && event.CustomerID != "" {
		resolved, err := s.resolver.CustomerEmail(ctx, event.CustomerID)
		if err == nil {
			email = resolved
		}
	}

	s.logger.Warn("payment failed",
		slog.String("invoice_id", event.InvoiceID),
		slog.String("email", email),
	)

	return nil
}

// ListInvoicesForContact returns a contact's invoices, matched through
// the contact's email.
func (s *Service) ListInvoicesForContact(
	ctx context.Context,
	contactID string,
) ([]Invoice, error) {
	c, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	return s.invoices.ListByEmail(ctx, c.Email)
}

// planName prefers the price nickname set in the processor dashboard,
// else renders one from the raw price, e.g. "USD 49.00/month".
func planName(event SubscriptionEvent) string {
	if event.PriceNickname != "" {
		return event.PriceNickname
	}
	if event.UnitAmount == 0 && event.Currency == "" {
		return ""
	}
	return fmt.Sprintf("%s %.2f/%s",
		strings.ToUpper(event.Currency),
		float64(event.UnitAmount)/100,
		event.Interval,
	)
}
