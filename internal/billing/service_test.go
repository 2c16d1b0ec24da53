// AngelaMos | 2026
// service_test.go

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voqo-dev/crm-backend/internal/contact"
	"github.com/voqo-dev/crm-backend/internal/core"
)

type fakeInvoiceRepo struct {
	invoices map[string]*Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[string]*Invoice)}
}

func (f *fakeInvoiceRepo) InsertIfNew(_ context.Context, inv *Invoice) (bool, error) {
	if _, exists := f.invoices[inv.StripeInvoiceID]; exists {
		return false, nil
	}
	f.invoices[inv.StripeInvoiceID] = inv
	return true, nil
}

func (f *fakeInvoiceRepo) ListByEmail(_ context.Context, email string) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range f.invoices {
		if inv.Email == email {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type fakeContactRepo struct {
	known            map[string]bool
	subUpdates       map[string]contact.SubscriptionUpdate
	lastPaymentDates map[string]time.Time
}

func newFakeContactRepo(emails ...string) *fakeContactRepo {
	known := make(map[string]bool, len(emails))
	for _, e := range emails {
		known[e] = true
	}
	return &fakeContactRepo{
		known:            known,
		subUpdates:       make(map[string]contact.SubscriptionUpdate),
		lastPaymentDates: make(map[string]time.Time),
	}
}

func (f *fakeContactRepo) Create(_ context.Context, _ *contact.Contact) error { return nil }

func (f *fakeContactRepo) UpsertByExternalID(_ context.Context, _ *contact.Contact) error {
	return nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (*contact.Contact, error) {
	if !f.known[id] {
		return nil, fmt.Errorf("get contact: %w", core.ErrNotFound)
	}
	return &contact.Contact{ID: id, Email: id}, nil
}

func (f *fakeContactRepo) GetByEmail(_ context.Context, email string) (*contact.Contact, error) {
	if !f.known[email] {
		return nil, fmt.Errorf("get contact by email: %w", core.ErrNotFound)
	}
	return &contact.Contact{Email: email}, nil
}

func (f *fakeContactRepo) Update(_ context.Context, _ *contact.Contact) error { return nil }
func (f *fakeContactRepo) Delete(_ context.Context, _ string) error           { return nil }

func (f *fakeContactRepo) List(_ context.Context, _ contact.ListContactsParams) ([]contact.Contact, int, error) {
	return nil, 0, nil
}

func (f *fakeContactRepo) ListAll(_ context.Context) ([]contact.Contact, error) {
	return nil, nil
}

func (f *fakeContactRepo) UpdateSubscriptionByEmail(_ context.Context, email string, sub contact.SubscriptionUpdate) error {
	if !f.known[email] {
		return fmt.Errorf("update subscription: %w", core.ErrNotFound)
	}
	f.subUpdates[email] = sub
	return nil
}

func (f *fakeContactRepo) SetLastPaymentDateByEmail(_ context.Context, email string, paidAt time.Time) error {
	if !f.known[email] {
		return fmt.Errorf("set last payment date: %w", core.ErrNotFound)
	}
	f.lastPaymentDates[email] = paidAt
	return nil
}

func (f *fakeContactRepo) UpdateActivityByEmail(_ context.Context, _ string, _ *time.Time, _ int, _ bool) error {
	return nil
}

type fakeResolver struct {
	emails   map[string]string
	products map[string]string
	err      error
}

func (f *fakeResolver) CustomerEmail(_ context.Context, customerID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.emails[customerID], nil
}

func (f *fakeResolver) ProductName(_ context.Context, productID string) (string, error) {
	return f.products[productID], nil
}

func newTestService(invoices Repository, contacts contact.Repository, resolver CustomerResolver) *Service {
	return NewService(invoices, contacts, resolver, slog.New(slog.DiscardHandler))
}

func TestHandleSubscriptionChange_Active(t *testing.T) {
	contacts := newFakeContactRepo("jane@gmail.com")
	resolver := &fakeResolver{
		emails:   map[string]string{"cus_123": "jane@gmail.com"},
		products: map[string]string{"prod_1": "Voqo Pro"},
	}
	svc := newTestService(newFakeInvoiceRepo(), contacts, resolver)

	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := svc.HandleSubscriptionChange(context.Background(), SubscriptionEvent{
		CustomerID:         "cus_123",
		Status:             "active",
		UnitAmount:         4900,
		Currency:           "usd",
		Interval:           "month",
		ProductID:          "prod_1",
		CurrentPeriodStart: periodStart,
	})
	require.NoError(t, err)

	update, ok := contacts.subUpdates["jane@gmail.com"]
	require.True(t, ok)
	assert.Equal(t, "active", update.Status)
	assert.Equal(t, "cus_123", update.StripeCustomerID)
	assert.Equal(t, "Voqo Pro", update.ProductName)
	assert.Equal(t, "USD 49.00/month", update.PlanName)
	require.NotNil(t, update.LastPaymentDate)
	assert.Equal(t, periodStart, *update.LastPaymentDate)
}

func TestHandleSubscriptionChange_NicknameWins(t *testing.T) {
	contacts := newFakeContactRepo("jane@gmail.com")
	resolver := &fakeResolver{
		emails: map[string]string{"cus_123": "jane@gmail.com"},
	}
	svc := newTestService(newFakeInvoiceRepo(), contacts, resolver)

	err := svc.HandleSubscriptionChange(context.Background(), SubscriptionEvent{
		CustomerID:    "cus_123",
		Status:        "trialing",
		PriceNickname: "Pro Monthly",
		UnitAmount:    4900,
		Currency:      "usd",
		Interval:      "month",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pro Monthly", contacts.subUpdates["jane@gmail.com"].PlanName)
	assert.Nil(t, contacts.subUpdates["jane@gmail.com"].LastPaymentDate)
}

func TestHandleSubscriptionChange_UnknownContactTolerated(t *testing.T) {
	contacts := newFakeContactRepo()
	resolver := &fakeResolver{
		emails: map[string]string{"cus_999": "stranger@gmail.com"},
	}
	svc := newTestService(newFakeInvoiceRepo(), contacts, resolver)

	err := svc.HandleSubscriptionChange(context.Background(), SubscriptionEvent{
		CustomerID: "cus_999",
		Status:     "active",
	})
	assert.NoError(t, err)
	assert.Empty(t, contacts.subUpdates)
}

func TestHandlePaymentSucceeded(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	contacts := newFakeContactRepo("jane@gmail.com")
	svc := newTestService(invoices, contacts, &fakeResolver{})

	paidAt := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	err := svc.HandlePaymentSucceeded(context.Background(), InvoiceEvent{
		InvoiceID:     "in_123",
		CustomerEmail: "jane@gmail.com",
		AmountPaid:    4900,
		Currency:      "usd",
		Status:        "paid",
		PaidAt:        paidAt,
	})
	require.NoError(t, err)

	require.Contains(t, invoices.invoices, "in_123")
	assert.Equal(t, int64(4900), invoices.invoices["in_123"].AmountPaid)
	assert.Equal(t, paidAt, contacts.lastPaymentDates["jane@gmail.com"])
}

func TestHandlePaymentSucceeded_RedeliveryIsNoop(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	contacts := newFakeContactRepo("jane@gmail.com")
	svc := newTestService(invoices, contacts, &fakeResolver{})

	first := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	event := InvoiceEvent{
		InvoiceID:     "in_123",
		CustomerEmail: "jane@gmail.com",
		AmountPaid:    4900,
		PaidAt:        first,
	}

	require.NoError(t, svc.HandlePaymentSucceeded(context.Background(), event))

	delete(contacts.lastPaymentDates, "jane@gmail.com")
	require.NoError(t, svc.HandlePaymentSucceeded(context.Background(), event))

	assert.Len(t, invoices.invoices, 1)
	assert.Empty(t, contacts.lastPaymentDates)
}

func TestHandlePaymentSucceeded_ResolvesEmailFromCustomer(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	contacts := newFakeContactRepo("jane@gmail.com")
	resolver := &fakeResolver{
		emails: map[string]string{"cus_123": "jane@gmail.com"},
	}
	svc := newTestService(invoices, contacts, resolver)

	err := svc.HandlePaymentSucceeded(context.Background(), InvoiceEvent{
		InvoiceID:  "in_456",
		CustomerID: "cus_123",
		AmountPaid: 4900,
		PaidAt:     time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@gmail.com", invoices.invoices["in_456"].Email)
}

func TestHandlePaymentFailed_LogsOnly(t *testing.T) {
	invoices := newFakeInvoiceRepo()
	contacts := newFakeContactRepo("jane@gmail.com")
	svc := newTestService(invoices, contacts, &fakeResolver{})

	err := svc.HandlePaymentFailed(context.Background(), InvoiceEvent{
		InvoiceID:     "in_789",
		CustomerEmail: "jane@gmail.com",
	})
	require.NoError(t, err)

	assert.Empty(t, invoices.invoices)
	assert.Empty(t, contacts.lastPaymentDates)
}

func TestPlanName(t *testing.T) {
	assert.Equal(t, "Pro Monthly", planName(SubscriptionEvent{PriceNickname: "Pro Monthly"}))
	assert.Equal(t, "AUD 99.00/year", planName(SubscriptionEvent{
		UnitAmount: 9900, Currency: "aud", Interval: "year",
	}))
	assert.Equal(t, "", planName(SubscriptionEvent{}))
}
