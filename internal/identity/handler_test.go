// AngelaMos | 2026
// handler_test.go

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voqo-dev/crm-backend/internal/config"
	"github.com/voqo-dev/crm-backend/internal/contact"
	"github.com/voqo-dev/crm-backend/internal/team"
)

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(_ []byte, _ http.Header) error {
	return f.err
}

type memoryRepository struct {
	upserted []*contact.Contact
}

func (m *memoryRepository) Create(_ context.Context, c *contact.Contact) error {
	return nil
}

func (m *memoryRepository) UpsertByExternalID(_ context.Context, c *contact.Contact) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.upserted = append(m.upserted, c)
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, _ string) (*contact.Contact, error) {
	return nil, nil
}

func (m *memoryRepository) GetByEmail(_ context.Context, _ string) (*contact.Contact, error) {
	return nil, nil
}

func (m *memoryRepository) Update(_ context.Context, _ *contact.Contact) error { return nil }
func (m *memoryRepository) Delete(_ context.Context, _ string) error           { return nil }

func (m *memoryRepository) List(_ context.Context, _ contact.ListContactsParams) ([]contact.Contact, int, error) {
	return nil, 0, nil
}

func (m *memoryRepository) ListAll(_ context.Context) ([]contact.Contact, error) {
	return nil, nil
}

func (m *memoryRepository) UpdateSubscriptionByEmail(_ context.Context, _ string, _ contact.SubscriptionUpdate) error {
	return nil
}

func (m *memoryRepository) SetLastPaymentDateByEmail(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (m *memoryRepository) UpdateActivityByEmail(_ context.Context, _ string, _ *time.Time, _ int, _ bool) error {
	return nil
}

func newTestRouter(repo contact.Repository, verifier Verifier) chi.Router {
	classifier := contact.NewClassifier(config.ClassifierConfig{
		PersonalDomains: []string{"gmail.com"},
	})
	svc := contact.NewService(
		repo,
		classifier,
		[]string{"Sarah", "Alex"},
		team.NewRoundRobinStrategy(),
	)
	h := NewHandler(svc, verifier, slog.New(slog.DiscardHandler))

	r := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	h.RegisterRoutes(r, passthrough)
	return r
}

func userCreatedPayload() string {
	return `{
		"type": "user.created",
		"data": {
			"id": "user_2abc123",
			"first_name": "Jane",
			"last_name": "Doe",
			"primary_email_address_id": "idn_1",
			"email_addresses": [
				{"id": "idn_0", "email_address": "old@gmail.com"},
				{"id": "idn_1", "email_address": "jane@gmail.com"}
			],
			"phone_numbers": [{"phone_number": "+14155551234"}]
		}
	}`
}

func TestClerkWebhook_UserCreated(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo, &fakeVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/webhook/clerk", strings.NewReader(userCreatedPayload()))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp webhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "User added to CRM", resp.Message)

	require.Len(t, repo.upserted, 1)
	created := repo.upserted[0]
	assert.Equal(t, "user_2abc123", created.ID)
	require.NotNil(t, created.ExternalID)
	assert.Equal(t, "user_2abc123", *created.ExternalID)
	assert.Equal(t, "jane@gmail.com", created.Email)
	assert.Equal(t, "+14155551234", created.Phone)
	assert.True(t, created.IsUsingPlatform)
	assert.Equal(t, "New signup via Clerk", created.Notes)
}

func TestClerkWebhook_BadSignature(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo, &fakeVerifier{err: errors.New("no matching signature")})

	req := httptest.NewRequest(http.MethodPost, "/webhook/clerk", strings.NewReader(userCreatedPayload()))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.upserted)
}

func TestClerkWebhook_IgnoresOtherEvents(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo, &fakeVerifier{})

	body := `{"type":"user.updated","data":{"id":"user_2abc123"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/clerk", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp webhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Event ignored", resp.Message)
	assert.Empty(t, repo.upserted)
}

func TestClerkWebhook_NameFallback(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo, &fakeVerifier{})

	body := `{
		"type": "user.created",
		"data": {
			"id": "user_2def456",
			"email_addresses": [{"id": "idn_1", "email_address": "anon@gmail.com"}],
			"primary_email_address_id": "idn_1"
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/clerk", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "Unknown User", repo.upserted[0].FirstName)
}
