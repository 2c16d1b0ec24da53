// AngelaMos | 2026
// service_test.go

package platform

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

type fakeChecker struct {
	activities map[string]*Activity
	errors     map[string]error
}

func (f *fakeChecker) CheckActivity(_ context.Context, email string, _ time.Duration) (*Activity, error) {
	if err, ok := f.errors[email]; ok {
		return nil, err
	}
	return f.activities[email], nil
}

func (f *fakeChecker) Ping(_ context.Context) error { return nil }

type activityUpdate struct {
	callCount int
	isActive  bool
}

type syncRepository struct {
	contacts []contact.Contact
	updates  map[string]activityUpdate
}

func (s *syncRepository) Create(_ context.Context, _ *contact.Contact) error { return nil }

func (s *syncRepository) UpsertByExternalID(_ context.Context, _ *contact.Contact) error {
	return nil
}

func (s *syncRepository) GetByID(_ context.Context, _ string) (*contact.Contact, error) {
	return nil, nil
}

func (s *syncRepository) GetByEmail(_ context.Context, _ string) (*contact.Contact, error) {
	return nil, nil
}

func (s *syncRepository) Update(_ context.Context, _ *contact.Contact) error { return nil }
func (s *syncRepository) Delete(_ context.Context, _ string) error           { return nil }

func (s *syncRepository) List(_ context.Context, _ contact.ListContactsParams) ([]contact.Contact, int, error) {
	return nil, 0, nil
}

func (s *syncRepository) ListAll(_ context.Context) ([]contact.Contact, error) {
	return s.contacts, nil
}

func (s *syncRepository) UpdateSubscriptionByEmail(_ context.Context, _ string, _ contact.SubscriptionUpdate) error {
	return nil
}

func (s *syncRepository) SetLastPaymentDateByEmail(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (s *syncRepository) UpdateActivityByEmail(_ context.Context, email string, _ *time.Time, callCount int, isActive bool) error {
	if s.updates == nil {
		s.updates = make(map[string]activityUpdate)
	}
	s.updates[email] = activityUpdate{callCount: callCount, isActive: isActive}
	return nil
}

func TestSync(t *testing.T) {
	lastCall := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	repo := &syncRepository{
		contacts: []contact.Contact{
			{Email: "active@vpigroup.com.au"},
			{Email: "unknown@gmail.com"},
			{Email: "broken@gmail.com"},
		},
	}
	checker := &fakeChecker{
		activities: map[string]*Activity{
			"active@vpigroup.com.au": {LastActivity: &lastCall, CallCount: 12},
		},
		errors: map[string]error{
			"broken@gmail.com": errors.New("mongo timeout"),
		},
	}

	svc := NewService(repo, checker, 30*24*time.Hour, slog.New(slog.DiscardHandler))

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)

	assert.Equal(t, activityUpdate{callCount: 12, isActive: true}, repo.updates["active@vpigroup.com.au"])
	assert.NotContains(t, repo.updates, "unknown@gmail.com")
}

func TestSync_DeactivatesContactsWithoutAgents(t *testing.T) {
	repo := &syncRepository{
		contacts: []contact.Contact{
			{Email: "churned@vpigroup.com.au", IsUsingPlatform: true},
			{Email: "never-onboarded@gmail.com", IsUsingPlatform: false},
		},
	}

	svc := NewService(repo, &fakeChecker{}, 30*24*time.Hour, slog.New(slog.DiscardHandler))

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, activityUpdate{callCount: 0, isActive: false}, repo.updates["churned@vpigroup.com.au"])
	assert.NotContains(t, repo.updates, "never-onboarded@gmail.com")
}

func TestSync_ZeroCallsMarksInactive(t *testing.T) {
	repo := &syncRepository{
		contacts: []contact.Contact{
			{Email: "idle@vpigroup.com.au", IsUsingPlatform: true},
		},
	}
	checker := &fakeChecker{
		activities: map[string]*Activity{
			"idle@vpigroup.com.au": {CallCount: 0},
		},
	}

	svc := NewService(repo, checker, 30*24*time.Hour, slog.New(slog.DiscardHandler))

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, activityUpdate{callCount: 0, isActive: false}, repo.updates["idle@vpigroup.com.au"])
}

func TestSync_CanceledContext(t *testing.T) {
	repo := &syncRepository{
		contacts: []contact.Contact{{Email: "a@b.co"}, {Email: "c@d.co"}},
	}
	svc := NewService(repo, &fakeChecker{}, time.Hour, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
