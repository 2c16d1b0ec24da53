// AngelaMos | 2026
// rank_test.go

package outreach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

var rankNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := rankNow.AddDate(0, 0, -n)
	return &t
}

func sub(status string) *string {
	return &status
}

func TestRankOutreach_BillingStatesAreUrgent(t *testing.T) {
	tests := []struct {
		status string
		reason string
	}{
		{contact.StatusTrialEnding, "Trial ending soon"},
		{contact.StatusPaymentFailed, "Payment failed"},
		{contact.StatusOverdue, "Account overdue"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			c := &contact.Contact{
				SubscriptionStatus: sub(tt.status),
				LastContact:        daysAgo(1),
			}
			rec, needed := RankOutreach(c, rankNow)
			require.True(t, needed)
			assert.Equal(t, UrgencyUrgent, rec.Urgency)
			assert.Equal(t, tt.reason, rec.Reason)
			assert.Equal(t, MethodBoth, rec.Method)
		})
	}
}

func TestRankOutreach_ReadsSubscriptionStatusNotLifecycle(t *testing.T) {
	// A failed payment arrives on the billing column while the operator
	// still has the contact marked active; the billing state must win.
	c := &contact.Contact{
		Status:             contact.StatusActive,
		SubscriptionStatus: sub(contact.StatusPaymentFailed),
		LastContact:        daysAgo(1),
	}
	rec, needed := RankOutreach(c, rankNow)
	require.True(t, needed)
	assert.Equal(t, UrgencyUrgent, rec.Urgency)
	assert.Equal(t, "Payment failed", rec.Reason)

	// The lifecycle field alone never triggers a billing rule.
	c = &contact.Contact{
		Status:      contact.StatusPaymentFailed,
		LastContact: daysAgo(1),
	}
	_, needed = RankOutreach(c, rankNow)
	assert.False(t, needed)
}

func TestRankOutreach_BillingTrumpsStaleness(t *testing.T) {
	// A payment failure on a very stale contact still reports the
	// billing reason, not the staleness one.
	c := &contact.Contact{
		SubscriptionStatus: sub(contact.StatusPaymentFailed),
		LastContact:        daysAgo(60),
	}
	rec, needed := RankOutreach(c, rankNow)
	require.True(t, needed)
	assert.Equal(t, "Payment failed", rec.Reason)
}

func TestRankOutreach_Staleness(t *testing.T) {
	tests := []struct {
		name    string
		status  *string
		days    int
		urgency string
		reason  string
		method  string
		needed  bool
	}{
		{"over 30 days any status", sub(contact.StatusActive), 31, UrgencyHigh, "No contact for over 30 days", MethodPhone, true},
		{"over 30 days no subscription", nil, 45, UrgencyHigh, "No contact for over 30 days", MethodPhone, true},
		{"active over 14 days", sub(contact.StatusActive), 15, UrgencyMedium, "Check-in needed", MethodEmail, true},
		{"trial over 7 days", sub(contact.StatusTrial), 8, UrgencyMedium, "Trial follow-up", MethodEmail, true},
		{"active at 14 days", sub(contact.StatusActive), 14, "", "", "", false},
		{"trial at 7 days", sub(contact.StatusTrial), 7, "", "", "", false},
		{"active recently contacted", sub(contact.StatusActive), 2, "", "", "", false},
		{"no subscription over 14 days", nil, 20, "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &contact.Contact{
				SubscriptionStatus: tt.status,
				LastContact:        daysAgo(tt.days),
			}
			rec, needed := RankOutreach(c, rankNow)
			assert.Equal(t, tt.needed, needed)
			if tt.needed {
				assert.Equal(t, tt.urgency, rec.Urgency)
				assert.Equal(t, tt.reason, rec.Reason)
				assert.Equal(t, tt.method, rec.Method)
			}
		})
	}
}

func TestRankOutreach_NewClientRule(t *testing.T) {
	// No touchpoint logged and created more than three days ago.
	c := &contact.Contact{
		Status:    contact.StatusTrial,
		CreatedAt: rankNow.AddDate(0, 0, -4),
	}
	rec, needed := RankOutreach(c, rankNow)
	require.True(t, needed)
	assert.Equal(t, UrgencyHigh, rec.Urgency)
	assert.Equal(t, "New client - no initial contact", rec.Reason)
	assert.Equal(t, MethodPhone, rec.Method)
}

func TestRankOutreach_FreshNewClientExcluded(t *testing.T) {
	c := &contact.Contact{
		Status:    contact.StatusTrial,
		CreatedAt: rankNow.AddDate(0, 0, -2),
	}
	_, needed := RankOutreach(c, rankNow)
	assert.False(t, needed)
}

func TestRankSeverity(t *testing.T) {
	tests := []struct {
		name     string
		c        *contact.Contact
		severity string
		reason   string
		included bool
	}{
		{
			"payment failed",
			&contact.Contact{SubscriptionStatus: sub(contact.StatusPaymentFailed), LastContact: daysAgo(1)},
			SeverityCritical, "Payment failed - immediate action required", true,
		},
		{
			"payment failed with lifecycle active",
			&contact.Contact{Status: contact.StatusActive, SubscriptionStatus: sub(contact.StatusPaymentFailed), LastContact: daysAgo(1)},
			SeverityCritical, "Payment failed - immediate action required", true,
		},
		{
			"trial ending",
			&contact.Contact{SubscriptionStatus: sub(contact.StatusTrialEnding), LastContact: daysAgo(1)},
			SeverityHigh, "Trial ending soon - conversion opportunity", true,
		},
		{
			"stale 14 days",
			&contact.Contact{SubscriptionStatus: sub(contact.StatusActive), LastContact: daysAgo(14)},
			SeverityCritical, "No contact for 14+ days - risk of churn", true,
		},
		{
			"never contacted excluded",
			&contact.Contact{SubscriptionStatus: sub(contact.StatusActive)},
			"", "", false,
		},
		{
			"stale 7 days",
			&contact.Contact{SubscriptionStatus: sub(contact.StatusActive), LastContact: daysAgo(7)},
			SeverityHigh, "No recent contact - follow-up needed", true,
		},
		{
			"fresh contact excluded",
			&contact.Contact{SubscriptionStatus: sub(contact.StatusActive), LastContact: daysAgo(3)},
			"", "", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert, included := RankSeverity(tt.c, rankNow)
			assert.Equal(t, tt.included, included)
			if tt.included {
				assert.Equal(t, tt.severity, alert.Severity)
				assert.Equal(t, tt.reason, alert.Reason)
			}
		})
	}
}

func TestClassifyActivity(t *testing.T) {
	tests := []struct {
		name string
		last *time.Time
		want string
	}{
		{"called today", daysAgo(0), ActivityHigh},
		{"called three days ago", daysAgo(3), ActivityHigh},
		{"called five days ago", daysAgo(5), ActivityMedium},
		{"called two weeks ago", daysAgo(14), ActivityLow},
		{"never called", nil, ActivityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &contact.Contact{LastActivity: tt.last}
			assert.Equal(t, tt.want, ClassifyActivity(c, rankNow))
		})
	}
}

func TestBuildLinks(t *testing.T) {
	c := &contact.Contact{Phone: "+61481858864", Email: "yao.c@vpigroup.com.au"}
	links := buildLinks(c)

	assert.Equal(t, "tel:+61481858864", links.Tel)
	assert.Equal(t, "https://wa.me/61481858864", links.WhatsApp)
	assert.Equal(t, "mailto:yao.c@vpigroup.com.au", links.Email)

	empty := buildLinks(&contact.Contact{})
	assert.Equal(t, ContactLinks{}, empty)
}
