// AngelaMos | 2026
// rank.go

package outreach

import (
	"time"

	"github.com/voqo-dev/crm-backend/internal/contact"
)

const (
	UrgencyUrgent = "urgent"
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
)

const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
)

const (
	MethodBoth  = "both"
	MethodPhone = "phone"
	MethodEmail = "email"
)

const (
	ActivityHigh   = "high"
	ActivityMedium = "medium"
	ActivityLow    = "low"
)

// Recommendation is a ranked entry on the outreach queue.
type Recommendation struct {
	Urgency string
	Reason  string
	Method  string
}

// Alert is a ranked entry on the at-risk list.
type Alert struct {
	Severity string
	Reason   string
}

// RankOutreach decides whether a contact needs a touchpoint and how
// urgent it is. Rules apply first match wins: billing states trump
// staleness, staleness trumps the new-client nudge. Contacts with no
// touchpoint logged only qualify under the new-client rule.
func RankOutreach(c *contact.Contact, now time.Time) (Recommendation, bool) {
	switch subscriptionStatus(c) {
	case contact.StatusTrialEnding:
		return Recommendation{UrgencyUrgent, "Trial ending soon", MethodBoth}, true
	case contact.StatusPaymentFailed:
		return Recommendation{UrgencyUrgent, "Payment failed", MethodBoth}, true
	case contact.StatusOverdue:
		return Recommendation{UrgencyUrgent, "Account overdue", MethodBoth}, true
	}

	if c.LastContact != nil {
		days := c.DaysSinceContact(now)
		switch {
		case days > 30:
			return Recommendation{UrgencyHigh, "No contact for over 30 days", MethodPhone}, true
		case days > 14 && subscriptionStatus(c) == contact.StatusActive:
			return Recommendation{UrgencyMedium, "Check-in needed", MethodEmail}, true
		case days > 7 && subscriptionStatus(c) == contact.StatusTrial:
			return Recommendation{UrgencyMedium, "Trial follow-up", MethodEmail}, true
		}
		return Recommendation{}, false
	}

	if c.DaysSinceCreated(now) > 3 {
		return Recommendation{UrgencyHigh, "New client - no initial contact", MethodPhone}, true
	}

	return Recommendation{}, false
}

// RankSeverity flags at-risk contacts. The staleness rules need a
// recorded touchpoint; never-contacted rows stay off this view and are
// handled by the outreach queue's new-client rule instead.
func RankSeverity(c *contact.Contact, now time.Time) (Alert, bool) {
	switch subscriptionStatus(c) {
	case contact.StatusPaymentFailed:
		return Alert{SeverityCritical, "Payment failed - immediate action required"}, true
	case contact.StatusTrialEnding:
		return Alert{SeverityHigh, "Trial ending soon - conversion opportunity"}, true
	}

	if c.LastContact == nil {
		return Alert{}, false
	}

	days := c.DaysSinceContact(now)
	switch {
	case days >= 14:
		return Alert{SeverityCritical, "No contact for 14+ days - risk of churn"}, true
	case days >= 7:
		return Alert{SeverityHigh, "No recent contact - follow-up needed"}, true
	}

	return Alert{}, false
}

// Billing writes the provider's subscription state to its own column;
// the lifecycle Status field stays operator-owned and takes no part in
// ranking.
func subscriptionStatus(c *contact.Contact) string {
	if c.SubscriptionStatus == nil {
		return ""
	}
	return *c.SubscriptionStatus
}

// ClassifyActivity buckets platform usage by recency of the last call.
func ClassifyActivity(c *contact.Contact, now time.Time) string {
	days := contact.NeverContacted
	if c.LastActivity != nil {
		days = int(now.Sub(*c.LastActivity).Hours() / 24)
		if days < 0 {
			days = 0
		}
	}

	switch {
	case days <= 3:
		return ActivityHigh
	case days <= 7:
		return ActivityMedium
	default:
		return ActivityLow
	}
}

func urgencyRank(urgency string) int {
	switch urgency {
	case UrgencyUrgent:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

func severityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	default:
		return 2
	}
}
