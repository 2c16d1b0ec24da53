// AngelaMos | 2026
// entity.go

package contact

import (
	"time"
)

type Contact struct {
	ID                 string     `db:"id"`
	ExternalID         *string    `db:"external_id"`
	Email              string     `db:"email"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	Phone              string     `db:"phone"`
	Company            string     `db:"company"`
	Priority           string     `db:"priority"`
	Status             string     `db:"status"`
	AccountManager     string     `db:"account_manager"`
	Notes              string     `db:"notes"`
	LastContact        *time.Time `db:"last_contact"`
	IsUsingPlatform    bool       `db:"is_using_platform"`
	StripeCustomerID   *string    `db:"stripe_customer_id"`
	SubscriptionStatus *string    `db:"subscription_status"`
	ProductName        *string    `db:"product_name"`
	PlanName           *string    `db:"plan_name"`
	LastPaymentDate    *time.Time `db:"last_payment_date"`
	LastActivity       *time.Time `db:"last_activity"`
	CallCount          int        `db:"call_count"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func (c *Contact) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	case c.LastName != "":
		return c.LastName
	default:
		return ""
	}
}

// DaysSinceContact returns whole days since the last logged touchpoint,
// or NeverContacted when no touchpoint exists.
func (c *Contact) DaysSinceContact(now time.Time) int {
	if c.LastContact == nil {
		return NeverContacted
	}
	days := int(now.Sub(*c.LastContact).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (c *Contact) DaysSinceCreated(now time.Time) int {
	days := int(now.Sub(c.CreatedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NeverContacted is the sentinel day count for contacts with no
// logged touchpoint.
const NeverContacted = 999

const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

const (
	StatusTrial         = "trial"
	StatusTrialEnding   = "trial_ending"
	StatusActive        = "active"
	StatusPaymentFailed = "payment_failed"
	StatusOverdue       = "overdue"
	StatusCanceled      = "canceled"
)
