// AngelaMos | 2026
// entity.go

package billing

import (
	"time"
)

type Invoice struct {
	ID               string    `db:"id"`
	StripeInvoiceID  string    `db:"stripe_invoice_id"`
	Email            string    `db:"email"`
	AmountPaid       int64     `db:"amount_paid"`
	Currency         string    `db:"currency"`
	Status           string    `db:"status"`
	HostedInvoiceURL string    `db:"hosted_invoice_url"`
	PaidAt           time.Time `db:"paid_at"`
	CreatedAt        time.Time `db:"created_at"`
}
