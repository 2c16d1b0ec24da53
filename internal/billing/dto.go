// AngelaMos | 2026
// dto.go

package billing

import (
	"time"
)

type InvoiceResponse struct {
	ID               string    `json:"id"`
	StripeInvoiceID  string    `json:"stripe_invoice_id"`
	Email            string    `json:"email"`
	AmountPaid       int64     `json:"amount_paid"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	HostedInvoiceURL string    `json:"hosted_invoice_url,omitempty"`
	PaidAt           time.Time `json:"paid_at"`
	CreatedAt        time.Time `json:"created_at"`
}

type InvoiceListResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
}

func ToInvoiceResponse(inv *Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
		StripeInvoiceID:  inv.StripeInvoiceID,
		Email:            inv.Email,
		AmountPaid:       inv.AmountPaid,
		Currency:         inv.Currency,
		Status:           inv.Status,
		HostedInvoiceURL: inv.HostedInvoiceURL,
		PaidAt:           inv.PaidAt,
		CreatedAt:        inv.CreatedAt,
	}
}

func ToInvoiceResponseList(invoices []Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, ToInvoiceResponse(&inv))
	}
	return responses
}
