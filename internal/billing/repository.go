// AngelaMos | 2026
// repository.go

package billing

import (
	"context"
	"fmt"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Repository interface {
	InsertIfNew(ctx context.Context, invoice *Invoice) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]Invoice, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// InsertIfNew records an invoice once per processor invoice id.
// Redelivered payment webhooks hit the conflict clause and report
// inserted=false.
func (r *repository) InsertIfNew(
	ctx context.Context,
	invoice *Invoice,
) (bool, error) {
	query := `
		INSERT INTO invoices (
			id, stripe_invoice_id, email, amount_paid, currency, status,
			hosted_invoice_url, paid_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (stripe_invoice_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.StripeInvoiceID,
		invoice.Email,
		invoice.AmountPaid,
		invoice.Currency,
		invoice.Status,
		invoice.HostedInvoiceURL,
		invoice.PaidAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) ListByEmail(
	ctx context.Context,
	email string,
) ([]Invoice, error) {
	query := `
		SELECT id, stripe_invoice_id, email, amount_paid, currency, status,
		       hosted_invoice_url, paid_at, created_at
		FROM invoices
		WHERE LOWER(email) = LOWER($1)
		ORDER BY paid_at DESC`

	var invoices []Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, email); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, nil
}
