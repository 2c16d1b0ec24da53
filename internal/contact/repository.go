// AngelaMos | 2026
// repository.go

package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, contact *Contact) error
	UpsertByExternalID(ctx context.Context, contact *Contact) error
	GetByID(ctx context.Context, id string) (*Contact, error)
	GetByEmail(ctx context.Context, email string) (*Contact, error)
	Update(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListContactsParams) ([]Contact, int, error)
	ListAll(ctx context.Context) ([]Contact, error)
	UpdateSubscriptionByEmail(ctx context.Context, email string, sub SubscriptionUpdate) error
	SetLastPaymentDateByEmail(ctx context.Context, email string, paidAt time.Time) error
	UpdateActivityByEmail(ctx context.Context, email string, lastActivity *time.Time, callCount int, isActive bool) error
}

// SubscriptionUpdate carries the billing fields refreshed whenever the
// payment processor reports a subscription change.
type SubscriptionUpdate struct {
	Status           string
	StripeCustomerID string
	ProductName      string
	PlanName         string
	LastPaymentDate  *time.Time
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const contactColumns = `
	id, external_id, email, first_name, last_name, phone, company,
	priority, status, account_manager, notes, last_contact,
	is_using_platform, stripe_customer_id, subscription_status,
	product_name, plan_name, last_payment_date, last_activity,
	call_count, created_at, updated_at`

func (r *repository) Create(ctx context.Context, contact *Contact) error {
	query := `
		INSERT INTO contacts (
			id, external_id, email, first_name, last_name, phone, company,
			priority, status, account_manager, notes, last_contact,
			is_using_platform, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        COALESCE($14::timestamptz, NOW()))
		RETURNING created_at, updated_at`

	var createdAt *time.Time
	if !contact.CreatedAt.IsZero() {
		createdAt = &contact.CreatedAt
	}

	err := r.db.GetContext(ctx, contact, query,
		contact.ID,
		contact.ExternalID,
		contact.Email,
		contact.FirstName,
		contact.LastName,
		contact.Phone,
		contact.Company,
		contact.Priority,
		contact.Status,
		contact.AccountManager,
		contact.Notes,
		contact.LastContact,
		contact.IsUsingPlatform,
		createdAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create contact: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create contact: %w", err)
	}

	return nil
}

// UpsertByExternalID inserts the contact, or refreshes the existing row
// carrying the same upstream identity. Used by signup webhooks, which
// may redeliver.
func (r *repository) UpsertByExternalID(
	ctx context.Context,
	contact *Contact,
) error {
	if contact.ExternalID == nil {
		return fmt.Errorf("upsert contact: %w", core.ErrInvalidInput)
	}

	query := `
		INSERT INTO contacts (
			id, external_id, email, first_name, last_name, phone, company,
			priority, status, account_manager, notes, last_contact,
			is_using_platform
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			company = EXCLUDED.company,
			is_using_platform = EXCLUDED.is_using_platform,
			last_contact = EXCLUDED.last_contact,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, contact, query,
		contact.ID,
		contact.ExternalID,
		contact.Email,
		contact.FirstName,
		contact.LastName,
		contact.Phone,
		contact.Company,
		contact.Priority,
		contact.Status,
		contact.AccountManager,
		contact.Notes,
		contact.LastContact,
		contact.IsUsingPlatform,
	)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE id = $1`, contactColumns)

	var contact Contact
	err := r.db.GetContext(ctx, &contact, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get contact: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}

	return &contact, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE LOWER(email) = LOWER($1)
		ORDER BY created_at DESC
		LIMIT 1`, contactColumns)

	var contact Contact
	err := r.db.GetContext(ctx, &contact, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get contact by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contact by email: %w", err)
	}

	return &contact, nil
}

func (r *repository) Update(ctx context.Context, contact *Contact) error {
	query := `
		UPDATE contacts
		SET email = $2, first_name = $3, last_name = $4, phone = $5,
		    company = $6, priority = $7, status = $8, account_manager = $9,
		    notes = $10, last_contact = $11, is_using_platform = $12,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &contact.UpdatedAt, query,
		contact.ID,
		contact.Email,
		contact.FirstName,
		contact.LastName,
		contact.Phone,
		contact.Company,
		contact.Priority,
		contact.Status,
		contact.AccountManager,
		contact.Notes,
		contact.LastContact,
		contact.IsUsingPlatform,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update contact: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete contact: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListContactsParams,
) ([]Contact, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d OR company ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIdx))
		args = append(args, params.Priority)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.AccountManager != "" {
		conditions = append(conditions, fmt.Sprintf("account_manager = $%d", argIdx))
		args = append(args, params.AccountManager)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM contacts WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		contactColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var contacts []Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}

	return contacts, total, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		ORDER BY created_at DESC`, contactColumns)

	var contacts []Contact
	if err := r.db.SelectContext(ctx, &contacts, query); err != nil {
		return nil, fmt.Errorf("list all contacts: %w", err)
	}

	return contacts, nil
}

func (r *repository) UpdateSubscriptionByEmail(
	ctx context.Context,
	email string,
	sub SubscriptionUpdate,
) error {
	query := `
		UPDATE contacts
		SET subscription_status = $2,
		    stripe_customer_id = $3,
		    product_name = $4,
		    plan_name = $5,
		    last_payment_date = COALESCE($6, last_payment_date),
		    updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)`

	result, err := r.db.ExecContext(ctx, query,
		email,
		sub.Status,
		sub.StripeCustomerID,
		sub.ProductName,
		sub.PlanName,
		sub.LastPaymentDate,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update subscription: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetLastPaymentDateByEmail(
	ctx context.Context,
	email string,
	paidAt time.Time,
) error {
	query := `
		UPDATE contacts
		SET last_payment_date = $2, updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)`

	result, err := r.db.ExecContext(ctx, query, email, paidAt)
	if err != nil {
		return fmt.Errorf("set last payment date: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set last payment date: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set last payment date: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdateActivityByEmail(
	ctx context.Context,
	email string,
	lastActivity *time.Time,
	callCount int,
	isActive bool,
) error {
	query := `
		UPDATE contacts
		SET last_activity = $2, call_count = $3, is_using_platform = $4,
		    updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)`

	result, err := r.db.ExecContext(ctx, query, email, lastActivity, callCount, isActive)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update activity: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
