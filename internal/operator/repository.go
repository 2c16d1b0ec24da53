// AngelaMos | 2026
// repository.go

package operator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, op *Operator) error
	GetByID(ctx context.Context, id string) (*Operator, error)
	GetByEmail(ctx context.Context, email string) (*Operator, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context) ([]Operator, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, op *Operator) error {
	query := `
		INSERT INTO operators (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, op, query,
		op.ID,
		op.Email,
		op.PasswordHash,
		op.Name,
		op.Role,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create operator: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create operator: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Operator, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM operators
		WHERE id = $1`

	var op Operator
	err := r.db.GetContext(ctx, &op, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get operator: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}

	return &op, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Operator, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM operators
		WHERE email = $1`

	var op Operator
	err := r.db.GetContext(ctx, &op, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get operator by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get operator by email: %w", err)
	}

	return &op, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE operators
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update operator password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update operator password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update operator password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Operator, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM operators
		ORDER BY created_at ASC`

	var operators []Operator
	if err := r.db.SelectContext(ctx, &operators, query); err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}

	return operators, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM operators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete operator: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete operator: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete operator: %w", core.ErrNotFound)
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
