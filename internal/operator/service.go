// AngelaMos | 2026
// service.go

package operator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voqo-dev/crm-backend/internal/auth"
	"github.com/voqo-dev/crm-backend/internal/core"
)

// Service manages dashboard accounts. Operators are provisioned by an
// admin; there is no self-service signup on an internal tool.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	email, password, name, role string,
) (*Operator, error) {
	if role != RoleOperator && role != RoleAdmin {
		return nil, fmt.Errorf(
			"create operator: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	op := &Operator{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
	}

	if err := s.repo.Create(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Operator, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Operator, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.OperatorInfo, error) {
	op, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toOperatorInfo(op), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.OperatorInfo, error) {
	op, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toOperatorInfo(op), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func toOperatorInfo(op *Operator) *auth.OperatorInfo {
	return &auth.OperatorInfo{
		ID:           op.ID,
		Email:        op.Email,
		Name:         op.Name,
		PasswordHash: op.PasswordHash,
		Role:         op.Role,
	}
}

var _ auth.OperatorProvider = (*Service)(nil)
