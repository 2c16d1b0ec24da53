// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/voqo-dev/crm-backend/internal/core"
	"github.com/voqo-dev/crm-backend/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

type OperatorInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
}

type OperatorProvider interface {
	GetByEmail(ctx context.Context, email string) (*OperatorInfo, error)
	GetByID(ctx context.Context, id string) (*OperatorInfo, error)
	UpdatePassword(ctx context.Context, operatorID, passwordHash string) error
}

// TokenBlacklist is the slice of the redis client the service needs
// for access token revocation. A nil blacklist disables revocation
// checks; tokens then live until their exp claim.
type TokenBlacklist interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	operators    OperatorProvider
	redis        TokenBlacklist
	blacklistTTL time.Duration
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	operators OperatorProvider,
	redisClient TokenBlacklist,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		operators:    operators,
		redis:        redisClient,
		blacklistTTL: 15 * time.Minute,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	op, err := s.operators.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &op.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	return s.createAuthResponse(ctx, op, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	op, err := s.operators.GetByID(ctx, storedToken.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}

	return s.createAuthResponse(
		ctx,
		op,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

// VerifyAccessToken satisfies the authenticator middleware: signature
// and claim checks first, then the revocation blacklist. Redis errors
// fail open so an outage does not take the dashboard down with it.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.TokenID != "" {
		blacklisted, err := s.IsAccessTokenBlacklisted(ctx, claims.TokenID)
		if err != nil {
			slog.Warn("blacklist check failed",
				slog.String("error", err.Error()),
			)
		} else if blacklisted {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	return claims, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)

// Logout revokes the refresh token and blacklists the access token it
// was paired with, so the session dies immediately instead of at the
// access token's exp.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken, accessToken, operatorID string,
) error {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return s.revokeAccessTokenString(ctx, accessToken)
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.OperatorID != operatorID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	return s.revokeAccessTokenString(ctx, accessToken)
}

func (s *Service) revokeAccessTokenString(
	ctx context.Context,
	accessToken string,
) error {
	if accessToken == "" {
		return nil
	}

	claims, err := s.jwt.VerifyAccessToken(ctx, accessToken)
	if err != nil || claims.TokenID == "" {
		return nil
	}

	if err := s.RevokeAccessToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		slog.Warn("access token revocation failed",
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, operatorID string) error {
	if err := s.repo.RevokeAllForOperator(ctx, operatorID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	if s.redis == nil {
		return nil
	}

	key := "blacklist:" + jti

	ttl := s.blacklistTTL
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	if s.redis == nil {
		return false, nil
	}

	key := "blacklist:" + jti

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	operatorID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForOperator(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	operatorID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.OperatorID != operatorID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	operatorID, currentPassword, newPassword string,
) error {
	op, err := s.operators.GetByID(ctx, operatorID)
	if err != nil {
		return fmt.Errorf("get operator: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, op.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.operators.UpdatePassword(ctx, operatorID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, operatorID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentOperator(
	ctx context.Context,
	operatorID string,
) (*OperatorResponse, error) {
	op, err := s.operators.GetByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	return &OperatorResponse{
		ID:    op.ID,
		Email: op.Email,
		Name:  op.Name,
		Role:  op.Role,
	}, nil
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	op *OperatorInfo,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		OperatorID: op.ID,
		Role:       op.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(op.ID, familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:         newTokenID,
		OperatorID: op.ID,
		TokenHash:  refreshData.Hash,
		FamilyID:   refreshData.FamilyID,
		ExpiresAt:  refreshData.ExpiresAt,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	expiresIn := s.jwt.config.AccessTokenExpire

	return &AuthResponse{
		Operator: OperatorResponse{
			ID:    op.ID,
			Email: op.Email,
			Name:  op.Name,
			Role:  op.Role,
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(expiresIn / time.Second),
			ExpiresAt:    time.Now().Add(expiresIn),
		},
	}, nil
}
