// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voqo-dev/crm-backend/internal/config"
	"github.com/voqo-dev/crm-backend/internal/core"
)

type fakeBlacklist struct {
	keys map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{keys: make(map[string]bool)}
}

func (f *fakeBlacklist) Set(_ context.Context, key string, _ any, _ time.Duration) *redis.StatusCmd {
	f.keys[key] = true
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeBlacklist) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type fakeTokenRepo struct {
	byID       map[string]*RefreshToken
	revokedFam []string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byID: make(map[string]*RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *RefreshToken) error {
	token.CreatedAt = time.Now()
	f.byID[token.ID] = token
	return nil
}

func (f *fakeTokenRepo) FindByHash(
	_ context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	for _, t := range f.byID {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeTokenRepo) FindByID(
	_ context.Context,
	id string,
) (*RefreshToken, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenRepo) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	t, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
	return nil
}

func (f *fakeTokenRepo) RevokeByID(_ context.Context, id string) error {
	t, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (f *fakeTokenRepo) RevokeByFamilyID(
	_ context.Context,
	familyID string,
) error {
	f.revokedFam = append(f.revokedFam, familyID)
	now := time.Now()
	for _, t := range f.byID {
		if t.FamilyID == familyID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForOperator(
	_ context.Context,
	operatorID string,
) error {
	now := time.Now()
	for _, t := range f.byID {
		if t.OperatorID == operatorID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) GetActiveSessionsForOperator(
	_ context.Context,
	operatorID string,
) ([]RefreshToken, error) {
	var out []RefreshToken
	for _, t := range f.byID {
		if t.OperatorID == operatorID && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeOperatorProvider struct {
	operators map[string]*OperatorInfo
}

func (f *fakeOperatorProvider) GetByEmail(
	_ context.Context,
	email string,
) (*OperatorInfo, error) {
	for _, op := range f.operators {
		if op.Email == email {
			return op, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeOperatorProvider) GetByID(
	_ context.Context,
	id string,
) (*OperatorInfo, error) {
	op, ok := f.operators[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return op, nil
}

func (f *fakeOperatorProvider) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	op, ok := f.operators[id]
	if !ok {
		return core.ErrNotFound
	}
	op.PasswordHash = passwordHash
	return nil
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "crm-backend-test",
		Audience:           "crm-dashboard",
	})
	require.NoError(t, err)

	return manager
}

func newTestService(t *testing.T) (*Service, *fakeTokenRepo, *fakeOperatorProvider) {
	t.Helper()

	hash, err := core.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	operators := &fakeOperatorProvider{
		operators: map[string]*OperatorInfo{
			"op-1": {
				ID:           "op-1",
				Email:        "sarah@voqo.ai",
				Name:         "Sarah",
				PasswordHash: hash,
				Role:         "admin",
			},
		},
	}

	repo := newFakeTokenRepo()
	svc := NewService(repo, newTestJWTManager(t), operators, nil)

	return svc, repo, operators
}

func TestLogin(t *testing.T) {
	svc, repo, _ := newTestService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "correct-horse-battery",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "op-1", resp.Operator.ID)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Len(t, repo.byID, 1)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "wrong",
	}, "go-test", "127.0.0.1")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@voqo.ai",
		Password: "whatever-password",
	}, "go-test", "127.0.0.1")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "correct-horse-battery",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(
		ctx, login.Tokens.RefreshToken, "go-test", "127.0.0.1",
	)
	require.NoError(t, err)
	assert.NotEqual(
		t, login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken,
	)

	// The original token is consumed and chained to its replacement.
	oldHash := core.HashToken(login.Tokens.RefreshToken)
	old, err := repo.FindByHash(ctx, oldHash)
	require.NoError(t, err)
	assert.True(t, old.IsUsed)
	require.NotNil(t, old.ReplacedByID)
}

func TestRefresh_ReuseRevokesFamily(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "correct-horse-battery",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.Refresh(
		ctx, login.Tokens.RefreshToken, "go-test", "127.0.0.1",
	)
	require.NoError(t, err)

	// Replaying the consumed token burns the whole family.
	_, err = svc.Refresh(
		ctx, login.Tokens.RefreshToken, "go-test", "127.0.0.1",
	)
	assert.ErrorIs(t, err, ErrTokenReuse)
	assert.Len(t, repo.revokedFam, 1)
}

func TestRefresh_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(
		context.Background(),
		"not-a-real-token",
		"go-test",
		"127.0.0.1",
	)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		OperatorID: "op-1",
		Role:       "admin",
	})
	require.NoError(t, err)

	claims, err := manager.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.False(t, claims.ExpiresAt.IsZero())
}

func TestVerifyAccessToken_GarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.VerifyAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessToken_NoBlacklistConfigured(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "correct-horse-battery",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(ctx, login.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.redis = newFakeBlacklist()
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "correct-horse-battery",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	// Token passes verification until the session is logged out.
	_, err = svc.VerifyAccessToken(ctx, login.Tokens.AccessToken)
	require.NoError(t, err)

	err = svc.Logout(ctx, login.Tokens.RefreshToken, login.Tokens.AccessToken, "op-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	svc, repo, operators := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "sarah@voqo.ai",
		Password: "correct-horse-battery",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	err = svc.ChangePassword(
		ctx,
		"op-1",
		"correct-horse-battery",
		"even-longer-battery-staple",
	)
	require.NoError(t, err)

	// Stored hash changed and the existing refresh token is revoked.
	valid, err := core.VerifyPassword(
		"even-longer-battery-staple",
		operators.operators["op-1"].PasswordHash,
	)
	require.NoError(t, err)
	assert.True(t, valid)

	oldHash := core.HashToken(login.Tokens.RefreshToken)
	old, err := repo.FindByHash(ctx, oldHash)
	require.NoError(t, err)
	assert.True(t, old.IsRevoked())
}
