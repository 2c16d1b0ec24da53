// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one dashboard session. Tokens rotate on every
// refresh; family tracking catches replay of an already-rotated token.
type RefreshToken struct {
	ID           string     `db:"id"`
	OperatorID   string     `db:"operator_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsValid() bool {
	return !t.IsUsed && !t.IsRevoked() && !t.IsExpired()
}
