// AngelaMos | 2026
// entity.go

package operator

import (
	"time"
)

// Operator is a dashboard user: an account manager or an admin.
type Operator struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (o *Operator) IsAdmin() bool {
	return o.Role == RoleAdmin
}

const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)
