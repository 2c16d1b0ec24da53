// AngelaMos | 2026
// dto.go

package admin

import (
	"time"

	"github.com/voqo-dev/crm-backend/internal/operator"
)

type CreateOperatorRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=128"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Role     string `json:"role"     validate:"required,oneof=operator admin"`
}

type OperatorResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type OperatorListResponse struct {
	Operators []OperatorResponse `json:"operators"`
}

func ToOperatorResponse(op *operator.Operator) OperatorResponse {
	return OperatorResponse{
		ID:        op.ID,
		Email:     op.Email,
		Name:      op.Name,
		Role:      op.Role,
		CreatedAt: op.CreatedAt,
	}
}

func ToOperatorResponseList(ops []operator.Operator) OperatorListResponse {
	out := OperatorListResponse{
		Operators: make([]OperatorResponse, 0, len(ops)),
	}
	for i := range ops {
		out.Operators = append(out.Operators, ToOperatorResponse(&ops[i]))
	}

	return out
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
