// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/voqo-dev/crm-backend/internal/core"
	"github.com/voqo-dev/crm-backend/internal/middleware"
	"github.com/voqo-dev/crm-backend/internal/operator"
	"github.com/voqo-dev/crm-backend/internal/platform"
)

type OperatorService interface {
	Create(
		ctx context.Context,
		email, password, name, role string,
	) (*operator.Operator, error)
	List(ctx context.Context) ([]operator.Operator, error)
	Delete(ctx context.Context, id string) error
}

type SessionRevoker interface {
	LogoutAll(ctx context.Context, operatorID string) error
}

type PlatformSyncer interface {
	Sync(ctx context.Context) (*platform.SyncResult, error)
}

type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
	operators  OperatorService
	sessions   SessionRevoker
	syncer     PlatformSyncer
	validator  *validator.Validate
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	Operators  OperatorService
	Sessions   SessionRevoker
	Syncer     PlatformSyncer
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		dbPing:     cfg.DBPing,
		redisPing:  cfg.RedisPing,
		operators:  cfg.Operators,
		sessions:   cfg.Sessions,
		syncer:     cfg.Syncer,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)

		r.Post("/platform/sync", h.TriggerPlatformSync)

		r.Get("/operators", h.ListOperators)
		r.Post("/operators", h.CreateOperator)
		r.Delete("/operators/{operatorID}", h.DeleteOperator)
		r.Post(
			"/operators/{operatorID}/revoke-sessions",
			h.RevokeOperatorSessions,
		)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbHealthy := true
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			dbHealthy = false
		}
	}

	redisHealthy := true
	if h.redisPing != nil {
		if err := h.redisPing(ctx); err != nil {
			redisHealthy = false
		}
	}

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: dbHealthy,
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: redisHealthy,
			Stats:   h.getRedisStats(),
		},
		Runtime: collectRuntimeStats(),
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, collectRuntimeStats())
}

// TriggerPlatformSync runs a platform activity sync immediately instead
// of waiting for the background interval.
func (h *Handler) TriggerPlatformSync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		core.BadRequest(w, "platform sync is not enabled")
		return
	}

	result, err := h.syncer.Sync(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) ListOperators(w http.ResponseWriter, r *http.Request) {
	operators, err := h.operators.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOperatorResponseList(operators))
}

func (h *Handler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	var req CreateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	op, err := h.operators.Create(
		r.Context(),
		req.Email,
		req.Password,
		req.Name,
		req.Role,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.BadRequest(w, "operator already exists")
			return
		}
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid operator role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToOperatorResponse(op))
}

func (h *Handler) DeleteOperator(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")

	// Admins cannot delete themselves; that would orphan the deployment
	// until someone provisions a new admin by hand.
	if operatorID == middleware.GetOperatorID(r.Context()) {
		core.BadRequest(w, "cannot delete your own account")
		return
	}

	if err := h.operators.Delete(r.Context(), operatorID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "operator")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RevokeOperatorSessions(
	w http.ResponseWriter,
	r *http.Request,
) {
	operatorID := chi.URLParam(r, "operatorID")

	if err := h.sessions.LogoutAll(r.Context(), operatorID); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]string{"message": "all sessions revoked"})
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func collectRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}
