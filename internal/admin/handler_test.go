// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voqo-dev/crm-backend/internal/core"
	"github.com/voqo-dev/crm-backend/internal/middleware"
	"github.com/voqo-dev/crm-backend/internal/operator"
	"github.com/voqo-dev/crm-backend/internal/platform"
)

type fakeOperators struct {
	operators map[string]*operator.Operator
	deleted   []string
}

func newFakeOperators() *fakeOperators {
	return &fakeOperators{operators: make(map[string]*operator.Operator)}
}

func (f *fakeOperators) Create(
	_ context.Context,
	email, _, name, role string,
) (*operator.Operator, error) {
	if role != operator.RoleOperator && role != operator.RoleAdmin {
		return nil, core.ErrInvalidInput
	}
	op := &operator.Operator{
		ID:        "op-" + email,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
	}
	f.operators[op.ID] = op
	return op, nil
}

func (f *fakeOperators) List(_ context.Context) ([]operator.Operator, error) {
	out := make([]operator.Operator, 0, len(f.operators))
	for _, op := range f.operators {
		out = append(out, *op)
	}
	return out, nil
}

func (f *fakeOperators) Delete(_ context.Context, id string) error {
	if _, ok := f.operators[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.operators, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRevoker struct {
	revoked []string
}

func (f *fakeRevoker) LogoutAll(_ context.Context, operatorID string) error {
	f.revoked = append(f.revoked, operatorID)
	return nil
}

type fakeSyncer struct {
	result *platform.SyncResult
	err    error
}

func (f *fakeSyncer) Sync(_ context.Context) (*platform.SyncResult, error) {
	return f.result, f.err
}

func asOperator(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(
					r.Context(), middleware.OperatorIDKey, id,
				)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func newTestRouter(h *Handler, callerID string) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoutes(r, asOperator(callerID), passthrough)
	return r
}

func TestCreateOperator(t *testing.T) {
	ops := newFakeOperators()
	h := NewHandler(HandlerConfig{Operators: ops})
	router := newTestRouter(h, "admin-1")

	body := `{
		"email": "jordan@voqo.ai",
		"password": "long-enough-password",
		"name": "Jordan",
		"role": "operator"
	}`
	req := httptest.NewRequest(
		http.MethodPost, "/admin/operators", strings.NewReader(body),
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, ops.operators, 1)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCreateOperator_InvalidRole(t *testing.T) {
	h := NewHandler(HandlerConfig{Operators: newFakeOperators()})
	router := newTestRouter(h, "admin-1")

	body := `{
		"email": "jordan@voqo.ai",
		"password": "long-enough-password",
		"name": "Jordan",
		"role": "superuser"
	}`
	req := httptest.NewRequest(
		http.MethodPost, "/admin/operators", strings.NewReader(body),
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOperator_Self(t *testing.T) {
	ops := newFakeOperators()
	ops.operators["admin-1"] = &operator.Operator{
		ID:   "admin-1",
		Role: operator.RoleAdmin,
	}
	h := NewHandler(HandlerConfig{Operators: ops})
	router := newTestRouter(h, "admin-1")

	req := httptest.NewRequest(
		http.MethodDelete, "/admin/operators/admin-1", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ops.deleted)
}

func TestDeleteOperator(t *testing.T) {
	ops := newFakeOperators()
	ops.operators["op-2"] = &operator.Operator{ID: "op-2"}
	h := NewHandler(HandlerConfig{Operators: ops})
	router := newTestRouter(h, "admin-1")

	req := httptest.NewRequest(
		http.MethodDelete, "/admin/operators/op-2", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"op-2"}, ops.deleted)
}

func TestRevokeOperatorSessions(t *testing.T) {
	revoker := &fakeRevoker{}
	h := NewHandler(HandlerConfig{
		Operators: newFakeOperators(),
		Sessions:  revoker,
	})
	router := newTestRouter(h, "admin-1")

	req := httptest.NewRequest(
		http.MethodPost, "/admin/operators/op-9/revoke-sessions", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"op-9"}, revoker.revoked)
}

func TestTriggerPlatformSync(t *testing.T) {
	syncer := &fakeSyncer{
		result: &platform.SyncResult{Checked: 5, Updated: 2, Skipped: 3},
	}
	h := NewHandler(HandlerConfig{
		Operators: newFakeOperators(),
		Syncer:    syncer,
	})
	router := newTestRouter(h, "admin-1")

	req := httptest.NewRequest(
		http.MethodPost, "/admin/platform/sync", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":2`)
}

func TestTriggerPlatformSync_Disabled(t *testing.T) {
	h := NewHandler(HandlerConfig{Operators: newFakeOperators()})
	router := newTestRouter(h, "admin-1")

	req := httptest.NewRequest(
		http.MethodPost, "/admin/platform/sync", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
