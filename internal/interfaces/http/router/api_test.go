package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appapproval "github.com/bizportal/backend/internal/application/approval"
	appdashboard "github.com/bizportal/backend/internal/application/dashboard"
	appfinance "github.com/bizportal/backend/internal/application/finance"
	appidentity "github.com/bizportal/backend/internal/application/identity"
	appprofile "github.com/bizportal/backend/internal/application/profile"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/bizportal/backend/internal/infrastructure/cache"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
	"github.com/bizportal/backend/internal/infrastructure/storage"
	"github.com/bizportal/backend/internal/interfaces/http/dto"
	"github.com/bizportal/backend/internal/interfaces/http/handler"
	"github.com/bizportal/backend/internal/interfaces/http/middleware"
	"github.com/bizportal/backend/tests/testutil"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	tenant string
}

type apiResponse struct {
	Status int
	Body   dto.Response
	Data   map[string]any
}

func (a *apiClient) do(method, path string, body any) apiResponse {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.tenant != "" {
		req.Header.Set(middleware.TenantHeaderKey, a.tenant)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	resp := apiResponse{Status: w.Code}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	resp.Data, _ = resp.Body.Data.(map[string]any)
	return resp
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	log := zap.NewNop()

	tenants := persistence.NewGormTenantRepository(db.DB)
	users := persistence.NewGormUserRepository(db.DB)
	profiles := persistence.NewGormProfileRepository(db.DB)
	expenses := persistence.NewGormExpenseRecordRepository(db.DB)
	approvals := persistence.NewGormApprovalRepository(db.DB)

	mem := cache.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	dashboards := appdashboard.NewDashboardService(expenses, profiles, approvals, log,
		appdashboard.WithCache(mem, 0),
		appdashboard.WithExportStorage(store))

	return NewEngine(EngineConfig{
		Logger:       log,
		CORS:         middleware.DefaultCORSConfig(),
		MaxBodySize:  1 << 20,
		TenantLookup: tenants,
	}, Handlers{
		Health:   handler.NewHealthHandler("bizportal", "test", map[string]handler.Pinger{"database": db}),
		Tenant:   handler.NewTenantHandler(appidentity.NewTenantService(tenants, log)),
		User:     handler.NewUserHandler(appidentity.NewUserService(users, tenants, log)),
		Profile:  handler.NewProfileHandler(appprofile.NewProfileService(profiles, users, log, appprofile.WithChangeNotifier(dashboards.Invalidate))),
		Expense:  handler.NewExpenseHandler(appfinance.NewExpenseService(expenses, valueobject.DefaultCurrency, log, dashboards.Invalidate)),
		Approval: handler.NewApprovalHandler(appapproval.NewApprovalService(approvals, users, log, appapproval.WithChangeNotifier(dashboards.Invalidate))),
		Dashboard: handler.NewDashboardHandler(dashboards),
	})
}

func TestAPI_Health(t *testing.T) {
	api := &apiClient{t: t, engine: newTestEngine(t)}

	for _, path := range []string{"/health", "/health/ready", "/api/v1/health", "/api/v1/health/ready"} {
		resp := api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, resp.Status, path)
		assert.True(t, resp.Body.Success, path)
	}
}

func TestAPI_TenantHeaderRequired(t *testing.T) {
	api := &apiClient{t: t, engine: newTestEngine(t)}

	resp := api.do(http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Body.Error.Code)

	api.tenant = uuid.NewString()
	resp = api.do(http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Unknown tenant", resp.Body.Error.Message)
}

func TestAPI_PortalFlow(t *testing.T) {
	api := &apiClient{t: t, engine: newTestEngine(t)}

	// tenants are managed without a tenant header
	resp := api.do(http.MethodPost, "/api/v1/tenants", map[string]any{"code": "acme", "name": "Acme Corp"})
	require.Equal(t, http.StatusCreated, resp.Status)
	api.tenant = resp.Data["id"].(string)

	resp = api.do(http.MethodPost, "/api/v1/tenants", map[string]any{"code": "acme", "name": "Again"})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, dto.ErrCodeTenantCodeExists, resp.Body.Error.Code)

	register := func(email, role string) string {
		resp := api.do(http.MethodPost, "/api/v1/users", map[string]any{
			"email": email, "name": email, "role": role, "password": "Secret123",
		})
		require.Equal(t, http.StatusCreated, resp.Status, resp.Body.Error)
		assert.Equal(t, "pending", resp.Data["status"])
		id := resp.Data["id"].(string)

		resp = api.do(http.MethodPost, "/api/v1/users/"+id+"/activate", nil)
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "active", resp.Data["status"])
		return id
	}
	adminID := register("admin@acme.io", "admin")
	buyerID := register("buyer@acme.io", "buyer")

	resp = api.do(http.MethodPost, "/api/v1/users", map[string]any{
		"email": "admin@acme.io", "name": "dup", "role": "admin", "password": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, dto.ErrCodeEmailExists, resp.Body.Error.Code)

	resp = api.do(http.MethodGet, "/api/v1/users?role=buyer", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, resp.Body.Meta)
	assert.Equal(t, int64(1), resp.Body.Meta.Total)

	// profiles
	resp = api.do(http.MethodPut, "/api/v1/profiles/buyers/"+adminID, map[string]any{
		"display_name": "Admin", "segment": "smb",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, dto.ErrCodeRoleMismatch, resp.Body.Error.Code)

	resp = api.do(http.MethodPut, "/api/v1/profiles/buyers/"+buyerID, map[string]any{
		"display_name": "Hooli", "segment": "enterprise", "country": "US",
	})
	require.Equal(t, http.StatusOK, resp.Status)

	resp = api.do(http.MethodPost, "/api/v1/profiles/buyers/"+buyerID+"/orders", map[string]any{
		"amount": "250.00", "at": "2024-04-01",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(1), resp.Data["orders_count"])

	resp = api.do(http.MethodPost, "/api/v1/profiles/buyers/"+buyerID+"/churn", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.NotNil(t, resp.Data["churned_at"])

	resp = api.do(http.MethodPost, "/api/v1/profiles/buyers/"+buyerID+"/churn", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	// expenses
	resp = api.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"category": "travel", "amount": "100", "submitted_by": adminID,
	})
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "USD", resp.Data["currency"])

	resp = api.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"category": "travel", "amount": "-5", "submitted_by": adminID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, dto.ErrCodeValidation, resp.Body.Error.Code)

	resp = api.do(http.MethodGet, "/api/v1/expenses?category=travel", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int64(1), resp.Body.Meta.Total)

	// approvals
	resp = api.do(http.MethodPost, "/api/v1/approvals", map[string]any{
		"title": "New laptop", "kind": "purchase", "amount": "1500", "requested_by": buyerID,
	})
	require.Equal(t, http.StatusCreated, resp.Status)
	requestID := resp.Data["id"].(string)

	resp = api.do(http.MethodPost, "/api/v1/approvals/"+requestID+"/approve", map[string]any{"actor_id": buyerID})
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = api.do(http.MethodPost, "/api/v1/approvals/"+requestID+"/approve", map[string]any{"actor_id": adminID})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "approved", resp.Data["status"])

	resp = api.do(http.MethodPost, "/api/v1/approvals/"+requestID+"/cancel", map[string]any{"actor_id": buyerID})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = api.do(http.MethodGet, "/api/v1/approvals/"+requestID, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = api.do(http.MethodGet, "/api/v1/approvals/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	// dashboards
	for _, name := range []string{"overview", "expenses", "forecast", "churn", "customers", "approvals"} {
		resp = api.do(http.MethodGet, "/api/v1/dashboards/"+name, nil)
		require.Equal(t, http.StatusOK, resp.Status, name)
		assert.Equal(t, name, resp.Data["name"])
	}

	resp = api.do(http.MethodGet, "/api/v1/dashboards/revenue", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, dto.ErrCodeUnknownDashboard, resp.Body.Error.Code)

	resp = api.do(http.MethodPost, "/api/v1/dashboards/customers/exports?format=json", nil)
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "application/json", resp.Data["content_type"])

	resp = api.do(http.MethodPost, "/api/v1/dashboards/customers/exports?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, dto.ErrCodeInvalidFormat, resp.Body.Error.Code)
}

func TestAPI_TenantIsolation(t *testing.T) {
	api := &apiClient{t: t, engine: newTestEngine(t)}

	resp := api.do(http.MethodPost, "/api/v1/tenants", map[string]any{"code": "acme", "name": "Acme"})
	require.Equal(t, http.StatusCreated, resp.Status)
	acme := resp.Data["id"].(string)

	resp = api.do(http.MethodPost, "/api/v1/tenants", map[string]any{"code": "globex", "name": "Globex"})
	require.Equal(t, http.StatusCreated, resp.Status)
	globex := resp.Data["id"].(string)

	api.tenant = acme
	resp = api.do(http.MethodPost, "/api/v1/users", map[string]any{
		"email": "a@acme.io", "name": "A", "role": "seller", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Status)
	userID := resp.Data["id"].(string)

	api.tenant = globex
	resp = api.do(http.MethodGet, "/api/v1/users/"+userID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = api.do(http.MethodGet, "/api/v1/tenants", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.Body.Data, 2)
}
