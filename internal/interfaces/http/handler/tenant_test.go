package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityapp "github.com/wms/backend/internal/application/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func newEngine(registrar interface{ RegisterRoutes(*gin.RouterGroup) }, tenantScoped bool) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	g := engine.Group("/api/v1")
	if tenantScoped {
		g.Use(middleware.RequireTenant())
	}
	registrar.RegisterRoutes(g)
	return engine
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestTenantHandler_Create(t *testing.T) {
	svc := new(MockTenantService)
	engine := newEngine(NewTenantHandler(svc), false)

	cmd := identityapp.CreateTenantCommand{ID: "acme", Name: "Acme"}
	svc.On("CreateTenant", mock.Anything, cmd).
		Return(identityapp.TenantDTO{ID: "acme", Name: "Acme", Status: "PENDING", Version: 1}, nil)

	w, env := do(t, engine, http.MethodPost, "/api/v1/tenants", cmd, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	var got identityapp.TenantDTO
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "acme", got.ID)
	assert.Equal(t, 1, got.Version)
	svc.AssertExpectations(t)
}

func TestTenantHandler_InvalidJSON(t *testing.T) {
	svc := new(MockTenantService)
	engine := newEngine(NewTenantHandler(svc), false)

	w, env := do(t, engine, http.MethodPost, "/api/v1/tenants", "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeInvalidJSON, env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)
	svc.AssertNotCalled(t, "CreateTenant", mock.Anything, mock.Anything)
}

func TestTenantHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryable  bool
	}{
		{
			name:       "validation",
			err:        shared.NewValidationError("Validation failed", map[string]string{"name": "This field is required"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "not found",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "concurrency conflict",
			err:        shared.ConcurrencyConflict("Tenant", "acme", 3),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeConcurrencyConflict,
			retryable:  true,
		},
		{
			name:       "business rule",
			err:        shared.NewDomainError("NOT_ACTIVE", "Tenant is not active"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeBusinessRule,
		},
		{
			name:       "wrapped invalid state",
			err:        errors.Join(errors.New("deactivate"), shared.ErrInvalidState),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidState,
		},
		{
			name:       "unexpected",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTenantService)
			engine := newEngine(NewTenantHandler(svc), false)
			svc.On("DeactivateTenant", mock.Anything, identityapp.ChangeTenantStatusCommand{TenantID: "acme", Reason: "churn"}).
				Return(identityapp.TenantDTO{}, tt.err)

			w, env := do(t, engine, http.MethodPost, "/api/v1/tenants/acme/deactivate", map[string]string{"reason": "churn"}, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Equal(t, tt.retryable, env.Error.Retryable)
			if tt.wantCode == dto.ErrCodeInternal {
				assert.NotContains(t, env.Error.Message, "connection reset")
			}
		})
	}
}

func TestTenantHandler_StatusChangeWithoutBody(t *testing.T) {
	svc := new(MockTenantService)
	engine := newEngine(NewTenantHandler(svc), false)
	svc.On("ActivateTenant", mock.Anything, identityapp.ChangeTenantStatusCommand{TenantID: "acme"}).
		Return(identityapp.TenantDTO{ID: "acme", Status: "ACTIVE"}, nil)

	w, env := do(t, engine, http.MethodPost, "/api/v1/tenants/acme/activate", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestTenantHandler_Get(t *testing.T) {
	svc := new(MockTenantService)
	engine := newEngine(NewTenantHandler(svc), false)
	svc.On("GetTenant", mock.Anything, "acme").Return(identityapp.TenantDTO{ID: "acme", Status: "ACTIVE"}, nil)

	w, env := do(t, engine, http.MethodGet, "/api/v1/tenants/acme", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"ACTIVE"`)
}
