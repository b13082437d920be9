package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	identityapp "github.com/wms/backend/internal/application/identity"
)

// TenantService is the tenant use case surface used by TenantHandler
type TenantService interface {
	CreateTenant(ctx context.Context, cmd identityapp.CreateTenantCommand) (identityapp.TenantDTO, error)
	ActivateTenant(ctx context.Context, cmd identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error)
	DeactivateTenant(ctx context.Context, cmd identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error)
	SuspendTenant(ctx context.Context, cmd identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error)
	GetTenant(ctx context.Context, id string) (identityapp.TenantDTO, error)
}

// TenantHandler handles tenant management endpoints
type TenantHandler struct {
	BaseHandler
	svc TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(svc TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/tenants")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/activate", h.statusChange(h.svc.ActivateTenant))
	g.POST("/:id/deactivate", h.statusChange(h.svc.DeactivateTenant))
	g.POST("/:id/suspend", h.statusChange(h.svc.SuspendTenant))
}

// Create registers a tenant
// POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var cmd identityapp.CreateTenantCommand
	if !h.BindJSON(c, &cmd) {
		return
	}
	t, err := h.svc.CreateTenant(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, t)
}

// Get returns a tenant
// GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	t, err := h.svc.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

type statusChangeRequest struct {
	Reason string `json:"reason"`
}

func (h *TenantHandler) statusChange(
	op func(context.Context, identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusChangeRequest
		if !h.BindJSON(c, &req) {
			return
		}
		t, err := op(c.Request.Context(), identityapp.ChangeTenantStatusCommand{
			TenantID: c.Param("id"),
			Reason:   req.Reason,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, t)
	}
}
