package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// RequireTenant reads the tenant from X-Tenant-ID and rejects requests without a valid one.
// Tenant-scoped routes use it; tenant management routes do not.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderTenantID)))
		if !identity.ValidTenantID(tenantID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorInfo{
				Code:      dto.ErrCodeTenantRequired,
				Message:   "A valid " + HeaderTenantID + " header is required",
				RequestID: GetRequestID(c),
			}))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

// GetTenantID returns the tenant set by RequireTenant
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}
