// Package middleware provides the HTTP middleware of the WMS API.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// Header names
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderTenantID      = "X-Tenant-ID"
)

// gin context keys
const (
	RequestIDKey = "request_id"
	TenantIDKey  = "tenant_id"
	UserIDKey    = "user_id"
)

// MaxHeaderIDLength bounds client supplied ids
const MaxHeaderIDLength = 128

// RequestID assigns a request id and a correlation id to every request.
// Client supplied ids are kept when they are short enough; otherwise a ULID
// is generated. The correlation id defaults to the request id and follows
// every event raised while serving the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := headerID(c, HeaderRequestID)
		if requestID == "" {
			requestID = ulid.Make().String()
		}
		correlationID := headerID(c, HeaderCorrelationID)
		if correlationID == "" {
			correlationID = requestID
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Writer.Header().Set(HeaderCorrelationID, correlationID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithCorrelationID(ctx, correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func headerID(c *gin.Context, name string) string {
	v := c.GetHeader(name)
	if len(v) > MaxHeaderIDLength {
		return ""
	}
	return v
}

// GetRequestID returns the request id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// Logger stores log in the request context and writes one line per request
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		l := logger.L(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("Request rejected", fields...)
		default:
			l.Info("Request served", fields...)
		}
	}
}

// Recovery turns a panic into a 500 error envelope
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.WithLogger(c.Request.Context(), log).Error("Panic recovered", zap.Any("panic", rec), zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorInfo{
			Code:      dto.ErrCodeInternal,
			Message:   "An unexpected error occurred",
			RequestID: GetRequestID(c),
		}))
	})
}
