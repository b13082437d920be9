// Package handler adapts HTTP requests onto the application services.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// RetryAfterSeconds is advertised when a tenant schema is still being provisioned
const RetryAfterSeconds = "2"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BindJSON decodes the body into v, answering 400 on failure.
// An empty body leaves v untouched.
func (h *BaseHandler) BindJSON(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorInfo{
			Code:      dto.ErrCodeInvalidJSON,
			Message:   "Request body is not valid JSON",
			Reason:    err.Error(),
			RequestID: middleware.GetRequestID(c),
		}))
		return false
	}
	return true
}

// HandleError maps an application error onto the error envelope.
//
// Validation errors are 400 with field details. Domain errors take their
// status from their code; retryable ones are flagged, and a schema still
// being provisioned is 503 with Retry-After. Anything else is a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorInfo{
			Code:      dto.ErrCodeValidation,
			Message:   ve.Message,
			Fields:    ve.Fields,
			RequestID: requestID,
		}))
		return
	}

	var de *shared.DomainError
	if errors.As(err, &de) {
		code := dto.NormalizeErrorCode(de.Code)
		if code == dto.ErrCodeSchemaNotProvisioned {
			c.Header("Retry-After", RetryAfterSeconds)
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(dto.ErrorInfo{
			Code:      code,
			Message:   de.Message,
			Reason:    de.Code,
			RequestID: requestID,
			Retryable: shared.IsRetryable(err),
		}))
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorInfo{
		Code:      dto.ErrCodeInternal,
		Message:   "An unexpected error occurred",
		RequestID: requestID,
	}))
}
