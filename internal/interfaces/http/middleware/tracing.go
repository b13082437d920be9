package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns otelgin middleware followed by a handler that tags the span
// with request, correlation, tenant and user ids.
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), spanAttributes()}
}

func spanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		attrs := []attribute.KeyValue{attribute.String("request_id", GetRequestID(c))}
		if v := c.Writer.Header().Get(HeaderCorrelationID); v != "" {
			attrs = append(attrs, attribute.String("correlation_id", v))
		}
		if v := GetTenantID(c); v != "" {
			attrs = append(attrs, attribute.String("tenant_id", v))
		}
		if v := GetUserID(c); v != "" {
			attrs = append(attrs, attribute.String("user_id", v))
		}
		span.SetAttributes(attrs...)
		if c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
