package middleware

import (
	"time"

	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDKey - ключ gin.Context с идентификатором запроса
const TraceIDKey = "trace_id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет его в лог API
func RequestLogger() gin.HandlerFunc {
	log := logging.GetAPILogger()

	return func(c *gin.Context) {
		// trace-id из OpenTelemetry, если otelgin уже открыл span
		span := trace.SpanFromContext(c.Request.Context())
		traceID := uuid.NewString()
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}
		c.Set(TraceIDKey, traceID)
		c.Header("X-Trace-Id", traceID)

		start := time.Now()
		c.Next()

		log.Debug("[HTTP] %s %s %d %s ip=%s trace=%s",
			c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start), c.ClientIP(), traceID)
	}
}
