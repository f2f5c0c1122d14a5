package tracing

import (
	"net/http"
	"strconv"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HTTPMiddleware creates Gin middleware that traces each request
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, parentID := ExtractTraceContext(c.Request.Header)
		ctx := ContextWithTrace(c.Request.Context(), traceID, parentID)

		// Start span
		span, ctx := tracer.StartSpan(ctx, c.FullPath())
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.url", c.Request.URL.String())
		span.SetTag("http.host", c.Request.Host)

		// Update request context
		c.Request = c.Request.WithContext(ctx)

		// Echo the request span so callers can correlate
		InjectTraceContext(ctx, c.Writer.Header())

		c.Next()

		code := c.Writer.Status()
		span.SetTag("http.status", strconv.Itoa(code))

		status := stream.StatusOK
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			span.RecordError(err)
			status = stream.ErrorStatus(err)
		} else if code >= http.StatusInternalServerError {
			status = stream.Status{Code: codes.Error, Description: http.StatusText(code)}
		}

		span.Finish(status, []attribute.KeyValue{
			attribute.Int("http.status_code", code),
		}, nil)
	}
}

