package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// LogWithWriter is the access-log middleware. It logs one line per request
// with the trace id when a span is recording.
func LogWithWriter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		query := ctx.Request.URL.RawQuery

		ctx.Next()

		traceID := ""
		if span := trace.SpanFromContext(ctx.Request.Context()); span.SpanContext().HasTraceID() {
			traceID = span.SpanContext().TraceID().String()
		}
		Infof(ctx, "%s %s?%s status: %d cost: %s ip: %s trace: %s errs: %s",
			ctx.Request.Method, path, query,
			ctx.Writer.Status(), time.Since(start), ctx.ClientIP(),
			traceID, ctx.Errors.ByType(gin.ErrorTypePrivate).String())
	}
}
