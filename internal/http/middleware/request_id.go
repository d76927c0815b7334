package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"editflow.app/server/common/logger"
)

const maxRequestIDLen = 128

// RequestID reads the caller's correlation id from header, or derives one
// from the active span, and echoes it back on the response. The id is logged
// with every line of the request and forwarded on stream events.
func RequestID(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		id := c.GetHeader(header)
		if id == "" || len(id) > maxRequestIDLen {
			if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
				id = sc.TraceID().String()
			} else {
				id = uuid.NewString()
			}
		}

		c.Header(header, id)
		ctx = logger.WithLogFields(ctx, logger.LogFields{RequestID: logger.Ptr(id)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
