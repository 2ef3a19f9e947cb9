package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradematch.app/linkup/common/logger"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey contextKey = "request_id"
)

// RequestID keeps a caller-supplied UUID request id, or mints one, and echoes it
// back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := context.WithValue(c.Request.Context(), requestIDContextKey, requestID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{RequestID: logger.Ptr(requestID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
