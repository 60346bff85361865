package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/pkg/logger"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	logEntryKey     = "logEntry"
)

// RequestID assigns every request an id, reusing a client supplied one when it
// is a valid UUID, and echoes it in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Set(logEntryKey, logger.Tagged(id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Log returns a logger entry tagged with the request id.
func Log(c *gin.Context) logger.Entry {
	if v, ok := c.Get(logEntryKey); ok {
		if e, ok := v.(logger.Entry); ok {
			return e
		}
	}
	return logger.Tagged("")
}
