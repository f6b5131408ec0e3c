package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutor-server/internal/utils/platformerrors"
)

// RequestIDHeader is echoed on every response so the widget can correlate a
// failed call with the server logs.
const RequestIDHeader = "X-Request-Id"

// RequestID accepts a caller-supplied X-Request-Id or mints one, echoes it on
// the response and threads it through both the gin context and the request
// context so handlers and platform errors see the same id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(platformerrors.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// RequestIDFromContext returns the request id stored by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDHeader)
}
