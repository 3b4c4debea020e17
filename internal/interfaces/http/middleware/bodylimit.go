package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextstock/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size. Offline sync
// batches are the largest payloads the API accepts; the limit is configured
// high enough for a full day of queued operations.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadSize,
					"request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}

		// Wrap the body for streaming requests without a Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
