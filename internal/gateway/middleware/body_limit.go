package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit matches the 10 MB JSON limit clients were built against.
const DefaultBodyLimit int64 = 10 << 20

// BodyLimit caps request bodies; reads past n fail inside the handler's bind.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
