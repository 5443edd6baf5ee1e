// Package requestid tags every request with an identifier that the access
// log and clients can correlate on.
package requestid

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the request and response header carrying the identifier.
const Header = "X-Request-ID"

const contextKey = "request_id"

// New returns middleware that reuses an inbound X-Request-ID when the caller
// supplies one and mints a fresh identifier otherwise. The identifier is
// stored in the gin context and echoed on the response.
func New() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// FromContext returns the identifier assigned to the request, or "" when the
// middleware did not run.
func FromContext(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
