package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUser carries the caller's username. Authentication happens upstream
// (at the gateway); this service only needs to know whether a caller is present.
const HeaderUser = "X-Evento-User"

const (
	userIDKey      = "userID"
	maxUsernameLen = 64
)

// Identity copies the caller's username from HeaderUser into the Gin context.
// A missing, blank or oversized header leaves the request anonymous.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := strings.TrimSpace(c.GetHeader(HeaderUser)); u != "" && len(u) <= maxUsernameLen {
			c.Set(userIDKey, u)
		}
		c.Next()
	}
}

// UserID returns the caller's username, if any.
func UserID(c *gin.Context) (string, bool) {
	s := c.GetString(userIDKey)
	return s, s != ""
}

// CallerKey identifies the caller for rate limiting and idempotency records:
// "user:<name>" when an identity is present, "ip:<addr>" otherwise.
func CallerKey(c *gin.Context) string {
	if u, ok := UserID(c); ok {
		return "user:" + u
	}
	return "ip:" + c.ClientIP()
}
