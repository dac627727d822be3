package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, " + requestIDHeader
	corsMaxAge  = "600"
)

type corsPolicy map[string]struct{}

func newCORSPolicy(allowlist []string) corsPolicy {
	p := make(corsPolicy, len(allowlist))
	for _, origin := range allowlist {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			p[origin] = struct{}{}
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin.
// An empty allowlist opens the API to every origin.
func (p corsPolicy) allowOrigin(origin string) (string, bool) {
	if len(p) == 0 {
		return "*", true
	}
	if _, ok := p[origin]; ok {
		return origin, true
	}
	return "", false
}

// CORS answers preflight requests itself and decorates the rest when the origin is allowed.
func CORS(allowlist []string) gin.HandlerFunc {
	policy := newCORSPolicy(allowlist)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if len(policy) > 0 {
			h.Add("Vary", "Origin")
		}
		if value, ok := policy.allowOrigin(c.GetHeader("Origin")); ok {
			h.Set("Access-Control-Allow-Origin", value)
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
