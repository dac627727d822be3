package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sameepv21/guide-ai/internal/pkg/errcode"
	"github.com/sameepv21/guide-ai/internal/pkg/jwt"
	"github.com/sameepv21/guide-ai/internal/pkg/response"
)

const ContextUserIDKey = "user_id"

// JWTAuth requires a bearer session token and stores its user id under ContextUserIDKey.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, errcode.ErrUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		userID, err := jwt.Verify(raw, secret)
		if err != nil {
			logutil.GetLogger(c.Request.Context()).Debug("reject session token", zap.Error(err))
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
