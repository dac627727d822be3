package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/pkg/jwt"
)

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("secret")
	engine := gin.New()
	engine.Use(JWTAuth(secret))
	engine.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserIDKey))
	})

	valid, err := jwt.Issue("u1", secret, time.Hour)
	require.NoError(t, err)
	expired, err := jwt.Issue("u1", secret, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"basic scheme", "Basic " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			engine.ServeHTTP(w, req)
			require.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				require.Equal(t, "u1", w.Body.String())
			}
		})
	}
}
