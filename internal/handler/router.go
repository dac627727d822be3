package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sameepv21/guide-ai/internal/middleware"
)

type RouterDeps struct {
	Auth            *AuthHandler
	Videos          *VideoHandler
	Chat            *ChatHandler
	Files           *FileHandler
	JWTSecret       []byte
	IngestRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)
	api.GET("/files/:key", deps.Files.Get)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/auth/profile", deps.Auth.Profile)
	authGroup.PUT("/auth/profile", deps.Auth.UpdateProfile)
	authGroup.POST("/auth/password/code", deps.Auth.RequestPasswordCode)
	authGroup.POST("/auth/password/change", deps.Auth.ChangePassword)

	ingestLimit := middleware.RateLimit(deps.IngestRateLimit)
	authGroup.POST("/videos", ingestLimit, deps.Videos.Ingest)
	authGroup.GET("/videos/:id", deps.Videos.Get)
	authGroup.DELETE("/videos/:id", deps.Videos.Delete)
	authGroup.GET("/videos/:id/metadata", deps.Videos.Metadata)
	authGroup.GET("/videos/:id/chunks", deps.Videos.Chunks)
	authGroup.POST("/videos/:id/reprocess", ingestLimit, deps.Videos.Reprocess)
	authGroup.POST("/videos/:id/ask", deps.Videos.Ask)

	authGroup.POST("/process", ingestLimit, deps.Chat.Process)
	authGroup.GET("/chats", deps.Chat.History)
	authGroup.GET("/chats/:id", deps.Chat.Get)
}
