package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/pkg/response"
	"github.com/sameepv21/guide-ai/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type processRequest struct {
	VideoURL string `json:"videoUrl"`
	Query    string `json:"query"`
	ChatID   string `json:"chatId"`
}

type processResponse struct {
	ChatID  string `json:"chatId"`
	VideoID string `json:"videoId"`
	*model.ChatResponse
}

// Process continues chatId or ingests videoUrl and opens a new chat.
func (h *ChatHandler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	res, err := h.chat.Process(c.Request.Context(), getUserID(c), req.VideoURL, req.Query, req.ChatID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, processResponse{ChatID: res.ThreadID, VideoID: res.VideoID, ChatResponse: res.Response})
}

func (h *ChatHandler) History(c *gin.Context) {
	chats, err := h.chat.History(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chats": chats})
}

func (h *ChatHandler) Get(c *gin.Context) {
	thread, err := h.chat.GetThread(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, thread)
}
