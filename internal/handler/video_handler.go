package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sameepv21/guide-ai/internal/pkg/response"
	"github.com/sameepv21/guide-ai/internal/service"
)

type VideoHandler struct {
	videos *service.VideoService
	chat   *service.ChatService
}

func NewVideoHandler(videos *service.VideoService, chat *service.ChatService) *VideoHandler {
	return &VideoHandler{videos: videos, chat: chat}
}

type ingestRequest struct {
	URL string `json:"url"`
}

type askRequest struct {
	Query  string `json:"query"`
	ChatID string `json:"chat_id"`
}

// Ingest registers the video and returns it while processing continues in
// the background.
func (h *VideoHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	video, err := h.videos.Ingest(c.Request.Context(), getUserID(c), req.URL)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, video)
}

func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videos.GetVideo(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, video)
}

func (h *VideoHandler) Metadata(c *gin.Context) {
	meta, err := h.videos.GetMetadata(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, meta)
}

func (h *VideoHandler) Chunks(c *gin.Context) {
	chunks, err := h.videos.ListChunks(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chunks)
}

func (h *VideoHandler) Reprocess(c *gin.Context) {
	video, err := h.videos.Reprocess(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, video)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *VideoHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	res, err := h.chat.Ask(c.Request.Context(), getUserID(c), c.Param("id"), req.ChatID, req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}
