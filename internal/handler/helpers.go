package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sameepv21/guide-ai/internal/middleware"
	"github.com/sameepv21/guide-ai/internal/pkg/errcode"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
	"github.com/sameepv21/guide-ai/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

var errorCodes = []struct {
	err  error
	code int
	msg  string
}{
	{appErr.ErrInvalidInput, errcode.ErrInvalid, "invalid request"},
	{appErr.ErrInvalid, errcode.ErrInvalid, "invalid request"},
	{appErr.ErrUnauthorized, errcode.ErrUnauthorized, "unauthorized"},
	{appErr.ErrForbidden, errcode.ErrForbidden, "forbidden"},
	{appErr.ErrThreadNotFound, errcode.ErrThreadNotFound, "thread not found"},
	{appErr.ErrNotFound, errcode.ErrNotFound, "not found"},
	{appErr.ErrDuplicateMetadata, errcode.ErrDuplicateMetadata, "video already has metadata"},
	{appErr.ErrNoPendingTurn, errcode.ErrNoPendingTurn, "no pending turn"},
	{appErr.ErrConflict, errcode.ErrConflict, "conflict"},
	{appErr.ErrTooMany, errcode.ErrTooMany, "too many requests"},
	{appErr.ErrFetchFailed, errcode.ErrFetchFailed, "video download failed"},
	{appErr.ErrMediaUnreadable, errcode.ErrMediaUnreadable, "media unreadable"},
	{appErr.ErrSegmentationFailed, errcode.ErrSegmentationFailed, "segmentation failed"},
	{appErr.ErrAudioExtractionFailed, errcode.ErrAudioExtractionFailed, "audio extraction failed"},
	{appErr.ErrTranscriptionFailed, errcode.ErrTranscriptionFailed, "transcription failed"},
}

// errorCode maps err to its errcode and public message.
func errorCode(err error) (int, string) {
	for _, item := range errorCodes {
		if errors.Is(err, item.err) {
			if item.code == errcode.ErrInvalid {
				return item.code, err.Error()
			}
			return item.code, item.msg
		}
	}
	return errcode.ErrInternal, "internal error"
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code, msg := errorCode(err)
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.String("kind", appErr.Kind(err)),
		zap.Error(err),
	)
	response.Error(c, code, msg)
}

func badRequest(c *gin.Context, msg string) {
	response.Error(c, errcode.ErrInvalid, msg)
}
