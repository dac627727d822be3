package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/pkg/errcode"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   int
		status int
	}{
		{fmt.Errorf("%w: bad url", appErr.ErrInvalidInput), errcode.ErrInvalid, http.StatusBadRequest},
		{appErr.ErrThreadNotFound, errcode.ErrThreadNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", appErr.ErrNotFound), errcode.ErrNotFound, http.StatusNotFound},
		{appErr.ErrDuplicateMetadata, errcode.ErrDuplicateMetadata, http.StatusConflict},
		{appErr.ErrNoPendingTurn, errcode.ErrNoPendingTurn, http.StatusConflict},
		{fmt.Errorf("probe: %w", appErr.ErrMediaUnreadable), errcode.ErrMediaUnreadable, http.StatusInternalServerError},
		{appErr.ErrTranscriptionFailed, errcode.ErrTranscriptionFailed, http.StatusInternalServerError},
		{fmt.Errorf("boom"), errcode.ErrInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := errorCode(tc.err)
		require.Equal(t, tc.code, code, tc.err.Error())
		require.Equal(t, tc.status, errcode.HTTPStatus(code), tc.err.Error())
	}
}

func TestErrorCodeExposesInvalidInputMessage(t *testing.T) {
	_, msg := errorCode(fmt.Errorf("%w: query is empty", appErr.ErrInvalidInput))
	require.Contains(t, msg, "query is empty")

	_, msg = errorCode(fmt.Errorf("dial tcp 10.0.0.1: refused"))
	require.Equal(t, "internal error", msg)
}

func TestHandleErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/chats/x", nil)

	handleError(c, appErr.ErrThreadNotFound)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, errcode.ErrThreadNotFound, body.Code)
	require.Equal(t, "thread not found", body.Msg)
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Equal(t, "", getUserID(c))
	c.Set("user_id", "u1")
	require.Equal(t, "u1", getUserID(c))
}
