package errcode

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		ErrInvalid:               http.StatusBadRequest,
		ErrThreadNotFound:        http.StatusNotFound,
		ErrNotFound:              http.StatusNotFound,
		ErrNoPendingTurn:         http.StatusConflict,
		ErrDuplicateMetadata:     http.StatusConflict,
		ErrTooMany:               http.StatusTooManyRequests,
		ErrFetchFailed:           http.StatusBadGateway,
		ErrMediaUnreadable:       http.StatusInternalServerError,
		ErrTranscriptionFailed:   http.StatusInternalServerError,
		ErrAudioExtractionFailed: http.StatusInternalServerError,
		ErrUnknown:               http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
}
