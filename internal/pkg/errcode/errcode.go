package errcode

import "net/http"

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrInternal
	ErrMediaUnreadable
	ErrSegmentationFailed
	ErrAudioExtractionFailed
	ErrTranscriptionFailed
	ErrDuplicateMetadata
	ErrThreadNotFound
	ErrNoPendingTurn
	ErrFetchFailed
)

// HTTPStatus maps an error code to the status written alongside it.
func HTTPStatus(code int) int {
	switch code {
	case ErrInvalid:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound, ErrThreadNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrDuplicateMetadata, ErrNoPendingTurn:
		return http.StatusConflict
	case ErrTooMany:
		return http.StatusTooManyRequests
	case ErrFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
