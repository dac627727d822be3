package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	ErrMediaUnreadable       = errors.New("media unreadable")
	ErrSegmentationFailed    = errors.New("segmentation failed")
	ErrAudioExtractionFailed = errors.New("audio extraction failed")
	ErrTranscriptionFailed   = errors.New("transcription failed")
	ErrDuplicateMetadata     = errors.New("duplicate metadata")
	ErrThreadNotFound        = errors.New("thread not found")
	ErrNoPendingTurn         = errors.New("no pending turn")
	ErrFetchFailed           = errors.New("fetch failed")
	ErrInvalidInput          = errors.New("invalid input")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrMediaUnreadable, "MediaUnreadable"},
	{ErrSegmentationFailed, "SegmentationFailed"},
	{ErrAudioExtractionFailed, "AudioExtractionFailed"},
	{ErrTranscriptionFailed, "TranscriptionFailed"},
	{ErrDuplicateMetadata, "DuplicateMetadata"},
	{ErrThreadNotFound, "ThreadNotFound"},
	{ErrNoPendingTurn, "NoPendingTurn"},
	{ErrFetchFailed, "FetchFailed"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrInvalid, "InvalidInput"},
	{ErrNotFound, "NotFound"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrForbidden, "Forbidden"},
	{ErrConflict, "Conflict"},
	{ErrTooMany, "TooManyRequests"},
}

// Kind returns the machine-readable name of the first known sentinel in err's chain.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
