package model

const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"
)

type Video struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	VideoPath string `json:"video_path"`
	Chunked   bool   `json:"chunked"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}

// VideoChunk is one persisted window of a video. An unchunked video has a
// single chunk whose Path is the video itself.
type VideoChunk struct {
	VideoID  string  `json:"video_id"`
	Ordinal  int     `json:"ordinal"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Path     string  `json:"path"`
	Ctime    int64   `json:"ctime"`
}

func (c VideoChunk) Span() float64 {
	return c.EndSec - c.StartSec
}
