package model

import (
	"encoding/json"
	"fmt"
)

type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ChunkTranscript is the transcription result of one chunk, with segment
// times already on the video's global timeline.
type ChunkTranscript struct {
	ChunkOrdinal      int
	AudioPath         string
	FullText          string
	Segments          []TranscriptSegment
	ProcessingSeconds float64
}

type PayloadKind string

const (
	PayloadKindChunk  PayloadKind = "chunk"
	PayloadKindLegacy PayloadKind = "legacy"
)

type ChunkEntry struct {
	ChunkID               int                 `json:"chunk_id"`
	AudioPath             string              `json:"audio_path"`
	VideoPath             string              `json:"video_path,omitempty"`
	TranscriptionText     string              `json:"transcription_text"`
	TranscriptionSegments []TranscriptSegment `json:"transcription_segments"`
	SpanStart             float64             `json:"span_start"`
	SpanEnd               float64             `json:"span_end"`
}

// LegacyEntry is the single-chunk shape written before chunk ids existed.
type LegacyEntry struct {
	AudioPath             string              `json:"audio_path"`
	MutedVideoPath        string              `json:"muted_video_path,omitempty"`
	TranscriptionText     string              `json:"transcription_text"`
	TranscriptionSegments []TranscriptSegment `json:"transcription_segments"`
}

// PayloadEntry holds exactly one of Chunk or Legacy, selected by Kind. On the
// wire the two shapes are told apart by the presence of chunk_id.
type PayloadEntry struct {
	Kind   PayloadKind
	Chunk  *ChunkEntry
	Legacy *LegacyEntry
}

func NewChunkPayloadEntry(e ChunkEntry) PayloadEntry {
	if e.TranscriptionSegments == nil {
		e.TranscriptionSegments = []TranscriptSegment{}
	}
	return PayloadEntry{Kind: PayloadKindChunk, Chunk: &e}
}

func (p PayloadEntry) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadKindChunk:
		if p.Chunk == nil {
			return nil, fmt.Errorf("chunk payload entry has no body")
		}
		return json.Marshal(p.Chunk)
	case PayloadKindLegacy:
		if p.Legacy == nil {
			return nil, fmt.Errorf("legacy payload entry has no body")
		}
		return json.Marshal(p.Legacy)
	default:
		return nil, fmt.Errorf("unknown payload kind %q", p.Kind)
	}
}

func (p *PayloadEntry) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["chunk_id"]; ok {
		var entry ChunkEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		*p = PayloadEntry{Kind: PayloadKindChunk, Chunk: &entry}
		return nil
	}
	var entry LegacyEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	*p = PayloadEntry{Kind: PayloadKindLegacy, Legacy: &entry}
	return nil
}

// Ordinal is the chunk ordinal of the entry. Legacy entries always describe
// the single chunk 0.
func (p PayloadEntry) Ordinal() int {
	if p.Kind == PayloadKindChunk && p.Chunk != nil {
		return p.Chunk.ChunkID
	}
	return 0
}

func (p PayloadEntry) Text() string {
	switch {
	case p.Chunk != nil:
		return p.Chunk.TranscriptionText
	case p.Legacy != nil:
		return p.Legacy.TranscriptionText
	}
	return ""
}

func (p PayloadEntry) Segments() []TranscriptSegment {
	switch {
	case p.Chunk != nil:
		return p.Chunk.TranscriptionSegments
	case p.Legacy != nil:
		return p.Legacy.TranscriptionSegments
	}
	return nil
}

type VideoMetadata struct {
	ID                 string         `json:"id"`
	VideoID            string         `json:"video_id"`
	Payload            []PayloadEntry `json:"payload"`
	TranscriptionModel string         `json:"transcription_model"`
	ProcessingDuration float64        `json:"processing_duration"`
	Ctime              int64          `json:"ctime"`
	Mtime              int64          `json:"mtime"`
}
