package pipeline

import (
	"fmt"

	"github.com/sameepv21/guide-ai/internal/media"
	"github.com/sameepv21/guide-ai/internal/model"
)

// Assembler builds one video's payload. Entries must arrive in ordinal
// order starting at 0 so that payload index equals chunk id.
type Assembler struct {
	videoID  string
	modelID  string
	expected int
	payload  []model.PayloadEntry
	duration float64
}

func NewAssembler(videoID, modelID string, expected int) *Assembler {
	return &Assembler{
		videoID:  videoID,
		modelID:  modelID,
		expected: expected,
		payload:  make([]model.PayloadEntry, 0, expected),
	}
}

func (a *Assembler) Append(chunk media.Chunk, tr model.ChunkTranscript) error {
	if chunk.Ordinal != len(a.payload) {
		return fmt.Errorf("chunk %d appended out of order, expected %d", chunk.Ordinal, len(a.payload))
	}
	if tr.ChunkOrdinal != chunk.Ordinal {
		return fmt.Errorf("transcript for chunk %d paired with chunk %d", tr.ChunkOrdinal, chunk.Ordinal)
	}
	if chunk.Ordinal >= a.expected {
		return fmt.Errorf("chunk %d exceeds expected count %d", chunk.Ordinal, a.expected)
	}
	if tr.ProcessingSeconds < 0 {
		return fmt.Errorf("chunk %d has negative processing time", chunk.Ordinal)
	}
	a.payload = append(a.payload, model.NewChunkPayloadEntry(model.ChunkEntry{
		ChunkID:               chunk.Ordinal,
		AudioPath:             tr.AudioPath,
		VideoPath:             chunk.Path,
		TranscriptionText:     tr.FullText,
		TranscriptionSegments: tr.Segments,
		SpanStart:             chunk.Start,
		SpanEnd:               chunk.End,
	}))
	a.duration += tr.ProcessingSeconds
	return nil
}

func (a *Assembler) ProcessingDuration() float64 {
	return a.duration
}

// Metadata returns the finished record. It fails while chunks are missing.
func (a *Assembler) Metadata() (*model.VideoMetadata, error) {
	if len(a.payload) != a.expected {
		return nil, fmt.Errorf("payload has %d entries, expected %d", len(a.payload), a.expected)
	}
	payload := make([]model.PayloadEntry, len(a.payload))
	copy(payload, a.payload)
	return &model.VideoMetadata{
		VideoID:            a.videoID,
		Payload:            payload,
		TranscriptionModel: a.modelID,
		ProcessingDuration: a.duration,
	}, nil
}

// Assemble builds metadata from chunks and transcripts given in ordinal order.
func Assemble(videoID, modelID string, chunks []media.Chunk, transcripts []model.ChunkTranscript) (*model.VideoMetadata, error) {
	if len(chunks) != len(transcripts) {
		return nil, fmt.Errorf("%d chunks but %d transcripts", len(chunks), len(transcripts))
	}
	a := NewAssembler(videoID, modelID, len(chunks))
	for i := range chunks {
		if err := a.Append(chunks[i], transcripts[i]); err != nil {
			return nil, err
		}
	}
	return a.Metadata()
}

// globalize shifts chunk-local segment times onto the video timeline.
func globalize(segments []model.TranscriptSegment, offset float64) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, len(segments))
	for i, seg := range segments {
		out[i] = model.TranscriptSegment{Start: seg.Start + offset, End: seg.End + offset, Text: seg.Text}
	}
	return out
}
