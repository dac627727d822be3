package transcribe

import (
	"sort"
	"strings"

	"github.com/sameepv21/guide-ai/internal/model"
)

// normalize trims segment text and returns segments sorted by start with no
// overlap. Empty or zero-length segments are dropped; a segment starting
// before its predecessor ends is clamped to that end.
func normalize(text string, segments []model.TranscriptSegment) *Result {
	cleaned := make([]model.TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" || seg.End <= seg.Start || seg.Start < 0 {
			continue
		}
		cleaned = append(cleaned, seg)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Start < cleaned[j].Start
	})
	out := make([]model.TranscriptSegment, 0, len(cleaned))
	for _, seg := range cleaned {
		if n := len(out); n > 0 && seg.Start < out[n-1].End {
			seg.Start = out[n-1].End
			if seg.End <= seg.Start {
				continue
			}
		}
		out = append(out, seg)
	}

	full := strings.TrimSpace(text)
	if len(out) > 0 {
		parts := make([]string, 0, len(out))
		for _, seg := range out {
			parts = append(parts, seg.Text)
		}
		full = strings.Join(parts, " ")
	}
	return &Result{Text: full, Segments: out}
}
