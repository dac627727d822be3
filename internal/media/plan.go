package media

import (
	"fmt"
	"math"
)

// DefaultChunkWindow is the longest span, in seconds, one chunk may cover.
const DefaultChunkWindow = 300.0

// planEpsilon is the largest tail, in seconds, treated as float noise in a
// probed duration (600.0000001 is two windows, 300.0003 is two as well).
const planEpsilon = 1e-6

type Window struct {
	Ordinal int
	Start   float64
	End     float64
}

func (w Window) Span() float64 {
	return w.End - w.Start
}

// PlanWindows partitions [0, duration) into consecutive windows of at most
// window seconds. The last window is truncated, never padded.
func PlanWindows(duration, window float64) []Window {
	if duration <= 0 || window <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / window))
	if n > 1 && duration-float64(n-1)*window <= planEpsilon {
		n--
	}
	windows := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * window
		end := math.Min(float64(i+1)*window, duration)
		if i == n-1 {
			end = duration
		}
		windows = append(windows, Window{Ordinal: i, Start: start, End: end})
	}
	return windows
}

// NeedsChunking reports whether a video of duration is split into files.
func NeedsChunking(duration, window float64) bool {
	return len(PlanWindows(duration, window)) > 1
}

// ChunkFileName is zero padded so lexical order equals chronological order.
func ChunkFileName(ordinal int, ext string) string {
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("chunk_%04d%s", ordinal, ext)
}
