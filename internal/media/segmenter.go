package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

const chunkDirName = "chunks"

// Chunk is a materialized window. For an unchunked video Path is the source.
type Chunk struct {
	Ordinal int
	Start   float64
	End     float64
	Path    string
}

func (c Chunk) Span() float64 {
	return c.End - c.Start
}

type Segmentation struct {
	Chunked bool
	Chunks  []Chunk
}

type Segmenter struct {
	runner Runner
	bin    string
	window float64
}

func NewSegmenter(runner Runner, ffmpegPath string, window float64) *Segmenter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if window <= 0 {
		window = DefaultChunkWindow
	}
	return &Segmenter{runner: runner, bin: ffmpegPath, window: window}
}

func (s *Segmenter) Window() float64 {
	return s.window
}

// Materialize splits sourcePath into stream-copied chunk files under
// workDir/chunks. A chunk is only returned once its file is confirmed on
// disk; on any failure every file written by this call is removed.
func (s *Segmenter) Materialize(ctx context.Context, sourcePath, workDir string, duration float64) (*Segmentation, error) {
	windows := PlanWindows(duration, s.window)
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: invalid duration %v", appErr.ErrSegmentationFailed, duration)
	}
	if !NeedsChunking(duration, s.window) {
		return &Segmentation{
			Chunked: false,
			Chunks:  []Chunk{{Ordinal: 0, Start: 0, End: duration, Path: sourcePath}},
		}, nil
	}

	logger := logutil.GetLogger(ctx).With(
		zap.String("source", sourcePath),
		zap.Float64("duration", duration),
		zap.Int("chunks", len(windows)),
	)
	dir := filepath.Join(workDir, chunkDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create chunk dir: %w", appErr.ErrSegmentationFailed, err)
	}
	ext := filepath.Ext(sourcePath)
	chunks := make([]Chunk, 0, len(windows))
	for _, w := range windows {
		out := filepath.Join(dir, ChunkFileName(w.Ordinal, ext))
		if err := s.copyWindow(ctx, sourcePath, out, w); err != nil {
			_ = os.Remove(out)
			removeChunks(chunks)
			logger.Error("segment video failed", zap.Int("ordinal", w.Ordinal), zap.Error(err))
			return nil, fmt.Errorf("%w: chunk %d: %w", appErr.ErrSegmentationFailed, w.Ordinal, err)
		}
		chunks = append(chunks, Chunk{Ordinal: w.Ordinal, Start: w.Start, End: w.End, Path: out})
	}
	logger.Info("video segmented")
	return &Segmentation{Chunked: true, Chunks: chunks}, nil
}

func (s *Segmenter) copyWindow(ctx context.Context, src, out string, w Window) error {
	_, err := s.runner.Run(ctx, s.bin,
		"-i", src,
		"-ss", formatSeconds(w.Start),
		"-t", formatSeconds(w.Span()),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-y", out,
	)
	if err != nil {
		return err
	}
	return confirmFile(out)
}

func removeChunks(chunks []Chunk) {
	for _, c := range chunks {
		_ = os.Remove(c.Path)
	}
}

func confirmFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output %s is empty", path)
	}
	return nil
}

func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
