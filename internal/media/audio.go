package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

const audioExt = ".mp3"

type AudioExtractor struct {
	runner Runner
	bin    string
}

func NewAudioExtractor(runner Runner, ffmpegPath string) *AudioExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &AudioExtractor{runner: runner, bin: ffmpegPath}
}

// AudioPath is the chunk path with its extension swapped for .mp3.
func AudioPath(chunkPath string) string {
	return strings.TrimSuffix(chunkPath, filepath.Ext(chunkPath)) + audioExt
}

// Extract decodes the audio of chunk's window from the original source, not
// from the chunk file, and writes it next to the chunk. Reruns overwrite.
func (e *AudioExtractor) Extract(ctx context.Context, sourcePath string, chunk Chunk) (string, error) {
	if chunk.Span() <= 0 {
		return "", fmt.Errorf("%w: chunk %d has empty span", appErr.ErrAudioExtractionFailed, chunk.Ordinal)
	}
	out := AudioPath(chunk.Path)
	_, err := e.runner.Run(ctx, e.bin,
		"-ss", formatSeconds(chunk.Start),
		"-t", formatSeconds(chunk.Span()),
		"-i", sourcePath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", "64k",
		"-y", out,
	)
	if err != nil {
		return "", fmt.Errorf("%w: chunk %d: %w", appErr.ErrAudioExtractionFailed, chunk.Ordinal, err)
	}
	if err := confirmFile(out); err != nil {
		return "", fmt.Errorf("%w: chunk %d: %w", appErr.ErrAudioExtractionFailed, chunk.Ordinal, err)
	}
	return out, nil
}
