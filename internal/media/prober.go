package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type Prober struct {
	runner Runner
	bin    string
}

func NewProber(runner Runner, ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{runner: runner, bin: ffprobePath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the container duration of path in seconds.
func (p *Prober) Probe(ctx context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", appErr.ErrMediaUnreadable, path, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s: empty or not a file", appErr.ErrMediaUnreadable, path)
	}
	out, err := p.runner.Run(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", appErr.ErrMediaUnreadable, err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out []byte) (float64, error) {
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("%w: decode ffprobe output: %w", appErr.ErrMediaUnreadable, err)
	}
	raw := strings.TrimSpace(parsed.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("%w: no duration reported", appErr.ErrMediaUnreadable)
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse duration %q: %w", appErr.ErrMediaUnreadable, raw, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %v", appErr.ErrMediaUnreadable, duration)
	}
	return duration, nil
}
