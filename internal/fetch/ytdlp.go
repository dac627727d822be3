package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sameepv21/guide-ai/internal/media"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

const defaultYtdlpFormat = "best[ext=mp4]/best"

type ytdlpConfig struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type ytdlpFetcher struct {
	runner media.Runner
	bin    string
	format string
}

func init() {
	Register("ytdlp", createYtdlpFetcher)
}

func createYtdlpFetcher(args interface{}, deps Deps) (Fetcher, error) {
	cfg := &ytdlpConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("ytdlp fetcher requires a command runner")
	}
	if cfg.Path == "" {
		cfg.Path = "yt-dlp"
	}
	if cfg.Format == "" {
		cfg.Format = defaultYtdlpFormat
	}
	return &ytdlpFetcher{runner: deps.Runner, bin: cfg.Path, format: cfg.Format}, nil
}

// Fetch downloads sourceURL as destDir/source.<ext>. yt-dlp prints the title
// and then the final file path on stdout.
func (f *ytdlpFetcher) Fetch(ctx context.Context, sourceURL, destDir string) (*Source, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir: %w", appErr.ErrFetchFailed, err)
	}
	out, err := f.runner.Run(ctx, f.bin,
		"-f", f.format,
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"--print", "title",
		"--print", "after_move:filepath",
		"-o", filepath.Join(destDir, "source.%(ext)s"),
		sourceURL,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrFetchFailed, err)
	}
	title, path := parseYtdlpOutput(string(out))
	if path == "" {
		return nil, fmt.Errorf("%w: yt-dlp reported no output file", appErr.ErrFetchFailed)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("%w: downloaded file %s missing or empty", appErr.ErrFetchFailed, path)
	}
	return &Source{Path: path, Title: title}, nil
}

func parseYtdlpOutput(out string) (string, string) {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return "", lines[0]
	default:
		return lines[0], lines[len(lines)-1]
	}
}
