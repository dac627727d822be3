package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type httpConfig struct {
	TimeoutSeconds int   `json:"timeout_seconds"`
	MaxBytes       int64 `json:"max_bytes"`
}

// httpFetcher downloads direct media links.
type httpFetcher struct {
	client   *http.Client
	maxBytes int64
}

func init() {
	Register("http", createHTTPFetcher)
}

func createHTTPFetcher(args interface{}, _ Deps) (Fetcher, error) {
	cfg := &httpConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &httpFetcher{client: &http.Client{Timeout: timeout}, maxBytes: cfg.MaxBytes}, nil
}

func (f *httpFetcher) Fetch(ctx context.Context, sourceURL, destDir string) (*Source, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrFetchFailed, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir: %w", appErr.ErrFetchFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrFetchFailed, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", appErr.ErrFetchFailed, resp.Status)
	}

	base := path.Base(u.Path)
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		ext = ".mp4"
	}
	dest := filepath.Join(destDir, "source"+ext)
	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrFetchFailed, err)
	}
	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	n, err := io.Copy(out, body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && f.maxBytes > 0 && n > f.maxBytes {
		err = fmt.Errorf("download exceeds %d bytes", f.maxBytes)
	}
	if err == nil && n == 0 {
		err = fmt.Errorf("empty download")
	}
	if err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("%w: %w", appErr.ErrFetchFailed, err)
	}
	return &Source{Path: dest, Title: strings.TrimSuffix(base, filepath.Ext(base))}, nil
}
