package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/config"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type scriptedRunner struct {
	args   []string
	stdout string
	err    error
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.args = append([]string{name}, args...)
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.stdout), nil
}

func TestYtdlpFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0o644))
	runner := &scriptedRunner{stdout: "My Talk\n" + path + "\n"}

	f, err := New(config.FetchConfig{Provider: "ytdlp"}, Deps{Runner: runner})
	require.NoError(t, err)
	src, err := f.Fetch(context.Background(), "https://www.youtube.com/watch?v=abc", dir)
	require.NoError(t, err)
	require.Equal(t, path, src.Path)
	require.Equal(t, "My Talk", src.Title)
	require.Equal(t, "yt-dlp", runner.args[0])
	require.Contains(t, runner.args, defaultYtdlpFormat)
	require.Equal(t, "https://www.youtube.com/watch?v=abc", runner.args[len(runner.args)-1])
}

func TestYtdlpFetchFailures(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		runner *scriptedRunner
	}{
		{name: "command error", runner: &scriptedRunner{err: fmt.Errorf("yt-dlp failed: exit status 1")}},
		{name: "no output", runner: &scriptedRunner{stdout: "\n"}},
		{name: "missing file", runner: &scriptedRunner{stdout: "title\n" + filepath.Join(dir, "gone.mp4")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(config.FetchConfig{Provider: "ytdlp"}, Deps{Runner: tt.runner})
			require.NoError(t, err)
			_, err = f.Fetch(context.Background(), "https://example.com/v", dir)
			require.True(t, errors.Is(err, appErr.ErrFetchFailed), "got %v", err)
		})
	}
}

func TestParseYtdlpOutput(t *testing.T) {
	title, path := parseYtdlpOutput("Title\n/tmp/x/source.webm\n")
	require.Equal(t, "Title", title)
	require.Equal(t, "/tmp/x/source.webm", path)

	title, path = parseYtdlpOutput("/tmp/only.mp4")
	require.Equal(t, "", title)
	require.Equal(t, "/tmp/only.mp4", path)
}

func TestHTTPFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp4" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "fake video bytes")
	}))
	defer server.Close()

	f, err := New(config.FetchConfig{Provider: "http"}, Deps{})
	require.NoError(t, err)

	dir := t.TempDir()
	src, err := f.Fetch(context.Background(), server.URL+"/media/lecture.webm", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "source.webm"), src.Path)
	require.Equal(t, "lecture", src.Title)
	data, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	require.Equal(t, "fake video bytes", string(data))

	_, err = f.Fetch(context.Background(), server.URL+"/missing.mp4", t.TempDir())
	require.True(t, errors.Is(err, appErr.ErrFetchFailed))
}

func TestHTTPFetchSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "0123456789")
	}))
	defer server.Close()

	f, err := New(config.FetchConfig{Provider: "http", Data: map[string]interface{}{"max_bytes": 4}}, Deps{})
	require.NoError(t, err)
	dir := t.TempDir()
	_, err = f.Fetch(context.Background(), server.URL+"/v.mp4", dir)
	require.True(t, errors.Is(err, appErr.ErrFetchFailed))
	require.NoFileExists(t, filepath.Join(dir, "source.mp4"))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(config.FetchConfig{Provider: "ftp"}, Deps{})
	require.Error(t, err)
	_, err = New(config.FetchConfig{Provider: "ytdlp"}, Deps{})
	require.Error(t, err)
}
