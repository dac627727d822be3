package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/config"
	"github.com/sameepv21/guide-ai/internal/model"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk_0000.mp3")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseModelSize(t *testing.T) {
	for _, v := range []string{"tiny", "base", "small", "medium", "large", " Base "} {
		_, err := ParseModelSize(v)
		require.NoError(t, err, v)
	}
	_, err := ParseModelSize("huge")
	require.True(t, errors.Is(err, appErr.ErrInvalidInput))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(config.TranscribeConfig{Provider: "nope", ModelSize: "base"})
	require.Error(t, err)
	_, err = New(config.TranscribeConfig{Provider: "openai", ModelSize: "xl"})
	require.True(t, errors.Is(err, appErr.ErrInvalidInput))
}

func TestNormalize(t *testing.T) {
	got := normalize("ignored", []model.TranscriptSegment{
		{Start: 4, End: 6, Text: "  third "},
		{Start: 0, End: 2.5, Text: " first"},
		{Start: 2, End: 4.5, Text: "second  "},
		{Start: 5, End: 5, Text: "zero length"},
		{Start: 7, End: 8, Text: "   "},
		{Start: 4.2, End: 4.4, Text: "swallowed"},
	})
	require.Equal(t, []model.TranscriptSegment{
		{Start: 0, End: 2.5, Text: "first"},
		{Start: 2.5, End: 4.5, Text: "second"},
		{Start: 4.5, End: 6, Text: "third"},
	}, got.Segments)
	require.Equal(t, "first second third", got.Text)

	for i := 1; i < len(got.Segments); i++ {
		require.Less(t, got.Segments[i-1].Start, got.Segments[i].Start)
		require.LessOrEqual(t, got.Segments[i-1].End, got.Segments[i].Start)
	}
}

func TestNormalizeSilentClip(t *testing.T) {
	got := normalize("  ", nil)
	require.Equal(t, "", got.Text)
	require.Empty(t, got.Segments)
}

func TestParseVTT(t *testing.T) {
	content := "WEBVTT\n\nNOTE produced by whisper\n\n1\n00:00:00.000 --> 00:00:02.500\n Hello there\n\n00:02.500 --> 00:05.000 align:start\nsecond line\ncontinues\n\n"
	segments, err := ParseVTT(content)
	require.NoError(t, err)
	require.Equal(t, []model.TranscriptSegment{
		{Start: 0, End: 2.5, Text: " Hello there"},
		{Start: 2.5, End: 5, Text: "second line continues"},
	}, segments)

	empty, err := ParseVTT("WEBVTT\n\n")
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ParseVTT("1\n00:00:00.000 --> 00:00:01.000\nhi")
	require.Error(t, err)
	_, err = ParseVTT("WEBVTT\n\n00:00:00 --> 00:00:01.000\nhi")
	require.Error(t, err)
}

func TestParseVTTTimestamp(t *testing.T) {
	v, err := parseVTTTimestamp("01:02:03.250")
	require.NoError(t, err)
	require.InDelta(t, 3723.25, v, 1e-9)
	v, err = parseVTTTimestamp("02:03.5")
	require.NoError(t, err)
	require.InDelta(t, 123.5, v, 1e-9)
}

func TestWhisperHTTPTranscribe(t *testing.T) {
	var loads, calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		switch r.URL.Path {
		case "/load":
			atomic.AddInt32(&loads, 1)
			require.Equal(t, "small", r.FormValue("model"))
		case "/audio/transcriptions":
			atomic.AddInt32(&calls, 1)
			require.Equal(t, "vtt", r.FormValue("response_format"))
			require.Equal(t, "small", r.FormValue("model"))
			require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			_, _, err := r.FormFile("file")
			require.NoError(t, err)
			fmt.Fprint(w, "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n  hi \n\n00:00:01.000 --> 00:00:02.000\nthere\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tr, err := New(config.TranscribeConfig{
		Provider:  "whisper_http",
		ModelSize: "small",
		Data:      map[string]interface{}{"base_url": server.URL, "api_key": "key", "load_path": "/load"},
	})
	require.NoError(t, err)
	require.Equal(t, "whisper:small", tr.Model())

	audio := writeAudio(t, "audio")
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := tr.Transcribe(context.Background(), audio)
			require.NoError(t, err)
			require.Equal(t, "hi there", res.Text)
			require.Len(t, res.Segments, 2)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&loads))
	require.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestWhisperHTTPRetriesModelLoad(t *testing.T) {
	var loads int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			if atomic.AddInt32(&loads, 1) == 1 {
				http.Error(w, "warming up", http.StatusServiceUnavailable)
			}
		case "/audio/transcriptions":
			fmt.Fprint(w, "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tr, err := New(config.TranscribeConfig{
		Provider:  "whisper_http",
		ModelSize: "base",
		Data:      map[string]interface{}{"base_url": server.URL, "load_path": "/load"},
	})
	require.NoError(t, err)
	audio := writeAudio(t, "audio")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Transcribe(cancelled, audio)
	require.True(t, errors.Is(err, appErr.ErrTranscriptionFailed))
	require.True(t, errors.Is(err, context.Canceled))

	_, err = tr.Transcribe(context.Background(), audio)
	require.True(t, errors.Is(err, appErr.ErrTranscriptionFailed))

	res, err := tr.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	require.Equal(t, "hello", res.Text)

	_, err = tr.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestWhisperHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	tr, err := New(config.TranscribeConfig{
		Provider:  "whisper_http",
		ModelSize: "base",
		Data:      map[string]interface{}{"base_url": server.URL},
	})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t, "audio"))
	require.True(t, errors.Is(err, appErr.ErrTranscriptionFailed))

	_, err = tr.Transcribe(context.Background(), writeAudio(t, ""))
	require.True(t, errors.Is(err, appErr.ErrTranscriptionFailed))

	_, err = tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	require.True(t, errors.Is(err, appErr.ErrTranscriptionFailed))
}

func TestWhisperHTTPSilentClip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "WEBVTT\n\n")
	}))
	defer server.Close()

	tr, err := New(config.TranscribeConfig{
		Provider:  "whisper_http",
		ModelSize: "tiny",
		Data:      map[string]interface{}{"base_url": server.URL},
	})
	require.NoError(t, err)
	res, err := tr.Transcribe(context.Background(), writeAudio(t, "silence"))
	require.NoError(t, err)
	require.Equal(t, "", res.Text)
	require.Empty(t, res.Segments)
}

func TestOpenAITranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "verbose_json", r.FormValue("response_format"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"task":"transcribe","language":"english","duration":3.2,"text":" hello world ","segments":[
			{"id":1,"seek":0,"start":1.5,"end":3.2,"text":" world"},
			{"id":0,"seek":0,"start":0,"end":1.5,"text":" hello "}
		]}`)
	}))
	defer server.Close()

	tr, err := New(config.TranscribeConfig{
		Provider:  "openai",
		ModelSize: "base",
		Data:      map[string]interface{}{"api_key": "sk-test", "base_url": server.URL + "/v1"},
	})
	require.NoError(t, err)
	require.Equal(t, "whisper-1:base", tr.Model())

	res, err := tr.Transcribe(context.Background(), writeAudio(t, "audio"))
	require.NoError(t, err)
	require.Equal(t, "hello world", res.Text)
	require.Equal(t, []model.TranscriptSegment{
		{Start: 0, End: 1.5, Text: "hello"},
		{Start: 1.5, End: 3.2, Text: "world"},
	}, res.Segments)
}

func TestOpenAIRequiresKey(t *testing.T) {
	_, err := New(config.TranscribeConfig{Provider: "openai", ModelSize: "base"})
	require.Error(t, err)
}
