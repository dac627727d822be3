package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

// whisperHTTPConfig targets an OpenAI-compatible whisper server that can
// answer in VTT. LoadPath, when set, is posted once with the model size
// before the first transcription.
type whisperHTTPConfig struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	Language       string `json:"language"`
	LoadPath       string `json:"load_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type whisperHTTPTranscriber struct {
	baseURL  string
	apiKey   string
	language string
	loadPath string
	size     ModelSize
	client   *http.Client

	loadMu sync.Mutex
	loaded bool
}

func init() {
	Register("whisper_http", createWhisperHTTPTranscriber)
}

func createWhisperHTTPTranscriber(size ModelSize, args interface{}) (Transcriber, error) {
	cfg := &whisperHTTPConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("transcribe.data.base_url is required for whisper_http")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &whisperHTTPTranscriber{
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		language: strings.TrimSpace(cfg.Language),
		loadPath: strings.TrimSpace(cfg.LoadPath),
		size:     size,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (t *whisperHTTPTranscriber) Model() string {
	return "whisper:" + string(t.size)
}

func (t *whisperHTTPTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if err := checkAudio(audioPath); err != nil {
		return nil, err
	}
	if err := t.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("%w: load model %s: %w", appErr.ErrTranscriptionFailed, t.size, err)
	}
	fields := map[string]string{
		"model":           string(t.size),
		"response_format": "vtt",
	}
	if t.language != "" {
		fields["language"] = t.language
	}
	body, err := t.post(ctx, "/audio/transcriptions", audioPath, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrTranscriptionFailed, err)
	}
	segments, err := ParseVTT(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrTranscriptionFailed, err)
	}
	return normalize("", segments), nil
}

// ensureLoaded posts the load request until one succeeds. Concurrent
// callers wait for the attempt in flight instead of issuing their own.
func (t *whisperHTTPTranscriber) ensureLoaded(ctx context.Context) error {
	if t.loadPath == "" {
		return nil
	}
	t.loadMu.Lock()
	defer t.loadMu.Unlock()
	if t.loaded {
		return nil
	}
	start := time.Now()
	_, err := t.post(ctx, t.loadPath, "", map[string]string{"model": string(t.size)})
	logger := logutil.GetLogger(ctx).With(zap.String("model", string(t.size)), zap.Duration("duration", time.Since(start)))
	if err != nil {
		logger.Error("load whisper model failed", zap.Error(err))
		return err
	}
	t.loaded = true
	logger.Info("whisper model loaded")
	return nil
}

func (t *whisperHTTPTranscriber) post(ctx context.Context, path, filePath string, fields map[string]string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filePath != "" {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("copy audio: %w", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("whisper request failed: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}
