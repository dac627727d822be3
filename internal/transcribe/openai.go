package transcribe

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sameepv21/guide-ai/internal/model"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type openAIConfig struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

type openAITranscriber struct {
	client   *openai.Client
	model    string
	size     ModelSize
	language string
}

func init() {
	Register("openai", createOpenAITranscriber)
}

func createOpenAITranscriber(size ModelSize, args interface{}) (Transcriber, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe.data.api_key is required for openai")
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = openai.Whisper1
	}
	return &openAITranscriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    modelName,
		size:     size,
		language: strings.TrimSpace(cfg.Language),
	}, nil
}

func (t *openAITranscriber) Model() string {
	return t.model + ":" + string(t.size)
}

func (t *openAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if err := checkAudio(audioPath); err != nil {
		return nil, err
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: t.language,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrTranscriptionFailed, err)
	}
	segments := make([]model.TranscriptSegment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, model.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return normalize(resp.Text, segments), nil
}
