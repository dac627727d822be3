// Package transcribe turns audio artifacts into text with time-aligned
// segments. Backends register themselves by name and are built once per
// process; the returned Transcriber is safe for concurrent use.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sameepv21/guide-ai/internal/config"
	"github.com/sameepv21/guide-ai/internal/model"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

func ParseModelSize(v string) (ModelSize, error) {
	switch size := ModelSize(strings.ToLower(strings.TrimSpace(v))); size {
	case ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge:
		return size, nil
	default:
		return "", fmt.Errorf("%w: unknown model size %q", appErr.ErrInvalidInput, v)
	}
}

// Result segments are relative to the start of the transcribed audio.
type Result struct {
	Text     string
	Segments []model.TranscriptSegment
}

type Transcriber interface {
	Model() string
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

type Factory func(size ModelSize, args interface{}) (Transcriber, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.TranscribeConfig) (Transcriber, error) {
	size, err := ParseModelSize(cfg.ModelSize)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if key == "" {
		return nil, fmt.Errorf("transcribe.provider is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported transcribe provider: %s", cfg.Provider)
	}
	return factory(size, cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode transcribe config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode transcribe config: %w", err)
	}
	return nil
}

func checkAudio(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", appErr.ErrTranscriptionFailed, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: audio %s is empty", appErr.ErrTranscriptionFailed, path)
	}
	return nil
}
