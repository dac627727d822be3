// Package fetch downloads a source video into a local working directory.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sameepv21/guide-ai/internal/config"
	"github.com/sameepv21/guide-ai/internal/media"
)

type Source struct {
	Path  string
	Title string
}

type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, destDir string) (*Source, error)
}

type Deps struct {
	Runner media.Runner
}

type Factory func(args interface{}, deps Deps) (Fetcher, error)

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

func New(cfg config.FetchConfig, deps Deps) (Fetcher, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if key == "" {
		return nil, fmt.Errorf("fetch.provider is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported fetch provider: %s", cfg.Provider)
	}
	return factory(cfg.Data, deps)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode fetch config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode fetch config: %w", err)
	}
	return nil
}
