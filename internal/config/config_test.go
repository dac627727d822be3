package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"host": "localhost", "user": "guide", "dbname": "guide"},
		"jwt_secret": "secret",
		"port": 8080
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, 72, cfg.JWTTTLHours)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, "local", cfg.FileStore.Type)
	require.Equal(t, "ffmpeg", cfg.Media.FFmpegPath)
	require.Equal(t, "ffprobe", cfg.Media.FFprobePath)
	require.Equal(t, float64(300), cfg.Media.ChunkWindowSeconds)
	require.Equal(t, 600, cfg.Media.CommandTimeoutSeconds)
	require.Greater(t, cfg.Media.Workers, 0)
	require.Equal(t, "openai", cfg.Transcribe.Provider)
	require.Equal(t, "base", cfg.Transcribe.ModelSize)
	require.Equal(t, "ytdlp", cfg.Fetch.Provider)
	require.Equal(t, 24, cfg.Cleanup.MaxAgeHours)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing database", body: `{"jwt_secret": "s", "port": 1}`},
		{name: "missing secret", body: `{"database": {"dsn": "postgres://x"}, "port": 1}`},
		{name: "missing port", body: `{"database": {"dsn": "postgres://x"}, "jwt_secret": "s"}`},
		{name: "negative window", body: `{"database": {"dsn": "postgres://x"}, "jwt_secret": "s", "port": 1, "media": {"chunk_window_seconds": -1}}`},
		{name: "bad json", body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(envDBDSN, "postgres://env")
	t.Setenv(envJWTSecret, "env-secret")
	t.Setenv(envTranscribeAPIKey, "sk-env")
	path := writeConfig(t, `{
		"database": {"dsn": "postgres://file"},
		"jwt_secret": "file-secret",
		"port": 8080,
		"transcribe": {"provider": "openai", "data": {"base_url": "http://whisper"}}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://env", cfg.Database.DSN)
	require.Equal(t, "env-secret", cfg.JWTSecret)
	data, ok := cfg.Transcribe.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "sk-env", data["api_key"])
	require.Equal(t, "http://whisper", data["base_url"])
}
