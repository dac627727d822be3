package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

const (
	envDBDSN            = "GUIDEAI_DB_DSN"
	envJWTSecret        = "GUIDEAI_JWT_SECRET"
	envTranscribeAPIKey = "GUIDEAI_TRANSCRIBE_API_KEY"
)

type Config struct {
	Database              DatabaseConfig   `json:"database"`
	JWTSecret             string           `json:"jwt_secret"`
	Port                  int              `json:"port"`
	JWTTTLHours           int              `json:"jwt_ttl_hours"`
	LogConfig             logger.LogConfig `json:"log_config"`
	FileStore             FileStoreConfig  `json:"file_store"`
	Media                 MediaConfig      `json:"media"`
	Transcribe            TranscribeConfig `json:"transcribe"`
	Fetch                 FetchConfig      `json:"fetch"`
	Mail                  MailConfig       `json:"mail"`
	Cleanup               CleanupConfig    `json:"cleanup"`
	CORSAllowlist         []string         `json:"cors_allowlist"`
	IngestRateLimitSecond int              `json:"ingest_rate_limit_seconds"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type MediaConfig struct {
	FFmpegPath            string  `json:"ffmpeg_path"`
	FFprobePath           string  `json:"ffprobe_path"`
	WorkDir               string  `json:"work_dir"`
	ChunkWindowSeconds    float64 `json:"chunk_window_seconds"`
	CommandTimeoutSeconds int     `json:"command_timeout_seconds"`
	Workers               int     `json:"workers"`
}

type TranscribeConfig struct {
	Provider  string      `json:"provider"`
	ModelSize string      `json:"model_size"`
	Data      interface{} `json:"data"`
}

type FetchConfig struct {
	Provider string      `json:"provider"`
	Data     interface{} `json:"data"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type CleanupConfig struct {
	Spec        string `json:"spec"`
	MaxAgeHours int    `json:"max_age_hours"`
}

// Load reads the JSON config at path. A .env file next to the working
// directory is loaded first; GUIDEAI_* variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnv(&cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envDBDSN)); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(envJWTSecret)); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(envTranscribeAPIKey)); v != "" {
		data, _ := cfg.Transcribe.Data.(map[string]interface{})
		if data == nil {
			data = map[string]interface{}{}
		}
		data["api_key"] = v
		cfg.Transcribe.Data = data
	}
}

func (cfg *Config) normalize() error {
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Type == "local" && cfg.FileStore.Data == nil {
		cfg.FileStore.Data = map[string]interface{}{"dir": "./data/files"}
	}
	if cfg.Media.FFmpegPath == "" {
		cfg.Media.FFmpegPath = "ffmpeg"
	}
	if cfg.Media.FFprobePath == "" {
		cfg.Media.FFprobePath = "ffprobe"
	}
	if cfg.Media.WorkDir == "" {
		cfg.Media.WorkDir = "./data/videos"
	}
	if cfg.Media.ChunkWindowSeconds < 0 {
		return fmt.Errorf("media.chunk_window_seconds must not be negative")
	}
	if cfg.Media.ChunkWindowSeconds == 0 {
		cfg.Media.ChunkWindowSeconds = 300
	}
	if cfg.Media.CommandTimeoutSeconds <= 0 {
		cfg.Media.CommandTimeoutSeconds = 600
	}
	if cfg.Media.Workers <= 0 {
		cfg.Media.Workers = runtime.NumCPU()
	}
	if cfg.Transcribe.Provider == "" {
		cfg.Transcribe.Provider = "openai"
	}
	if cfg.Transcribe.ModelSize == "" {
		cfg.Transcribe.ModelSize = "base"
	}
	if cfg.Fetch.Provider == "" {
		cfg.Fetch.Provider = "ytdlp"
	}
	if cfg.Cleanup.Spec == "" {
		cfg.Cleanup.Spec = "*/30 * * * *"
	}
	if cfg.Cleanup.MaxAgeHours <= 0 {
		cfg.Cleanup.MaxAgeHours = 24
	}
	return nil
}
