package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/sameepv21/guide-ai/internal/config"
	"github.com/sameepv21/guide-ai/internal/db"
	"github.com/sameepv21/guide-ai/internal/fetch"
	"github.com/sameepv21/guide-ai/internal/filestore"
	"github.com/sameepv21/guide-ai/internal/handler"
	"github.com/sameepv21/guide-ai/internal/job"
	"github.com/sameepv21/guide-ai/internal/media"
	"github.com/sameepv21/guide-ai/internal/middleware"
	"github.com/sameepv21/guide-ai/internal/pipeline"
	"github.com/sameepv21/guide-ai/internal/repo"
	"github.com/sameepv21/guide-ai/internal/schedule"
	"github.com/sameepv21/guide-ai/internal/service"
	"github.com/sameepv21/guide-ai/internal/transcribe"
)

func main() {
	var configPath string
	var videoURL string
	var userEmail string

	rootCmd := &cobra.Command{
		Use:   "guideai",
		Short: "guide-ai video ingestion server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run http server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sqlDB, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return runServer(cfg, sqlDB)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sqlDB, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "ingest one video synchronously and print its metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			if videoURL == "" || userEmail == "" {
				return fmt.Errorf("--url and --user are required")
			}
			cfg, sqlDB, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return runIngest(cmd.Context(), cfg, sqlDB, userEmail, videoURL)
		},
	}
	ingestCmd.Flags().StringVar(&videoURL, "url", "", "video url")
	ingestCmd.Flags().StringVar(&userEmail, "user", "", "email of the owning user")

	rootCmd.AddCommand(runCmd, migrateCmd, ingestCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(ctx context.Context, configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(ctx).Info("config loaded", zap.String("config", configPath))

	sqlDB, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, sqlDB, nil
}

type app struct {
	videos   *service.VideoService
	chat     *service.ChatService
	auth     *service.AuthService
	codes    *service.PasswordCodeService
	store    filestore.Store
	users    *repo.UserRepo
	videoRep *repo.VideoRepo
}

func buildApp(cfg *config.Config, sqlDB *sql.DB) (*app, error) {
	runner := media.NewRunner(time.Duration(cfg.Media.CommandTimeoutSeconds) * time.Second)
	transcriber, err := transcribe.New(cfg.Transcribe)
	if err != nil {
		return nil, fmt.Errorf("init transcriber: %w", err)
	}
	fetcher, err := fetch.New(cfg.Fetch, fetch.Deps{Runner: runner})
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	p := pipeline.New(
		media.NewProber(runner, cfg.Media.FFprobePath),
		media.NewSegmenter(runner, cfg.Media.FFmpegPath, cfg.Media.ChunkWindowSeconds),
		media.NewAudioExtractor(runner, cfg.Media.FFmpegPath),
		transcriber,
		pipeline.WithWorkers(cfg.Media.Workers),
	)

	userRepo := repo.NewUserRepo(sqlDB)
	videoRepo := repo.NewVideoRepo(sqlDB)
	chunkRepo := repo.NewChunkRepo(sqlDB)
	metaRepo := repo.NewMetadataRepo(sqlDB)
	chatRepo := repo.NewChatRepo(sqlDB)

	videoService := service.NewVideoService(sqlDB, videoRepo, chunkRepo, metaRepo, fetcher, p, store, cfg.Media.WorkDir)
	chatService := service.NewChatService(sqlDB, chatRepo, videoRepo, service.NewTemplateResponder(), videoService)
	codes, err := service.NewPasswordCodeService(service.NewEmailSender(cfg.Mail), time.Now)
	if err != nil {
		return nil, fmt.Errorf("init password codes: %w", err)
	}
	authService := service.NewAuthService(userRepo, codes, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	return &app{
		videos:   videoService,
		chat:     chatService,
		auth:     authService,
		codes:    codes,
		store:    store,
		users:    userRepo,
		videoRep: videoRepo,
	}, nil
}

func runServer(cfg *config.Config, sqlDB *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("transcribe", cfg.Transcribe.Provider),
		zap.String("fetch", cfg.Fetch.Provider),
		zap.Float64("chunk_window", cfg.Media.ChunkWindowSeconds),
	)
	a, err := buildApp(cfg, sqlDB)
	if err != nil {
		return err
	}

	deps := handler.RouterDeps{
		Auth:            handler.NewAuthHandler(a.auth),
		Videos:          handler.NewVideoHandler(a.videos, a.chat),
		Chat:            handler.NewChatHandler(a.chat),
		Files:           handler.NewFileHandler(a.store),
		JWTSecret:       []byte(cfg.JWTSecret),
		IngestRateLimit: time.Duration(cfg.IngestRateLimitSecond) * time.Second,
	}
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	cleanup := job.NewFailedVideoCleanupJob(a.videoRep, cfg.Media.WorkDir, time.Duration(cfg.Cleanup.MaxAgeHours)*time.Hour)
	if err := scheduler.AddJob(cleanup, cfg.Cleanup.Spec); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	if err := scheduler.AddJob(job.NewPasswordCodePurgeJob(a.codes), "*/5 * * * *"); err != nil {
		return fmt.Errorf("schedule code purge: %w", err)
	}
	scheduler.Start(ctx)
	_ = scheduler.Trigger(cleanup.Name())

	go func() {
		logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	a.videos.Wait()
	return nil
}

func runIngest(ctx context.Context, cfg *config.Config, sqlDB *sql.DB, email, url string) error {
	a, err := buildApp(cfg, sqlDB)
	if err != nil {
		return err
	}
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("load user %s: %w", email, err)
	}
	video, err := a.videos.IngestSync(ctx, user.ID, url)
	if err != nil {
		return err
	}
	meta, err := a.videos.GetMetadata(ctx, user.ID, video.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
