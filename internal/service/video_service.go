package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sameepv21/guide-ai/internal/fetch"
	"github.com/sameepv21/guide-ai/internal/filestore"
	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/pipeline"
	"github.com/sameepv21/guide-ai/internal/pkg/dbutil"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
	"github.com/sameepv21/guide-ai/internal/pkg/timeutil"
	"github.com/sameepv21/guide-ai/internal/repo"
)

const maxErrorMsgLen = 1024

var videoURLPattern = regexp.MustCompile(`(?i)^https?://(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|localhost|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})(?::\d+)?(?:/?|[/?]\S+)$`)

// ValidateVideoURL accepts http(s) URLs with a domain, localhost or IPv4 host.
func ValidateVideoURL(raw string) error {
	if !videoURLPattern.MatchString(strings.TrimSpace(raw)) {
		return fmt.Errorf("%w: invalid video url", appErr.ErrInvalidInput)
	}
	return nil
}

// VideoPipeline turns a fetched source file into chunks and metadata.
type VideoPipeline interface {
	Run(ctx context.Context, videoID, sourcePath, workDir string) (*pipeline.Result, error)
}

type VideoService struct {
	db       *sql.DB
	videos   *repo.VideoRepo
	chunks   *repo.ChunkRepo
	metas    *repo.MetadataRepo
	fetcher  fetch.Fetcher
	pipeline VideoPipeline
	store    filestore.Store
	workDir  string
	wg       sync.WaitGroup
}

func NewVideoService(db *sql.DB, videos *repo.VideoRepo, chunks *repo.ChunkRepo, metas *repo.MetadataRepo,
	fetcher fetch.Fetcher, p VideoPipeline, store filestore.Store, workDir string) *VideoService {
	return &VideoService{
		db:       db,
		videos:   videos,
		chunks:   chunks,
		metas:    metas,
		fetcher:  fetcher,
		pipeline: p,
		store:    store,
		workDir:  workDir,
	}
}

// Ingest registers the video and processes it in the background. The
// returned video is pending; its status is polled through GetVideo.
func (s *VideoService) Ingest(ctx context.Context, userID, sourceURL string) (*model.Video, error) {
	video, reused, err := s.prepare(ctx, userID, sourceURL)
	if err != nil {
		return nil, err
	}
	if reused {
		return video, nil
	}
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.process(bg, video)
	}()
	return video, nil
}

// IngestSync processes the video before returning.
func (s *VideoService) IngestSync(ctx context.Context, userID, sourceURL string) (*model.Video, error) {
	video, reused, err := s.prepare(ctx, userID, sourceURL)
	if err != nil {
		return nil, err
	}
	if reused {
		return video, nil
	}
	if err := s.process(ctx, video); err != nil {
		return nil, err
	}
	return s.videos.Get(ctx, video.ID)
}

// EnsureVideo returns the user's completed video for sourceURL, ingesting it
// synchronously when none exists yet.
func (s *VideoService) EnsureVideo(ctx context.Context, userID, sourceURL string) (*model.Video, error) {
	if err := ValidateVideoURL(sourceURL); err != nil {
		return nil, err
	}
	latest, err := s.videos.GetLatestByURL(ctx, userID, strings.TrimSpace(sourceURL))
	if err == nil && latest.Status == model.VideoStatusCompleted {
		return latest, nil
	}
	if err != nil && !appErr.IsNotFound(err) {
		return nil, err
	}
	return s.IngestSync(ctx, userID, sourceURL)
}

// Reprocess reruns ingestion for a failed video. Videos that already carry
// metadata are rejected.
func (s *VideoService) Reprocess(ctx context.Context, userID, videoID string) (*model.Video, error) {
	video, err := s.videos.GetByID(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoMetadata(ctx, video); err != nil {
		return nil, err
	}
	if video.Status != model.VideoStatusFailed {
		return nil, fmt.Errorf("%w: video is %s", appErr.ErrConflict, video.Status)
	}
	if err := s.process(ctx, video); err != nil {
		return nil, err
	}
	return s.videos.Get(ctx, video.ID)
}

// Wait blocks until background ingestions finish.
func (s *VideoService) Wait() {
	s.wg.Wait()
}

func (s *VideoService) GetVideo(ctx context.Context, userID, videoID string) (*model.Video, error) {
	return s.videos.GetByID(ctx, userID, videoID)
}

func (s *VideoService) GetMetadata(ctx context.Context, userID, videoID string) (*model.VideoMetadata, error) {
	if _, err := s.videos.GetByID(ctx, userID, videoID); err != nil {
		return nil, err
	}
	return s.metas.GetByVideo(ctx, videoID)
}

func (s *VideoService) ListChunks(ctx context.Context, userID, videoID string) ([]model.VideoChunk, error) {
	if _, err := s.videos.GetByID(ctx, userID, videoID); err != nil {
		return nil, err
	}
	return s.chunks.ListByVideo(ctx, videoID)
}

// Delete removes a video that nothing references yet, plus its work dir.
func (s *VideoService) Delete(ctx context.Context, userID, videoID string) error {
	if err := s.videos.Delete(ctx, userID, videoID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.videoDir(userID, videoID)); err != nil {
		logutil.GetLogger(ctx).Warn("remove video dir failed", zap.String("video_id", videoID), zap.Error(err))
	}
	return nil
}

func (s *VideoService) prepare(ctx context.Context, userID, sourceURL string) (*model.Video, bool, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if err := ValidateVideoURL(sourceURL); err != nil {
		return nil, false, err
	}
	latest, err := s.videos.GetLatestByURL(ctx, userID, sourceURL)
	switch {
	case err == nil && latest.Status == model.VideoStatusCompleted:
		return nil, false, fmt.Errorf("%w: video %s already ingested", appErr.ErrDuplicateMetadata, latest.ID)
	case err == nil && (latest.Status == model.VideoStatusPending || latest.Status == model.VideoStatusProcessing):
		return latest, true, nil
	case err != nil && !appErr.IsNotFound(err):
		return nil, false, err
	}
	now := timeutil.NowUnix()
	video := &model.Video{
		ID:        newID(),
		UserID:    userID,
		SourceURL: sourceURL,
		Status:    model.VideoStatusPending,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, false, err
	}
	return video, false, nil
}

func (s *VideoService) ensureNoMetadata(ctx context.Context, video *model.Video) error {
	if video.Status == model.VideoStatusCompleted {
		return fmt.Errorf("%w: video %s already ingested", appErr.ErrDuplicateMetadata, video.ID)
	}
	exists, err := s.metas.ExistsByVideo(ctx, video.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: video %s already has metadata", appErr.ErrDuplicateMetadata, video.ID)
	}
	return nil
}

func (s *VideoService) videoDir(userID, videoID string) string {
	return VideoWorkDir(s.workDir, userID, videoID)
}

// VideoWorkDir is where a video's source, chunks and audio live under root.
func VideoWorkDir(root, userID, videoID string) string {
	return filepath.Join(root, userID, videoID)
}

// process claims the video, then fetches, runs the pipeline and persists
// everything in one transaction. A video another caller already claimed is
// left untouched. On failure of a claimed run the video is marked failed and
// its work dir removed.
func (s *VideoService) process(ctx context.Context, video *model.Video) error {
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", video.ID), zap.String("user_id", video.UserID))
	if err := s.ensureNoMetadata(ctx, video); err != nil {
		return err
	}
	if err := s.videos.ClaimProcessing(ctx, video.ID, timeutil.NowUnix()); err != nil {
		logger.Warn("video not claimed", zap.Error(err))
		return err
	}
	workDir := s.videoDir(video.UserID, video.ID)

	err := s.run(ctx, video, workDir)
	if err == nil {
		return nil
	}
	logger.Error("ingest video failed", zap.String("kind", appErr.Kind(err)), zap.Error(err))
	msg := err.Error()
	if len(msg) > maxErrorMsgLen {
		msg = msg[:maxErrorMsgLen]
	}
	if markErr := s.videos.MarkFailed(context.WithoutCancel(ctx), video.ID, appErr.Kind(err), msg, timeutil.NowUnix()); markErr != nil {
		logger.Error("mark video failed", zap.Error(markErr))
	}
	if rmErr := os.RemoveAll(workDir); rmErr != nil {
		logger.Warn("remove work dir failed", zap.Error(rmErr))
	}
	return err
}

func (s *VideoService) run(ctx context.Context, video *model.Video, workDir string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", video.ID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	src, err := s.fetcher.Fetch(ctx, video.SourceURL, workDir)
	if err != nil {
		return err
	}
	logger.Info("video fetched", zap.String("path", src.Path), zap.String("title", src.Title))

	res, err := s.pipeline.Run(ctx, video.ID, src.Path, workDir)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, video, src, res); err != nil {
		return err
	}
	s.archiveAudio(ctx, video.ID, res.Metadata)
	logger.Info("video ingested", zap.Int("chunks", len(res.Chunks)), zap.Bool("chunked", res.Chunked))
	return nil
}

func (s *VideoService) persist(ctx context.Context, video *model.Video, src *fetch.Source, res *pipeline.Result) error {
	now := timeutil.NowUnix()
	rows := make([]model.VideoChunk, 0, len(res.Chunks))
	for _, c := range res.Chunks {
		rows = append(rows, model.VideoChunk{
			VideoID:  video.ID,
			Ordinal:  c.Ordinal,
			StartSec: c.Start,
			EndSec:   c.End,
			Path:     c.Path,
			Ctime:    now,
		})
	}
	meta := res.Metadata
	meta.ID = newID()
	meta.VideoID = video.ID
	meta.Ctime = now
	meta.Mtime = now
	title := video.Title
	if title == "" {
		title = src.Title
	}
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.chunks.WithTx(tx).CreateBatch(ctx, rows); err != nil {
			return err
		}
		if err := s.videos.WithTx(tx).Complete(ctx, video.ID, title, src.Path, res.Chunked, now); err != nil {
			return err
		}
		return s.metas.WithTx(tx).Create(ctx, meta)
	})
}

// archiveAudio copies extracted audio into the file store. Failures are logged only.
func (s *VideoService) archiveAudio(ctx context.Context, videoID string, meta *model.VideoMetadata) {
	if s.store == nil || meta == nil {
		return
	}
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", videoID))
	for _, entry := range meta.Payload {
		var audioPath string
		switch {
		case entry.Chunk != nil:
			audioPath = entry.Chunk.AudioPath
		case entry.Legacy != nil:
			audioPath = entry.Legacy.AudioPath
		}
		if audioPath == "" {
			continue
		}
		key := ArchiveKey(videoID, audioPath)
		if err := filestore.SaveFile(ctx, s.store, key, audioPath); err != nil {
			logger.Warn("archive audio failed", zap.String("key", key), zap.Error(err))
			continue
		}
		logger.Debug("audio archived", zap.String("key", key), zap.String("url", s.store.URL(key, filesBaseURL)))
	}
}

const filesBaseURL = "/api/v1/files"

// ArchiveKey is the flat file store key for an artifact of videoID.
func ArchiveKey(videoID, path string) string {
	return videoID + "_" + filepath.Base(path)
}
