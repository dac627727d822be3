package job

import (
	"context"
	"os"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/service"
)

const failedVideoBatch = 200

type FailedVideoLister interface {
	ListFailedBetween(ctx context.Context, from, to int64, limit uint) ([]*model.Video, error)
}

// FailedVideoCleanupJob removes work directories left behind by failed
// videos. Each run picks up where the previous one stopped.
type FailedVideoCleanupJob struct {
	videos  FailedVideoLister
	workDir string
	maxAge  time.Duration
	since   int64
	now     func() time.Time
}

func NewFailedVideoCleanupJob(videos FailedVideoLister, workDir string, maxAge time.Duration) *FailedVideoCleanupJob {
	return &FailedVideoCleanupJob{videos: videos, workDir: workDir, maxAge: maxAge, now: time.Now}
}

func (j *FailedVideoCleanupJob) Name() string {
	return "failed_video_cleanup"
}

func (j *FailedVideoCleanupJob) Run(ctx context.Context) error {
	if j.videos == nil || j.workDir == "" {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	cutoff := j.now().Add(-maxAge).Unix()
	logger := logutil.GetLogger(ctx)
	from := j.since
	removed := 0
	for {
		videos, err := j.videos.ListFailedBetween(ctx, from, cutoff, failedVideoBatch)
		if err != nil {
			return err
		}
		for _, v := range videos {
			dir := service.VideoWorkDir(j.workDir, v.UserID, v.ID)
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn("remove failed video dir", zap.String("video_id", v.ID), zap.Error(err))
				continue
			}
			removed++
		}
		if len(videos) < failedVideoBatch {
			break
		}
		next := videos[len(videos)-1].Mtime
		if next == from {
			next++
		}
		from = next
	}
	j.since = cutoff
	if removed > 0 {
		logger.Info("failed video dirs removed", zap.Int("count", removed))
	}
	return nil
}
