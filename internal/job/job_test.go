package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/model"
)

type fakeLister struct {
	videos []*model.Video
	calls  [][2]int64
	err    error
}

func (f *fakeLister) ListFailedBetween(_ context.Context, from, to int64, limit uint) ([]*model.Video, error) {
	f.calls = append(f.calls, [2]int64{from, to})
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Video
	for _, v := range f.videos {
		if v.Mtime >= from && v.Mtime < to && uint(len(out)) < limit {
			out = append(out, v)
		}
	}
	return out, nil
}

func TestFailedVideoCleanupRemovesDirs(t *testing.T) {
	root := t.TempDir()
	stale := &model.Video{ID: "v1", UserID: "u1", Mtime: 100}
	fresh := &model.Video{ID: "v2", UserID: "u1", Mtime: 990}
	for _, v := range []*model.Video{stale, fresh} {
		dir := filepath.Join(root, v.UserID, v.ID)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "source.mp4"), []byte("x"), 0o644))
	}
	lister := &fakeLister{videos: []*model.Video{stale, fresh}}
	j := NewFailedVideoCleanupJob(lister, root, 100*time.Second)
	j.now = func() time.Time { return time.Unix(1000, 0) }

	require.NoError(t, j.Run(context.Background()))
	_, err := os.Stat(filepath.Join(root, "u1", "v1"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "u1", "v2"))
	require.NoError(t, err)
	require.Equal(t, int64(900), j.since)

	j.now = func() time.Time { return time.Unix(1200, 0) }
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, [2]int64{900, 1100}, lister.calls[len(lister.calls)-1])
	_, err = os.Stat(filepath.Join(root, "u1", "v2"))
	require.True(t, os.IsNotExist(err))
}

func TestFailedVideoCleanupKeepsWatermarkOnError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	j := NewFailedVideoCleanupJob(lister, t.TempDir(), time.Minute)
	require.Error(t, j.Run(context.Background()))
	require.Zero(t, j.since)
}

type countingPurger struct{ calls int }

func (c *countingPurger) Purge() int {
	c.calls++
	return 2
}

func TestPasswordCodePurgeJob(t *testing.T) {
	p := &countingPurger{}
	j := NewPasswordCodePurgeJob(p)
	require.Equal(t, "password_code_purge", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, 1, p.calls)
}
