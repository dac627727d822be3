package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/pkg/dbutil"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

var videoFields = []string{"id", "user_id", "title", "source_url", "video_path", "chunked", "status", "error_kind", "error_msg", "ctime", "mtime"}

type VideoRepo struct {
	db dbutil.Executor
}

func NewVideoRepo(db *sql.DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// WithTx returns a repo bound to tx.
func (r *VideoRepo) WithTx(tx *sql.Tx) *VideoRepo {
	return &VideoRepo{db: tx}
}

func (r *VideoRepo) Create(ctx context.Context, video *model.Video) error {
	data := map[string]interface{}{
		"id":         video.ID,
		"user_id":    video.UserID,
		"title":      video.Title,
		"source_url": video.SourceURL,
		"video_path": video.VideoPath,
		"chunked":    video.Chunked,
		"status":     video.Status,
		"error_kind": video.ErrorKind,
		"error_msg":  video.ErrorMsg,
		"ctime":      video.Ctime,
		"mtime":      video.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("videos", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *VideoRepo) GetByID(ctx context.Context, userID, videoID string) (*model.Video, error) {
	return r.getOne(ctx, map[string]interface{}{"id": videoID, "user_id": userID})
}

// Get loads a video regardless of owner. Used by background work only.
func (r *VideoRepo) Get(ctx context.Context, videoID string) (*model.Video, error) {
	return r.getOne(ctx, map[string]interface{}{"id": videoID})
}

// GetLatestByURL returns the newest video the user ingested from sourceURL.
func (r *VideoRepo) GetLatestByURL(ctx context.Context, userID, sourceURL string) (*model.Video, error) {
	return r.getOne(ctx, map[string]interface{}{
		"user_id":    userID,
		"source_url": sourceURL,
		"_orderby":   "mtime desc, ctime desc",
		"_limit":     []uint{0, 1},
	})
}

func (r *VideoRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Video, error) {
	sqlStr, args, err := builder.BuildSelect("videos", where, videoFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanVideo(rows)
}

func (r *VideoRepo) ListByIDs(ctx context.Context, userID string, ids []string) (map[string]*model.Video, error) {
	if len(ids) == 0 {
		return map[string]*model.Video{}, nil
	}
	query := `SELECT id, user_id, title, source_url, video_path, chunked, status, error_kind, error_msg, ctime, mtime
		FROM videos WHERE user_id = ? AND id IN (?)`
	query, args, err := sqlx.In(query, userID, ids)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	result := make(map[string]*model.Video, len(ids))
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		result[video.ID] = video
	}
	return result, rows.Err()
}

// ListFailedBetween returns failed videos last touched in [from, to), oldest first.
func (r *VideoRepo) ListFailedBetween(ctx context.Context, from, to int64, limit uint) ([]*model.Video, error) {
	where := map[string]interface{}{
		"status":   model.VideoStatusFailed,
		"mtime >=": from,
		"mtime <":  to,
		"_orderby": "mtime asc, id asc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("videos", where, videoFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var videos []*model.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// ClaimProcessing moves a pending or failed video to processing. A video
// that is already processing or completed is not claimed and yields ErrConflict.
func (r *VideoRepo) ClaimProcessing(ctx context.Context, videoID string, mtime int64) error {
	where := map[string]interface{}{
		"id":        videoID,
		"status in": []interface{}{model.VideoStatusPending, model.VideoStatusFailed},
	}
	err := r.update(ctx, where, map[string]interface{}{
		"status":     model.VideoStatusProcessing,
		"error_kind": "",
		"error_msg":  "",
		"mtime":      mtime,
	})
	if appErr.IsNotFound(err) {
		return fmt.Errorf("%w: video %s is not claimable", appErr.ErrConflict, videoID)
	}
	return err
}

func (r *VideoRepo) MarkFailed(ctx context.Context, videoID, kind, msg string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": videoID}, map[string]interface{}{
		"status":     model.VideoStatusFailed,
		"error_kind": kind,
		"error_msg":  msg,
		"mtime":      mtime,
	})
}

// Complete records the final source location and flips the video to completed.
func (r *VideoRepo) Complete(ctx context.Context, videoID, title, videoPath string, chunked bool, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": videoID}, map[string]interface{}{
		"title":      title,
		"video_path": videoPath,
		"chunked":    chunked,
		"status":     model.VideoStatusCompleted,
		"error_kind": "",
		"error_msg":  "",
		"mtime":      mtime,
	})
}

// Delete removes a video row. Rows still referenced by chunks, metadata or
// chat threads are rejected with ErrConflict.
func (r *VideoRepo) Delete(ctx context.Context, userID, videoID string) error {
	where := map[string]interface{}{"id": videoID, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("videos", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsForeignKeyViolation(err) {
			return appErr.ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *VideoRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("videos", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func scanVideo(rows *sql.Rows) (*model.Video, error) {
	var v model.Video
	if err := rows.Scan(&v.ID, &v.UserID, &v.Title, &v.SourceURL, &v.VideoPath, &v.Chunked, &v.Status, &v.ErrorKind, &v.ErrorMsg, &v.Ctime, &v.Mtime); err != nil {
		return nil, err
	}
	return &v, nil
}
