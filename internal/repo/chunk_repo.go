package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/pkg/dbutil"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type ChunkRepo struct {
	db dbutil.Executor
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) WithTx(tx *sql.Tx) *ChunkRepo {
	return &ChunkRepo{db: tx}
}

// CreateBatch inserts all chunk rows of one video in a single statement.
func (r *ChunkRepo) CreateBatch(ctx context.Context, chunks []model.VideoChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(chunks))
	for _, c := range chunks {
		data = append(data, map[string]interface{}{
			"video_id":  c.VideoID,
			"ordinal":   c.Ordinal,
			"start_sec": c.StartSec,
			"end_sec":   c.EndSec,
			"path":      c.Path,
			"ctime":     c.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("video_chunks", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ChunkRepo) ListByVideo(ctx context.Context, videoID string) ([]model.VideoChunk, error) {
	where := map[string]interface{}{
		"video_id": videoID,
		"_orderby": "ordinal asc",
	}
	sqlStr, args, err := builder.BuildSelect("video_chunks", where, []string{"video_id", "ordinal", "start_sec", "end_sec", "path", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chunks []model.VideoChunk
	for rows.Next() {
		var c model.VideoChunk
		if err := rows.Scan(&c.VideoID, &c.Ordinal, &c.StartSec, &c.EndSec, &c.Path, &c.Ctime); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
