package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/pkg/dbutil"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type MetadataRepo struct {
	db dbutil.Executor
}

func NewMetadataRepo(db *sql.DB) *MetadataRepo {
	return &MetadataRepo{db: db}
}

func (r *MetadataRepo) WithTx(tx *sql.Tx) *MetadataRepo {
	return &MetadataRepo{db: tx}
}

// Create stores the metadata record. A second record for the same video is
// rejected with ErrDuplicateMetadata.
func (r *MetadataRepo) Create(ctx context.Context, meta *model.VideoMetadata) error {
	payload, err := json.Marshal(meta.Payload)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":                  meta.ID,
		"video_id":            meta.VideoID,
		"payload":             string(payload),
		"transcription_model": meta.TranscriptionModel,
		"processing_duration": meta.ProcessingDuration,
		"ctime":               meta.Ctime,
		"mtime":               meta.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("video_metadata", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrDuplicateMetadata
		}
		return err
	}
	return nil
}

func (r *MetadataRepo) GetByVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	where := map[string]interface{}{"video_id": videoID}
	sqlStr, args, err := builder.BuildSelect("video_metadata", where, []string{"id", "video_id", "payload", "transcription_model", "processing_duration", "ctime", "mtime"})
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
	var meta model.VideoMetadata
	var payload []byte
	if err := rows.Scan(&meta.ID, &meta.VideoID, &payload, &meta.TranscriptionModel, &meta.ProcessingDuration, &meta.Ctime, &meta.Mtime); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &meta.Payload); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *MetadataRepo) ExistsByVideo(ctx context.Context, videoID string) (bool, error) {
	const query = `SELECT 1 FROM video_metadata WHERE video_id = $1`
	var one int
	err := r.db.QueryRowContext(ctx, query, videoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
