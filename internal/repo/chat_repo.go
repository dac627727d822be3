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

var chatFields = []string{"id", "video_id", "user_id", "turns", "ctime", "mtime"}

type ChatRepo struct {
	db dbutil.Executor
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) WithTx(tx *sql.Tx) *ChatRepo {
	return &ChatRepo{db: tx}
}

func (r *ChatRepo) Create(ctx context.Context, thread *model.ChatThread) error {
	turns, err := encodeTurns(thread.Turns)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":       thread.ID,
		"video_id": thread.VideoID,
		"user_id":  thread.UserID,
		"turns":    turns,
		"ctime":    thread.Ctime,
		"mtime":    thread.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_threads", []map[string]interface{}{data})
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

func (r *ChatRepo) GetByID(ctx context.Context, userID, threadID string) (*model.ChatThread, error) {
	where := map[string]interface{}{"id": threadID, "user_id": userID}
	sqlStr, args, err := builder.BuildSelect("chat_threads", where, chatFields)
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
	return scanThread(rows)
}

// GetForUpdate locks the thread row until the surrounding transaction ends.
func (r *ChatRepo) GetForUpdate(ctx context.Context, userID, threadID string) (*model.ChatThread, error) {
	const query = `SELECT id, video_id, user_id, turns, ctime, mtime FROM chat_threads WHERE id = $1 AND user_id = $2 FOR UPDATE`
	rows, err := r.db.QueryContext(ctx, query, threadID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanThread(rows)
}

func (r *ChatRepo) UpdateTurns(ctx context.Context, threadID string, turns []model.ConversationTurn, mtime int64) error {
	encoded, err := encodeTurns(turns)
	if err != nil {
		return err
	}
	where := map[string]interface{}{"id": threadID}
	update := map[string]interface{}{
		"turns": encoded,
		"mtime": mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("chat_threads", where, update)
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

// ListByUser returns the user's threads, most recently updated first. Ties fall back
// to creation time and id so pages never overlap.
func (r *ChatRepo) ListByUser(ctx context.Context, userID string, limit, offset uint) ([]*model.ChatThread, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "mtime desc, ctime desc, id desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("chat_threads", where, chatFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var threads []*model.ChatThread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, rows.Err()
}

func encodeTurns(turns []model.ConversationTurn) (string, error) {
	if turns == nil {
		turns = []model.ConversationTurn{}
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func scanThread(rows *sql.Rows) (*model.ChatThread, error) {
	var thread model.ChatThread
	var turns []byte
	if err := rows.Scan(&thread.ID, &thread.VideoID, &thread.UserID, &turns, &thread.Ctime, &thread.Mtime); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(turns, &thread.Turns); err != nil {
		return nil, err
	}
	if thread.Turns == nil {
		thread.Turns = []model.ConversationTurn{}
	}
	return &thread, nil
}
