package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/pkg/dbutil"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
	"github.com/sameepv21/guide-ai/internal/pkg/timeutil"
	"github.com/sameepv21/guide-ai/internal/repo"
)

// VideoSource resolves a URL to a completed video, ingesting it if needed.
type VideoSource interface {
	EnsureVideo(ctx context.Context, userID, sourceURL string) (*model.Video, error)
}

type ChatService struct {
	db        *sql.DB
	chats     *repo.ChatRepo
	videos    *repo.VideoRepo
	responder Responder
	source    VideoSource
}

func NewChatService(db *sql.DB, chats *repo.ChatRepo, videos *repo.VideoRepo, responder Responder, source VideoSource) *ChatService {
	return &ChatService{db: db, chats: chats, videos: videos, responder: responder, source: source}
}

type AskResult struct {
	ThreadID string              `json:"chatId"`
	VideoID  string              `json:"videoId"`
	Turn     int                 `json:"turn"`
	Response *model.ChatResponse `json:"response"`
}

type ThreadSummary struct {
	ID           string                   `json:"id"`
	VideoID      string                   `json:"video_id"`
	VideoURL     string                   `json:"video_url"`
	VideoTitle   string                   `json:"video_title"`
	LastMessage  string                   `json:"last_message"`
	UpdatedAt    int64                    `json:"updated_at"`
	MessageCount int                      `json:"message_count"`
	Turns        []model.ConversationTurn `json:"turns"`
}

// StartThread opens a thread on an owned video with one pending turn.
func (s *ChatService) StartThread(ctx context.Context, userID, videoID, query string) (*model.ChatThread, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", appErr.ErrInvalidInput)
	}
	if _, err := s.videos.GetByID(ctx, userID, videoID); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	thread := &model.ChatThread{
		ID:      newID(),
		VideoID: videoID,
		UserID:  userID,
		Ctime:   now,
		Mtime:   now,
	}
	thread.AppendTurn(query)
	if err := s.chats.Create(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// AppendTurn adds a pending turn and returns its index.
func (s *ChatService) AppendTurn(ctx context.Context, userID, threadID, query string) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, fmt.Errorf("%w: query is required", appErr.ErrInvalidInput)
	}
	var index int
	err := s.mutate(ctx, userID, threadID, func(thread *model.ChatThread) error {
		index = thread.AppendTurn(query)
		return nil
	})
	return index, err
}

// AttachResponse answers the last turn of the thread.
func (s *ChatService) AttachResponse(ctx context.Context, userID, threadID string, resp *model.ChatResponse) (int, error) {
	var index int
	err := s.mutate(ctx, userID, threadID, func(thread *model.ChatThread) error {
		var err error
		index, err = thread.AttachResponse(resp)
		return err
	})
	return index, err
}

func (s *ChatService) GetThread(ctx context.Context, userID, threadID string) (*model.ChatThread, error) {
	thread, err := s.chats.GetByID(ctx, userID, threadID)
	if appErr.IsNotFound(err) {
		return nil, appErr.ErrThreadNotFound
	}
	return thread, err
}

func (s *ChatService) ListThreads(ctx context.Context, userID string) ([]*model.ChatThread, error) {
	return s.chats.ListByUser(ctx, userID, 0, 0)
}

// History summarizes the user's threads, most recently updated first.
func (s *ChatService) History(ctx context.Context, userID string) ([]ThreadSummary, error) {
	threads, err := s.ListThreads(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(threads))
	seen := make(map[string]struct{}, len(threads))
	for _, t := range threads {
		if _, ok := seen[t.VideoID]; ok {
			continue
		}
		seen[t.VideoID] = struct{}{}
		ids = append(ids, t.VideoID)
	}
	videos, err := s.videos.ListByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ThreadSummary, 0, len(threads))
	for _, t := range threads {
		item := ThreadSummary{
			ID:           t.ID,
			VideoID:      t.VideoID,
			LastMessage:  t.LastMessage(),
			UpdatedAt:    t.Mtime,
			MessageCount: len(t.Turns),
			Turns:        t.Turns,
		}
		if v, ok := videos[t.VideoID]; ok {
			item.VideoURL = v.SourceURL
			item.VideoTitle = v.Title
		}
		out = append(out, item)
	}
	return out, nil
}

// Ask records query on the video's thread and answers it. An empty
// threadID starts a new thread.
func (s *ChatService) Ask(ctx context.Context, userID, videoID, threadID, query string) (*AskResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", appErr.ErrInvalidInput)
	}
	video, err := s.videos.GetByID(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if err := requireCompleted(video); err != nil {
		return nil, err
	}
	if threadID == "" {
		return s.startAnswered(ctx, video, query)
	}
	return s.answerOn(ctx, video, threadID, query)
}

// Process handles the combined flow: continue chatID when it exists,
// otherwise resolve videoURL and start a new thread.
func (s *ChatService) Process(ctx context.Context, userID, videoURL, query, chatID string) (*AskResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", appErr.ErrInvalidInput)
	}
	if videoURL != "" {
		if err := ValidateVideoURL(videoURL); err != nil {
			return nil, err
		}
	}
	if chatID != "" {
		thread, err := s.GetThread(ctx, userID, chatID)
		switch {
		case err == nil:
			video, err := s.videos.GetByID(ctx, userID, thread.VideoID)
			if err != nil {
				return nil, err
			}
			if err := requireCompleted(video); err != nil {
				return nil, err
			}
			return s.answerOn(ctx, video, thread.ID, query)
		case !errors.Is(err, appErr.ErrThreadNotFound):
			return nil, err
		}
		logutil.GetLogger(ctx).Info("chat not found, starting new thread", zap.String("chat_id", chatID))
	}
	if videoURL == "" {
		return nil, fmt.Errorf("%w: videoUrl is required", appErr.ErrInvalidInput)
	}
	video, err := s.source.EnsureVideo(ctx, userID, videoURL)
	if err != nil {
		return nil, err
	}
	if err := requireCompleted(video); err != nil {
		return nil, err
	}
	return s.startAnswered(ctx, video, query)
}

func requireCompleted(video *model.Video) error {
	if video.Status != model.VideoStatusCompleted {
		return fmt.Errorf("%w: video is %s", appErr.ErrConflict, video.Status)
	}
	return nil
}

// startAnswered creates a thread whose first turn is already answered.
func (s *ChatService) startAnswered(ctx context.Context, video *model.Video, query string) (*AskResult, error) {
	resp, err := s.responder.Respond(ctx, video, query)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	thread := &model.ChatThread{
		ID:      newID(),
		VideoID: video.ID,
		UserID:  video.UserID,
		Ctime:   now,
		Mtime:   now,
	}
	thread.AppendTurn(query)
	index, err := thread.AttachResponse(resp)
	if err != nil {
		return nil, err
	}
	if err := s.chats.Create(ctx, thread); err != nil {
		return nil, err
	}
	return &AskResult{ThreadID: thread.ID, VideoID: video.ID, Turn: index, Response: resp}, nil
}

// answerOn appends query to the thread, answers it and stores both under
// one row lock, so concurrent asks on a thread are finalized in order.
func (s *ChatService) answerOn(ctx context.Context, video *model.Video, threadID, query string) (*AskResult, error) {
	var (
		index int
		resp  *model.ChatResponse
	)
	err := s.mutate(ctx, video.UserID, threadID, func(thread *model.ChatThread) error {
		if thread.VideoID != video.ID {
			return fmt.Errorf("%w: thread belongs to another video", appErr.ErrInvalidInput)
		}
		appended := thread.AppendTurn(query)
		var err error
		resp, err = s.responder.Respond(ctx, video, query)
		if err != nil {
			return err
		}
		index, err = thread.AttachResponse(resp)
		if err != nil {
			return err
		}
		if index != appended {
			return appErr.ErrNoPendingTurn
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &AskResult{ThreadID: threadID, VideoID: video.ID, Turn: index, Response: resp}, nil
}

// mutate loads the thread under a row lock, applies fn and writes the turns back.
func (s *ChatService) mutate(ctx context.Context, userID, threadID string, fn func(thread *model.ChatThread) error) error {
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		chats := s.chats.WithTx(tx)
		thread, err := chats.GetForUpdate(ctx, userID, threadID)
		if err != nil {
			if appErr.IsNotFound(err) {
				return appErr.ErrThreadNotFound
			}
			return err
		}
		if err := fn(thread); err != nil {
			return err
		}
		return chats.UpdateTurns(ctx, thread.ID, thread.Turns, timeutil.NowUnix())
	})
}
