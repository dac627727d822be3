package model

import (
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

type KeyFrame struct {
	Timestamp   string `json:"timestamp"`
	Frame       string `json:"frame"`
	Description string `json:"description"`
}

type TimestampNote struct {
	Time        string `json:"time"`
	Description string `json:"description"`
}

type ChatResponse struct {
	Response   string          `json:"response"`
	Reasoning  string          `json:"reasoning"`
	KeyFrames  []KeyFrame      `json:"keyFrames"`
	Timestamps []TimestampNote `json:"timestamps"`
}

// ConversationTurn is pending while Response is nil.
type ConversationTurn struct {
	Query    string        `json:"query"`
	Response *ChatResponse `json:"response"`
}

type ChatThread struct {
	ID      string             `json:"id"`
	VideoID string             `json:"video_id"`
	UserID  string             `json:"user_id"`
	Turns   []ConversationTurn `json:"turns"`
	Ctime   int64              `json:"ctime"`
	Mtime   int64              `json:"mtime"`
}

// AppendTurn adds a pending turn at the end and returns its index.
func (t *ChatThread) AppendTurn(query string) int {
	t.Turns = append(t.Turns, ConversationTurn{Query: query})
	return len(t.Turns) - 1
}

// AttachResponse fills the last turn. Earlier turns are never touched.
func (t *ChatThread) AttachResponse(resp *ChatResponse) (int, error) {
	if resp == nil {
		return 0, appErr.ErrInvalidInput
	}
	if len(t.Turns) == 0 {
		return 0, appErr.ErrNoPendingTurn
	}
	last := len(t.Turns) - 1
	if t.Turns[last].Response != nil {
		return 0, appErr.ErrNoPendingTurn
	}
	t.Turns[last].Response = resp
	return last, nil
}

func (t *ChatThread) LastMessage() string {
	if len(t.Turns) == 0 {
		return ""
	}
	return t.Turns[len(t.Turns)-1].Query
}
