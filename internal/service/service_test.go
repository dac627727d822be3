package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sameepv21/guide-ai/internal/model"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

func TestValidateVideoURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://example.com", true},
		{"http://localhost:8080/video.mp4", true},
		{"https://10.0.0.12/clip", true},
		{"  https://youtu.be/abc  ", true},
		{"ftp://example.com/v.mp4", false},
		{"example.com/video", false},
		{"https://", false},
		{"https://exa mple.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateVideoURL(tt.url)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, appErr.ErrInvalidInput))
		})
	}
}

func TestTemplateResponderEchoesQuery(t *testing.T) {
	resp, err := NewTemplateResponder().Respond(context.Background(), &model.Video{ID: "v"}, "what happens at the end?")
	require.NoError(t, err)
	require.Contains(t, resp.Response, "'what happens at the end?'")
	require.NotEmpty(t, resp.Reasoning)
	require.Len(t, resp.KeyFrames, 3)
	require.Equal(t, "00:15", resp.KeyFrames[0].Timestamp)
	require.Len(t, resp.Timestamps, 4)
	require.Equal(t, "01:30 - 02:00", resp.Timestamps[3].Time)
}

func TestArchiveKeyIsFlat(t *testing.T) {
	require.Equal(t, "vid_chunk_0002.mp3", ArchiveKey("vid", "/data/u/vid/chunks/chunk_0002.mp3"))
}

func TestNormalizeEmail(t *testing.T) {
	email, err := normalizeEmail("  Ada@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", email)
	_, err = normalizeEmail("Ada <ada@example.com>")
	require.True(t, errors.Is(err, appErr.ErrInvalidInput))
	_, err = normalizeEmail("nope")
	require.True(t, errors.Is(err, appErr.ErrInvalidInput))
}

func TestNewIDIsUnique(t *testing.T) {
	a, b := newID(), newID()
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
}

type captureSender struct {
	mu   sync.Mutex
	to   []string
	body []string
	err  error
}

func (s *captureSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.body = append(s.body, body)
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func TestPasswordCodeLifecycle(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	sender := &captureSender{}
	svc, err := NewPasswordCodeService(sender, clock)
	require.NoError(t, err)

	require.NoError(t, svc.Send(context.Background(), "Ada@example.com"))
	require.Equal(t, []string{"ada@example.com"}, sender.to)
	code := codePattern.FindStringSubmatch(sender.body[0])[1]

	require.Error(t, svc.Verify(context.Background(), "ada@example.com", "000000x"))
	require.NoError(t, svc.Verify(context.Background(), "ADA@example.com", code))
	require.Error(t, svc.Verify(context.Background(), "ada@example.com", code), "codes are single use")

	require.NoError(t, svc.Send(context.Background(), "ada@example.com"))
	code = codePattern.FindStringSubmatch(sender.body[1])[1]
	now = now.Add(PasswordCodeTTL)
	err = svc.Verify(context.Background(), "ada@example.com", code)
	require.True(t, errors.Is(err, appErr.ErrInvalidInput))
}

func TestPasswordCodeSendFailureForgetsCode(t *testing.T) {
	sender := &captureSender{err: fmt.Errorf("smtp down")}
	svc, err := NewPasswordCodeService(sender, time.Now)
	require.NoError(t, err)
	require.Error(t, svc.Send(context.Background(), "ada@example.com"))
	require.Equal(t, 0, svc.codes.Len())
	require.True(t, errors.Is(svc.Send(context.Background(), " "), appErr.ErrInvalidInput))
}

func TestPasswordCodePurge(t *testing.T) {
	now := time.Unix(1700000000, 0)
	svc, err := NewPasswordCodeService(&captureSender{}, func() time.Time { return now })
	require.NoError(t, err)
	require.NoError(t, svc.Send(context.Background(), "a@example.com"))
	require.NoError(t, svc.Send(context.Background(), "b@example.com"))
	require.Equal(t, 0, svc.Purge())
	now = now.Add(PasswordCodeTTL + time.Second)
	require.Equal(t, 2, svc.Purge())
}
