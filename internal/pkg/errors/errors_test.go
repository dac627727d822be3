package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "direct", err: ErrNoPendingTurn, want: "NoPendingTurn"},
		{name: "wrapped", err: fmt.Errorf("%w: chunk 3: exit status 1", ErrSegmentationFailed), want: "SegmentationFailed"},
		{
			name: "wrapped with cause",
			err:  fmt.Errorf("%w: ffprobe: %w", ErrMediaUnreadable, context.DeadlineExceeded),
			want: "MediaUnreadable",
		},
		{name: "legacy invalid", err: ErrInvalid, want: "InvalidInput"},
		{name: "unknown", err: fmt.Errorf("boom"), want: "Internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Kind(tt.err))
		})
	}
}
