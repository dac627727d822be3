package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const maxStderrTail = 512

// Runner executes an external binary and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct {
	timeout time.Duration
}

// NewRunner returns a Runner that kills commands running longer than timeout.
func NewRunner(timeout time.Duration) Runner {
	return &execRunner{timeout: timeout}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s: %w", name, r.timeout, ctxErr)
		}
		return nil, fmt.Errorf("%s cancelled: %w", name, ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, tail(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrTail {
		return s[len(s)-maxStderrTail:]
	}
	return s
}
