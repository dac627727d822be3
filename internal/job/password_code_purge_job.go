package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type CodePurger interface {
	Purge() int
}

type PasswordCodePurgeJob struct {
	codes CodePurger
}

func NewPasswordCodePurgeJob(codes CodePurger) *PasswordCodePurgeJob {
	return &PasswordCodePurgeJob{codes: codes}
}

func (j *PasswordCodePurgeJob) Name() string {
	return "password_code_purge"
}

func (j *PasswordCodePurgeJob) Run(ctx context.Context) error {
	if j.codes == nil {
		return nil
	}
	if n := j.codes.Purge(); n > 0 {
		logutil.GetLogger(ctx).Debug("expired password codes purged", zap.Int("count", n))
	}
	return nil
}
