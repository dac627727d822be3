package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
	"github.com/sameepv21/guide-ai/internal/pkg/kvstore"
)

const (
	PasswordCodeTTL     = 300 * time.Second
	passwordCodeEntries = 4096
)

// PasswordCodeService issues short-lived codes that authorize a password change.
type PasswordCodeService struct {
	codes  *kvstore.Store[string]
	sender EmailSender
}

func NewPasswordCodeService(sender EmailSender, now func() time.Time) (*PasswordCodeService, error) {
	codes, err := kvstore.New[string](passwordCodeEntries, PasswordCodeTTL, now)
	if err != nil {
		return nil, err
	}
	return &PasswordCodeService{codes: codes, sender: sender}, nil
}

func (s *PasswordCodeService) Send(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return appErr.ErrInvalidInput
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	s.codes.Set(email, code)
	body := fmt.Sprintf("Your password change code is %s. It expires in %d minutes.", code, int(PasswordCodeTTL/time.Minute))
	if err := s.sender.Send(email, "Password change code", body); err != nil {
		s.codes.Delete(email)
		logutil.GetLogger(ctx).Error("send password code failed", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

// Verify consumes the code for email. Expired, unknown or mismatched codes
// fail with ErrInvalidInput.
func (s *PasswordCodeService) Verify(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	stored, ok := s.codes.Get(email)
	if !ok || code == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return fmt.Errorf("%w: invalid or expired code", appErr.ErrInvalidInput)
	}
	s.codes.Delete(email)
	return nil
}

// Purge drops expired codes and reports how many were removed.
func (s *PasswordCodeService) Purge() int {
	return s.codes.Purge()
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
