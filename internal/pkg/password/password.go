package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

const (
	MinLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxBytes = 72
)

// Validate reports ErrInvalidInput for passwords bcrypt cannot hash faithfully.
func Validate(plain string) error {
	if len(plain) < MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", appErr.ErrInvalidInput, MinLength)
	}
	if len(plain) > maxBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", appErr.ErrInvalidInput, maxBytes)
	}
	return nil
}

func Hash(plain string) (string, error) {
	if err := Validate(plain); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify returns ErrUnauthorized when plain does not match hash.
func Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return appErr.ErrUnauthorized
	}
	return nil
}
