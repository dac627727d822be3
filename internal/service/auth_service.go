package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sameepv21/guide-ai/internal/model"
	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
	"github.com/sameepv21/guide-ai/internal/pkg/jwt"
	"github.com/sameepv21/guide-ai/internal/pkg/password"
	"github.com/sameepv21/guide-ai/internal/pkg/timeutil"
	"github.com/sameepv21/guide-ai/internal/repo"
)

type AuthService struct {
	users     *repo.UserRepo
	codes     *PasswordCodeService
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *repo.UserRepo, codes *PasswordCodeService, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, codes: codes, jwtSecret: secret, jwtTTL: ttl}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := jwt.Issue(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Verify(user.PasswordHash, plainPassword); err != nil {
		return nil, "", err
	}
	token, err := jwt.Issue(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) (*model.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(firstName), strings.TrimSpace(lastName), timeutil.NowUnix()); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// RequestPasswordCode mails a one-time code to the user's address.
func (s *AuthService) RequestPasswordCode(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.codes.Send(ctx, user.Email)
}

// ChangePassword replaces the password once code matches the mailed one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, code, newPassword string) error {
	if err := password.Validate(newPassword); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.codes.Verify(ctx, user.Email, code); err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash, timeutil.NowUnix())
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", appErr.ErrInvalidInput)
	}
	return email, nil
}
