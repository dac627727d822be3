package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

const issuer = "guide-ai"

// Issue signs a session token whose subject is the user id.
func Issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty subject", appErr.ErrInvalidInput)
	}
	now := time.Now()
	claims := jwtlib.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature, issuer and expiry and returns the user id.
// Every failure wraps ErrUnauthorized.
func Verify(raw string, secret []byte) (string, error) {
	claims := &jwtlib.RegisteredClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims,
		func(*jwtlib.Token) (interface{}, error) { return secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", appErr.ErrUnauthorized)
	}
	return claims.Subject, nil
}
