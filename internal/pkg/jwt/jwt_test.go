package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	appErr "github.com/sameepv21/guide-ai/internal/pkg/errors"
)

func TestIssueAndVerify(t *testing.T) {
	secret := []byte("secret")
	token, err := Issue("u1", secret, time.Hour)
	require.NoError(t, err)

	userID, err := Verify(token, secret)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)

	_, err = Verify(token, []byte("other"))
	require.ErrorIs(t, err, appErr.ErrUnauthorized)

	_, err = Issue("", secret, time.Hour)
	require.ErrorIs(t, err, appErr.ErrInvalidInput)
}

func TestVerifyRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	token, err := Issue("u1", secret, -time.Minute)
	require.NoError(t, err)
	_, err = Verify(token, secret)
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	secret := []byte("secret")
	exp := jwtlib.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		method jwtlib.SigningMethod
		key    interface{}
		claims jwtlib.RegisteredClaims
	}{
		{"other issuer", jwtlib.SigningMethodHS256, secret, jwtlib.RegisteredClaims{Issuer: "someone-else", Subject: "u1", ExpiresAt: exp}},
		{"no expiry", jwtlib.SigningMethodHS256, secret, jwtlib.RegisteredClaims{Issuer: issuer, Subject: "u1"}},
		{"no subject", jwtlib.SigningMethodHS256, secret, jwtlib.RegisteredClaims{Issuer: issuer, ExpiresAt: exp}},
		{"hs512", jwtlib.SigningMethodHS512, secret, jwtlib.RegisteredClaims{Issuer: issuer, Subject: "u1", ExpiresAt: exp}},
		{"unsigned", jwtlib.SigningMethodNone, jwtlib.UnsafeAllowNoneSignatureType, jwtlib.RegisteredClaims{Issuer: issuer, Subject: "u1", ExpiresAt: exp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := jwtlib.NewWithClaims(tt.method, tt.claims).SignedString(tt.key)
			require.NoError(t, err)
			_, err = Verify(raw, secret)
			require.ErrorIs(t, err, appErr.ErrUnauthorized)
		})
	}
}
