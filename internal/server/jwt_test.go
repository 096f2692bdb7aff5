package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func TestJWTService_RoundTrip(t *testing.T) {
	service := NewJWTService(testSecret, time.Hour)

	token, err := service.GenerateToken()
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.GetSubject())
	assert.Equal(t, "salon-copy", claims.Issuer)
}

func TestJWTService_Expired(t *testing.T) {
	service := NewJWTService(testSecret, time.Minute)
	token, err := service.GenerateToken()
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := NewJWTService("other-secret", time.Hour).GenerateToken()
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_RejectsOtherSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &(&Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: adminSubject,
		Issuer:  tokenIssuer,
	}}).RegisteredClaims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Malformed(t *testing.T) {
	service := NewJWTService(testSecret, time.Hour)

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}
