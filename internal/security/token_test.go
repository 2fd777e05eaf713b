package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, err := tm.GenerateAccessToken(42, "remy@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "remy@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, time.Minute).(*tokenManager)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateAccessToken(42, "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	other, err := NewTokenManager("another-secret-another-secret-xx", time.Hour).GenerateAccessToken(1, "")
	require.NoError(t, err)
	_, err = tm.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a correctly signed token of another type
	claims := UserClaims{UserID: 5, Type: "refresh", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tm.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}
