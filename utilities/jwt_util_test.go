package utilities

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := m.Generate(42)
	require.NoError(t, err)

	id, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestJWTDefaultExpiry(t *testing.T) {
	assert.Equal(t, DefaultTokenExpiry, NewJWTManager("s", 0).Expiry())
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Generate(1)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).Generate(1)
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsMissingSubject(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
