package utilities

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTokenExpiry applies when no session timeout is configured.
const DefaultTokenExpiry = 480 * time.Minute

// Claims carries the organization id as the token subject.
type Claims struct {
	OrganizationID uint `json:"organization_id"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates HS256 organization tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &JWTManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Expiry is the lifetime of issued tokens.
func (m *JWTManager) Expiry() time.Duration {
	return m.expiry
}

// Generate issues a token for the organization.
func (m *JWTManager) Generate(orgID uint) (string, error) {
	now := m.now()
	claims := &Claims{
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(orgID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry and returns the organization id.
func (m *JWTManager) Validate(tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
