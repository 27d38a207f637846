package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cosmetics-store/internal/domain"
)

var (
	// ErrInvalidToken indicates a token that failed signature or shape checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a well-formed token past its expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the identity assertion embedded in issued tokens. Validity is
// purely cryptographic and time based; nothing is stored server side.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// TokenService issues and verifies signed identity assertions using a
// process-wide HMAC secret. Rotating the secret invalidates every
// outstanding token.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a token service. ttl bounds the lifetime of every
// issued token.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token asserting the given user's identity and role.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string. Expiry is a hard cutoff with
// no clock-skew allowance.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
