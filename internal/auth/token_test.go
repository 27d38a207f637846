package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmetics-store/internal/domain"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService("test-secret-key-at-least-32-chars", ttl)
}

func testUser() *domain.User {
	return &domain.User{
		ID:       42,
		Username: "amy",
		Email:    "a@x.com",
		Role:     domain.RoleCustomer,
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(24 * time.Hour)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "amy", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenService_ExpiredTokenFails(t *testing.T) {
	svc := newTestTokenService(-time.Minute)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_WrongSecretFails(t *testing.T) {
	issuer := newTestTokenService(time.Hour)
	verifier := NewTokenService("a-completely-different-secret-key", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_GarbageFails(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenService_TamperedPayloadFails(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
