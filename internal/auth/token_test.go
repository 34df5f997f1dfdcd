package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

func newTestTokens(t *testing.T, opts ...TokenOption) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("test-secret", DefaultTokenTTL, opts...)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tm := newTestTokens(t)

	for _, role := range domain.Roles() {
		before := time.Now()
		token, exp, err := tm.Issue(Subject{ID: "user-1", Role: role})
		require.NoError(t, err)

		claims, err := tm.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.ID)
		assert.Equal(t, role, claims.Role)
		assert.WithinDuration(t, before.Add(24*time.Hour), exp, 2*time.Second)
		assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
		assert.WithinDuration(t, before, claims.IssuedAt.Time, 2*time.Second)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-25 * time.Hour)
	issuer := newTestTokens(t, WithClock(func() time.Time { return past }))
	token, _, err := issuer.Issue(Subject{ID: "user-1", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	claims, err := newTestTokens(t).Verify(token)
	assert.Nil(t, claims)
	assert.Equal(t, ErrInvalidOrExpired, err)
}

func TestVerify_UniformErrors(t *testing.T) {
	tm := newTestTokens(t)
	valid, _, err := tm.Issue(Subject{ID: "user-1", Role: domain.RoleSchoolAdmin})
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Issue(Subject{ID: "user-1", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ID: "user-1", Role: domain.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"malformed": "not-a-token",
		"empty":     "",
		"tampered":  tampered,
		"foreign":   foreign,
		"alg none":  unsigned,
	} {
		claims, err := tm.Verify(token)
		assert.Nil(t, claims, name)
		assert.Equal(t, ErrInvalidOrExpired, err, name)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
