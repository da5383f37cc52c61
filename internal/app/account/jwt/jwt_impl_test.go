package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	domain "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/jwt"
)

func testUtil(t *testing.T, ttl int) *JwtUtilImpl {
	t.Helper()
	util, err := NewJWTUtil(Config{
		SecretKey:  []byte("0123456789abcdef0123456789abcdef"),
		Algorithm:  domain.HS256,
		TTLMinutes: ttl,
	})
	require.NoError(t, err)
	return util
}

func requireReason(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, customErrors.IsInvalidToken(err))
	reason, ok := customErrors.TokenReason(err)
	require.True(t, ok)
	require.Equal(t, want, reason)
}

func TestJWTUtil_RoundTrip(t *testing.T) {
	util := testUtil(t, 30)
	claims := map[string]string{"sub": "alice", "username": "alice"}

	token, exp, err := util.Issue(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 2*time.Second)

	got, err := util.Validate(token)
	require.NoError(t, err)
	require.Equal(t, claims, got)
}

func TestJWTUtil_ZeroTTLIsExpired(t *testing.T) {
	util := testUtil(t, 0)

	token, _, err := util.Issue(map[string]string{"sub": "alice"})
	require.NoError(t, err)

	_, err = util.Validate(token)
	requireReason(t, err, customErrors.ReasonExpired)
}

func TestJWTUtil_ExpiresAfterTTL(t *testing.T) {
	util := testUtil(t, 5)
	issuedAt := time.Now()
	util.now = func() time.Time { return issuedAt }

	token, _, err := util.Issue(map[string]string{"sub": "alice"})
	require.NoError(t, err)

	util.now = func() time.Time { return issuedAt.Add(4 * time.Minute) }
	_, err = util.Validate(token)
	require.NoError(t, err)

	util.now = func() time.Time { return issuedAt.Add(6 * time.Minute) }
	_, err = util.Validate(token)
	requireReason(t, err, customErrors.ReasonExpired)
}

func TestJWTUtil_WrongKey(t *testing.T) {
	token, _, err := testUtil(t, 30).Issue(map[string]string{"sub": "alice"})
	require.NoError(t, err)

	other, err := NewJWTUtil(Config{SecretKey: []byte("another-secret"), Algorithm: domain.HS256, TTLMinutes: 30})
	require.NoError(t, err)

	_, err = other.Validate(token)
	requireReason(t, err, customErrors.ReasonBadSignature)
}

func TestJWTUtil_WrongAlgorithm(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	hs512, err := NewJWTUtil(Config{SecretKey: key, Algorithm: domain.HS512, TTLMinutes: 30})
	require.NoError(t, err)

	token, _, err := hs512.Issue(map[string]string{"sub": "alice"})
	require.NoError(t, err)

	_, err = testUtil(t, 30).Validate(token)
	requireReason(t, err, customErrors.ReasonBadSignature)
}

func TestJWTUtil_Malformed(t *testing.T) {
	util := testUtil(t, 30)

	for _, raw := range []string{"", "bad", "a.b.c"} {
		_, err := util.Validate(raw)
		requireReason(t, err, customErrors.ReasonMalformed)
	}
}

func TestJWTUtil_MissingExpiry(t *testing.T) {
	util := testUtil(t, 30)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).
		SignedString(util.secret)
	require.NoError(t, err)

	_, err = util.Validate(raw)
	requireReason(t, err, customErrors.ReasonMalformed)
}

func TestJWTUtil_ReservedClaims(t *testing.T) {
	util := testUtil(t, 30)
	for _, name := range []string{"iat", "exp", "nbf"} {
		_, _, err := util.Issue(map[string]string{name: "never"})
		require.True(t, customErrors.IsInvalidArgument(err), name)
	}
}

func TestJWTUtil_RegisteredStringClaimsRoundTrip(t *testing.T) {
	util := testUtil(t, 30)
	claims := map[string]string{"sub": "alice", "aud": "accounts", "iss": "accounts-service", "jti": "1"}

	token, _, err := util.Issue(claims)
	require.NoError(t, err)

	got, err := util.Validate(token)
	require.NoError(t, err)
	require.Equal(t, claims, got)
}

func TestNewJWTUtil_InvalidConfig(t *testing.T) {
	_, err := NewJWTUtil(Config{Algorithm: domain.HS256, TTLMinutes: 1})
	require.True(t, customErrors.IsInvalidArgument(err))

	_, err = NewJWTUtil(Config{SecretKey: []byte("k"), Algorithm: "RS256", TTLMinutes: 1})
	require.True(t, customErrors.IsInvalidArgument(err))
}
