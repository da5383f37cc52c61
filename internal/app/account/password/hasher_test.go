package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	domain "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/password"
)

func fastArgon(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(Config{Algorithm: domain.Argon2id, WorkFactor: 1, MemoryKiB: 1024, Parallelism: 1})
	require.NoError(t, err)
	return h
}

func TestHasher_RoundTrip(t *testing.T) {
	h := fastArgon(t)

	for _, pw := range []string{"pw123", "Aa1aaaaa", "пароль", strings.Repeat("x", 200)} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		require.NotContains(t, hash, pw)

		ok, err := h.Verify(hash, pw)
		require.NoError(t, err)
		require.True(t, ok, "password %q must verify", pw)
	}
}

func TestHasher_Mismatch(t *testing.T) {
	h := fastArgon(t)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)

	ok, err := h.Verify(hash, "pw124")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasher_SaltedOutput(t *testing.T) {
	h := fastArgon(t)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHasher_EncodingErrors(t *testing.T) {
	h := fastArgon(t)

	_, err := h.Hash("")
	require.True(t, customErrors.IsEncoding(err))

	_, err = h.Hash(string([]byte{0xff, 0xfe}))
	require.True(t, customErrors.IsEncoding(err))

	_, err = h.Verify("not-a-hash", "pw")
	require.True(t, customErrors.IsEncoding(err))

	_, err = h.Verify("$argon2id$v=19$broken", "pw")
	require.True(t, customErrors.IsEncoding(err))
}

func TestHasher_Bcrypt(t *testing.T) {
	h, err := NewHasher(Config{Algorithm: domain.Bcrypt, WorkFactor: bcrypt.MinCost})
	require.NoError(t, err)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2a$"))

	ok, err := h.Verify(hash, "pw123")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify(hash, "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = h.Hash(strings.Repeat("x", 73))
	require.True(t, customErrors.IsEncoding(err))
}

func TestHasher_VerifiesLegacyBcryptWhenConfiguredForArgon(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	require.NoError(t, err)

	h := fastArgon(t)
	ok, err := h.Verify(string(legacy), "pw123")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHasher_Pepper(t *testing.T) {
	peppered, err := NewHasher(Config{WorkFactor: 1, MemoryKiB: 1024, Parallelism: 1, Pepper: "pepper"})
	require.NoError(t, err)

	hash, err := peppered.Hash("pw123")
	require.NoError(t, err)

	ok, err := fastArgon(t).Verify(hash, "pw123")
	require.NoError(t, err)
	require.False(t, ok, "hash made with a pepper must not verify without it")
}

func TestNewHasher_InvalidConfig(t *testing.T) {
	_, err := NewHasher(Config{Algorithm: domain.Bcrypt, WorkFactor: 2})
	require.True(t, customErrors.IsInvalidArgument(err))

	_, err = NewHasher(Config{Algorithm: "md5"})
	require.True(t, customErrors.IsInvalidArgument(err))
}
