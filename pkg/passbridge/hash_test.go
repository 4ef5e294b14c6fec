package passbridge_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenneTech/nest-server-sub004/pkg/passbridge"
)

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestNormalizePassword(t *testing.T) {
	t.Parallel()

	digest := sha256hex("secret")

	assert.Equal(t, digest, passbridge.NormalizePassword("secret"))
	assert.Equal(t, digest, passbridge.NormalizePassword(digest), "already-hashed values pass through")
	assert.Equal(t,
		passbridge.NormalizePassword("secret"),
		passbridge.NormalizePassword(passbridge.NormalizePassword("secret")),
		"normalization is idempotent")
}

func TestLegacyHash_DualFormCompatibility(t *testing.T) {
	t.Parallel()

	hash, err := passbridge.LegacyHash("correct horse battery staple")
	require.NoError(t, err)

	// Clients may present either the raw password or its digest.
	assert.True(t, passbridge.VerifyLegacy("correct horse battery staple", hash))
	assert.True(t, passbridge.VerifyLegacy(sha256hex("correct horse battery staple"), hash))
	assert.False(t, passbridge.VerifyLegacy("wrong password", hash))
}

func TestVerifyLegacy_RawHashForm(t *testing.T) {
	t.Parallel()

	// A hash created from a pre-hashed presentation must verify against
	// the raw password later.
	hash, err := passbridge.LegacyHash(sha256hex("pw"))
	require.NoError(t, err)
	assert.True(t, passbridge.VerifyLegacy("pw", hash))
}

func TestVerifyLegacy_EmptyHash(t *testing.T) {
	t.Parallel()
	assert.False(t, passbridge.VerifyLegacy("anything", ""))
}

func TestIamHash_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := passbridge.IamHash("pass1234")
	require.NoError(t, err)

	saltLen := len("0123456789abcdef0123456789abcdef")
	require.Len(t, hash, saltLen+1+128, "saltHex:hashHex with 16-byte salt and 64-byte key")

	assert.True(t, passbridge.VerifyIam("pass1234", hash))
	assert.True(t, passbridge.VerifyIam(sha256hex("pass1234"), hash), "pre-hashed presentation verifies too")
	assert.False(t, passbridge.VerifyIam("wrong", hash))
}

func TestIamHash_SaltedPerCall(t *testing.T) {
	t.Parallel()

	a, err := passbridge.IamHash("pass1234")
	require.NoError(t, err)
	b, err := passbridge.IamHash("pass1234")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyIam_Malformed(t *testing.T) {
	t.Parallel()

	assert.False(t, passbridge.VerifyIam("pw", "no-separator"))
	assert.False(t, passbridge.VerifyIam("pw", "zz:zz"))
	assert.False(t, passbridge.VerifyIam("pw", ""))
}
