package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
		len  int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, a, tt.len)

			b, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, a, b, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2)
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestSign(t *testing.T) {
	key := []byte("k")

	require.Equal(t, Sign(key, "a", "b"), Sign(key, "a", "b"))
	require.NotEqual(t, Sign(key, "ab", "c"), Sign(key, "a", "bc"), "parts must be length-prefixed")
	require.NotEqual(t, Sign(key, "a"), Sign([]byte("other"), "a"))
}

func TestDeriveKey(t *testing.T) {
	root := []byte("root-secret")

	require.Len(t, DeriveKey(root, "csrf"), 32)
	require.Equal(t, DeriveKey(root, "csrf"), DeriveKey(root, "csrf"))
	require.NotEqual(t, DeriveKey(root, "csrf"), DeriveKey(root, "other"))
}

func TestEqual(t *testing.T) {
	require.True(t, Equal("abc", "abc"))
	require.False(t, Equal("abc", "abd"))
	require.False(t, Equal("abc", "ab"))
}
