package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateHash(t *testing.T) {
	first, err := GenerateHash("SecretPass123")
	require.NoError(t, err)
	second, err := GenerateHash("SecretPass123")
	require.NoError(t, err)

	assert.NotEqual(t, "SecretPass123", first)
	assert.NotEqual(t, first, second, "salt must differ per call")
	assert.Greater(t, len(first), 20)

	cost, err := bcrypt.Cost([]byte(first))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	for _, digest := range []string{first, second} {
		ok, err := VerifyHash(digest, "SecretPass123")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyHash_Mismatch(t *testing.T) {
	digest, err := GenerateHash("ImportantPassword")
	require.NoError(t, err)

	ok, err := VerifyHash(digest, "importantpassword")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyHash_InvalidDigest(t *testing.T) {
	ok, err := VerifyHash("not-a-bcrypt-digest", "whatever")
	assert.Error(t, err)
	assert.False(t, ok)
}
