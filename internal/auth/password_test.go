package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, plaintext := range []string{"secret123", "", "пароль", "a b c"} {
		digest, err := h.Hash(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, digest)
		assert.True(t, h.Verify(plaintext, digest), "plaintext %q", plaintext)
	}
}

func TestBcryptHasherRejectsOtherPlaintext(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("other")
	require.NoError(t, err)
	assert.False(t, h.Verify("secret123", digest))
	assert.False(t, h.Verify("secret123", "not-a-bcrypt-hash"))
}

func TestBcryptHasherSaltsEachHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)

	digest, err := NewBcryptHasher(5).Hash("x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}
