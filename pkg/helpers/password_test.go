package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 2)

	hash, err := h.Hash(context.Background(), "correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, h.Verify("correct horse battery", hash))
	assert.False(t, h.Verify("wrong guess", hash))
}

func TestHasherSaltsEachDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 2)

	a, err := h.Hash(context.Background(), "same secret")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "same secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same secret", a))
	assert.True(t, h.Verify("same secret", b))
}

func TestHasherDefaults(t *testing.T) {
	h := NewHasher(0, 0)

	hash, err := h.Hash(context.Background(), "secret")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHasherCancelledContext(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret")
	assert.Error(t, err)
}

func TestHasherVerifyGarbageHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	assert.False(t, h.Verify("secret", "not-a-bcrypt-digest"))
}
