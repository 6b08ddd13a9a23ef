package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasher_RejectsCostOutOfRange(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", digest)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.True(t, h.Verify("correct horse battery", digest))
	assert.False(t, h.Verify("correct horse batterY", digest))
	assert.False(t, h.Verify("correct horse battery", "not-a-digest"))
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("ü", 40))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPasswordHasher_VerifyDummy(t *testing.T) {
	h := newTestHasher(t)
	require.NotEmpty(t, h.dummy)

	cost, err := bcrypt.Cost(h.dummy)
	require.NoError(t, err)
	assert.Equal(t, h.Cost(), cost)

	assert.NotPanics(t, func() { h.VerifyDummy("whatever") })
}
