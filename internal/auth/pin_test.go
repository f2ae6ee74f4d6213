package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPIN(t *testing.T) {
	hash, err := HashPIN("2468")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=4$"))

	other, err := HashPIN("2468")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts should differ")
}

func TestHashPIN_Rejects(t *testing.T) {
	_, err := HashPIN("")
	assert.Error(t, err)

	_, err = HashPIN(strings.Repeat("9", maxPINLength+1))
	assert.Error(t, err)
}

func TestCheckPIN(t *testing.T) {
	hash, err := HashPIN("2468")
	require.NoError(t, err)

	assert.True(t, CheckPIN(hash, "2468"))
	assert.False(t, CheckPIN(hash, "2469"))
	assert.False(t, CheckPIN(hash, ""))
	assert.False(t, CheckPIN("not-a-hash", "2468"))
	assert.False(t, CheckPIN("$argon2i$v=19$m=1,t=1,p=1$AAAA$AAAA", "2468"))
}
