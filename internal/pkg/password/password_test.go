package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("my-secret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "my-secret-pass", hash)

	assert.True(t, Verify("my-secret-pass", hash))
	assert.False(t, Verify("wrong-pass", hash))
	assert.False(t, Verify("my-secret-pass", "not-a-bcrypt-hash"))
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("12345678"))
	assert.True(t, Validate("a-much-longer-password"))
	assert.False(t, Validate("1234567"))
	assert.False(t, Validate(""))
}
