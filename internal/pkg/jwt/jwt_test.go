package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAdminToken(t *testing.T) {
	token, err := GenerateAdminToken("token-123", "secret", 60)
	require.NoError(t, err)

	claims, err := ValidateAdminToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", claims.TokenID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "admin", claims.Subject)
}

func TestValidateAdminTokenWrongSecret(t *testing.T) {
	token, err := GenerateAdminToken("token-123", "secret", 60)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateAdminTokenExpired(t *testing.T) {
	token, err := GenerateAdminToken("token-123", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAdminTokenGarbage(t *testing.T) {
	_, err := ValidateAdminToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
