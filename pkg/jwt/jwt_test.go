package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	privileges := []string{"job:view", "job:submit"}

	token, err := GenerateToken(userID, "juan", "juan@example.com", "Juan Dela Cruz", "CUSTOMER", privileges, "v1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "juan", claims.Username)
	assert.Equal(t, "juan@example.com", claims.Email)
	assert.Equal(t, "CUSTOMER", claims.RoleCode)
	assert.Equal(t, privileges, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, "go-printshop-ws", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "juan", "juan@example.com", "Juan", "CUSTOMER", nil, "v1")
	require.NoError(t, err)

	// Flip a character in the signature
	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
