package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret")

	token, err := m.GenerateToken(3, "cashier")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.StaffID)
	assert.Equal(t, "cashier", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").GenerateToken(3, "cashier")
	require.NoError(t, err)

	_, err = NewManager("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewManager("test-secret").ValidateToken("not.a.token")
	assert.Error(t, err)
}
