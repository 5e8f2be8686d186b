package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate("secret", "user-1", "store-1", "cashier", "retail-ledger-api", 60)
	require.NoError(t, err)

	userID, storeID, role, err := Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "store-1", storeID)
	assert.Equal(t, "cashier", role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := Generate("secret", "user-1", "store-1", "admin", "test", 60)
	require.NoError(t, err)

	_, _, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := Generate("secret", "user-1", "store-1", "admin", "test", -1)
	require.NoError(t, err)

	_, _, _, err = Parse("secret", token)
	assert.Error(t, err)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := Generate("", "user-1", "store-1", "admin", "test", 60)
	assert.Error(t, err)
}
