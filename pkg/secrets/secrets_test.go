package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "schemeportal/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, token, 43)

	other, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	hash, err := HashToken(token)
	require.NoError(t, err)
	assert.NotContains(t, hash, token)

	assert.NoError(t, VerifyToken(token, hash))

	err = VerifyToken(other, hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashToken(t *testing.T) {
	_, err := HashToken("   ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err = HashToken(string(long))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerifyToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("scrape"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, dErrors.HasCode(VerifyToken("", string(hash)), dErrors.CodeUnauthorized))
	assert.NoError(t, VerifyToken("scrape", string(hash)))
	assert.True(t, dErrors.HasCode(VerifyToken("scrape", "not-a-hash"), dErrors.CodeInternal))
}
