package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aakar/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("festival-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "festival-secret", hash)

	assert.NoError(t, Verify("festival-secret", hash))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	hash, err := Hash("festival-secret")
	require.NoError(t, err)

	err = Verify("not-the-secret", hash)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestHashRejectsEmptySecret(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestHashRejectsOverlongSecret(t *testing.T) {
	// bcrypt caps input at 72 bytes.
	_, err := Hash(strings.Repeat("a", 100))
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := Hash("festival-secret")
	require.NoError(t, err)
	b, err := Hash("festival-secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
