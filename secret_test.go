package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-users"
)

func TestPlainTextComparer(t *testing.T) {
	comparer := users.PlainTextComparer{}

	stored, err := comparer.Hash("secret1")
	require.NoError(t, err)
	assert.Equal(t, "secret1", stored)

	assert.NoError(t, comparer.Compare("secret1", stored))
	assert.ErrorIs(t, comparer.Compare("other", stored), users.ErrSecretMismatch)
}

func TestBcryptComparer(t *testing.T) {
	comparer := users.BcryptComparer{Cost: 4}

	stored, err := comparer.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored)

	assert.NoError(t, comparer.Compare("secret1", stored))
	assert.ErrorIs(t, comparer.Compare("other", stored), users.ErrSecretMismatch)
}

func TestComparerForScheme(t *testing.T) {
	assert.IsType(t, users.BcryptComparer{}, users.ComparerForScheme("bcrypt"))
	assert.IsType(t, users.PlainTextComparer{}, users.ComparerForScheme("plain"))
	// unknown schemes must not lock accounts out
	assert.IsType(t, users.PlainTextComparer{}, users.ComparerForScheme("argon2"))
	assert.IsType(t, users.PlainTextComparer{}, users.ComparerForScheme(""))
}
