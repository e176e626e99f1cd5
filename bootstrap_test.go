package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-users"
)

type testBootstrapConfig struct {
	provision bool
	login     string
	secret    string
}

func (c testBootstrapConfig) GetProvisionAdmin() bool { return c.provision }
func (c testBootstrapConfig) GetAdminLogin() string   { return c.login }
func (c testBootstrapConfig) GetAdminSecret() string  { return c.secret }

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := testBootstrapConfig{provision: true, login: "admin", secret: "admin123"}

	t.Run("fresh install gets the seed admin", func(t *testing.T) {
		store := newFakeStore()

		created, err := users.EnsureDefaultAdmin(ctx, store, users.PlainTextComparer{}, cfg, noopLogger{})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "admin", created.Login)
		assert.True(t, created.Admin)
		assert.Equal(t, "Admin", created.Name)
		assert.Equal(t, 1, created.Gender)
		assert.Equal(t, users.SystemActor, created.CreatedBy)
		require.NotNil(t, created.Birthday)
		assert.Equal(t, time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), *created.Birthday)

		hasAdmin, err := store.HasAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, hasAdmin)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		store := newFakeStore()

		first, err := users.EnsureDefaultAdmin(ctx, store, users.PlainTextComparer{}, cfg, noopLogger{})
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := users.EnsureDefaultAdmin(ctx, store, users.PlainTextComparer{}, cfg, noopLogger{})
		require.NoError(t, err)
		assert.Nil(t, second)
	})

	t.Run("existing admin suppresses provisioning", func(t *testing.T) {
		store := newFakeStore()
		store.seed(&users.User{Login: "root", Admin: true})

		created, err := users.EnsureDefaultAdmin(ctx, store, users.PlainTextComparer{}, cfg, noopLogger{})

		require.NoError(t, err)
		assert.Nil(t, created)
	})

	t.Run("disabled by configuration", func(t *testing.T) {
		store := newFakeStore()

		created, err := users.EnsureDefaultAdmin(ctx, store, users.PlainTextComparer{},
			testBootstrapConfig{provision: false}, noopLogger{})

		require.NoError(t, err)
		assert.Nil(t, created)

		hasAdmin, err := store.HasAdmin(ctx)
		require.NoError(t, err)
		assert.False(t, hasAdmin)
	})

	t.Run("bootstrapped admin can log in", func(t *testing.T) {
		store := newFakeStore()

		_, err := users.EnsureDefaultAdmin(ctx, store, users.PlainTextComparer{}, cfg, noopLogger{})
		require.NoError(t, err)

		auther := users.NewAuthenticator(store, testAuthConfig{}).WithLogger(noopLogger{})
		token, err := auther.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		claims, err := auther.TokenService().Validate(token)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin())
	})
}
