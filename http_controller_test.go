package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-users"
)

func newControllerWithStore(t *testing.T) (*users.AccountsController, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	service := users.NewAccountService(store, users.WithServiceLogger(noopLogger{}))
	auther := users.NewAuthenticator(store, testAuthConfig{}).WithLogger(noopLogger{})
	controller := users.NewAccountsController(service, auther, testAuthConfig{}, noopLogger{})
	return controller, store
}

func adminClaims() *users.JWTClaims {
	claims := &users.JWTClaims{UserRole: users.RoleAdmin}
	claims.RegisteredClaims.Subject = "root"
	return claims
}

func userClaims(login string) *users.JWTClaims {
	claims := &users.JWTClaims{UserRole: users.RoleUser}
	claims.RegisteredClaims.Subject = login
	return claims
}

// captureJSON wires the JSON expectation and records status and body.
func captureJSON(ctx *router.MockContext) (*int, *any) {
	var status int
	var body any
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Int(0)
		body = args.Get(1)
	}).Return(nil)
	return &status, &body
}

func TestControllerCreateUser(t *testing.T) {
	t.Run("anonymous caller gets 401", func(t *testing.T) {
		controller, _ := newControllerWithStore(t)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.CreateUserRequest)) = users.CreateUserRequest{
				Login: "alice", Password: "alicepwd1", Name: "Alice",
			}
		}).Return(nil)
		status, body := captureJSON(ctx)

		err := controller.CreateUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusUnauthorized, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "AUTH_REQUIRED", payload["code"])
	})

	t.Run("admin creates account", func(t *testing.T) {
		controller, store := newControllerWithStore(t)

		ctx := router.NewMockContext()
		ctx.LocalsMock["claims"] = adminClaims()
		ctx.On("Context").Return(context.Background())
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.CreateUserRequest)) = users.CreateUserRequest{
				Login: "alice", Password: "alicepwd1", Name: "Alice", Gender: 2,
			}
		}).Return(nil)
		status, body := captureJSON(ctx)

		err := controller.CreateUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusOK, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "alice", payload["login"])
		assert.Equal(t, users.RoleUser, payload["role"])
		_, exposesSecret := payload["secret"]
		assert.False(t, exposesSecret)

		record, err := store.GetByLogin(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "root", record.CreatedBy)
	})

	t.Run("payload validation failures are 400 with field map", func(t *testing.T) {
		controller, _ := newControllerWithStore(t)

		ctx := router.NewMockContext()
		ctx.LocalsMock["claims"] = adminClaims()
		ctx.On("Context").Return(context.Background())
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.CreateUserRequest)) = users.CreateUserRequest{
				Login: "not valid!", Password: "pwd1", Name: "Alice99", Gender: 7,
			}
		}).Return(nil)
		status, body := captureJSON(ctx)

		err := controller.CreateUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusBadRequest, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "INVALID_INPUT", payload["code"])
		assert.NotEmpty(t, payload["validation"])
	})
}

func TestControllerGetByLogin(t *testing.T) {
	t.Run("admin gets the profile projection", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "alice"
		ctx.LocalsMock["claims"] = adminClaims()
		ctx.On("Context").Return(context.Background())
		status, body := captureJSON(ctx)

		err := controller.GetByLogin(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusOK, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "Alice", payload["name"])
		assert.Equal(t, 2, payload["gender"])
		assert.Equal(t, true, payload["is_active"])
		assert.Equal(t, users.RoleUser, payload["role"])
		_, exposesLogin := payload["login"]
		assert.False(t, exposesLogin)
	})

	t.Run("regular caller gets 403 even for own login", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "alice"
		ctx.LocalsMock["claims"] = userClaims("alice")
		ctx.On("Context").Return(context.Background())
		status, body := captureJSON(ctx)

		err := controller.GetByLogin(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusForbidden, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "FORBIDDEN", payload["code"])
	})

	t.Run("missing login is 404 for admin", func(t *testing.T) {
		controller, _ := newControllerWithStore(t)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "ghost"
		ctx.LocalsMock["claims"] = adminClaims()
		ctx.On("Context").Return(context.Background())
		status, body := captureJSON(ctx)

		err := controller.GetByLogin(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusNotFound, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "ACCOUNT_NOT_FOUND", payload["code"])
	})
}

func TestControllerGetSelf(t *testing.T) {
	controller, store := newControllerWithStore(t)
	seedAlice(store)

	ctx := router.NewMockContext()
	ctx.LocalsMock["claims"] = userClaims("alice")
	ctx.On("Context").Return(context.Background())
	status, body := captureJSON(ctx)

	err := controller.GetSelf(ctx)

	require.NoError(t, err)
	assert.Equal(t, router.StatusOK, *status)
	payload := (*body).(map[string]any)
	assert.Equal(t, "alice", payload["login"])
	assert.Equal(t, "Alice", payload["name"])
}

func TestControllerUpdateUser(t *testing.T) {
	t.Run("revoked target is 400 before authorization", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		alice := seedAlice(store)
		ts := time.Now()
		alice.RevokedAt = &ts
		_, err := store.Save(context.Background(), alice)
		require.NoError(t, err)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "alice"
		ctx.LocalsMock["claims"] = userClaims("bob")
		ctx.On("Context").Return(context.Background())
		name := "Alicia"
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.UpdateUserRequest)) = users.UpdateUserRequest{Name: &name}
		}).Return(nil)
		status, body := captureJSON(ctx)

		err = controller.UpdateUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusBadRequest, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "ACCOUNT_NOT_ACTIVE", payload["code"])
	})

	t.Run("self partial update", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "alice"
		ctx.LocalsMock["claims"] = userClaims("alice")
		ctx.On("Context").Return(context.Background())
		gender := 0
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.UpdateUserRequest)) = users.UpdateUserRequest{Gender: &gender}
		}).Return(nil)
		status, body := captureJSON(ctx)

		err := controller.UpdateUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusOK, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, 0, payload["gender"])
		assert.Equal(t, "Alice", payload["name"])
	})
}

func TestControllerDeleteUser(t *testing.T) {
	t.Run("default delete is soft", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "alice"
		ctx.LocalsMock["claims"] = adminClaims()
		ctx.On("Context").Return(context.Background())
		status, body := captureJSON(ctx)

		err := controller.DeleteUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusOK, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, true, payload["soft_delete"])

		record, err := store.GetByLogin(context.Background(), "alice")
		require.NoError(t, err)
		assert.False(t, record.IsActive())
	})

	t.Run("softDelete=false removes the row", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.ParamsM["login"] = "alice"
		ctx.QueriesM["softDelete"] = "false"
		ctx.LocalsMock["claims"] = adminClaims()
		ctx.On("Context").Return(context.Background())
		status, _ := captureJSON(ctx)

		err := controller.DeleteUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusOK, *status)

		_, err = store.GetByLogin(context.Background(), "alice")
		assertTextCode(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestControllerLogin(t *testing.T) {
	t.Run("valid credentials return a token", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.LoginRequest)) = users.LoginRequest{
				Login: "alice", Password: "alicepwd1",
			}
		}).Return(nil)

		var body map[string]string
		ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]string)
		}).Return(nil)

		err := controller.LoginPost(ctx)

		require.NoError(t, err)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		controller, store := newControllerWithStore(t)
		seedAlice(store)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(*users.LoginRequest)) = users.LoginRequest{
				Login: "alice", Password: "wrong",
			}
		}).Return(nil)
		status, body := captureJSON(ctx)

		err := controller.LoginPost(ctx)

		require.NoError(t, err)
		assert.Equal(t, router.StatusUnauthorized, *status)
		payload := (*body).(map[string]any)
		assert.Equal(t, "INVALID_CREDENTIALS", payload["code"])
	})
}
