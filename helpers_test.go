package users_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

// testAuthConfig is the fixed auth configuration the tests run with.
type testAuthConfig struct{}

func (testAuthConfig) GetSigningKey() string    { return "test-signing-key" }
func (testAuthConfig) GetSigningMethod() string { return "HS256" }
func (testAuthConfig) GetContextKey() string    { return "claims" }
func (testAuthConfig) GetTokenExpiration() int  { return 1 }
func (testAuthConfig) GetAuthScheme() string    { return "Bearer" }
func (testAuthConfig) GetIssuer() string        { return "TestIssuer" }
func (testAuthConfig) GetAudience() []string    { return []string{"TestAudience"} }
func (testAuthConfig) GetSecretScheme() string  { return "plain" }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// assertTextCode checks the rich error carries the expected text code.
func assertTextCode(t *testing.T, err error, textCode string) {
	t.Helper()
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected rich error, got %T: %v", err, err)
	require.Equal(t, textCode, richErr.TextCode)
}
