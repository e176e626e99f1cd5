package users

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated account
type Identity interface {
	ID() string
	Login() string
	Role() UserRole
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, login, secret string) (string, error)
	TokenService() TokenService
}

// TokenService mints and validates bearer credentials
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// SecretComparer isolates how account secrets are stored and compared so the
// scheme can change without touching the protocol.
type SecretComparer interface {
	Hash(secret string) (string, error)
	Compare(secret, stored string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetSecretScheme() string
}

// AccountStore is the narrow store contract the domain components consume.
// The bun-backed Users repository implements it.
type AccountStore interface {
	AccountWriter
	GetByLogin(ctx context.Context, login string) (*User, error)
	CreateUser(ctx context.Context, record *User) (*User, error)
	ListActive(ctx context.Context) ([]*User, error)
	ListOlderThan(ctx context.Context, years int) ([]*User, error)
	LoginTaken(ctx context.Context, login string, excludeID string) (bool, error)
	HardDelete(ctx context.Context, record *User) error
	HasAdmin(ctx context.Context) (bool, error)
}

// AccountWriter persists field changes on an already loaded record.
type AccountWriter interface {
	Save(ctx context.Context, record *User) (*User, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] USERS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// nowFunc lets tests pin the clock.
type nowFunc func() time.Time
