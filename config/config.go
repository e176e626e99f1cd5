package config

import (
	"fmt"
	"time"
)

// BaseConfig is the application configuration container. Values load from
// config files and environment through go-config; DefaultConfig supplies the
// out-of-the-box values a dev instance runs with.
type BaseConfig struct {
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
	Server      Server      `json:"server" koanf:"server"`
	Bootstrap   Bootstrap   `json:"bootstrap" koanf:"bootstrap"`
}

func (a *BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	return nil
}

func (a *BaseConfig) GetAuth() Auth {
	return a.Auth
}

func (a *BaseConfig) GetPersistence() Persistence {
	return a.Persistence
}

func (a *BaseConfig) GetServer() Server {
	return a.Server
}

func (a *BaseConfig) GetBootstrap() Bootstrap {
	return a.Bootstrap
}

// DefaultConfig returns the configuration a local instance starts with.
func DefaultConfig() *BaseConfig {
	return &BaseConfig{
		Auth: Auth{
			SigningKey:      "dev-signing-key-change-me",
			SigningMethod:   "HS256",
			ContextKey:      "claims",
			TokenExpiration: 1,
			AuthScheme:      "Bearer",
			Issuer:          "TestIssuer",
			Audience:        []string{"TestAudience"},
			SecretScheme:    "plain",
		},
		Persistence: Persistence{
			Driver:                "sqlite",
			DSN:                   "file:users.db?cache=shared&mode=rwc",
			PingTimeoutExpression: "5s",
		},
		Server: Server{
			Addr: ":9091",
		},
		Bootstrap: Bootstrap{
			ProvisionAdmin: true,
			AdminLogin:     "admin",
			AdminSecret:    "admin123",
		},
	}
}

// Auth configures token issuance and validation.
type Auth struct {
	SigningKey      string   `json:"signing_key" koanf:"signing_key"`
	SigningMethod   string   `json:"signing_method" koanf:"signing_method"`
	ContextKey      string   `json:"context_key" koanf:"context_key"`
	TokenExpiration int      `json:"token_expiration" koanf:"token_expiration"`
	AuthScheme      string   `json:"auth_scheme" koanf:"auth_scheme"`
	Issuer          string   `json:"issuer" koanf:"issuer"`
	Audience        []string `json:"audience" koanf:"audience"`
	SecretScheme    string   `json:"secret_scheme" koanf:"secret_scheme"`
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetSigningMethod() string {
	return a.SigningMethod
}

func (a Auth) GetContextKey() string {
	return a.ContextKey
}

func (a Auth) GetTokenExpiration() int {
	return a.TokenExpiration
}

func (a Auth) GetAuthScheme() string {
	return a.AuthScheme
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	return a.Audience
}

func (a Auth) GetSecretScheme() string {
	return a.SecretScheme
}

// Persistence configures the database client.
type Persistence struct {
	Driver                string `json:"driver" koanf:"driver"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
}

func (p Persistence) GetDriver() string {
	return p.Driver
}

func (p Persistence) GetDSN() string {
	return p.DSN
}

func (p Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `json:"addr" koanf:"addr"`
}

func (s Server) GetAddr() string {
	return s.Addr
}

// Bootstrap configures default admin provisioning.
type Bootstrap struct {
	ProvisionAdmin bool   `json:"provision_admin" koanf:"provision_admin"`
	AdminLogin     string `json:"admin_login" koanf:"admin_login"`
	AdminSecret    string `json:"admin_secret" koanf:"admin_secret"`
}

func (b Bootstrap) GetProvisionAdmin() bool {
	return b.ProvisionAdmin
}

func (b Bootstrap) GetAdminLogin() string {
	return b.AdminLogin
}

func (b Bootstrap) GetAdminSecret() string {
	return b.AdminSecret
}
