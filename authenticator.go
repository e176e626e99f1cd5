package users

import (
	"context"
)

// Auther exchanges account credentials for bearer tokens.
type Auther struct {
	store        AccountStore
	comparer     SecretComparer
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store AccountStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		comparer:     ComparerForScheme(opts.GetSecretScheme()),
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithSecretComparer(comparer SecretComparer) *Auther {
	if comparer != nil {
		s.comparer = comparer
	}
	return s
}

func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokenService = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and mints a bearer token. Absent accounts,
// secret mismatches and revoked accounts all surface as the same error so
// callers cannot probe which logins exist.
func (s *Auther) Login(ctx context.Context, login, secret string) (string, error) {
	account, err := s.store.GetByLogin(ctx, login)
	if err != nil {
		s.logger.Warn("login failed: account lookup: login=%s", login)
		return "", ErrInvalidCredentials
	}

	if err := s.comparer.Compare(secret, account.Secret); err != nil {
		s.logger.Warn("login failed: secret mismatch: login=%s", login)
		return "", ErrInvalidCredentials
	}

	if !account.IsActive() {
		s.logger.Warn("login failed: account revoked: login=%s", login)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(accountIdentity{account})
	if err != nil {
		s.logger.Error("login failed: token generation: login=%s error=%v", login, err)
		return "", err
	}

	return token, nil
}

// accountIdentity adapts a User record to the Identity interface.
type accountIdentity struct {
	account *User
}

var _ Identity = accountIdentity{}

func (a accountIdentity) ID() string {
	return a.account.ID.String()
}

func (a accountIdentity) Login() string {
	return a.account.Login
}

func (a accountIdentity) Role() UserRole {
	return a.account.Role()
}
