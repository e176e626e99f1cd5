package users

import (
	"context"
	"time"
)

// NewAccount is the input for account creation.
type NewAccount struct {
	Login    string
	Secret   string
	Name     string
	Gender   int
	Birthday *time.Time
	Admin    bool
}

// ProfilePatch carries a partial profile update. Nil fields are left as-is;
// a non-nil field overwrites, so a present-but-zero value is meaningful.
type ProfilePatch struct {
	Name     *string
	Gender   *int
	Birthday *time.Time
}

// AccountService orchestrates every account operation. Each method runs its
// checks in a fixed order so the error a caller sees is deterministic:
//
//   - admin gated ops: authentication, authorization, then target lookup
//   - self-or-admin ops: authentication, target lookup (not found), active
//     precondition, authorization, uniqueness, commit
//
// Not-found outranks forbidden and the inactive precondition outranks
// forbidden on the self-or-admin paths; this mirrors the protocol the API's
// clients already depend on.
type AccountService struct {
	store     AccountStore
	lifecycle AccountLifecycle
	policy    Policy
	comparer  SecretComparer
	logger    Logger
	now       nowFunc
}

// ServiceOption customizes service construction.
type ServiceOption func(*AccountService)

// WithServiceLogger overrides the logger.
func WithServiceLogger(logger Logger) ServiceOption {
	return func(s *AccountService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock injects a custom clock (useful for tests).
func WithServiceClock(clock nowFunc) ServiceOption {
	return func(s *AccountService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithServiceComparer overrides the secret comparer.
func WithServiceComparer(comparer SecretComparer) ServiceOption {
	return func(s *AccountService) {
		if comparer != nil {
			s.comparer = comparer
		}
	}
}

// WithServiceLifecycle overrides the lifecycle machine.
func WithServiceLifecycle(lifecycle AccountLifecycle) ServiceOption {
	return func(s *AccountService) {
		if lifecycle != nil {
			s.lifecycle = lifecycle
		}
	}
}

// NewAccountService wires the service over the given store.
func NewAccountService(store AccountStore, opts ...ServiceOption) *AccountService {
	s := &AccountService{
		store:    store,
		comparer: PlainTextComparer{},
		logger:   defLogger{},
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.lifecycle == nil {
		s.lifecycle = NewAccountLifecycle(store, WithLifecycleClock(s.now))
	}

	return s
}

// Create registers a new account. Admin only.
func (s *AccountService) Create(ctx context.Context, caller Caller, input NewAccount) (*User, error) {
	if err := s.policy.Authorize(caller, OpCreate, ""); err != nil {
		return nil, err
	}

	secret, err := s.comparer.Hash(input.Secret)
	if err != nil {
		return nil, storeFailure(err, "hash account secret")
	}

	record := &User{
		Login:     input.Login,
		Secret:    secret,
		Name:      input.Name,
		Gender:    input.Gender,
		Birthday:  input.Birthday,
		Admin:     input.Admin,
		CreatedBy: caller.Subject,
	}

	created, err := s.store.CreateUser(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created: login=%s admin=%v by=%s", created.Login, created.Admin, caller.Subject)

	return created, nil
}

// ListActive returns all non revoked accounts. Admin only.
func (s *AccountService) ListActive(ctx context.Context, caller Caller) ([]*User, error) {
	if err := s.policy.Authorize(caller, OpListActive, ""); err != nil {
		return nil, err
	}
	return s.store.ListActive(ctx)
}

// GetByLogin returns the account with the given login, revoked included.
// Admin only, even when the login is the caller's own; GetSelf is the
// non-admin surface.
func (s *AccountService) GetByLogin(ctx context.Context, caller Caller, login string) (*User, error) {
	if err := s.policy.Authorize(caller, OpGetByLogin, login); err != nil {
		return nil, err
	}
	return s.store.GetByLogin(ctx, login)
}

// GetSelf returns the caller's own account. A revoked caller gets forbidden,
// not a lifecycle error: a dead credential grants nothing.
func (s *AccountService) GetSelf(ctx context.Context, caller Caller) (*User, error) {
	if err := s.policy.Authorize(caller, OpGetSelf, caller.Subject); err != nil {
		return nil, err
	}

	account, err := s.store.GetByLogin(ctx, caller.Subject)
	if err != nil {
		return nil, err
	}

	if !account.IsActive() {
		return nil, ErrForbidden.WithMetadata(map[string]any{
			"reason": "account revoked",
		})
	}

	return account, nil
}

// ListOlderThan returns accounts at least the given age in years, boundary
// inclusive. Admin only.
func (s *AccountService) ListOlderThan(ctx context.Context, caller Caller, years int) ([]*User, error) {
	if err := s.policy.Authorize(caller, OpListOlderThan, ""); err != nil {
		return nil, err
	}
	return s.store.ListOlderThan(ctx, years)
}

// UpdateProfile applies a partial profile update to the target account.
// Self or admin; the target has to exist and be active.
func (s *AccountService) UpdateProfile(ctx context.Context, caller Caller, login string, patch ProfilePatch) (*User, error) {
	target, err := s.loadActiveTarget(ctx, caller, OpUpdateProfile, login)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		target.Name = *patch.Name
	}
	if patch.Gender != nil {
		target.Gender = *patch.Gender
	}
	if patch.Birthday != nil {
		target.Birthday = patch.Birthday
	}

	s.stampModified(target, caller)

	return s.store.Save(ctx, target)
}

// ChangeSecret replaces the target account's secret. Self or admin; the
// target has to exist and be active.
func (s *AccountService) ChangeSecret(ctx context.Context, caller Caller, login, newSecret string) (*User, error) {
	target, err := s.loadActiveTarget(ctx, caller, OpChangeSecret, login)
	if err != nil {
		return nil, err
	}

	secret, err := s.comparer.Hash(newSecret)
	if err != nil {
		return nil, storeFailure(err, "hash account secret")
	}

	target.Secret = secret
	s.stampModified(target, caller)

	updated, err := s.store.Save(ctx, target)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account secret changed: login=%s by=%s", login, caller.Subject)

	return updated, nil
}

// ChangeLogin renames the target account's login. Self or admin; the target
// has to exist and be active, and the new login has to be free. Outstanding
// tokens carry the old login as subject and stop resolving once this commits.
func (s *AccountService) ChangeLogin(ctx context.Context, caller Caller, login, newLogin string) (*User, error) {
	target, err := s.loadActiveTarget(ctx, caller, OpChangeLogin, login)
	if err != nil {
		return nil, err
	}

	if newLogin != target.Login {
		taken, err := s.store.LoginTaken(ctx, newLogin, target.ID.String())
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrLoginTaken.WithMetadata(map[string]any{
				"login": newLogin,
			})
		}
	}

	oldLogin := target.Login
	target.Login = newLogin
	s.stampModified(target, caller)

	updated, err := s.store.Save(ctx, target)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account login changed: %s -> %s by=%s", oldLogin, newLogin, caller.Subject)

	return updated, nil
}

// Delete removes the target account. Admin only. Soft delete revokes the
// account keeping its login reserved; hard delete drops the row and releases
// the login. No active precondition: deleting a revoked account is allowed.
func (s *AccountService) Delete(ctx context.Context, caller Caller, login string, soft bool) error {
	if err := s.policy.Authorize(caller, OpDelete, login); err != nil {
		return err
	}

	target, err := s.store.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	if !soft {
		if err := s.store.HardDelete(ctx, target); err != nil {
			return err
		}
		s.logger.Info("account hard deleted: login=%s by=%s", login, caller.Subject)
		return nil
	}

	if _, err := s.lifecycle.Revoke(ctx, s.actor(caller), target); err != nil {
		return err
	}

	return nil
}

// Restore reactivates the target account. Admin only; restoring an already
// active account stamps the audit fields and succeeds.
func (s *AccountService) Restore(ctx context.Context, caller Caller, login string) (*User, error) {
	if err := s.policy.Authorize(caller, OpRestore, login); err != nil {
		return nil, err
	}

	target, err := s.store.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	return s.lifecycle.Restore(ctx, s.actor(caller), target)
}

// loadActiveTarget runs the shared check prefix of the self-or-admin
// operations: authentication, target lookup, active precondition, then
// authorization. The order is part of the protocol, not an implementation
// detail; callers learn a login does not exist before they learn they could
// not have touched it.
func (s *AccountService) loadActiveTarget(ctx context.Context, caller Caller, op Operation, login string) (*User, error) {
	if !caller.Authenticated {
		return nil, ErrAuthRequired
	}

	target, err := s.store.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if !target.IsActive() {
		return nil, ErrAccountNotActive.WithMetadata(map[string]any{
			"login": login,
		})
	}

	if err := s.policy.Authorize(caller, op, login); err != nil {
		return nil, err
	}

	return target, nil
}

func (s *AccountService) stampModified(target *User, caller Caller) {
	ts := s.now()
	target.ModifiedAt = &ts
	target.ModifiedBy = caller.Subject
}

func (s *AccountService) actor(caller Caller) ActorRef {
	if caller.Subject == "" {
		return SystemActorRef()
	}
	return ActorRef{Login: caller.Subject, Type: "user"}
}
