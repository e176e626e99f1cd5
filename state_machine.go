package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidTransition = "INVALID_ACCOUNT_STATE_TRANSITION"

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	Login string
	Type  string
}

// SystemActorRef is the actor used for transitions done outside a request.
func SystemActorRef() ActorRef {
	return ActorRef{Login: SystemActor, Type: "system"}
}

// AccountLifecycle defines the revoke/restore operations on accounts.
type AccountLifecycle interface {
	Revoke(ctx context.Context, actor ActorRef, user *User) (*User, error)
	Restore(ctx context.Context, actor ActorRef, user *User) (*User, error)
	CurrentStatus(user *User) AccountStatus
}

// LifecycleOption customizes lifecycle construction.
type LifecycleOption func(*accountLifecycle)

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock nowFunc) LifecycleOption {
	return func(lc *accountLifecycle) {
		if clock != nil {
			lc.now = clock
		}
	}
}

// WithLifecycleLogger overrides the logger.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(lc *accountLifecycle) {
		if logger != nil {
			lc.logger = logger
		}
	}
}

// NewAccountLifecycle returns the default implementation backed by the
// provided writer. Restore is reachable from both states so restoring an
// already active account stamps the audit fields and succeeds.
func NewAccountLifecycle(store AccountWriter, opts ...LifecycleOption) AccountLifecycle {
	lc := &accountLifecycle{
		store: store,
		transitions: map[AccountStatus]map[AccountStatus]struct{}{
			StatusActive: {
				StatusRevoked: {},
				StatusActive:  {},
			},
			StatusRevoked: {
				StatusActive:  {},
				StatusRevoked: {},
			},
		},
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(lc)
		}
	}

	return lc
}

type accountLifecycle struct {
	store       AccountWriter
	transitions map[AccountStatus]map[AccountStatus]struct{}
	now         nowFunc
	logger      Logger
}

func (lc *accountLifecycle) Revoke(ctx context.Context, actor ActorRef, user *User) (*User, error) {
	if err := lc.checkTransition(user, StatusRevoked); err != nil {
		return nil, err
	}

	ts := lc.now()
	user.RevokedAt = &ts
	user.RevokedBy = actor.Login
	user.ModifiedAt = &ts
	user.ModifiedBy = actor.Login

	updated, err := lc.store.Save(ctx, user)
	if err != nil {
		return nil, err
	}

	lc.logger.Info("account revoked: login=%s by=%s", user.Login, actor.Login)

	return updated, nil
}

func (lc *accountLifecycle) Restore(ctx context.Context, actor ActorRef, user *User) (*User, error) {
	if err := lc.checkTransition(user, StatusActive); err != nil {
		return nil, err
	}

	ts := lc.now()
	user.RevokedAt = nil
	user.RevokedBy = ""
	user.ModifiedAt = &ts
	user.ModifiedBy = actor.Login

	updated, err := lc.store.Save(ctx, user)
	if err != nil {
		return nil, err
	}

	lc.logger.Info("account restored: login=%s by=%s", user.Login, actor.Login)

	return updated, nil
}

func (lc *accountLifecycle) CurrentStatus(user *User) AccountStatus {
	if user == nil {
		return ""
	}
	return user.Status()
}

func (lc *accountLifecycle) checkTransition(user *User, target AccountStatus) error {
	if user == nil {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "account is nil",
		})
	}

	from := user.Status()
	if !lc.canTransition(from, target) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	return nil
}

func (lc *accountLifecycle) canTransition(from, to AccountStatus) bool {
	if allowed, ok := lc.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}
