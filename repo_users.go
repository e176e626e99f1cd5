package users

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account repository. It embeds the generic repository for the
// usual CRUD surface and adds the account-specific queries the service layer
// consumes through AccountStore.
type Users interface {
	repository.Repository[*User]
	AccountStore
}

type accounts struct {
	repository.Repository[*User]
	db  *bun.DB
	now nowFunc
}

var (
	_ Users        = (*accounts)(nil)
	_ AccountStore = (*accounts)(nil)
)

type UsersOption func(*accounts)

// WithUsersClock injects a custom clock (useful for tests).
func WithUsersClock(clock nowFunc) UsersOption {
	return func(a *accounts) {
		if clock != nil {
			a.now = clock
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "login"
		},
	})

	accts := &accounts{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(accts)
		}
	}

	return accts
}

// GetByLogin finds an account by login, revoked ones included. Lifecycle
// checks belong to the caller; the row has to be visible for restore.
func (a *accounts) GetByLogin(ctx context.Context, login string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.login = ?", login).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.WithMetadata(map[string]any{
				"login": login,
			})
		}
		return nil, storeFailure(err, "get account by login")
	}

	return record, nil
}

// CreateUser inserts a new account. The login pre-check is advisory; the
// unique index decides racing inserts and its rejection maps to the same
// conflict error.
func (a *accounts) CreateUser(ctx context.Context, record *User) (*User, error) {
	prepareAccountDefaults(record, a.now)

	taken, err := a.LoginTaken(ctx, record.Login, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrLoginTaken.WithMetadata(map[string]any{
			"login": record.Login,
		})
	}

	created, err := a.Repository.Create(ctx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLoginTaken.WithMetadata(map[string]any{
				"login": record.Login,
			})
		}
		return nil, storeFailure(err, "create account")
	}

	return created, nil
}

// ListActive returns non revoked accounts ordered by creation time.
func (a *accounts) ListActive(ctx context.Context) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.revoked_at IS NULL").
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, storeFailure(err, "list active accounts")
	}

	return records, nil
}

// ListOlderThan returns accounts whose age is at least the given number of
// years. The boundary is inclusive: an account turning exactly `years` today
// is included. Accounts without a birthday never match.
func (a *accounts) ListOlderThan(ctx context.Context, years int) ([]*User, error) {
	if years <= 0 {
		return nil, ErrInvalidInput.WithMetadata(map[string]any{
			"years": years,
		})
	}

	cutoff := a.now().AddDate(-years, 0, 0)

	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.birthday IS NOT NULL").
		Where("?TableAlias.birthday <= ?", cutoff).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, storeFailure(err, "list accounts by age")
	}

	return records, nil
}

// LoginTaken reports whether any account holds the login. Pass the candidate's
// own ID in excludeID so change-login does not conflict with itself.
func (a *accounts) LoginTaken(ctx context.Context, login string, excludeID string) (bool, error) {
	q := a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.login = ?", login)

	if excludeID != "" {
		q = q.Where("?TableAlias.id != ?", excludeID)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return false, storeFailure(err, "check login availability")
	}

	return count > 0, nil
}

// Save persists the record's current field values by ID.
func (a *accounts) Save(ctx context.Context, record *User) (*User, error) {
	updated, err := a.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLoginTaken.WithMetadata(map[string]any{
				"login": record.Login,
			})
		}
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.WithMetadata(map[string]any{
				"id": record.ID.String(),
			})
		}
		return nil, storeFailure(err, "save account")
	}

	return updated, nil
}

// HardDelete removes the row permanently, releasing the login for reuse.
func (a *accounts) HardDelete(ctx context.Context, record *User) error {
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", record.ID).
		Exec(ctx)

	if err != nil {
		return storeFailure(err, "hard delete account")
	}

	return nil
}

// HasAdmin reports whether at least one active admin account exists.
func (a *accounts) HasAdmin(ctx context.Context) (bool, error) {
	count, err := a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.is_admin = ?", true).
		Where("?TableAlias.revoked_at IS NULL").
		Count(ctx)

	if err != nil {
		return false, storeFailure(err, "count admin accounts")
	}

	return count > 0, nil
}

func prepareAccountDefaults(record *User, now nowFunc) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		ts := now()
		record.CreatedAt = &ts
	}
}
