package users_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-users"
)

// fakeStore is an in-memory AccountStore honoring the same contract as the
// bun-backed repository: conflict on duplicate login, not-found lookups,
// inclusive age boundary.
type fakeStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*users.User
	now     func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[uuid.UUID]*users.User{},
		now:     time.Now,
	}
}

func (f *fakeStore) clone(u *users.User) *users.User {
	cp := *u
	return &cp
}

func (f *fakeStore) findByLogin(login string) *users.User {
	for _, record := range f.records {
		if record.Login == login {
			return record
		}
	}
	return nil
}

func (f *fakeStore) GetByLogin(_ context.Context, login string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if record := f.findByLogin(login); record != nil {
		return f.clone(record), nil
	}
	return nil, users.ErrAccountNotFound
}

func (f *fakeStore) CreateUser(_ context.Context, record *users.User) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findByLogin(record.Login) != nil {
		return nil, users.ErrLoginTaken
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		ts := f.now()
		record.CreatedAt = &ts
	}

	f.records[record.ID] = f.clone(record)
	return f.clone(record), nil
}

func (f *fakeStore) ListActive(_ context.Context) ([]*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*users.User{}
	for _, record := range f.records {
		if record.IsActive() {
			out = append(out, f.clone(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(*out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) ListOlderThan(_ context.Context, years int) ([]*users.User, error) {
	if years <= 0 {
		return nil, users.ErrInvalidInput
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.now().AddDate(-years, 0, 0)
	out := []*users.User{}
	for _, record := range f.records {
		if record.Birthday != nil && !record.Birthday.After(cutoff) {
			out = append(out, f.clone(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(*out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) LoginTaken(_ context.Context, login string, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, record := range f.records {
		if record.Login == login && record.ID.String() != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Save(_ context.Context, record *users.User) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[record.ID]; !ok {
		return nil, users.ErrAccountNotFound
	}

	for _, other := range f.records {
		if other.ID != record.ID && other.Login == record.Login {
			return nil, users.ErrLoginTaken
		}
	}

	f.records[record.ID] = f.clone(record)
	return f.clone(record), nil
}

func (f *fakeStore) HardDelete(_ context.Context, record *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.records, record.ID)
	return nil
}

func (f *fakeStore) HasAdmin(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, record := range f.records {
		if record.Admin && record.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

var _ users.AccountStore = (*fakeStore)(nil)

// seed inserts a record bypassing conflict checks.
func (f *fakeStore) seed(record *users.User) *users.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		ts := f.now()
		record.CreatedAt = &ts
	}
	f.records[record.ID] = f.clone(record)
	return f.clone(record)
}
