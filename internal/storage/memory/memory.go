// Package memory is a process-local storage.Store for development and tests.
// Data is lost on exit.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/google/uuid"
)

type Store struct {
	transactions transactions
	budgets      budgets
	notes        *collection[core.Note, core.NoteFields]
	assets       *collection[core.Asset, core.AssetFields]
	users        *users
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock is New with a fixed clock, for deterministic ordering in
// tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		transactions: transactions{newCollection(now,
			func(m meta, f core.TransactionFields) core.Transaction {
				return core.Transaction{ID: m.id, Owner: m.owner, TransactionFields: f, CreatedAt: m.created, UpdatedAt: m.updated}
			},
			func(a, b core.Transaction) int {
				if c := b.Date.Compare(a.Date.Time); c != 0 {
					return c
				}
				return b.CreatedAt.Compare(a.CreatedAt)
			})},
		budgets: budgets{newCollection(now,
			func(m meta, f core.BudgetFields) core.Budget {
				return core.Budget{ID: m.id, Owner: m.owner, BudgetFields: f, CreatedAt: m.created, UpdatedAt: m.updated}
			},
			func(a, b core.Budget) int { return b.CreatedAt.Compare(a.CreatedAt) })},
		notes: newCollection(now,
			func(m meta, f core.NoteFields) core.Note {
				return core.Note{ID: m.id, Owner: m.owner, NoteFields: f, CreatedAt: m.created, UpdatedAt: m.updated}
			},
			func(a, b core.Note) int { return b.CreatedAt.Compare(a.CreatedAt) }),
		assets: newCollection(now,
			func(m meta, f core.AssetFields) core.Asset {
				return core.Asset{ID: m.id, Owner: m.owner, AssetFields: f, CreatedAt: m.created, UpdatedAt: m.updated}
			},
			func(a, b core.Asset) int { return b.CreatedAt.Compare(a.CreatedAt) }),
		users: &users{byEmail: map[string]auth.User{}},
	}
}

func (s *Store) Transactions() storage.TransactionStore { return s.transactions }
func (s *Store) Budgets() storage.BudgetStore           { return s.budgets }
func (s *Store) Notes() storage.NoteStore               { return s.notes }
func (s *Store) Assets() storage.AssetStore             { return s.assets }
func (s *Store) Users() auth.UserStore                  { return s.users }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

type meta struct {
	id, owner        string
	created, updated time.Time
}

type entry[F any] struct {
	meta
	fields F
}

// collection stores one entity type in insertion order.
type collection[T any, F any] struct {
	mu      sync.RWMutex
	entries []entry[F]
	now     func() time.Time
	build   func(meta, F) T
	order   func(a, b T) int
}

func newCollection[T any, F any](now func() time.Time, build func(meta, F) T, order func(a, b T) int) *collection[T, F] {
	return &collection[T, F]{now: now, build: build, order: order}
}

func (c *collection[T, F]) List(ctx context.Context, owner string) ([]T, error) {
	return c.filter(owner, nil), nil
}

func (c *collection[T, F]) filter(owner string, keep func(F) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []T{}
	for _, e := range c.entries {
		if e.owner != owner || (keep != nil && !keep(e.fields)) {
			continue
		}
		out = append(out, c.build(e.meta, e.fields))
	}
	slices.SortStableFunc(out, c.order)
	return out
}

func (c *collection[T, F]) Create(ctx context.Context, owner string, fields F) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	e := entry[F]{meta: meta{id: uuid.NewString(), owner: owner, created: now, updated: now}, fields: fields}
	c.entries = append(c.entries, e)
	return c.build(e.meta, e.fields), nil
}

func (c *collection[T, F]) Update(ctx context.Context, owner, id string, fields F) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		if c.entries[i].id == id && c.entries[i].owner == owner {
			c.entries[i].fields = fields
			c.entries[i].updated = c.now().UTC()
			return c.build(c.entries[i].meta, fields), nil
		}
	}
	var zero T
	return zero, core.ErrNotFound
}

func (c *collection[T, F]) Delete(ctx context.Context, owner, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.entries {
		if e.id == id && e.owner == owner {
			c.entries = slices.Delete(c.entries, i, i+1)
			return nil
		}
	}
	return core.ErrNotFound
}

type transactions struct {
	*collection[core.Transaction, core.TransactionFields]
}

func (t transactions) ListByPeriod(ctx context.Context, owner string, p core.Period) ([]core.Transaction, error) {
	return t.filter(owner, func(f core.TransactionFields) bool { return p.Contains(f.Date) }), nil
}

type budgets struct {
	*collection[core.Budget, core.BudgetFields]
}

func (b budgets) ListByPeriod(ctx context.Context, owner string, p core.Period) ([]core.Budget, error) {
	return b.filter(owner, func(f core.BudgetFields) bool {
		return f.Month == p.MonthName() && f.Year == p.YearString()
	}), nil
}

type users struct {
	mu      sync.RWMutex
	byEmail map[string]auth.User
}

func (u *users) CreateUser(_ context.Context, user auth.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := u.byEmail[key]; ok {
		return auth.ErrUserExists
	}
	u.byEmail[key] = user
	return nil
}

func (u *users) UserByEmail(_ context.Context, email string) (auth.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, ok := u.byEmail[strings.ToLower(email)]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}
