// Package storage persists records and users. Every record query is scoped
// by owner: a record that exists but belongs to someone else is reported as
// core.ErrNotFound.
package storage

import (
	"context"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// Records is the per-entity store port.
type Records[T any, F any] interface {
	List(ctx context.Context, owner string) ([]T, error)
	Create(ctx context.Context, owner string, fields F) (T, error)
	Update(ctx context.Context, owner, id string, fields F) (T, error)
	Delete(ctx context.Context, owner, id string) error
}

// PeriodLister is implemented by entities that belong to a calendar month.
type PeriodLister[T any] interface {
	ListByPeriod(ctx context.Context, owner string, p core.Period) ([]T, error)
}

type TransactionStore interface {
	Records[core.Transaction, core.TransactionFields]
	PeriodLister[core.Transaction]
}

type BudgetStore interface {
	Records[core.Budget, core.BudgetFields]
	PeriodLister[core.Budget]
}

type NoteStore = Records[core.Note, core.NoteFields]

type AssetStore = Records[core.Asset, core.AssetFields]

// Store groups the entity stores of one backend.
type Store interface {
	Transactions() TransactionStore
	Budgets() BudgetStore
	Notes() NoteStore
	Assets() AssetStore
	Users() auth.UserStore
	Ping(ctx context.Context) error
	Close() error
}

// Entity names, shared with the HTTP routes and event payloads.
const (
	EntityTransactions = "transactions"
	EntityBudgets      = "budgets"
	EntityNotes        = "notes"
	EntityAssets       = "assets"
)
