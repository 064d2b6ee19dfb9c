package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// dbDate scans a DATE column (Postgres) or YYYY-MM-DD text (SQLite).
type dbDate struct {
	core.Date
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = core.NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("scan date: unsupported type %T", src)
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	parsed, err := core.ParseDate(s)
	if err != nil {
		return err
	}
	d.Date = parsed
	return nil
}

type transactionTable struct {
	*table[core.Transaction, core.TransactionFields]
}

func newTransactionTable(db *sql.DB, d dialect, now func() time.Time) transactionTable {
	return transactionTable{&table[core.Transaction, core.TransactionFields]{
		db:      db,
		dialect: d,
		name:    EntityTransactions,
		fields:  []string{"date", "type", "name", "category", "method", "amount"},
		orderBy: "date DESC, created_at DESC",
		now:     now,
		values: func(f core.TransactionFields) []any {
			return []any{f.Date.String(), string(f.Type), f.Name, f.Category, f.Method, f.Amount}
		},
		scan: func(rs rowScanner) (core.Transaction, error) {
			var (
				m      meta
				date   dbDate
				typ    string
				amount decimal.Decimal
				t      core.Transaction
			)
			if err := scanRow(rs, &m, &date, &typ, &t.Name, &t.Category, &t.Method, &amount); err != nil {
				return t, err
			}
			t.ID, t.Owner, t.CreatedAt, t.UpdatedAt = m.ID, m.Owner, m.CreatedAt, m.UpdatedAt
			t.Date, t.Type, t.Amount = date.Date, core.TransactionType(typ), amount
			return t, nil
		},
	}}
}

// ListByPeriod returns the owner's transactions dated inside the month.
func (t transactionTable) ListByPeriod(ctx context.Context, owner string, p core.Period) ([]core.Transaction, error) {
	from, to := p.Range()
	return t.query(ctx, "WHERE user_id = ? AND date >= ? AND date < ?", owner, from.String(), to.String())
}

type budgetTable struct {
	*table[core.Budget, core.BudgetFields]
}

func newBudgetTable(db *sql.DB, d dialect, now func() time.Time) budgetTable {
	return budgetTable{&table[core.Budget, core.BudgetFields]{
		db:      db,
		dialect: d,
		name:    EntityBudgets,
		fields:  []string{"category", "amount", "month", "year"},
		orderBy: "created_at DESC",
		now:     now,
		values: func(f core.BudgetFields) []any {
			return []any{f.Category, f.Amount, f.Month, f.Year}
		},
		scan: func(rs rowScanner) (core.Budget, error) {
			var (
				m meta
				b core.Budget
			)
			if err := scanRow(rs, &m, &b.Category, &b.Amount, &b.Month, &b.Year); err != nil {
				return b, err
			}
			b.ID, b.Owner, b.CreatedAt, b.UpdatedAt = m.ID, m.Owner, m.CreatedAt, m.UpdatedAt
			return b, nil
		},
	}}
}

// ListByPeriod returns the owner's budgets for the month.
func (b budgetTable) ListByPeriod(ctx context.Context, owner string, p core.Period) ([]core.Budget, error) {
	return b.query(ctx, "WHERE user_id = ? AND month = ? AND year = ?", owner, p.MonthName(), p.YearString())
}

func newNoteTable(db *sql.DB, d dialect, now func() time.Time) *table[core.Note, core.NoteFields] {
	return &table[core.Note, core.NoteFields]{
		db:      db,
		dialect: d,
		name:    EntityNotes,
		fields:  []string{"heading", "content"},
		orderBy: "created_at DESC",
		now:     now,
		values: func(f core.NoteFields) []any {
			return []any{f.Heading, f.Content}
		},
		scan: func(rs rowScanner) (core.Note, error) {
			var (
				m meta
				n core.Note
			)
			if err := scanRow(rs, &m, &n.Heading, &n.Content); err != nil {
				return n, err
			}
			n.ID, n.Owner, n.CreatedAt, n.UpdatedAt = m.ID, m.Owner, m.CreatedAt, m.UpdatedAt
			return n, nil
		},
	}
}

func newAssetTable(db *sql.DB, d dialect, now func() time.Time) *table[core.Asset, core.AssetFields] {
	return &table[core.Asset, core.AssetFields]{
		db:      db,
		dialect: d,
		name:    EntityAssets,
		fields:  []string{"name", "amount", "currency", "notes"},
		orderBy: "created_at DESC",
		now:     now,
		values: func(f core.AssetFields) []any {
			var notes any
			if f.Notes != "" {
				notes = f.Notes
			}
			return []any{f.Name, f.Amount, string(f.Currency), notes}
		},
		scan: func(rs rowScanner) (core.Asset, error) {
			var (
				m        meta
				a        core.Asset
				currency string
				notes    sql.NullString
			)
			if err := scanRow(rs, &m, &a.Name, &a.Amount, &currency, &notes); err != nil {
				return a, err
			}
			a.ID, a.Owner, a.CreatedAt, a.UpdatedAt = m.ID, m.Owner, m.CreatedAt, m.UpdatedAt
			a.Currency, a.Notes = core.Currency(currency), notes.String
			return a, nil
		},
	}
}
