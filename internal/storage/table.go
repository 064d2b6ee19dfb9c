package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

// meta is the bookkeeping shared by every record row.
type meta struct {
	ID        string
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// table implements Records for one entity. Field columns are listed once
// and drive every statement.
type table[T any, F any] struct {
	db      *sql.DB
	dialect dialect
	name    string
	fields  []string
	orderBy string
	values  func(F) []any
	// scan receives pointers for the field columns, then builds T.
	scan func(rs rowScanner) (T, error)
	now  func() time.Time
}

func (t *table[T, F]) columns() string {
	cols := append([]string{"id", "user_id"}, t.fields...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

func (t *table[T, F]) selectFrom() string {
	return "SELECT " + t.columns() + " FROM " + t.name
}

func (t *table[T, F]) List(ctx context.Context, owner string) ([]T, error) {
	return t.query(ctx, "WHERE user_id = ?", owner)
}

// query runs a filtered select in the table's order.
func (t *table[T, F]) query(ctx context.Context, where string, args ...any) ([]T, error) {
	q := t.dialect.rebind(t.selectFrom() + " " + where + " ORDER BY " + t.orderBy)
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return out, nil
}

func (t *table[T, F]) Create(ctx context.Context, owner string, fields F) (T, error) {
	now := t.dialect.timeArg(t.now())
	args := append([]any{uuid.NewString(), owner}, t.values(fields)...)
	args = append(args, now, now)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	q := t.dialect.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, t.columns(), placeholders, t.columns()))

	rec, err := t.scan(t.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("insert %s: %w", t.name, err)
	}
	return rec, nil
}

func (t *table[T, F]) Update(ctx context.Context, owner, id string, fields F) (T, error) {
	sets := make([]string, 0, len(t.fields)+1)
	for _, f := range t.fields {
		sets = append(sets, f+" = ?")
	}
	sets = append(sets, "updated_at = ?")

	args := append(t.values(fields), t.dialect.timeArg(t.now()), id, owner)
	q := t.dialect.rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ? RETURNING %s",
		t.name, strings.Join(sets, ", "), t.columns()))

	rec, err := t.scan(t.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, core.ErrNotFound
		}
		return zero, fmt.Errorf("update %s: %w", t.name, err)
	}
	return rec, nil
}

func (t *table[T, F]) Delete(ctx context.Context, owner, id string) error {
	q := t.dialect.rebind("DELETE FROM " + t.name + " WHERE id = ? AND user_id = ?")
	res, err := t.db.ExecContext(ctx, q, id, owner)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// scanRow scans the shared columns around the entity's own field pointers.
func scanRow(rs rowScanner, m *meta, fields ...any) error {
	var created, updated dbTime
	dest := append([]any{&m.ID, &m.Owner}, fields...)
	dest = append(dest, &created, &updated)
	if err := rs.Scan(dest...); err != nil {
		return err
	}
	m.CreatedAt = created.Time
	m.UpdatedAt = updated.Time
	return nil
}
