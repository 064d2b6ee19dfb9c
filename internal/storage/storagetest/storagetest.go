// Package storagetest is a behavioural suite every storage.Store must pass.
package storagetest

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by open for every subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("TransactionRoundTrip", func(t *testing.T) { testTransactionRoundTrip(t, open(t)) })
	t.Run("TransactionPeriod", func(t *testing.T) { testTransactionPeriod(t, open(t)) })
	t.Run("BudgetPeriod", func(t *testing.T) { testBudgetPeriod(t, open(t)) })
	t.Run("OwnerScoping", func(t *testing.T) { testOwnerScoping(t, open(t)) })
	t.Run("NotesOrder", func(t *testing.T) { testNotesOrder(t, open(t)) })
	t.Run("AssetOptionalNotes", func(t *testing.T) { testAssets(t, open(t)) })
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func period(t *testing.T, year int, month time.Month) core.Period {
	t.Helper()
	p, err := core.NewPeriod(year, month)
	require.NoError(t, err)
	return p
}

// NewUser stores a user and returns its id.
func NewUser(t *testing.T, s storage.Store, email string) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, s.Users().CreateUser(context.Background(), auth.User{
		ID: id, Email: email, PasswordHash: "hash", CreatedAt: time.Now(),
	}))
	return id
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	id := NewUser(t, s, "a@gmail.com")

	got, err := s.Users().UserByEmail(ctx, "a@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	err = s.Users().CreateUser(ctx, auth.User{ID: uuid.NewString(), Email: "a@gmail.com", PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, auth.ErrUserExists)

	_, err = s.Users().UserByEmail(ctx, "missing@gmail.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func testTransactionRoundTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, "a@gmail.com")
	fields := core.TransactionFields{
		Date: core.NewDate(2025, time.March, 14), Type: core.Expenditure,
		Name: "Groceries", Category: "Food", Method: "Cash", Amount: amount("42.50"),
	}

	created, err := s.Transactions().Create(ctx, owner, fields)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, owner, created.Owner)
	assert.False(t, created.CreatedAt.IsZero())

	list, err := s.Transactions().List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "2025-03-14", got.Date.String())
	assert.Equal(t, core.Expenditure, got.Type)
	assert.Equal(t, "Groceries", got.Name)
	assert.True(t, got.Amount.Equal(amount("42.5")), "amount %s", got.Amount)

	fields.Amount = amount("50")
	fields.Name = "Weekly groceries"
	updated, err := s.Transactions().Update(ctx, owner, created.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, "Weekly groceries", updated.Name)
	assert.True(t, updated.Amount.Equal(amount("50")))
	assert.Equal(t, created.ID, updated.ID)

	require.NoError(t, s.Transactions().Delete(ctx, owner, created.ID))
	list, err = s.Transactions().List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.Transactions().Delete(ctx, owner, created.ID), core.ErrNotFound)
	_, err = s.Transactions().Update(ctx, owner, created.ID, fields)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testTransactionPeriod(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, "a@gmail.com")
	for _, d := range []core.Date{
		core.NewDate(2024, time.November, 30),
		core.NewDate(2024, time.December, 1),
		core.NewDate(2024, time.December, 31),
		core.NewDate(2025, time.January, 1),
	} {
		_, err := s.Transactions().Create(ctx, owner, core.TransactionFields{
			Date: d, Type: core.Income, Name: d.String(), Category: "Salary", Method: "FAB", Amount: amount("1"),
		})
		require.NoError(t, err)
	}

	dec, err := s.Transactions().ListByPeriod(ctx, owner, period(t, 2024, time.December))
	require.NoError(t, err)
	require.Len(t, dec, 2)
	assert.Equal(t, "2024-12-31", dec[0].Date.String(), "newest first")
	assert.Equal(t, "2024-12-01", dec[1].Date.String())

	all, err := s.Transactions().List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "2025-01-01", all[0].Date.String())
}

func testBudgetPeriod(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, "a@gmail.com")
	for _, b := range []core.BudgetFields{
		{Category: "Food", Amount: amount("500"), Month: "July", Year: "2025"},
		{Category: "Rent", Amount: amount("3000"), Month: "July", Year: "2025"},
		{Category: "Food", Amount: amount("450"), Month: "June", Year: "2025"},
		{Category: "Food", Amount: amount("400"), Month: "July", Year: "2024"},
	} {
		_, err := s.Budgets().Create(ctx, owner, b)
		require.NoError(t, err)
	}

	july, err := s.Budgets().ListByPeriod(ctx, owner, period(t, 2025, time.July))
	require.NoError(t, err)
	assert.Len(t, july, 2)
	for _, b := range july {
		assert.Equal(t, "July", b.Month)
		assert.Equal(t, "2025", b.Year)
	}
}

func testOwnerScoping(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice@gmail.com")
	bob := NewUser(t, s, "bob@gmail.com")

	note, err := s.Notes().Create(ctx, alice, core.NoteFields{Heading: "h", Content: "c"})
	require.NoError(t, err)

	list, err := s.Notes().List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Notes().Update(ctx, bob, note.ID, core.NoteFields{Heading: "x", Content: "y"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.Notes().Delete(ctx, bob, note.ID), core.ErrNotFound)

	list, err = s.Notes().List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "h", list[0].Heading)
}

func testNotesOrder(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, "a@gmail.com")
	for _, h := range []string{"first", "second", "third"} {
		_, err := s.Notes().Create(ctx, owner, core.NoteFields{Heading: h, Content: "c"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	list, err := s.Notes().List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{list[0].Heading, list[1].Heading, list[2].Heading})
}

func testAssets(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := NewUser(t, s, "a@gmail.com")

	a, err := s.Assets().Create(ctx, owner, core.AssetFields{Name: "Gold", Amount: amount("10.125"), Currency: core.USD})
	require.NoError(t, err)
	assert.Equal(t, "", a.Notes)
	assert.Equal(t, core.USD, a.Currency)

	list, err := s.Assets().List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(amount("10.125")), "amount %s", list[0].Amount)

	a, err = s.Assets().Update(ctx, owner, a.ID, core.AssetFields{Name: "Gold", Amount: amount("12"), Currency: core.USD, Notes: "vault"})
	require.NoError(t, err)
	assert.Equal(t, "vault", a.Notes)

	require.NoError(t, s.Ping(ctx))
}
