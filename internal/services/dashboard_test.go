package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T) (*Dashboard, *Gateways) {
	t.Helper()
	store := memory.New()
	gw := NewGateways(store, Deps{Logger: log.Discard()})
	dash := NewDashboard(gw, DashboardOptions{Logger: log.Discard()})
	gw.SetInvalidator(dash)
	return dash, gw
}

func TestDashboard_BudgetComparison(t *testing.T) {
	dash, gw := newTestDashboard(t)
	ctx := context.Background()

	require.True(t, gw.Budgets.Create(ctx, core.BudgetFields{Category: "Food", Amount: decimal.NewFromInt(100), Month: "March", Year: "2024"}, "u1").Success)
	require.True(t, gw.Transactions.Create(ctx, expense(core.NewDate(2024, time.March, 5), "Food", "120"), "u1").Success)
	require.True(t, gw.Transactions.Create(ctx, expense(core.NewDate(2024, time.April, 5), "Food", "999"), "u1").Success)

	p, _ := core.NewPeriod(2024, time.March)
	res := dash.BudgetComparison(ctx, "u1", p)
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data, 1)
	row := res.Data[0]
	assert.Equal(t, "Food", row.Category)
	assert.True(t, row.IsOverBudget)
	assert.True(t, row.Difference.Equal(decimal.NewFromInt(-20)))

	total := dash.BudgetTotal(ctx, "u1", p)
	require.True(t, total.Success)
	assert.True(t, total.Data.Equal(decimal.NewFromInt(100)))
}

func TestDashboard_CachesUntilInvalidated(t *testing.T) {
	dash, gw := newTestDashboard(t)
	ctx := context.Background()

	_, err := gw.Assets.Create(ctx, core.AssetFields{Name: "Cash", Amount: decimal.NewFromInt(10), Currency: core.AED}, "u1").Unwrap()
	require.NoError(t, err)

	first := dash.AssetsTotal(ctx, "u1")
	require.True(t, first.Success)
	assert.Equal(t, "10", first.Data.String())

	hitsBefore, _ := dash.Cache().Stats()
	again := dash.AssetsTotal(ctx, "u1")
	hitsAfter, _ := dash.Cache().Stats()
	assert.Equal(t, hitsBefore+1, hitsAfter)
	assert.True(t, again.Data.Equal(first.Data))

	_, err = gw.Assets.Create(ctx, core.AssetFields{Name: "Brokerage", Amount: decimal.NewFromInt(100), Currency: core.USD}, "u1").Unwrap()
	require.NoError(t, err)

	after := dash.AssetsTotal(ctx, "u1")
	require.True(t, after.Success)
	assert.Equal(t, "377", after.Data.String())
}

func TestDashboard_InvalidateOnlyTouchesOwner(t *testing.T) {
	dash, _ := newTestDashboard(t)
	ctx := context.Background()

	dash.AssetsTotal(ctx, "u1")
	dash.AssetsTotal(ctx, "u2")
	require.Equal(t, 2, dash.Cache().Size())

	dash.Invalidate("u1")
	assert.Equal(t, 1, dash.Cache().Size())
}

func TestDashboard_MethodsAndYearly(t *testing.T) {
	dash, gw := newTestDashboard(t)
	ctx := context.Background()

	income := expense(core.NewDate(2024, time.February, 1), "Salary", "1000")
	income.Type = core.Income
	income.Method = "Bank"
	require.True(t, gw.Transactions.Create(ctx, income, "u1").Success)
	require.True(t, gw.Transactions.Create(ctx, expense(core.NewDate(2024, time.February, 2), "Food", "40"), "u1").Success)

	p, _ := core.NewPeriod(2024, time.February)
	methods := dash.Methods(ctx, "u1", p)
	require.True(t, methods.Success)
	require.Len(t, methods.Data, 2)
	assert.Equal(t, "Bank", methods.Data[0].Method)
	assert.True(t, methods.Data[0].Income.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Card", methods.Data[1].Method)

	yearly := dash.Yearly(ctx, "u1", 2024, core.Expenditure)
	require.True(t, yearly.Success)
	require.Len(t, yearly.Data.Series, 1)
	assert.Equal(t, "Food", yearly.Data.Series[0].Category)
	assert.True(t, yearly.Data.Series[0].Values[1].Equal(decimal.NewFromInt(40)))

	monthly := dash.Monthly(ctx, "u1", 2024)
	require.True(t, monthly.Success, monthly.Error)
	assert.True(t, monthly.Data.Income[1].Equal(decimal.NewFromInt(1000)))
	assert.True(t, monthly.Data.Net(1).Equal(decimal.NewFromInt(960)))

	bad := dash.Yearly(ctx, "u1", 2024, core.TransactionType("Other"))
	assert.False(t, bad.Success)
}

func TestDashboard_CustomRates(t *testing.T) {
	store := memory.New()
	gw := NewGateways(store, Deps{Logger: log.Discard()})
	dash := NewDashboard(gw, DashboardOptions{
		Rates:  analytics.Rates{core.USD: decimal.NewFromInt(4)},
		Logger: log.Discard(),
	})
	ctx := context.Background()

	require.True(t, gw.Assets.Create(ctx, core.AssetFields{Name: "Dollars", Amount: decimal.NewFromInt(5), Currency: core.USD}, "u1").Success)
	res := dash.AssetsTotal(ctx, "u1")
	require.True(t, res.Success)
	assert.Equal(t, "20", res.Data.String())
}

func TestDashboard_RequiresOwner(t *testing.T) {
	dash, _ := newTestDashboard(t)
	assert.Equal(t, MsgNotAuthenticated, dash.AssetsTotal(context.Background(), "").Error)
}

// pausingTransactions holds the first period query after it has read its
// rows, until release is closed.
type pausingTransactions struct {
	storage.TransactionStore
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func (p *pausingTransactions) ListByPeriod(ctx context.Context, owner string, period core.Period) ([]core.Transaction, error) {
	rows, err := p.TransactionStore.ListByPeriod(ctx, owner, period)
	if p.armed.CompareAndSwap(true, false) {
		close(p.paused)
		<-p.release
	}
	return rows, err
}

type pausingStore struct {
	*memory.Store
	txs *pausingTransactions
}

func (s pausingStore) Transactions() storage.TransactionStore { return s.txs }

func TestDashboard_WriteDuringComputeIsNotCached(t *testing.T) {
	mem := memory.New()
	txs := &pausingTransactions{
		TransactionStore: mem.Transactions(),
		paused:           make(chan struct{}),
		release:          make(chan struct{}),
	}
	txs.armed.Store(true)
	gw := NewGateways(pausingStore{Store: mem, txs: txs}, Deps{Logger: log.Discard()})
	dash := NewDashboard(gw, DashboardOptions{Logger: log.Discard()})
	gw.SetInvalidator(dash)
	ctx := context.Background()
	p, err := core.NewPeriod(2024, time.March)
	require.NoError(t, err)

	done := make(chan core.Result[[]analytics.MethodBreakdown], 1)
	go func() { done <- dash.Methods(ctx, "u1", p) }()

	<-txs.paused
	cash := expense(core.NewDate(2024, time.March, 5), "Food", "30")
	cash.Method = "Cash"
	require.True(t, gw.Transactions.Create(ctx, cash, "u1").Success)
	close(txs.release)

	first := <-done
	require.True(t, first.Success, first.Error)
	assert.Empty(t, first.Data)
	assert.Equal(t, 0, dash.Cache().Size())

	second := dash.Methods(ctx, "u1", p)
	require.True(t, second.Success, second.Error)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "Cash", second.Data[0].Method)
	assert.True(t, second.Data[0].Expenditure.Equal(decimal.NewFromInt(30)))
}
