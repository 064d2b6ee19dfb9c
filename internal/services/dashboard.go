package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDashboardCacheSize = 512
	DefaultDashboardCacheTTL  = 5 * time.Minute
)

// DashboardOptions configures NewDashboard. Zero values take the defaults.
type DashboardOptions struct {
	CacheSize int
	CacheTTL  time.Duration
	Rates     analytics.Rates
	Logger    *log.Logger
}

// Dashboard derives the analytics views from the gateways and caches them per
// owner until the owner's records change.
type Dashboard struct {
	gateways *Gateways
	rates    analytics.Rates
	cache    *cache.LRUCache[any]
	logger   *log.Logger

	// generations counts invalidations per owner. A view computed across an
	// invalidation is returned but not stored.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewDashboard(gateways *Gateways, opts DashboardOptions) *Dashboard {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultDashboardCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultDashboardCacheTTL
	}
	if len(opts.Rates) == 0 {
		opts.Rates = analytics.DefaultRates
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Dashboard{
		gateways: gateways,
		rates:    opts.Rates,
		cache:    cache.NewLRUCache[any](opts.CacheSize, opts.CacheTTL),
		logger:   logger.WithComponent(log.ComponentDashboard),

		generations: make(map[string]uint64),
	}
}

// Cache exposes the underlying cache so a cache.Manager can sweep it.
func (d *Dashboard) Cache() *cache.LRUCache[any] { return d.cache }

// Invalidate drops every cached view of owner.
func (d *Dashboard) Invalidate(owner string) {
	if owner == "" {
		return
	}
	d.mu.Lock()
	d.generations[owner]++
	n := d.cache.DeletePrefix(owner + "|")
	d.mu.Unlock()
	if n > 0 {
		d.logger.Debug("Dashboard cache invalidated", log.FieldOwnerID, owner, "entries", n)
	}
}

func (d *Dashboard) generation(owner string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generations[owner]
}

// store keeps v only if owner was not invalidated since gen was read.
func (d *Dashboard) store(owner string, gen uint64, key string, v any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generations[owner] != gen {
		return false
	}
	d.cache.Set(key, v)
	return true
}

// BudgetComparison compares the period's budgets with its spending.
func (d *Dashboard) BudgetComparison(ctx context.Context, owner string, p core.Period) core.Result[[]analytics.CategoryComparison] {
	return cached(d, owner, "budget-comparison", p.String(), func() ([]analytics.CategoryComparison, error) {
		budgets, txs, err := d.loadPeriod(ctx, owner, p)
		if err != nil {
			return nil, err
		}
		return analytics.CompareBudgetToSpend(budgets, txs), nil
	})
}

// BudgetTotal sums the budgets of the period.
func (d *Dashboard) BudgetTotal(ctx context.Context, owner string, p core.Period) core.Result[decimal.Decimal] {
	return cached(d, owner, "budget-total", p.String(), func() (decimal.Decimal, error) {
		budgets, err := d.gateways.Budgets.ListByPeriod(ctx, owner, p).Unwrap()
		if err != nil {
			return decimal.Zero, err
		}
		return analytics.TotalBudget(budgets, p), nil
	})
}

// Methods breaks the period's transactions down by payment method.
func (d *Dashboard) Methods(ctx context.Context, owner string, p core.Period) core.Result[[]analytics.MethodBreakdown] {
	return cached(d, owner, "methods", p.String(), func() ([]analytics.MethodBreakdown, error) {
		txs, err := d.gateways.Transactions.ListByPeriod(ctx, owner, p).Unwrap()
		if err != nil {
			return nil, err
		}
		return analytics.BreakdownByMethod(txs), nil
	})
}

// Yearly builds the month by category series for one year and type.
func (d *Dashboard) Yearly(ctx context.Context, owner string, year int, typ core.TransactionType) core.Result[analytics.YearlySeries] {
	if !typ.Valid() {
		return core.Fail[analytics.YearlySeries](core.ErrInvalidType)
	}
	key := strconv.Itoa(year) + "/" + string(typ)
	return cached(d, owner, "yearly", key, func() (analytics.YearlySeries, error) {
		txs, err := d.gateways.Transactions.List(ctx, owner).Unwrap()
		if err != nil {
			return analytics.YearlySeries{}, err
		}
		return analytics.SeriesByMonthAndCategory(txs, year, typ), nil
	})
}

// Monthly sets income against expenditure for every month of year.
func (d *Dashboard) Monthly(ctx context.Context, owner string, year int) core.Result[analytics.MonthlyBalance] {
	return cached(d, owner, "monthly", strconv.Itoa(year), func() (analytics.MonthlyBalance, error) {
		txs, err := d.gateways.Transactions.List(ctx, owner).Unwrap()
		if err != nil {
			return analytics.MonthlyBalance{}, err
		}
		return analytics.MonthlyTotals(txs, year), nil
	})
}

// AssetsTotal converts every asset to the base currency and sums them.
func (d *Dashboard) AssetsTotal(ctx context.Context, owner string) core.Result[decimal.Decimal] {
	return cached(d, owner, "assets-total", "", func() (decimal.Decimal, error) {
		assets, err := d.gateways.Assets.List(ctx, owner).Unwrap()
		if err != nil {
			return decimal.Zero, err
		}
		return d.rates.Total(assets), nil
	})
}

// loadPeriod fetches budgets and transactions of p concurrently.
func (d *Dashboard) loadPeriod(ctx context.Context, owner string, p core.Period) ([]core.Budget, []core.Transaction, error) {
	var (
		budgets []core.Budget
		txs     []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = d.gateways.Budgets.ListByPeriod(gctx, owner, p).Unwrap()
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = d.gateways.Transactions.ListByPeriod(gctx, owner, p).Unwrap()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return budgets, txs, nil
}

// cached serves kind/params for owner from the cache, or computes and stores
// it. Failures are never cached, and neither is a view whose owner changed
// records while it was being computed.
func cached[V any](d *Dashboard, owner, kind, params string, compute func() (V, error)) core.Result[V] {
	if owner == "" {
		return core.Result[V]{Error: MsgNotAuthenticated}
	}
	key := fmt.Sprintf("%s|%s|%s", owner, kind, params)
	if v, ok := d.cache.Get(key); ok {
		if typed, ok := v.(V); ok {
			return core.Ok(typed)
		}
	}

	gen := d.generation(owner)
	v, err := compute()
	if err != nil {
		d.logger.Warn("Dashboard view failed", log.FieldOwnerID, owner, "view", kind, log.FieldError, err)
		return core.Fail[V](err)
	}
	if !d.store(owner, gen, key, v) {
		d.logger.Debug("Dashboard view outdated before caching", log.FieldOwnerID, owner, "view", kind)
	}
	return core.Ok(v)
}
