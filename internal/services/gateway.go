// Package services sits between the transports and storage. The gateway is
// the only path to records: it validates, scopes by owner, converts every
// failure into a core.Result, and announces committed changes.
package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Messages returned in failed results that callers branch on.
const (
	MsgNotAuthenticated = "User not authenticated"
	MsgNoPeriod         = "records of this type have no period"
)

// Publisher announces record changes. *amqp.Client implements it.
type Publisher interface {
	PublishRecordEvent(ctx context.Context, ev amqp.RecordEvent) error
}

// Invalidator drops derived data for an owner after a change.
type Invalidator interface {
	Invalidate(owner string)
}

// Validator is implemented by the core field structs.
type Validator interface {
	Validate() error
}

// Deps are the optional collaborators shared by every gateway.
type Deps struct {
	Publisher Publisher
	Cache     Invalidator
	Logger    *log.Logger
}

// Gateway is the record store contract for one entity.
type Gateway[T core.Record, F Validator] struct {
	entity string
	noun   string
	store  storage.Records[T, F]
	period storage.PeriodLister[T]
	deps   Deps
	logger *log.Logger
	sl     *log.StructuredLogger
}

// NewGateway wraps store. Period listing is available when store also
// implements storage.PeriodLister.
func NewGateway[T core.Record, F Validator](entity, noun string, store storage.Records[T, F], deps Deps) *Gateway[T, F] {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentGateway)

	g := &Gateway[T, F]{
		entity: entity,
		noun:   noun,
		store:  store,
		deps:   deps,
		logger: logger,
		sl:     log.NewStructuredLogger(logger),
	}
	if pl, ok := store.(storage.PeriodLister[T]); ok {
		g.period = pl
	}
	return g
}

func (g *Gateway[T, F]) Entity() string { return g.entity }

func (g *Gateway[T, F]) List(ctx context.Context, owner string) core.Result[[]T] {
	if owner == "" {
		return core.Result[[]T]{Error: MsgNotAuthenticated}
	}
	records, err := g.store.List(ctx, owner)
	if err != nil {
		return failed[[]T](g, ctx, log.OpList, "", owner, err)
	}
	return core.Ok(records)
}

// ListByPeriod returns the owner's records inside p. Entities without a
// period fail.
func (g *Gateway[T, F]) ListByPeriod(ctx context.Context, owner string, p core.Period) core.Result[[]T] {
	if owner == "" {
		return core.Result[[]T]{Error: MsgNotAuthenticated}
	}
	if g.period == nil {
		return core.Result[[]T]{Error: MsgNoPeriod}
	}
	records, err := g.period.ListByPeriod(ctx, owner, p)
	if err != nil {
		return failed[[]T](g, ctx, log.OpListByPeriod, "", owner, err)
	}
	return core.Ok(records)
}

func (g *Gateway[T, F]) Create(ctx context.Context, fields F, owner string) core.Result[T] {
	if owner == "" {
		return core.Result[T]{Error: MsgNotAuthenticated}
	}
	if err := fields.Validate(); err != nil {
		return core.Fail[T](err)
	}
	rec, err := g.store.Create(ctx, owner, fields)
	if err != nil {
		return failed[T](g, ctx, log.OpCreate, "", owner, err)
	}
	g.changed(ctx, log.OpCreate, amqp.ActionCreated, rec.RecordID(), owner)
	return core.Ok(rec)
}

// Update replaces the fields of a record the owner holds. A record that is
// missing or owned by someone else yields "record not found".
func (g *Gateway[T, F]) Update(ctx context.Context, id string, fields F, owner string) core.Result[T] {
	if owner == "" {
		return core.Result[T]{Error: MsgNotAuthenticated}
	}
	if id == "" {
		return core.Fail[T](core.ErrNotFound)
	}
	if err := fields.Validate(); err != nil {
		return core.Fail[T](err)
	}
	rec, err := g.store.Update(ctx, owner, id, fields)
	if err != nil {
		return failed[T](g, ctx, log.OpUpdate, id, owner, err)
	}
	g.changed(ctx, log.OpUpdate, amqp.ActionUpdated, id, owner)
	return core.Ok(rec)
}

func (g *Gateway[T, F]) Delete(ctx context.Context, id, owner string) core.Result[core.Empty] {
	if owner == "" {
		return core.Result[core.Empty]{Error: MsgNotAuthenticated}
	}
	if id == "" {
		return core.Fail[core.Empty](core.ErrNotFound)
	}
	if err := g.store.Delete(ctx, owner, id); err != nil {
		return failed[core.Empty](g, ctx, log.OpDelete, id, owner, err)
	}
	g.changed(ctx, log.OpDelete, amqp.ActionDeleted, id, owner)
	return core.Ok(core.Empty{})
}

// changed runs the after-commit work. Neither step can fail the operation.
func (g *Gateway[T, F]) changed(ctx context.Context, op string, action amqp.Action, id, owner string) {
	g.sl.LogRecordChange(ctx, op, g.entity, id, owner)

	if g.deps.Cache != nil {
		g.deps.Cache.Invalidate(owner)
	}
	if g.deps.Publisher == nil {
		return
	}
	if err := g.deps.Publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(g.entity, action, id, owner)); err != nil {
		g.logger.WarnContext(ctx, "Failed to publish record event",
			log.FieldEntity, g.entity, log.FieldRecordID, id, log.FieldError, err)
	}
}

// failed logs err and shapes the user-facing result. Not found keeps its
// message. Anything else becomes "failed to <op> <noun>".
func failed[R any, T core.Record, F Validator](g *Gateway[T, F], ctx context.Context, op, id, owner string, err error) core.Result[R] {
	if errors.Is(err, core.ErrNotFound) {
		return core.Fail[R](core.ErrNotFound)
	}
	g.sl.LogError(ctx, "Gateway call failed", err, op, log.NewFields().WithRecord(g.entity, id, owner))
	switch op {
	case log.OpList, log.OpListByPeriod:
		return core.Fail[R](fmt.Errorf("failed to load %ss", g.noun))
	}
	return core.Fail[R](fmt.Errorf("failed to %s %s", op, g.noun))
}

// Gateways bundles the four record gateways over one store.
type Gateways struct {
	Transactions *Gateway[core.Transaction, core.TransactionFields]
	Budgets      *Gateway[core.Budget, core.BudgetFields]
	Notes        *Gateway[core.Note, core.NoteFields]
	Assets       *Gateway[core.Asset, core.AssetFields]
}

func NewGateways(store storage.Store, deps Deps) *Gateways {
	return &Gateways{
		Transactions: NewGateway(storage.EntityTransactions, "transaction", storage.Records[core.Transaction, core.TransactionFields](store.Transactions()), deps),
		Budgets:      NewGateway(storage.EntityBudgets, "budget", storage.Records[core.Budget, core.BudgetFields](store.Budgets()), deps),
		Notes:        NewGateway(storage.EntityNotes, "note", store.Notes(), deps),
		Assets:       NewGateway(storage.EntityAssets, "asset", store.Assets(), deps),
	}
}

// SetInvalidator points every gateway's change hook at inv. The dashboard
// reads through the gateways it invalidates, so it is attached after both
// exist. Call it before the gateways are shared.
func (gs *Gateways) SetInvalidator(inv Invalidator) {
	gs.Transactions.deps.Cache = inv
	gs.Budgets.deps.Cache = inv
	gs.Notes.deps.Cache = inv
	gs.Assets.deps.Cache = inv
}
