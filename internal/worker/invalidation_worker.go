package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// Invalidator drops derived data for an owner.
type Invalidator interface {
	Invalidate(owner string)
}

// Consumer delivers record events until ctx ends. *amqp.Client implements it.
type Consumer interface {
	ConsumeRecordEvents(ctx context.Context, handler amqp.Handler) error
}

// InvalidationWorker applies record events published by any instance to the
// local dashboard cache, so every instance drops stale views of an owner.
type InvalidationWorker struct {
	cache  Invalidator
	logger *log.Logger

	processed atomic.Int64
	rejected  atomic.Int64
}

func NewInvalidationWorker(cache Invalidator, logger *log.Logger) *InvalidationWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &InvalidationWorker{
		cache:  cache,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent processes a single record event from AMQP. Invalid
// events are counted and dropped; returning an error would requeue them
// forever.
func (w *InvalidationWorker) HandleRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	if ev == nil {
		w.rejected.Add(1)
		return nil
	}
	if err := ev.Validate(); err != nil {
		w.rejected.Add(1)
		w.logger.WarnContext(ctx, "Dropping invalid record event", log.FieldError, err)
		return nil
	}

	w.cache.Invalidate(ev.Owner)
	w.processed.Add(1)

	w.logger.DebugContext(ctx, "Applied record event",
		log.FieldEntity, ev.Entity,
		log.FieldRecordID, ev.RecordID,
		log.FieldOwnerID, ev.Owner,
		"action", ev.Action)
	return nil
}

// Run consumes events until ctx is cancelled. A cancelled context is not an
// error.
func (w *InvalidationWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Invalidation worker started")
	err := consumer.ConsumeRecordEvents(ctx, w.HandleRecordEvent)
	w.logger.InfoContext(ctx, "Invalidation worker stopped",
		"processed", w.processed.Load(),
		"rejected", w.rejected.Load())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume record events: %w", err)
	}
	return nil
}

// Stats returns the number of applied and rejected events.
func (w *InvalidationWorker) Stats() (processed, rejected int64) {
	return w.processed.Load(), w.rejected.Load()
}
