package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLStore(ctx, storage.DriverSQLite, config.SQLiteDBPath, config.SkipMigrations)
	case PostgresBackend:
		store, err = f.createSQLStore(ctx, storage.DriverPostgres, config.DatabaseURL, config.SkipMigrations)
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	events := f.connectEvents(config)

	return &BackendResult{
		Store:  store,
		Events: events,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSQLStore(ctx context.Context, driver, dsn string, skipMigrations bool) (storage.Store, error) {
	store, err := storage.Open(ctx, storage.Config{
		Driver:         driver,
		DSN:            dsn,
		SkipMigrations: skipMigrations,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", driver, err)
	}
	f.logger.Info("Initialized SQL backend", log.FieldBackend, driver)
	return store, nil
}

// connectEvents dials the broker when configured. An unreachable broker
// disables events instead of failing startup.
func (f *DefaultFactory) connectEvents(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	opts := eventOptions(config)
	opts.Logger = f.logger
	client, err := amqp.NewClient(opts)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without record events", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", opts.Exchange,
		"queue", opts.Queue)
	return client
}

// eventOptions gives long-running instances their own exclusive queue.
// Processes without an instance id only publish, so they declare no queue
// and leave nothing behind to fill up.
func eventOptions(config Config) amqp.Options {
	opts := amqp.Options{URL: config.AMQPURL, Exchange: config.AMQPExchange}
	if config.InstanceID != "" {
		opts.Queue = config.AMQPQueue + "." + config.InstanceID
		opts.Ephemeral = true
	}
	return opts
}
