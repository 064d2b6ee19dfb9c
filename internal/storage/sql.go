package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Config selects and locates a SQL database.
type Config struct {
	Driver string // DriverSQLite or DriverPostgres
	DSN    string // file path for SQLite, connection URL for Postgres
	// SkipMigrations leaves the schema alone, for callers that migrate
	// separately.
	SkipMigrations bool
}

// SQLStore is the database/sql backed Store.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *log.Logger

	transactions transactionTable
	budgets      budgetTable
	notes        NoteStore
	assets       AssetStore
	users        *userTable
}

var _ Store = (*SQLStore)(nil)

// Open connects, pings, and migrates the database up.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	dsn, err := driverDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName(cfg.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if !cfg.SkipMigrations {
		if err := Migrate(cfg); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info("Opened database", log.FieldBackend, cfg.Driver)
	return newSQLStore(db, dialect{name: cfg.Driver}, logger, time.Now), nil
}

func newSQLStore(db *sql.DB, d dialect, logger *log.Logger, now func() time.Time) *SQLStore {
	return &SQLStore{
		db:           db,
		dialect:      d,
		logger:       logger,
		transactions: newTransactionTable(db, d, now),
		budgets:      newBudgetTable(db, d, now),
		notes:        newNoteTable(db, d, now),
		assets:       newAssetTable(db, d, now),
		users:        &userTable{db: db, dialect: d},
	}
}

func driverName(driver string) string {
	if driver == DriverPostgres {
		return "pgx"
	}
	return "sqlite"
}

// driverDSN validates cfg and adds the SQLite pragmas.
func driverDSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.DSN == "" {
			return "", fmt.Errorf("sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return "", fmt.Errorf("create db directory: %w", err)
		}
		return cfg.DSN + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return "", fmt.Errorf("postgres DSN is required")
		}
		return cfg.DSN, nil
	}
	return "", fmt.Errorf("unsupported driver: %q", cfg.Driver)
}

func (s *SQLStore) Transactions() TransactionStore { return s.transactions }
func (s *SQLStore) Budgets() BudgetStore           { return s.budgets }
func (s *SQLStore) Notes() NoteStore               { return s.notes }
func (s *SQLStore) Assets() AssetStore             { return s.assets }
func (s *SQLStore) Users() auth.UserStore          { return s.users }

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
