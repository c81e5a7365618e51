package pagesearch

import (
	"context"
	"log/slog"

	"github.com/poiesic/pagesearch/ingestion"
	"github.com/poiesic/pagesearch/search"
	"github.com/poiesic/pagesearch/server"
	"github.com/poiesic/pagesearch/storage"
	"github.com/poiesic/pagesearch/storage/badger"
)

// Database wires the page store, its indexes and the services built on it.
// The underlying database is opened on first use.
type Database struct {
	config   *Config
	conn     *badger.Connector
	bookRepo *badger.BookRepository
	pageRepo *badger.PageRepository
	indexes  *badger.IndexManager
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger for the database and its components.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase creates a Database from cfg. A nil cfg means DefaultConfig().
func NewDatabase(cfg *Config, opts ...DatabaseOption) (*Database, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	conn := badger.NewConnector(cfg.DBPath, cfg.InMemory,
		badger.WithLogger(logger),
		badger.WithRetry(cfg.MaxRetries, cfg.RetryDelay))

	return &Database{
		config:   cfg,
		conn:     conn,
		bookRepo: badger.NewBookRepository(conn),
		pageRepo: badger.NewPageRepository(conn),
		indexes:  badger.NewIndexManager(conn, logger),
		logger:   logger,
	}, nil
}

// Open creates a Database and ensures its indexes, failing if the
// database cannot be opened.
func Open(ctx context.Context, cfg *Config, opts ...DatabaseOption) (*Database, error) {
	db, err := NewDatabase(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureIndexes creates or rebuilds the indexes the search depends on.
// Safe to call on every start.
func (db *Database) EnsureIndexes(ctx context.Context) error {
	return db.indexes.EnsureIndexes(ctx)
}

// RebuildIndexes drops and rebuilds every index.
func (db *Database) RebuildIndexes(ctx context.Context) error {
	return db.indexes.Rebuild(ctx)
}

// Close closes the underlying database.
func (db *Database) Close() error {
	if err := db.pageRepo.Close(); err != nil {
		db.logger.Error("error closing page repository", "err", err)
		return err
	}
	if err := db.bookRepo.Close(); err != nil {
		db.logger.Error("error closing book repository", "err", err)
		return err
	}
	if err := db.conn.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the configuration the database was created with.
func (db *Database) Config() *Config {
	return db.config
}

func (db *Database) BookRepository() storage.BookRepository {
	return db.bookRepo
}

func (db *Database) PageRepository() storage.PageRepository {
	return db.pageRepo
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(db.pageRepo, opts...)
}

func (db *Database) NewImporter(opts ...ingestion.Option) (*ingestion.Importer, error) {
	opts = append([]ingestion.Option{
		ingestion.WithPoolSize(db.config.PoolSize),
		ingestion.WithLogger(db.logger),
	}, opts...)
	return ingestion.NewImporter(db.bookRepo, db.pageRepo, opts...)
}

func (db *Database) NewServer(opts ...server.Option) (*server.Server, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	opts = append([]server.Option{server.WithLogger(db.logger)}, opts...)
	return server.NewServer(db.bookRepo, searcher, opts...)
}
