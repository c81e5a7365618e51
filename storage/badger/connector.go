package badger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/pagesearch/storage"
)

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = 5 * time.Millisecond
	maxRetryDelay      = time.Second
)

// Connector owns the process-wide database handle.
//
// The handle is established on first use and reused afterwards. A failed
// open leaves the connector unestablished so the next call tries again, and
// a handle found closed is discarded the same way.
type Connector struct {
	path        string
	inMemory    bool
	maxAttempts int
	retryDelay  time.Duration
	open        func(path string, inMemory bool) (*Backend, error)
	logger      *slog.Logger

	mu      sync.Mutex
	backend *Backend
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ConnectorOption {
	return func(c *Connector) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// WithRetry sets how often a conflicting upsert is attempted and the base
// delay of the exponential backoff between attempts.
func WithRetry(maxAttempts int, baseDelay time.Duration) ConnectorOption {
	return func(c *Connector) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		c.maxAttempts = maxAttempts
		c.retryDelay = baseDelay
	}
}

// NewConnector creates an unestablished connector for the database at path.
// With inMemory set the path is ignored.
func NewConnector(path string, inMemory bool, opts ...ConnectorOption) *Connector {
	c := &Connector{
		path:        path,
		inMemory:    inMemory,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		open:        OpenBackend,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the established handle, opening the database if needed.
// Returns storage.ErrNotConfigured if the database cannot be opened.
func (c *Connector) Backend() (*Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		if !c.backend.IsClosed() {
			return c.backend, nil
		}
		c.logger.Warn("database handle was closed, reconnecting", "path", c.path)
		c.backend = nil
	}

	if c.path == "" && !c.inMemory {
		return nil, fmt.Errorf("%w: no database path", storage.ErrNotConfigured)
	}

	backend, err := c.open(c.path, c.inMemory)
	if err != nil {
		c.logger.Error("error opening database", "path", c.path, "err", err)
		return nil, fmt.Errorf("%w: %w", storage.ErrNotConfigured, err)
	}
	c.logger.Debug("database opened", "path", c.path, "inMemory", c.inMemory)
	c.backend = backend
	return backend, nil
}

// Established reports whether a live handle is held.
func (c *Connector) Established() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend != nil && !c.backend.IsClosed()
}

// Close closes the handle if one is held. The connector may be used again
// afterwards; the next call reopens the database.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend == nil {
		return nil
	}
	backend := c.backend
	c.backend = nil
	if backend.IsClosed() {
		return nil
	}
	return backend.Close()
}
