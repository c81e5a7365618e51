// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pagesearch

import (
	"errors"
	"runtime"
	"time"
)

// Config holds configuration for a Database and the services built on it.
type Config struct {
	// DBPath is the directory holding the database files.
	// Ignored when InMemory is set.
	DBPath string

	// InMemory keeps the database in memory only. Intended for tests.
	InMemory bool

	// ListenAddr is the address the HTTP API listens on.
	// Example: ":8080", "127.0.0.1:9000"
	ListenAddr string

	// MaxRetries is how many times a conflicting upsert is attempted.
	// Default: 5
	MaxRetries int

	// RetryDelay is the base delay of the exponential backoff between
	// conflicting upsert attempts.
	// Default: 5ms
	RetryDelay time.Duration

	// PoolSize is the number of workers writing pages during a PDF import.
	// Default: runtime.NumCPU() / 2, with a minimum of 1
	PoolSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDBPath sets the database directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithInMemory keeps the database in memory.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithListenAddr sets the HTTP listen address.
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithMaxRetries sets how many times a conflicting upsert is attempted.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryDelay sets the base backoff delay between conflicting upserts.
func WithRetryDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithPoolSize sets the number of page import workers.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// DefaultConfig returns a Config with sensible defaults for a local install.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		DBPath:     "pagesearch-data",
		ListenAddr: ":8080",
		MaxRetries: 5,
		RetryDelay: 5 * time.Millisecond,
		PoolSize:   poolSize,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithDBPath("/var/lib/pagesearch"),
//       WithListenAddr(":9000"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.DBPath == "" && !c.InMemory {
		return errors.New("config: DBPath is required unless InMemory is set")
	}
	if c.ListenAddr == "" {
		return errors.New("config: ListenAddr is required")
	}
	if c.MaxRetries < 1 {
		return errors.New("config: MaxRetries must be at least 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("config: RetryDelay must not be negative")
	}
	if c.PoolSize < 1 {
		return errors.New("config: PoolSize must be at least 1")
	}
	return nil
}
