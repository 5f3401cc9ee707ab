// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbolstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Config configures the embedded KV store badger.DB opens with.
type Config struct {
	// InMemory, when true, never touches disk; Path is ignored.
	InMemory bool

	// Path is the on-disk directory badger opens at. Required unless
	// InMemory is true.
	Path string

	// SyncWrites forces an fsync on every write, trading throughput for
	// crash durability.
	SyncWrites bool

	// NumVersionsToKeep caps how many versions of a key badger retains;
	// the symbol store has no use for history, so this defaults to 1.
	NumVersionsToKeep int

	// GCInterval is how often the GCRunner reclaims space; zero disables
	// the runner entirely.
	GCInterval time.Duration
}

// DefaultConfig is for production use: durable, single-version, GC'd
// every 5 minutes.
func DefaultConfig() Config {
	return Config{
		InMemory:          false,
		SyncWrites:        true,
		NumVersionsToKeep: 1,
		GCInterval:        5 * time.Minute,
	}
}

// InMemoryConfig is for tests: no disk, no GC, no fsync overhead.
func InMemoryConfig() Config {
	return Config{
		InMemory:          true,
		SyncWrites:        false,
		NumVersionsToKeep: 1,
		GCInterval:        0,
	}
}

func (c Config) options() (badger.Options, error) {
	if c.InMemory {
		opts := badger.DefaultOptions("").WithInMemory(true)
		opts = opts.WithLogger(nil)
		return opts, nil
	}
	if c.Path == "" {
		return badger.Options{}, fmt.Errorf("symbolstore: path is required for a non-in-memory store")
	}
	opts := badger.DefaultOptions(c.Path)
	opts.SyncWrites = c.SyncWrites
	if c.NumVersionsToKeep > 0 {
		opts.NumVersionsToKeep = c.NumVersionsToKeep
	}
	opts = opts.WithLogger(nil)
	return opts, nil
}

// OpenInMemory opens a raw in-memory badger.DB, bypassing Config — used
// by tests and by anything that wants direct badger.Txn access.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return badger.Open(opts)
}

// OpenWithPath opens a raw, on-disk badger.DB at dir with sensible
// defaults.
func OpenWithPath(dir string) (*badger.DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("symbolstore: path is required")
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	return badger.Open(opts)
}

// Open opens a raw badger.DB per cfg.
func Open(cfg Config) (*badger.DB, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	return badger.Open(opts)
}

// DB wraps a badger.DB with context-aware transaction helpers, the
// managed entry point every symbolstore.Store operation goes through.
type DB struct {
	raw *badger.DB
}

// OpenDB opens a managed DB per cfg.
func OpenDB(cfg Config) (*DB, error) {
	raw, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return &DB{raw: raw}, nil
}

// Raw exposes the underlying badger.DB for callers that need direct
// access (GCRunner, diagnostics).
func (d *DB) Raw() *badger.DB { return d.raw }

// Close closes the underlying badger.DB.
func (d *DB) Close() error { return d.raw.Close() }

// WithTxn runs fn inside a read-write transaction, aborting before it
// starts if ctx is already done.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return d.raw.Update(fn)
}

// WithReadTxn runs fn inside a read-only transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return d.raw.View(fn)
}

// GCRunner periodically invokes badger's value-log garbage collection on
// a background goroutine.
type GCRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewGCRunner validates its arguments and returns a runner that has not
// yet started; call Start to launch the background goroutine.
func NewGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) (*GCRunner, error) {
	if db == nil {
		return nil, fmt.Errorf("symbolstore: db must not be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("symbolstore: interval must be positive")
	}
	if ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("symbolstore: ratio must be between 0 and 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GCRunner{db: db, interval: interval, ratio: ratio, logger: logger, stopCh: make(chan struct{}), doneCh: make(chan struct{})}, nil
}

// Start launches the GC loop. Safe to call once.
func (r *GCRunner) Start() {
	go r.loop()
}

func (r *GCRunner) loop() {
	defer close(r.doneCh)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			for {
				if err := r.db.RunValueLogGC(r.ratio); err != nil {
					if err != badger.ErrNoRewrite {
						r.logger.Warn("symbolstore gc failed", slog.String("error", err.Error()))
					}
					break
				}
			}
		}
	}
}

// Stop signals the GC loop to exit and waits for it to do so.
func (r *GCRunner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh
}

// TempDir creates a fresh temporary directory with the given prefix, for
// tests that need a real on-disk store.
func TempDir(prefix string) (string, error) {
	return os.MkdirTemp("", prefix)
}

// CleanupDir removes dir and its contents. Empty dir is a no-op.
func CleanupDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
