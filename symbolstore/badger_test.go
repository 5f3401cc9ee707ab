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
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	})
	require.NoError(t, err)

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("key"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("value"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestOpenWithPath(t *testing.T) {
	dir, err := TempDir("symbolstore-badger-test-")
	require.NoError(t, err)
	defer CleanupDir(dir)

	db, err := OpenWithPath(dir)
	require.NoError(t, err)

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("persistent-key"), []byte("persistent-value"))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := OpenWithPath(dir)
	require.NoError(t, err)
	defer db2.Close()

	err = db2.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("persistent-key"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("persistent-value"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	cfg := Config{InMemory: false, Path: ""}
	_, err := Open(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestConfigFunctions(t *testing.T) {
	t.Run("DefaultConfig is durable and GC'd", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.True(t, cfg.SyncWrites)
		assert.False(t, cfg.InMemory)
		assert.Equal(t, 1, cfg.NumVersionsToKeep)
		assert.Equal(t, 5*time.Minute, cfg.GCInterval)
	})

	t.Run("InMemoryConfig disables sync and GC", func(t *testing.T) {
		cfg := InMemoryConfig()
		assert.True(t, cfg.InMemory)
		assert.False(t, cfg.SyncWrites)
		assert.Equal(t, time.Duration(0), cfg.GCInterval)
	})
}

func TestDB_WithTxn(t *testing.T) {
	db, err := OpenDB(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	err = db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte("txn-key"), []byte("txn-value"))
	})
	require.NoError(t, err)

	err = db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("txn-key"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("txn-value"), val)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestDB_WithTxn_ContextCancelled(t *testing.T) {
	db, err := OpenDB(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestDB_WithTxn_RollbackOnError(t *testing.T) {
	db, err := OpenDB(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	err = db.WithTxn(ctx, func(txn *badger.Txn) error {
		if err := txn.Set([]byte("rollback-key"), []byte("should-not-persist")); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.Error(t, err)

	err = db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("rollback-key"))
		assert.Equal(t, badger.ErrKeyNotFound, err)
		return nil
	})
	require.NoError(t, err)
}

func TestGCRunner(t *testing.T) {
	t.Run("rejects nil db", func(t *testing.T) {
		_, err := NewGCRunner(nil, time.Second, 0.5, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "db must not be nil")
	})

	t.Run("rejects invalid interval", func(t *testing.T) {
		db, err := OpenInMemory()
		require.NoError(t, err)
		defer db.Close()

		_, err = NewGCRunner(db, 0, 0.5, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "interval must be positive")
	})

	t.Run("rejects invalid ratio", func(t *testing.T) {
		db, err := OpenInMemory()
		require.NoError(t, err)
		defer db.Close()

		_, err = NewGCRunner(db, time.Second, 1.5, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ratio must be between 0 and 1")
	})

	t.Run("starts and stops without deadlock", func(t *testing.T) {
		db, err := OpenInMemory()
		require.NoError(t, err)
		defer db.Close()

		runner, err := NewGCRunner(db, 10*time.Millisecond, 0.5, nil)
		require.NoError(t, err)

		runner.Start()
		time.Sleep(25 * time.Millisecond)
		runner.Stop()
	})
}

func TestCleanupDir(t *testing.T) {
	t.Run("handles empty path", func(t *testing.T) {
		assert.NoError(t, CleanupDir(""))
	})

	t.Run("removes directory", func(t *testing.T) {
		dir, err := TempDir("symbolstore-cleanup-test-")
		require.NoError(t, err)
		assert.NoError(t, CleanupDir(dir))
	})
}
