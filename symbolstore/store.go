// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package symbolstore persists Definition records in an embedded,
// ordered key/value store (badger), keyed so a file's records can be
// deleted and reinserted atomically and a subtree can be listed by
// prefix scan.
package symbolstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/codeindex/ast"
)

// memberSeparator is the byte sequence spec.md's key table specifies
// between a c/ marker's ancestor prefix and its full path. Preserved
// verbatim rather than replaced with an ASCII separator.
const memberSeparator = "⚡"

const (
	defPrefix    = "d/"
	childPrefix  = "c/"
)

// Usage records a single resolved or unresolved reference attached to
// the declaration that contains it.
type Usage struct {
	GuessworkTargets []string `json:"guesswork_targets,omitempty"`
	ResolvedAs       string   `json:"resolved_as,omitempty"`
	DebugHint        string   `json:"debug_hint,omitempty"`
	LineNumber       uint32   `json:"line_number"`
}

// Definition is the persisted record for one declaration: everything a
// consumer needs without re-parsing the source file.
type Definition struct {
	OfficialPath     []string        `json:"official_path"`
	Kind             ast.SymbolKind  `json:"kind"`
	Usages           []Usage         `json:"usages,omitempty"`
	ThisIsAClass     string          `json:"this_is_a_class,omitempty"`
	DerivedFrom      []string        `json:"derived_from,omitempty"`
	ContainerPath    string          `json:"container_path,omitempty"`
	FullRange        ast.SourceRange `json:"full_range"`
	DeclarationRange ast.SourceRange `json:"declaration_range"`
	DefinitionRange  ast.SourceRange `json:"definition_range"`
}

// Path returns the Definition's canonical "::"-joined key.
func (d Definition) Path() string {
	return strings.Join(d.OfficialPath, "::")
}

// Store wraps a managed DB with the five operations spec.md §4.3 names.
type Store struct {
	db *DB
}

// NewStore wraps an already-open DB.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func defKey(path string) []byte {
	return []byte(defPrefix + path)
}

func childKey(ancestor, full string) []byte {
	return []byte(childPrefix + ancestor + memberSeparator + full)
}

// InsertDefinitions atomically deletes every existing record whose path
// starts with filePrefix and replaces it with defs, along with their c/
// membership markers. At-most-one writer per file is assumed; concurrent
// writers to distinct file prefixes are independent because badger's
// transaction conflict detection operates on the keys actually touched.
func (s *Store) InsertDefinitions(ctx context.Context, filePrefix string, defs []Definition) error {
	ctx, span := startInsertSpan(ctx, filePrefix, len(defs))
	defer span.End()
	start := time.Now()

	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		if err := deleteFilePrefix(txn, filePrefix); err != nil {
			return &StoreError{Op: "delete file prefix", Path: filePrefix, Cause: err}
		}
		var batchErrs []error
		for _, def := range defs {
			if err := writeDefinition(txn, def); err != nil {
				batchErrs = append(batchErrs, err)
			}
		}
		if len(batchErrs) > 0 {
			return &BatchError{Errors: batchErrs}
		}
		return nil
	})

	recordInsertMetrics(ctx, time.Since(start), len(defs), err == nil)
	return err
}

// RemoveFile deletes every record whose path starts with filePrefix,
// with no reinsertion.
func (s *Store) RemoveFile(ctx context.Context, filePrefix string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return deleteFilePrefix(txn, filePrefix)
	})
}

// Lookup reads the Definition at path, if any.
func (s *Store) Lookup(ctx context.Context, path string) (Definition, bool, error) {
	var def Definition
	found := false
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(defKey(path))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &def)
		})
	})
	if err != nil {
		return Definition{}, false, err
	}
	return def, found, nil
}

// ChildrenOf prefix-scans c/<prefix>⚡ and returns the full paths found
// under it; callers then Lookup the ones they need.
func (s *Store) ChildrenOf(ctx context.Context, prefix string) ([]string, error) {
	scan := []byte(childPrefix + prefix + memberSeparator)
	var out []string
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = scan
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
			key := string(it.Item().Key())
			full := strings.TrimPrefix(key, string(scan))
			out = append(out, full)
		}
		return nil
	})
	return out, err
}

// ApplyUsages attaches the resolver's output to each already-persisted
// Definition named by path, leaving official_path (and therefore every
// c/ membership marker) untouched since only the usages field changes.
func (s *Store) ApplyUsages(ctx context.Context, usagesByPath map[string][]Usage) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		for path, usages := range usagesByPath {
			item, err := txn.Get(defKey(path))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var def Definition
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &def)
			}); err != nil {
				return err
			}
			def.Usages = usages
			raw, err := json.Marshal(def)
			if err != nil {
				return fmt.Errorf("symbolstore: marshal definition %q: %w", path, err)
			}
			if err := txn.Set(defKey(path), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// DefinitionsUnderPrefix returns every Definition whose path starts with
// prefix (typically a file's global path), for callers that need full
// records rather than the bare paths ChildrenOf returns.
func (s *Store) DefinitionsUnderPrefix(ctx context.Context, prefix string) ([]Definition, error) {
	scan := []byte(defPrefix + prefix)
	var out []Definition
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scan
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
			var def Definition
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &def)
			}); err != nil {
				return err
			}
			out = append(out, def)
		}
		return nil
	})
	return out, err
}

// ByName scans every persisted Definition and returns those whose final
// official_path component equals name, for definition_by_name's
// "return all matches, caller ranks" contract. This package keeps no
// separate by-name index; a facade expecting many such lookups should
// cache the result of Dump itself instead of calling this repeatedly.
func (s *Store) ByName(ctx context.Context, name string) ([]Definition, error) {
	var out []Definition
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(defPrefix)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var def Definition
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &def)
			}); err != nil {
				return err
			}
			if len(def.OfficialPath) > 0 && def.OfficialPath[len(def.OfficialPath)-1] == name {
				out = append(out, def)
			}
		}
		return nil
	})
	return out, err
}

// DumpEntry is one diagnostic record returned by Dump.
type DumpEntry struct {
	Key   string
	Value string
}

// Dump enumerates every d/ and c/ key in order, for diagnostics.
func (s *Store) Dump(ctx context.Context) ([]DumpEntry, error) {
	var out []DumpEntry
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if !strings.HasPrefix(key, defPrefix) && !strings.HasPrefix(key, childPrefix) {
				continue
			}
			var val string
			if err := item.Value(func(v []byte) error {
				val = string(v)
				return nil
			}); err != nil {
				return err
			}
			out = append(out, DumpEntry{Key: key, Value: val})
		}
		return nil
	})
	return out, err
}

// writeDefinition writes the d/ record plus one c/ marker per ancestor
// prefix of its official_path (e.g. for a::b::c it writes markers under
// "a" and "a::b").
func writeDefinition(txn *badger.Txn, def Definition) error {
	if len(def.OfficialPath) == 0 {
		return ErrEmptyPath
	}
	path := def.Path()
	raw, err := json.Marshal(def)
	if err != nil {
		return &StoreError{Op: "marshal definition", Path: path, Cause: err}
	}
	if err := txn.Set(defKey(path), raw); err != nil {
		return &StoreError{Op: "write definition", Path: path, Cause: err}
	}
	for i := 1; i < len(def.OfficialPath); i++ {
		ancestor := strings.Join(def.OfficialPath[:i], "::")
		if err := txn.Set(childKey(ancestor, path), nil); err != nil {
			return &StoreError{Op: "write child marker", Path: path, Cause: err}
		}
	}
	return nil
}

// deleteFilePrefix removes every d/ key under filePrefix and every c/
// marker whose full path falls under it, reading each definition before
// deleting it so its ancestor markers can be found.
func deleteFilePrefix(txn *badger.Txn, filePrefix string) error {
	scan := []byte(defPrefix + filePrefix)
	var toDelete []Definition
	opts := badger.DefaultIteratorOptions
	opts.Prefix = scan
	it := txn.NewIterator(opts)
	for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
		item := it.Item()
		var def Definition
		if err := item.Value(func(v []byte) error {
			return json.Unmarshal(v, &def)
		}); err != nil {
			it.Close()
			return err
		}
		toDelete = append(toDelete, def)
	}
	it.Close()

	for _, def := range toDelete {
		path := def.Path()
		if err := txn.Delete(defKey(path)); err != nil {
			return err
		}
		for i := 1; i < len(def.OfficialPath); i++ {
			ancestor := strings.Join(def.OfficialPath[:i], "::")
			if err := txn.Delete(childKey(ancestor, path)); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
	}
	return nil
}
