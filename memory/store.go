// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory is a durable, queryable store of small free-text notes
// ("memories") with a cosine-similarity search surface layered on top by
// an external embedding endpoint. The persistent side lives in a
// WAL-journaled sqlite file; the embedding vectors are rebuilt into an
// in-process index every run rather than persisted in their own table.
package memory

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Record is one durable memory row.
type Record struct {
	MemID         string
	Type          string
	Goal          string
	Project       string
	Payload       []byte
	Dirty         bool
	Correct       int64
	Relevant      int64
	TimesUsed     int64
	CreatedAtUnix int64
}

// Store owns the memories.sqlite file. All writes go through a single
// *sql.DB (sqlite serializes writers internally; WAL mode lets reads
// proceed concurrently with a writer).
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) a WAL-journaled sqlite
// database at path and ensures the memories table exists.
func OpenStore(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS memories (
	memid                 TEXT PRIMARY KEY,
	type                  TEXT NOT NULL,
	goal                  TEXT NOT NULL,
	project               TEXT NOT NULL,
	payload               BLOB,
	dirty                 INTEGER NOT NULL DEFAULT 1,
	mstat_correct         INTEGER NOT NULL DEFAULT 0,
	mstat_relevant        INTEGER NOT NULL DEFAULT 0,
	mstat_times_used      INTEGER NOT NULL DEFAULT 0,
	created_at_unix_milli INTEGER NOT NULL,
	vec                   BLOB
);
`

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert adds a new memory row, marked dirty so the vectorizer picks it
// up on its next sweep.
func (s *Store) Insert(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (memid, type, goal, project, payload, dirty, mstat_correct, mstat_relevant, mstat_times_used, created_at_unix_milli)
		VALUES (?, ?, ?, ?, ?, 1, 0, 0, 0, ?)`,
		r.MemID, r.Type, r.Goal, r.Project, r.Payload, r.CreatedAtUnix)
	if err != nil {
		return fmt.Errorf("insert memory %s: %w", r.MemID, err)
	}
	return nil
}

// Erase deletes a memory row by id.
func (s *Store) Erase(ctx context.Context, memid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE memid = ?`, memid)
	if err != nil {
		return fmt.Errorf("erase memory %s: %w", memid, err)
	}
	return nil
}

// RecordUsage applies the §4.7 use-counter update: times_used += 1,
// correct += deltaCorrect, relevant += deltaRelevant.
func (s *Store) RecordUsage(ctx context.Context, memid string, deltaCorrect, deltaRelevant int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memories
		SET mstat_times_used = mstat_times_used + 1,
		    mstat_correct = mstat_correct + ?,
		    mstat_relevant = mstat_relevant + ?
		WHERE memid = ?`,
		deltaCorrect, deltaRelevant, memid)
	if err != nil {
		return fmt.Errorf("record usage for %s: %w", memid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record usage for %s: %w", memid, err)
	}
	if n == 0 {
		return fmt.Errorf("record usage for %s: no such memory", memid)
	}
	return nil
}

// Get fetches one record by id.
func (s *Store) Get(ctx context.Context, memid string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT memid, type, goal, project, payload, dirty, mstat_correct, mstat_relevant, mstat_times_used, created_at_unix_milli
		FROM memories WHERE memid = ?`, memid)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get memory %s: %w", memid, err)
	}
	return r, true, nil
}

// ListByIDs fetches multiple records in one round trip, preserving
// nothing about input order (callers that need ordering re-sort by the
// key they already have, e.g. a distance score).
func (s *Store) ListByIDs(ctx context.Context, memids []string) (map[string]Record, error) {
	out := make(map[string]Record, len(memids))
	if len(memids) == 0 {
		return out, nil
	}
	placeholders := make([]byte, 0, len(memids)*2)
	args := make([]any, 0, len(memids))
	for i, id := range memids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}
	query := fmt.Sprintf(`
		SELECT memid, type, goal, project, payload, dirty, mstat_correct, mstat_relevant, mstat_times_used, created_at_unix_milli
		FROM memories WHERE memid IN (%s)`, string(placeholders))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list memories: %w", err)
		}
		out[r.MemID] = r
	}
	return out, rows.Err()
}

// DirtyBatch returns up to limit memory ids still marked dirty, along
// with the text the vectorizer should embed (goal, which is what §4.7's
// worked examples embed).
type DirtyItem struct {
	MemID string
	Goal  string
}

func (s *Store) DirtyBatch(ctx context.Context, limit int) ([]DirtyItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT memid, goal FROM memories WHERE dirty = 1 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("dirty batch: %w", err)
	}
	defer rows.Close()

	var out []DirtyItem
	for rows.Next() {
		var item DirtyItem
		if err := rows.Scan(&item.MemID, &item.Goal); err != nil {
			return nil, fmt.Errorf("dirty batch: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// SetVector persists the embedding for memid (for crash-safe rebuild)
// and clears its dirty flag.
func (s *Store) SetVector(ctx context.Context, memid string, vec []float32) error {
	_, err := s.db.ExecContext(ctx, `UPDATE memories SET vec = ?, dirty = 0 WHERE memid = ?`, encodeVector(vec), memid)
	if err != nil {
		return fmt.Errorf("set vector for %s: %w", memid, err)
	}
	return nil
}

// AllVectors returns every (memid, vec) pair that currently has a
// non-null vector, for VectorIndex.Rebuild.
func (s *Store) AllVectors(ctx context.Context) (map[string][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT memid, vec FROM memories WHERE vec IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("all vectors: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var memid string
		var raw []byte
		if err := rows.Scan(&memid, &raw); err != nil {
			return nil, fmt.Errorf("all vectors: %w", err)
		}
		out[memid] = decodeVector(raw)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	var dirty int
	err := row.Scan(&r.MemID, &r.Type, &r.Goal, &r.Project, &r.Payload, &dirty, &r.Correct, &r.Relevant, &r.TimesUsed, &r.CreatedAtUnix)
	r.Dirty = dirty != 0
	return r, err
}
