// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Index ties the persistent Store, the volatile VectorIndex and the
// background Vectorizer together behind the four operations spec.md §6
// names for the memory side.
type Index struct {
	store *Store
	vec   *VectorIndex
}

// Open opens (or creates) the sqlite file at path and rebuilds the
// in-process VectorIndex from whatever vectors are already persisted.
func Open(ctx context.Context, path string) (*Index, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	vec := NewVectorIndex()
	if err := vec.Rebuild(ctx, store); err != nil {
		store.Close()
		return nil, fmt.Errorf("rebuild vector index: %w", err)
	}
	return &Index{store: store, vec: vec}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	return idx.store.Close()
}

// MemoRecord is the join of a persistent Record with the query distance
// that produced it, per spec.md §6's memory_search(...) → [MemoRecord].
type MemoRecord struct {
	MemID     string
	Type      string
	Goal      string
	Project   string
	Payload   []byte
	Distance  float32
	TimesUsed int64
	Correct   int64
	Relevant  int64
}

// Add persists a new memory and marks it dirty for the vectorizer,
// returning its generated id.
func (idx *Index) Add(ctx context.Context, memType, goal, project string, payload []byte) (string, error) {
	memid := uuid.NewString()
	err := idx.store.Insert(ctx, Record{
		MemID:         memid,
		Type:          memType,
		Goal:          goal,
		Project:       project,
		Payload:       payload,
		CreatedAtUnix: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return memid, nil
}

// Erase removes a memory from both the persistent store and the
// in-process vector index.
func (idx *Index) Erase(ctx context.Context, memid string) error {
	if err := idx.store.Erase(ctx, memid); err != nil {
		return err
	}
	idx.vec.Remove(memid)
	return nil
}

// Used applies the §4.7 use-counter update.
func (idx *Index) Used(ctx context.Context, memid string, deltaCorrect, deltaRelevant int64) error {
	return idx.store.RecordUsage(ctx, memid, deltaCorrect, deltaRelevant)
}

// Search embeds query with embedder, finds the topN nearest vectors by
// cosine distance, and joins the hits back to full persistent records,
// sorted ascending by distance (ties broken by memid for determinism).
func (idx *Index) Search(ctx context.Context, embedder *Embedder, query string, topN int) ([]MemoRecord, error) {
	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := idx.vec.Search(queryVec, topN)
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.MemID
	}
	records, err := idx.store.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]MemoRecord, 0, len(hits))
	for _, h := range hits {
		r, ok := records[h.MemID]
		if !ok {
			continue // erased between the vector hit and the join
		}
		out = append(out, MemoRecord{
			MemID:     r.MemID,
			Type:      r.Type,
			Goal:      r.Goal,
			Project:   r.Project,
			Payload:   r.Payload,
			Distance:  h.Distance,
			TimesUsed: r.TimesUsed,
			Correct:   r.Correct,
			Relevant:  r.Relevant,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].MemID < out[j].MemID
	})
	return out, nil
}

// Vectorizer returns a Vectorizer wired to this Index's store and
// in-process vector table, ready for Run to be started in a goroutine.
func (idx *Index) Vectorizer(embedder *Embedder, opts VectorizerOptions) *Vectorizer {
	return NewVectorizer(idx.store, idx.vec, embedder, opts)
}
