// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package codeindex wires the ast, markup, resolve, symbolstore,
// scheduler, skeleton, and memory packages into the single facade a
// command-line or HTTP front end drives: one Index per project root,
// exposing every operation as a method rather than scattering the
// wiring across cmd/.
package codeindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/config"
	"github.com/AleutianAI/codeindex/markup"
	"github.com/AleutianAI/codeindex/memory"
	"github.com/AleutianAI/codeindex/resolve"
	"github.com/AleutianAI/codeindex/scheduler"
	"github.com/AleutianAI/codeindex/skeleton"
	"github.com/AleutianAI/codeindex/symbolstore"
)

// Index is the top-level handle a consumer opens once per project root.
// It owns the symbol store's badger.DB and, when memory is enabled, the
// memory store's sqlite connection; Close releases both.
type Index struct {
	root      string
	registry  *ast.Registry
	db        *symbolstore.DB
	store     *symbolstore.Store
	resolver  *resolve.Resolver
	scheduler *scheduler.Scheduler
	logger    *slog.Logger

	memory      *memory.Index
	embedder    *memory.Embedder
	memoryClose func() error
}

// Open builds every layer of the index for root using cfg's data
// directory, registers the default per-language parsers, and starts the
// scheduler watching root. When cfg.Memory.Enabled is set, it also opens
// the memory store and starts its background vectorizer.
func Open(ctx context.Context, root string, cfg config.CodeIndexConfig, schedOpts ...scheduler.Option) (*Index, error) {
	logger := slog.Default()

	symbolsDir := filepath.Join(cfg.DataDir, "symbols")
	if err := os.MkdirAll(symbolsDir, 0o755); err != nil {
		return nil, fmt.Errorf("codeindex: create symbol store dir: %w", err)
	}
	db, err := symbolstore.OpenDB(symbolstore.Config{
		Path:              symbolsDir,
		SyncWrites:        true,
		NumVersionsToKeep: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("codeindex: open symbol store: %w", err)
	}

	store := symbolstore.NewStore(db)
	resolver := resolve.NewResolver()
	registry := ast.NewDefaultRegistry()

	opts := append([]scheduler.Option{scheduler.WithLogger(logger)}, schedOpts...)
	sched, err := scheduler.New(root, registry, store, resolver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("codeindex: construct scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("codeindex: start scheduler: %w", err)
	}

	idx := &Index{
		root:      root,
		registry:  registry,
		db:        db,
		store:     store,
		resolver:  resolver,
		scheduler: sched,
		logger:    logger,
	}

	if cfg.Memory.Enabled {
		if err := idx.openMemory(ctx, cfg); err != nil {
			sched.Stop()
			_ = db.Close()
			return nil, err
		}
	}

	return idx, nil
}

func (idx *Index) openMemory(ctx context.Context, cfg config.CodeIndexConfig) error {
	memPath := filepath.Join(cfg.DataDir, "memories.sqlite")
	memIdx, err := memory.Open(ctx, memPath)
	if err != nil {
		return fmt.Errorf("codeindex: open memory store: %w", err)
	}

	apiKey := os.Getenv(cfg.Memory.APIKeyEnv)
	embedderCfg := memory.DefaultEmbedderConfig()
	embedderCfg.APIKey = apiKey
	if cfg.Memory.EmbeddingModel != "" {
		embedderCfg.Model = cfg.Memory.EmbeddingModel
	}
	if cfg.Memory.RetryAttempts > 0 {
		embedderCfg.RetryAttempts = cfg.Memory.RetryAttempts
	}

	embedder, err := memory.NewEmbedder(embedderCfg)
	if err != nil {
		_ = memIdx.Close()
		return fmt.Errorf("codeindex: construct embedder: %w", err)
	}

	vzOpts := memory.DefaultVectorizerOptions()
	vzOpts.Logger = idx.logger
	if cfg.Memory.BatchSize > 0 {
		vzOpts.BatchSize = cfg.Memory.BatchSize
	}
	vz := memIdx.Vectorizer(embedder, vzOpts)
	vzCtx, cancel := context.WithCancel(context.Background())
	go vz.Run(vzCtx)

	idx.memory = memIdx
	idx.embedder = embedder
	idx.memoryClose = func() error {
		cancel()
		return memIdx.Close()
	}
	return nil
}

// Close stops the scheduler's background goroutines and releases the
// symbol store and, if open, the memory store.
func (idx *Index) Close() error {
	idx.scheduler.Stop()
	var memErr error
	if idx.memoryClose != nil {
		memErr = idx.memoryClose()
	}
	if err := idx.db.Close(); err != nil {
		return err
	}
	return memErr
}

// Enqueue implements index_enqueue(path, force): a debounced touch by
// default, or an immediate reparse when force is true.
func (idx *Index) Enqueue(path string, force bool) {
	if force {
		idx.scheduler.Force(path)
		return
	}
	idx.scheduler.Enqueue(path)
}

// Status implements index_status().
func (idx *Index) Status() scheduler.Status {
	return idx.scheduler.Status()
}

// Wait blocks until the scheduler's build state next changes or ctx is
// done, the wake-up primitive a poller can use instead of busy-waiting
// on Status.
func (idx *Index) Wait(ctx context.Context) error {
	return idx.scheduler.Wait(ctx)
}

// DefinitionLookup implements definition_lookup(full_path).
func (idx *Index) DefinitionLookup(ctx context.Context, fullPath string) (symbolstore.Definition, bool, error) {
	return idx.store.Lookup(ctx, fullPath)
}

// DefinitionByName implements definition_by_name(name); the store keeps
// no by-name index, so this is O(n) in the number of definitions.
func (idx *Index) DefinitionByName(ctx context.Context, name string) ([]symbolstore.Definition, error) {
	return idx.store.ByName(ctx, name)
}

// ChildrenOf implements children_of(prefix_path).
func (idx *Index) ChildrenOf(ctx context.Context, prefixPath string) ([]string, error) {
	return idx.store.ChildrenOf(ctx, prefixPath)
}

// SymbolsAt implements symbols_at(file, point): every definition in
// file whose full_range contains point, innermost (smallest range)
// first, so the nearest enclosing declaration is always index 0.
func (idx *Index) SymbolsAt(ctx context.Context, file string, point ast.Point) ([]symbolstore.Definition, error) {
	prefix := markup.JoinPath(markup.FileGlobalPath(file))
	defs, err := idx.store.DefinitionsUnderPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var matches []symbolstore.Definition
	for _, def := range defs {
		if def.FullRange.ContainsPoint(point) {
			matches = append(matches, def)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return rangeSize(matches[i].FullRange) < rangeSize(matches[j].FullRange)
	})
	return matches, nil
}

func rangeSize(r ast.SourceRange) uint32 {
	if r.EndByte < r.StartByte {
		return 0
	}
	return r.EndByte - r.StartByte
}

// SkeletonOf implements skeleton_of(file): the file is re-read and
// re-parsed on demand rather than cached, so the preview always
// reflects the file's current contents rather than the last indexed
// snapshot.
func (idx *Index) SkeletonOf(ctx context.Context, file string) (string, error) {
	content, pathed, err := idx.parseFile(ctx, file)
	if err != nil {
		return "", err
	}
	classes := skeleton.ClassSkeletons(pathed, content)
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.String())
	}
	joined := ""
	for i, s := range out {
		if i > 0 {
			joined += "\n\n"
		}
		joined += s
	}
	return joined, nil
}

// DeclarationOf implements declaration_of(path): the doc comment plus
// header line of the symbol named by path, sliced live from its source
// file rather than from the persisted Definition (which keeps ranges
// but not the file's content).
func (idx *Index) DeclarationOf(path string) (string, bool, error) {
	sym, filePath, ok := idx.resolver.ByOfficialPath(path)
	if !ok {
		return "", false, nil
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", false, fmt.Errorf("codeindex: read %q: %w", filePath, err)
	}
	return skeleton.DeclarationPreview(sym, content), true, nil
}

// RemoveFile implements remove_file(path): drops every definition and
// resolver entry for path without re-enqueueing it, for callers that
// know a file was deleted rather than waiting for the filesystem
// watcher to notice.
func (idx *Index) RemoveFile(ctx context.Context, path string) error {
	idx.resolver.RemoveFile(path)
	return idx.store.RemoveFile(ctx, markup.JoinPath(markup.FileGlobalPath(path)))
}

// parseFile re-reads and re-parses path outside of the scheduler's own
// pipeline, for facade operations (SkeletonOf) that need live symbol
// and content data rather than a persisted Definition.
func (idx *Index) parseFile(ctx context.Context, path string) ([]byte, []markup.PathedSymbol, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("codeindex: read %q: %w", path, err)
	}
	parser, ok := idx.registry.ByExtension(filepath.Ext(path))
	if !ok {
		return nil, nil, fmt.Errorf("codeindex: no parser registered for %q", path)
	}
	result, err := parser.Parse(ctx, content, path, ast.DefaultParseOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("codeindex: parse %q: %w", path, err)
	}
	return content, markup.Assign(result), nil
}

// memoryEnabled reports whether this Index was opened with memory
// support; the Memory* methods return errMemoryDisabled when it is not.
func (idx *Index) memoryEnabled() bool {
	return idx.memory != nil
}

// MemoryAdd implements memory_add(type, goal, project, payload).
func (idx *Index) MemoryAdd(ctx context.Context, memType, goal, project string, payload []byte) (string, error) {
	if !idx.memoryEnabled() {
		return "", errMemoryDisabled
	}
	return idx.memory.Add(ctx, memType, goal, project, payload)
}

// MemoryErase implements memory_erase(memid).
func (idx *Index) MemoryErase(ctx context.Context, memid string) error {
	if !idx.memoryEnabled() {
		return errMemoryDisabled
	}
	return idx.memory.Erase(ctx, memid)
}

// MemoryUsed implements memory_used(memid, delta_correct, delta_relevant).
func (idx *Index) MemoryUsed(ctx context.Context, memid string, deltaCorrect, deltaRelevant int64) error {
	if !idx.memoryEnabled() {
		return errMemoryDisabled
	}
	return idx.memory.Used(ctx, memid, deltaCorrect, deltaRelevant)
}

// MemorySearch implements memory_search(query, top_n).
func (idx *Index) MemorySearch(ctx context.Context, query string, topN int) ([]memory.MemoRecord, error) {
	if !idx.memoryEnabled() {
		return nil, errMemoryDisabled
	}
	return idx.memory.Search(ctx, idx.embedder, query, topN)
}
