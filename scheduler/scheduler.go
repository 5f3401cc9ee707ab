// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scheduler watches a project tree for file changes and drives
// them through parse → markup → insert_definitions → resolve, debouncing
// bursts of edits the way an editor's autosave or a git checkout
// produces them.
package scheduler

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"

	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/markup"
	"github.com/AleutianAI/codeindex/resolve"
	"github.com/AleutianAI/codeindex/symbolstore"
)

// Options configures a Scheduler. New starts from DefaultOptions and
// applies each Option over it; a zero value set by an Option is kept.
type Options struct {
	// Cooldown is how long a path must go unmodified before it moves
	// from the cooldown map to the ready queue. Default 20s.
	Cooldown time.Duration

	// SweepInterval is how often the cooldown worker checks the map for
	// expired entries. Default 10s.
	SweepInterval time.Duration

	// ReadyBufferSize bounds the ready queue. Default 4096.
	ReadyBufferSize int

	// MaxFiles caps how many distinct files a build will index; beyond
	// this, new files are dropped and ASTMaxFilesHit is set. Default
	// 200,000.
	MaxFiles int

	// IgnorePatterns are glob/substring patterns applied the way the
	// teacher's FileWatcher.shouldIgnore does.
	IgnorePatterns []string

	Logger *slog.Logger
}

// DefaultOptions returns the spec's defaults: 20s cooldown, 10s sweep.
func DefaultOptions() Options {
	return Options{
		Cooldown:        20 * time.Second,
		SweepInterval:   10 * time.Second,
		ReadyBufferSize: 4096,
		MaxFiles:        200_000,
		IgnorePatterns:  []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "__pycache__"},
	}
}

// Option is a functional option for New.
type Option func(*Options)

func WithCooldown(d time.Duration) Option        { return func(o *Options) { o.Cooldown = d } }
func WithSweepInterval(d time.Duration) Option    { return func(o *Options) { o.SweepInterval = d } }
func WithMaxFiles(n int) Option                   { return func(o *Options) { o.MaxFiles = n } }
func WithLogger(l *slog.Logger) Option            { return func(o *Options) { o.Logger = l } }
func WithIgnorePatterns(patterns []string) Option { return func(o *Options) { o.IgnorePatterns = patterns } }

// Status reports the scheduler's build progress, mirroring spec.md
// §4.5's status object.
type Status struct {
	State                string
	FilesUnparsed        int
	FilesTotal            int
	ASTIndexFilesTotal    int
	ASTIndexSymbolsTotal  int
	ASTIndexUsagesTotal   int
	ASTMaxFilesHit        bool
}

const (
	StateIdle     = "idle"
	StateBuilding = "building"
)

// Scheduler runs the cooldown/ready debounce pipeline described in
// SPEC_FULL.md §4.5, directly adapted from the teacher's FileWatcher:
// same two-goroutine split between an event producer and a debounced
// consumer, same functional-options config, same sync.Once-guarded Stop.
type Scheduler struct {
	root     string
	registry *ast.Registry
	store    *symbolstore.Store
	resolver *resolve.Resolver
	opts     Options

	watcher *fsnotify.Watcher

	mu       sync.Mutex
	lastSeen map[string]time.Time

	ready chan string
	done  chan struct{}
	wake  chan struct{}

	stopOnce sync.Once
	started  bool

	statusMu sync.RWMutex
	status   Status

	seenFiles map[string]bool

	// sem bounds how many processFile calls run concurrently, per
	// SPEC_FULL.md's requirement that parsing dispatch onto a worker
	// pool sized to the host's CPU count rather than serialize on a
	// single goroutine.
	sem      *semaphore.Weighted
	inFlight int64
	buildMu  sync.Mutex
}

// New constructs a Scheduler rooted at root. Call Start to begin
// watching; Enqueue/Force can be called before Start to seed an initial
// build.
func New(root string, registry *ast.Registry, store *symbolstore.Store, resolver *resolve.Resolver, opts ...Option) (*Scheduler, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	return &Scheduler{
		root:      root,
		registry:  registry,
		store:     store,
		resolver:  resolver,
		opts:      options,
		watcher:   watcher,
		lastSeen:  make(map[string]time.Time),
		ready:     make(chan string, options.ReadyBufferSize),
		done:      make(chan struct{}),
		wake:      make(chan struct{}),
		seenFiles: make(map[string]bool),
		status:    Status{State: StateIdle},
		sem:       semaphore.NewWeighted(int64(workers)),
	}, nil
}

// Start watches root recursively and launches the cooldown and parse
// workers. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	if err := s.addRecursive(s.root); err != nil {
		return err
	}

	go s.processEvents(ctx)
	go s.cooldownWorker(ctx)
	go s.parseWorker(ctx)

	return nil
}

// Stop halts both workers and closes the underlying fsnotify watcher.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		_ = s.watcher.Close()
	})
}

// Status returns a snapshot of the current build state.
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// Wait blocks until the scheduler's state transitions at least once
// (from building to idle, or vice versa) or ctx is done. It is the
// "wake-up primitive" spec.md's status object names.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	wake := s.wake
	s.mu.Unlock()
	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) broadcastWake() {
	s.mu.Lock()
	close(s.wake)
	s.wake = make(chan struct{})
	s.mu.Unlock()
}

// Enqueue records a touch on path. Duplicate touches during the
// cooldown window collapse into one processing event.
func (s *Scheduler) Enqueue(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seenFiles) >= s.opts.MaxFiles && !s.seenFiles[path] {
		s.statusMu.Lock()
		s.status.ASTMaxFilesHit = true
		s.statusMu.Unlock()
		return
	}
	s.lastSeen[path] = time.Now()
}

// Force pushes path straight onto the ready queue, bypassing cooldown,
// matching spec.md's force=true.
func (s *Scheduler) Force(path string) {
	s.mu.Lock()
	delete(s.lastSeen, path)
	s.mu.Unlock()
	select {
	case s.ready <- path:
	default:
	}
}

func (s *Scheduler) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if s.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return s.watcher.Add(path)
	})
}

func (s *Scheduler) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range s.opts.IgnorePatterns {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func (s *Scheduler) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.shouldIgnore(event.Name) {
				continue
			}
			if event.Has(fsnotify.Remove) {
				s.Force(event.Name)
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				_ = s.watcher.Add(event.Name)
				continue
			}
			s.Enqueue(event.Name)
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// cooldownWorker sweeps lastSeen every SweepInterval, moving anything
// older than Cooldown onto the ready queue.
func (s *Scheduler) cooldownWorker(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() {
	now := time.Now()
	s.mu.Lock()
	var ripe []string
	for path, seen := range s.lastSeen {
		if now.Sub(seen) >= s.opts.Cooldown {
			ripe = append(ripe, path)
			delete(s.lastSeen, path)
		}
	}
	s.mu.Unlock()

	for _, path := range ripe {
		select {
		case s.ready <- path:
		default:
			s.opts.Logger.Warn("scheduler ready queue full, dropping", slog.String("path", path))
		}
	}
}

// parseWorker drains the ready queue and dispatches each path onto the
// bounded worker pool, logging progress in 100-file buckets and
// emitting one resolve pass once every in-flight file has finished and
// the queue is empty.
func (s *Scheduler) parseWorker(ctx context.Context) {
	var processed int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case path := <-s.ready:
			s.setBuilding()
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return
			}
			atomic.AddInt64(&s.inFlight, 1)
			go func(path string) {
				defer s.sem.Release(1)
				defer atomic.AddInt64(&s.inFlight, -1)

				s.processFile(ctx, path)

				if n := atomic.AddInt64(&processed, 1); n%100 == 0 {
					s.opts.Logger.Info("indexing progress", slog.Int64("files", n))
				}
				s.maybeFinishBuild()
			}(path)
		}
	}
}

// maybeFinishBuild runs the resolve pass once the ready queue is empty
// and no processFile call is still in flight. The length/in-flight
// check is re-done under buildMu to keep two goroutines that finish at
// nearly the same moment from both triggering finishBuild.
func (s *Scheduler) maybeFinishBuild() {
	if len(s.ready) != 0 || atomic.LoadInt64(&s.inFlight) != 0 {
		return
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if len(s.ready) != 0 || atomic.LoadInt64(&s.inFlight) != 0 {
		return
	}
	s.finishBuild()
}

func (s *Scheduler) setBuilding() {
	s.statusMu.Lock()
	if s.status.State != StateBuilding {
		s.status.State = StateBuilding
		s.statusMu.Unlock()
		s.broadcastWake()
		return
	}
	s.statusMu.Unlock()
}

func (s *Scheduler) finishBuild() {
	usages, err := s.resolver.Resolve(context.Background())
	if err != nil {
		s.opts.Logger.Warn("resolve pass failed", slog.String("error", err.Error()))
	} else {
		byPath := make(map[string][]symbolstoreUsage, len(usages))
		for declID, list := range usages {
			if path, ok := s.resolver.PathFor(declID); ok {
				byPath[path] = list
			}
		}
		if err := s.store.ApplyUsages(context.Background(), byPath); err != nil {
			s.opts.Logger.Warn("apply usages failed", slog.String("error", err.Error()))
		}
	}

	s.statusMu.Lock()
	s.status.State = StateIdle
	s.statusMu.Unlock()
	s.broadcastWake()
}

func (s *Scheduler) processFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.opts.Logger.Warn("read failed", slog.String("path", path), slog.String("error", err.Error()))
		s.resolver.RemoveFile(path)
		_ = s.store.RemoveFile(ctx, markup.JoinPath(markup.FileGlobalPath(path)))
		return
	}

	parser, ok := s.registry.ByExtension(filepath.Ext(path))
	if !ok {
		return
	}
	result, err := parser.Parse(ctx, content, path, ast.DefaultParseOptions())
	if err != nil {
		s.opts.Logger.Warn("parse failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	pathed := markup.Assign(result)
	filePrefix := markup.JoinPath(markup.FileGlobalPath(path))
	defs := symbolstore.FromPathedSymbols(pathed)

	if err := s.store.InsertDefinitions(ctx, filePrefix, defs); err != nil {
		s.opts.Logger.Warn("insert failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	s.resolver.AddFile(path, pathed)

	s.mu.Lock()
	s.seenFiles[path] = true
	s.mu.Unlock()

	s.statusMu.Lock()
	s.status.ASTIndexFilesTotal++
	s.status.ASTIndexSymbolsTotal += len(result.Symbols)
	s.statusMu.Unlock()
}

// symbolstoreUsage is a local alias kept short for readability in
// finishBuild's map construction.
type symbolstoreUsage = symbolstore.Usage
