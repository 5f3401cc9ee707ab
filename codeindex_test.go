// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package codeindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/config"
	"github.com/AleutianAI/codeindex/markup"
	"github.com/AleutianAI/codeindex/scheduler"
)

// filePrefix mirrors what the scheduler derives for file via
// markup.FileGlobalPath, since a file under a temp dir carries the
// temp dir's random name as its directory component.
func filePrefix(file string) string {
	return markup.JoinPath(markup.FileGlobalPath(file))
}

func newTestIndex(t *testing.T, root string) *Index {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	idx, err := Open(ctx, root, cfg,
		scheduler.WithCooldown(time.Hour),
		scheduler.WithSweepInterval(time.Hour),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func writeGoFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEnqueueForceIndexesFileAndUpdatesStatus(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "main.go", "package main\n\nfunc main() {}\n")

	idx := newTestIndex(t, root)
	idx.Enqueue(file, true)

	require.Eventually(t, func() bool {
		return idx.Status().ASTIndexFilesTotal == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDefinitionLookupAndChildrenOf(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "animal.go", `package x

type Animal struct {
	Name string
}

func (a *Animal) Say() {}
`)

	idx := newTestIndex(t, root)
	idx.Enqueue(file, true)

	animalPath := filePrefix(file) + "::Animal"

	var defs []string
	require.Eventually(t, func() bool {
		var err error
		defs, err = idx.ChildrenOf(context.Background(), animalPath)
		return err == nil && len(defs) > 0
	}, 2*time.Second, 10*time.Millisecond)

	def, ok, err := idx.DefinitionLookup(context.Background(), animalPath)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ast.SymbolKindStructDeclaration, def.Kind)
}

func TestDefinitionByName(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "animal.go", `package x

type Animal struct{}

func (a *Animal) Say() {}
`)

	idx := newTestIndex(t, root)
	idx.Enqueue(file, true)

	require.Eventually(t, func() bool {
		matches, err := idx.DefinitionByName(context.Background(), "Say")
		return err == nil && len(matches) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSymbolsAtOrdersInnermostFirst(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "animal.go", `package x

type Animal struct{}

func (a *Animal) Say() {
	_ = 1
}
`)

	idx := newTestIndex(t, root)
	idx.Enqueue(file, true)

	require.Eventually(t, func() bool {
		return idx.Status().ASTIndexFilesTotal == 1
	}, 2*time.Second, 10*time.Millisecond)

	matches, err := idx.SymbolsAt(context.Background(), file, ast.Point{Row: 5, Column: 1})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	require.Equal(t, "Say", matches[0].OfficialPath[len(matches[0].OfficialPath)-1])
}

func TestSkeletonOfRendersStructMembers(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "animal.go", `package x

type Animal struct {
	Name string
}

func (a *Animal) Say() {}
`)

	idx := newTestIndex(t, root)
	out, err := idx.SkeletonOf(context.Background(), file)
	require.NoError(t, err)
	require.Contains(t, out, "Animal")
}

func TestDeclarationOfReturnsSourceSlice(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "animal.go", `package x

// Say greets.
func Say() {}
`)

	idx := newTestIndex(t, root)
	idx.Enqueue(file, true)

	require.Eventually(t, func() bool {
		return idx.Status().ASTIndexFilesTotal == 1
	}, 2*time.Second, 10*time.Millisecond)

	out, ok, err := idx.DeclarationOf(filePrefix(file) + "::Say")
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, out, "Say")
}

func TestDeclarationOfMissingPathReturnsFalse(t *testing.T) {
	root := t.TempDir()
	idx := newTestIndex(t, root)
	_, ok, err := idx.DeclarationOf("nope::Missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveFileClearsDefinitions(t *testing.T) {
	root := t.TempDir()
	file := writeGoFile(t, root, "animal.go", `package x

type Animal struct{}
`)

	idx := newTestIndex(t, root)
	idx.Enqueue(file, true)

	animalPath := filePrefix(file) + "::Animal"

	require.Eventually(t, func() bool {
		_, ok, err := idx.DefinitionLookup(context.Background(), animalPath)
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, idx.RemoveFile(context.Background(), file))

	_, ok, err := idx.DefinitionLookup(context.Background(), animalPath)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryOperationsDisabledByDefault(t *testing.T) {
	root := t.TempDir()
	idx := newTestIndex(t, root)

	_, err := idx.MemoryAdd(context.Background(), "note", "goal", "proj", nil)
	require.ErrorIs(t, err, errMemoryDisabled)

	require.ErrorIs(t, idx.MemoryErase(context.Background(), "x"), errMemoryDisabled)
	require.ErrorIs(t, idx.MemoryUsed(context.Background(), "x", 1, 1), errMemoryDisabled)

	_, err = idx.MemorySearch(context.Background(), "goal", 5)
	require.ErrorIs(t, err, errMemoryDisabled)
}
