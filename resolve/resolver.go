// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolve links the FunctionCall and VariableUsage reference
// symbols a parser emits back to the declarations they refer to,
// producing a Usage for the nearest enclosing declaration of each
// reference. It runs once, after every file in a build has been parsed
// and marked up.
package resolve

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/markup"
	"github.com/AleutianAI/codeindex/symbolstore"
)

// receiverTokens maps a language to the lexical name its grammar uses for
// the implicit receiver of a method body, per spec.md §4.4.1 step 1.
// Languages absent from this table (Go has no receiver keyword) never
// short-circuit on that step.
var receiverTokens = map[string]string{
	"javascript": "this",
	"typescript": "this",
	"php":        "this",
	"java":       "this",
	"csharp":     "this",
	"cpp":        "this",
	"c":          "this",
	"python":     "self",
	"rust":       "self",
}

// callerKey indexes a class member by its owning declaration and the
// member's bare name, used for both field and method lookups.
type callerKey struct {
	containerID string
	memberName  string
}

// fileIndex is everything Resolver needs to retain from one parsed and
// marked-up file.
type fileIndex struct {
	filePath string
	byID     map[string]*ast.SymbolInstance
	refs     []*ast.SymbolInstance
	paths    map[string][]string // symbol ID -> official_path
}

// Resolver accumulates every parsed file's symbols into the four
// indices spec.md §4.4 names, then resolves every reference symbol in
// one pass across the whole accumulated set.
//
// Resolver is safe for concurrent AddFile calls; Resolve itself takes a
// read snapshot and should run after all AddFile calls for a build have
// completed.
type Resolver struct {
	mu sync.RWMutex

	files map[string]*fileIndex

	guidBySymbol       map[string]*ast.SymbolInstance
	declarationByName  map[string][]*ast.SymbolInstance
	structDeclarations map[string][]*ast.SymbolInstance // bare name -> struct decls, for the constructor hypothesis
	callerVarIndex     map[callerKey]*ast.SymbolInstance
	callerFuncIndex    map[callerKey]*ast.SymbolInstance
	officialPathOf     map[string][]string
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		files:              make(map[string]*fileIndex),
		guidBySymbol:       make(map[string]*ast.SymbolInstance),
		declarationByName:  make(map[string][]*ast.SymbolInstance),
		structDeclarations: make(map[string][]*ast.SymbolInstance),
		callerVarIndex:     make(map[callerKey]*ast.SymbolInstance),
		callerFuncIndex:    make(map[callerKey]*ast.SymbolInstance),
		officialPathOf:     make(map[string][]string),
	}
}

// AddFile indexes one file's already-pathed symbols. Call once per file
// after ast.Registry.Parse and markup.Assign; call again with the same
// filePath to replace a previous version (e.g. on a re-parse).
func (r *Resolver) AddFile(filePath string, pathed []markup.PathedSymbol) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeFileLocked(filePath)

	fi := &fileIndex{filePath: filePath, byID: make(map[string]*ast.SymbolInstance, len(pathed)), paths: make(map[string][]string, len(pathed))}
	for _, ps := range pathed {
		sym := ps.Symbol
		fi.byID[sym.ID] = sym
		fi.paths[sym.ID] = ps.OfficialPath
		r.guidBySymbol[sym.ID] = sym
		r.officialPathOf[sym.ID] = ps.OfficialPath

		if !sym.Kind.IsDeclaration() {
			fi.refs = append(fi.refs, sym)
			continue
		}
		if sym.Name != "" {
			r.declarationByName[sym.Name] = append(r.declarationByName[sym.Name], sym)
		}
		if sym.Kind == ast.SymbolKindStructDeclaration && sym.Name != "" {
			r.structDeclarations[sym.Name] = append(r.structDeclarations[sym.Name], sym)
		}
	}

	// Second pass: populate the caller indices now every symbol in this
	// file has an ID in fi.byID (field/method ownership is file-local).
	for _, sym := range fi.byID {
		if sym.ParentID == "" {
			continue
		}
		parent, ok := fi.byID[sym.ParentID]
		if !ok || parent.Kind != ast.SymbolKindStructDeclaration {
			continue
		}
		switch sym.Kind {
		case ast.SymbolKindClassFieldDeclaration, ast.SymbolKindVariableDefinition:
			r.callerVarIndex[callerKey{containerID: parent.ID, memberName: sym.Name}] = sym
		case ast.SymbolKindFunctionDeclaration:
			r.callerFuncIndex[callerKey{containerID: parent.ID, memberName: sym.Name}] = sym
		}
	}

	r.files[filePath] = fi
}

// PathFor returns the "::"-joined official_path of an indexed symbol,
// for callers (scheduler) translating Resolve's SymbolID-keyed output
// into the path-keyed form symbolstore.Store.ApplyUsages expects.
func (r *Resolver) PathFor(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.officialPathOf[id]
	if !ok {
		return "", false
	}
	return markup.JoinPath(path), true
}

// ByOfficialPath returns the symbol whose "::"-joined official_path
// equals path, along with the file it was parsed from, for callers
// (the declaration_of facade operation) that need the live source text
// rather than the persisted Definition. Resolver keeps no path-keyed
// index, so this is a linear scan.
func (r *Resolver) ByOfficialPath(path string) (*ast.SymbolInstance, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, parts := range r.officialPathOf {
		if markup.JoinPath(parts) != path {
			continue
		}
		sym, ok := r.guidBySymbol[id]
		if !ok {
			return nil, "", false
		}
		return sym, sym.FilePath, true
	}
	return nil, "", false
}

// RemoveFile drops every symbol previously indexed for filePath.
func (r *Resolver) RemoveFile(filePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFileLocked(filePath)
}

func (r *Resolver) removeFileLocked(filePath string) {
	fi, ok := r.files[filePath]
	if !ok {
		return
	}
	for id, sym := range fi.byID {
		delete(r.guidBySymbol, id)
		delete(r.officialPathOf, id)
		if sym.Name != "" {
			r.declarationByName[sym.Name] = removeSymbol(r.declarationByName[sym.Name], id)
			r.structDeclarations[sym.Name] = removeSymbol(r.structDeclarations[sym.Name], id)
		}
	}
	for key, sym := range r.callerVarIndex {
		if _, stale := fi.byID[sym.ID]; stale {
			delete(r.callerVarIndex, key)
		}
	}
	for key, sym := range r.callerFuncIndex {
		if _, stale := fi.byID[sym.ID]; stale {
			delete(r.callerFuncIndex, key)
		}
	}
	delete(r.files, filePath)
}

func removeSymbol(list []*ast.SymbolInstance, id string) []*ast.SymbolInstance {
	out := list[:0]
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Resolve runs §4.4.1–§4.4.4 over every reference symbol accumulated so
// far and returns, for each enclosing declaration that has at least one
// resolved or unresolved reference inside it, the Usages to attach to
// that declaration's persisted Definition.
func (r *Resolver) Resolve(ctx context.Context) (map[string][]symbolstore.Usage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctx, span := startResolveSpan(ctx, len(r.files))
	defer span.End()
	start := time.Now()

	out := make(map[string][]symbolstore.Usage)
	for _, fi := range r.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ref := range fi.refs {
			enclosing := nearestEnclosingDeclaration(ref, fi.byID)
			if enclosing == "" {
				continue
			}
			usage := r.resolveOne(ref, fi)
			out[enclosing] = append(out[enclosing], usage)
		}
	}

	recordResolveMetrics(ctx, time.Since(start), len(out))
	return out, nil
}

func (r *Resolver) resolveOne(ref *ast.SymbolInstance, fi *fileIndex) symbolstore.Usage {
	var resolvedID string
	switch ref.Kind {
	case ast.SymbolKindVariableUsage:
		resolvedID = r.resolveVariableUsage(ref, fi)
	case ast.SymbolKindFunctionCall:
		resolvedID = r.resolveFunctionCall(ref, fi)
	}

	debugHint := ref.CallerID
	if debugHint == "" {
		debugHint = ref.Name
	}
	usage := symbolstore.Usage{DebugHint: debugHint, LineNumber: ref.DeclarationRange.StartPoint.Row + 1}
	if resolvedID != "" {
		if path, ok := r.officialPathOf[resolvedID]; ok {
			usage.ResolvedAs = markup.JoinPath(path)
			return usage
		}
	}
	usage.GuessworkTargets = r.guesswork(ref)
	return usage
}

// guesswork builds the candidate-path list of §8's worked examples,
// ordered from most to least specific: "?::" plus the full official path
// of every indexed declaration sharing the reference's bare name, then
// "?::" plus the bare name itself.
func (r *Resolver) guesswork(ref *ast.SymbolInstance) []string {
	var out []string
	for _, decl := range r.declarationByName[ref.Name] {
		if path, ok := r.officialPathOf[decl.ID]; ok {
			out = append(out, "?::"+strings.Join(path, "::"))
		}
	}
	out = append(out, "?::"+ref.Name)
	return out
}

// nearestEnclosingDeclaration walks ref's parent chain (within the same
// file) until it finds a declaration symbol, which is where the
// produced Usage attaches.
func nearestEnclosingDeclaration(ref *ast.SymbolInstance, byID map[string]*ast.SymbolInstance) string {
	cur := ref
	for cur.ParentID != "" {
		parent, ok := byID[cur.ParentID]
		if !ok {
			return ""
		}
		if parent.Kind.IsDeclaration() {
			return parent.ID
		}
		cur = parent
	}
	return ""
}

// enclosingStruct walks ref's parent chain to the nearest struct
// declaration, used by both the this/self short-circuit and the
// enclosing-class lookup step.
func enclosingStruct(ref *ast.SymbolInstance, byID map[string]*ast.SymbolInstance) *ast.SymbolInstance {
	cur := ref
	for cur.ParentID != "" {
		parent, ok := byID[cur.ParentID]
		if !ok {
			return nil
		}
		if parent.Kind == ast.SymbolKindStructDeclaration {
			return parent
		}
		cur = parent
	}
	return nil
}

// enclosingFunction walks ref's parent chain to the nearest function
// declaration.
func enclosingFunction(ref *ast.SymbolInstance, byID map[string]*ast.SymbolInstance) *ast.SymbolInstance {
	cur := ref
	for cur.ParentID != "" {
		parent, ok := byID[cur.ParentID]
		if !ok {
			return nil
		}
		if parent.Kind == ast.SymbolKindFunctionDeclaration {
			return parent
		}
		cur = parent
	}
	return nil
}

func sameLine(a, b ast.SourceRange) bool {
	return a.StartPoint.Row == b.StartPoint.Row
}

// sortByProximity orders candidates by §4.4.3: longer shared leading
// path-component run with fromFile wins, ties broken lexicographically
// by the candidate's own file path.
func sortByProximity(fromFile string, candidates []*ast.SymbolInstance) {
	fromParts := strings.Split(fromFile, "/")
	sort.SliceStable(candidates, func(i, j int) bool {
		pi := commonPrefixLen(fromParts, strings.Split(candidates[i].FilePath, "/"))
		pj := commonPrefixLen(fromParts, strings.Split(candidates[j].FilePath, "/"))
		if pi != pj {
			return pi > pj
		}
		return candidates[i].FilePath < candidates[j].FilePath
	})
}

func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
