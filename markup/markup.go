// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package markup derives each symbol's canonical official_path from its
// file_path and parent chain, the first step between a raw parse and a
// persisted Definition.
package markup

import (
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/codeindex/ast"
)

// FileSentinel is the placeholder prefix a parser or resolver may emit in
// place of a not-yet-known file path; Assign rewrites it to the real
// file_global_path.
const FileSentinel = "file::"

// moduleIndexNames lists per-language "this file speaks for its directory"
// conventions: a symbol's package identity comes from the containing
// directory, not the file stem.
var moduleIndexNames = map[string]bool{
	"__init__": true,
	"mod":      true,
	"index":    true,
}

// PathedSymbol pairs a parsed SymbolInstance with its derived canonical
// path, joinable with "::" to form Definition.official_path.
type PathedSymbol struct {
	Symbol       *ast.SymbolInstance
	OfficialPath []string
}

// JoinPath joins an official_path the way Definition keys are formatted.
func JoinPath(parts []string) string {
	return strings.Join(parts, "::")
}

// FileGlobalPath derives the 1-to-2 element path prefix for filePath:
// the last two path components (directory, file stem) with the extension
// dropped, and the file stem dropped entirely when it is a conventional
// module-index name (so the directory alone speaks for the module).
func FileGlobalPath(filePath string) []string {
	filePath = strings.TrimSuffix(filePath, "/")
	dir, file := path.Split(filePath)
	dir = strings.TrimSuffix(dir, "/")
	stem := strings.TrimSuffix(file, path.Ext(file))

	var dirLast string
	if dir != "" && dir != "." {
		if idx := strings.LastIndex(dir, "/"); idx >= 0 {
			dirLast = dir[idx+1:]
		} else {
			dirLast = dir
		}
	}

	if moduleIndexNames[stem] {
		if dirLast == "" {
			return []string{stem}
		}
		return []string{dirLast}
	}
	if dirLast == "" {
		return []string{stem}
	}
	return []string{dirLast, stem}
}

// Assign computes official_path for every symbol in result, returning
// them sorted by ascending path length (parents before children) the way
// §4.2 step 3 requires so insertion order never references a not-yet-
// inserted parent.
func Assign(result *ast.ParseResult) []PathedSymbol {
	prefix := FileGlobalPath(result.FilePath)
	byID := result.ByID()

	out := make([]PathedSymbol, 0, len(result.Symbols))
	for _, sym := range result.Symbols {
		ancestors := ancestorNames(sym, byID)
		full := make([]string, 0, len(prefix)+len(ancestors)+1)
		full = append(full, prefix...)
		full = append(full, ancestors...)
		if sym.Name != "" {
			full = append(full, sym.Name)
		}
		out = append(out, PathedSymbol{Symbol: sym, OfficialPath: full})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].OfficialPath) < len(out[j].OfficialPath)
	})

	for _, ps := range out {
		ps.Symbol.CallerID = RewriteFileSentinel(ps.Symbol.CallerID, prefix)
	}
	return out
}

// ancestorNames walks parent_id links from sym up to the file root,
// returning ancestor names in root-to-leaf order (excluding sym itself).
func ancestorNames(sym *ast.SymbolInstance, byID map[string]*ast.SymbolInstance) []string {
	var chain []string
	cur := sym
	for cur.ParentID != "" {
		parent, ok := byID[cur.ParentID]
		if !ok {
			break
		}
		if parent.Name != "" {
			chain = append(chain, parent.Name)
		}
		cur = parent
	}
	// reverse: chain was collected leaf-to-root
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// RewriteFileSentinel rewrites a usage target string that starts with
// FileSentinel to start with the real file_global_path instead,
// preserving the remainder of the path unchanged.
func RewriteFileSentinel(target string, fileGlobalPath []string) string {
	if !strings.HasPrefix(target, FileSentinel) {
		return target
	}
	rest := strings.TrimPrefix(target, FileSentinel)
	return JoinPath(fileGlobalPath) + rest
}
