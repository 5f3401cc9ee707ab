// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package skeleton renders condensed, read-only previews of a parsed
// file's declarations by slicing the original source bytes — never by
// re-rendering from the symbol tree — so every preview is provably a
// subsequence of the source file.
package skeleton

import (
	"sort"
	"strings"

	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/markup"
)

// indentationLanguages end a declaration header at the first newline
// rather than a brace, matching Python's grammar; every other language
// family is brace-delimited and reuses the same header-slicing logic.
var indentationLanguages = map[string]bool{
	"python": true,
}

// DeclarationPreview is the leading comment block plus the
// declaration-range text of one symbol — header only, no body — used
// when showing a definition inline.
func DeclarationPreview(sym *ast.SymbolInstance, content []byte) string {
	var b strings.Builder
	if sym.DocComment != "" {
		b.WriteString(sym.DocComment)
		b.WriteString("\n")
	}
	header := sym.DeclarationRange.Slice(content)
	if len(header) == 0 {
		header = sym.FullRange.Slice(content)
	}
	b.Write(trimIndentationHeader(sym, header, content))
	return b.String()
}

// trimIndentationHeader shortens an indentation-language declaration's
// slice to end at its first newline, since Python has no closing brace
// to bound the header the way C-family grammars do.
func trimIndentationHeader(sym *ast.SymbolInstance, header, content []byte) []byte {
	if !indentationLanguages[sym.Language] {
		return header
	}
	if idx := indexByte(header, '\n'); idx >= 0 {
		return header[:idx]
	}
	return header
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// ClassSkeleton is a single condensed overview of one struct/class
// declaration: its header line followed by a one-line-per-member field
// and method signature list.
type ClassSkeleton struct {
	Header  string
	Members []string
}

// String renders the skeleton the way a "what's in this file" chat
// preview would: header, then each member indented two spaces.
func (c ClassSkeleton) String() string {
	var b strings.Builder
	b.WriteString(c.Header)
	for _, m := range c.Members {
		b.WriteString("\n  ")
		b.WriteString(m)
	}
	return b.String()
}

// ClassSkeletons builds one ClassSkeleton per struct declaration among
// pathed, for the given original file content.
func ClassSkeletons(pathed []markup.PathedSymbol, content []byte) []ClassSkeleton {
	children := make(map[string][]*ast.SymbolInstance)
	for _, ps := range pathed {
		if ps.Symbol.ParentID != "" {
			children[ps.Symbol.ParentID] = append(children[ps.Symbol.ParentID], ps.Symbol)
		}
	}

	var out []ClassSkeleton
	for _, ps := range pathed {
		sym := ps.Symbol
		if sym.Kind != ast.SymbolKindStructDeclaration {
			continue
		}
		out = append(out, ClassSkeleton{
			Header:  classHeader(sym, content),
			Members: memberSignatures(children[sym.ID], content),
		})
	}
	return out
}

// classHeader slices the struct's declaration_range and annotates it
// with its inheritance list, when not already present in the source
// text sliced (languages whose grammar already spells out inheritance
// in the header need no annotation).
func classHeader(sym *ast.SymbolInstance, content []byte) string {
	header := strings.TrimSpace(string(trimIndentationHeader(sym, sym.DeclarationRange.Slice(content), content)))
	if len(sym.InheritedTypes) == 0 {
		return header
	}
	return header + " : " + strings.Join(sym.InheritedTypes, ", ")
}

// memberSignatures renders one condensed line per field/method child,
// sorted by source position so the skeleton reads top-to-bottom the way
// the file does.
func memberSignatures(members []*ast.SymbolInstance, content []byte) []string {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].DeclarationRange.StartByte < members[j].DeclarationRange.StartByte
	})
	out := make([]string, 0, len(members))
	for _, m := range members {
		switch m.Kind {
		case ast.SymbolKindFunctionDeclaration, ast.SymbolKindClassFieldDeclaration:
			out = append(out, strings.TrimSpace(string(trimIndentationHeader(m, m.DeclarationRange.Slice(content), content))))
		}
	}
	return out
}
