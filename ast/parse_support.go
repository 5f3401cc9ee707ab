// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/google/uuid"
)

// DefaultMaxFileSize is the maximum file size a Parser accepts unless
// overridden via ParseOptions.MaxFileSize.
const DefaultMaxFileSize = 10 * 1024 * 1024

// hashContent returns the hex sha256 digest of content, computed once
// before parsing begins so ParseResult.Hash always reflects the exact
// bytes parsed.
func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// validateContent checks size and UTF-8 validity, the two checks every
// parser performs before invoking tree-sitter.
func validateContent(content []byte, maxFileSize int) error {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if len(content) > maxFileSize {
		return ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return ErrInvalidContent
	}
	return nil
}

// newSymbolID mints an opaque SymbolID. Unlike the teacher's
// path+line+name hash, ids here are random UUIDs: SPEC_FULL.md's arena
// model resolves symbols by SymbolID stored in maps (package resolve),
// never by recomputing one from a (path, line, name) tuple, so collision
// freedom matters more than reproducibility.
func newSymbolID() string {
	return uuid.NewString()
}

// point converts a tree-sitter point into an ast.Point.
func point(p sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}

// sourceRange builds a SourceRange spanning a tree-sitter node.
func sourceRange(n *sitter.Node) SourceRange {
	return SourceRange{
		StartByte:  n.StartByte(),
		EndByte:    n.EndByte(),
		StartPoint: point(n.StartPoint()),
		EndPoint:   point(n.EndPoint()),
	}
}

// nodeText slices content by a node's byte range.
func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

// childByType returns the first direct child of n whose Type matches
// typ, or nil.
func childByType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

// childrenByType returns every direct child of n whose Type matches typ.
func childrenByType(n *sitter.Node, typ string) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

// precedingComment walks backward over n's previous named siblings under
// parent, concatenating an unbroken run of comment nodes immediately
// above n (no blank line in between, matched the way the teacher's
// getPrecedingComment does by requiring adjacency on consecutive rows).
func precedingComment(n *sitter.Node, content []byte, commentType string) string {
	var lines []string
	cur := n.PrevSibling()
	expectedEndRow := int(n.StartPoint().Row) - 1
	for cur != nil && cur.Type() == commentType {
		if int(cur.EndPoint().Row) != expectedEndRow && int(cur.StartPoint().Row) != expectedEndRow {
			break
		}
		lines = append([]string{nodeText(cur, content)}, lines...)
		expectedEndRow = int(cur.StartPoint().Row) - 1
		cur = cur.PrevSibling()
	}
	if len(lines) == 0 {
		return ""
	}
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}

// arena accumulates SymbolInstance values during a single-file walk and
// tracks the id of the innermost open declaration so children can be
// wired to ParentID/ChildIDs without passing an explicit stack through
// every extraction method.
type arena struct {
	symbols []*SymbolInstance
	stack   []string
}

func newArena() *arena {
	return &arena{}
}

// push appends sym to the arena, wires it to the current top of stack as
// its parent, and returns sym.ID.
func (a *arena) push(sym *SymbolInstance) string {
	if len(a.stack) > 0 {
		parent := a.stack[len(a.stack)-1]
		sym.ParentID = parent
		for _, p := range a.symbols {
			if p.ID == parent {
				p.ChildIDs = append(p.ChildIDs, sym.ID)
				break
			}
		}
	}
	a.symbols = append(a.symbols, sym)
	return sym.ID
}

// enter marks id as the innermost open scope for subsequently pushed
// symbols; leave pops it. Callers bracket a scoped walk with
// defer a.leave().
func (a *arena) enter(id string) { a.stack = append(a.stack, id) }

func (a *arena) leave() {
	if len(a.stack) > 0 {
		a.stack = a.stack[:len(a.stack)-1]
	}
}
