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
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// refGrammar names the node types a language's grammar uses for call and
// member-access expressions, so a single walker can emit FunctionCall and
// VariableUsage references across every C-family-shaped grammar (most of
// the tree-sitter corpus: call_expression + a binary member node).
type refGrammar struct {
	call       string // e.g. "call_expression"
	member     string // e.g. "selector_expression", "member_expression", "field_expression", "scoped_identifier"
	identifier string // e.g. "identifier"
	fieldName  string // node type of the member's right-hand name, e.g. "field_identifier", "property_identifier"
}

// walkReferences recursively visits n, emitting a FunctionCall symbol for
// every call expression and a VariableUsage symbol for every identifier
// node outside a call expression (including the identifiers inside a
// member access). It does not descend into a call expression, so a
// call's callee and arguments yield no VariableUsage.
// Declaration extraction runs first and populates a's scope stack; this
// walk only ever appends reference-kind symbols, so call order relative
// to declaration extraction doesn't affect correctness.
func walkReferences(ctx context.Context, a *arena, n *sitter.Node, content []byte, filePath, language string, g refGrammar) {
	if n == nil || ctx.Err() != nil {
		return
	}
	switch n.Type() {
	case g.call:
		emitCall(a, n, content, filePath, language, g)
		return
	case g.identifier:
		sym := &SymbolInstance{
			ID:               newSymbolID(),
			Name:             nodeText(n, content),
			Kind:             SymbolKindVariableUsage,
			Language:         language,
			FilePath:         filePath,
			FullRange:        sourceRange(n),
			DeclarationRange: sourceRange(n),
		}
		a.push(sym)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkReferences(ctx, a, n.Child(i), content, filePath, language, g)
	}
}

func emitCall(a *arena, call *sitter.Node, content []byte, filePath, language string, g refGrammar) {
	fn := call.Child(0)
	if fn == nil {
		return
	}
	var name, callerID string
	if fn.Type() == g.member {
		// The last child of the field type is the member name; taking the
		// first would pick the receiver in grammars whose operand and
		// member share one node type (Python attribute, C# member access).
		var field *sitter.Node
		for i := int(fn.ChildCount()) - 1; i >= 0; i-- {
			if c := fn.Child(i); c.Type() == g.fieldName {
				field = c
				break
			}
		}
		if field == nil {
			// Some grammars (e.g. Rust scoped_identifier, C++
			// qualified_identifier) put the name as the last child
			// instead of a distinctly typed field node.
			if fn.ChildCount() > 0 {
				field = fn.Child(int(fn.ChildCount()) - 1)
			}
		}
		if field == nil {
			return
		}
		name = nodeText(field, content)
		if operand := fn.Child(0); operand != nil && operand != field {
			callerID = nodeText(operand, content)
		}
	} else {
		name = nodeText(fn, content)
	}
	sym := &SymbolInstance{
		ID:               newSymbolID(),
		Name:             name,
		Kind:             SymbolKindFunctionCall,
		Language:         language,
		FilePath:         filePath,
		FullRange:        sourceRange(call),
		DeclarationRange: sourceRange(fn),
		CallerID:         callerID,
	}
	a.push(sym)
}
