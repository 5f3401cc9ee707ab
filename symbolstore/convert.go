// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbolstore

import (
	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/markup"
)

// FromPathedSymbols converts one file's markup-assigned symbols into the
// Definition records insert_definitions persists, dropping the
// reference-kind symbols (FunctionCall, VariableUsage) that carry no
// identity of their own — those surface later as Usages on their
// enclosing declaration's Definition.
func FromPathedSymbols(pathed []markup.PathedSymbol) []Definition {
	defs := make([]Definition, 0, len(pathed))
	for _, ps := range pathed {
		sym := ps.Symbol
		if !sym.Kind.IsDeclaration() {
			continue
		}
		def := Definition{
			OfficialPath:     ps.OfficialPath,
			Kind:             sym.Kind,
			FullRange:        sym.FullRange,
			DeclarationRange: sym.DeclarationRange,
			DefinitionRange:  sym.DefinitionRange,
			DerivedFrom:      sym.InheritedTypes,
			ContainerPath:    markup.JoinPath(ps.OfficialPath[:max(0, len(ps.OfficialPath)-1)]),
		}
		if sym.Kind == ast.SymbolKindStructDeclaration {
			def.ThisIsAClass = sym.Language + "🔎" + sym.Name
		}
		defs = append(defs, def)
	}
	return defs
}
