// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resolve

import "github.com/AleutianAI/codeindex/ast"

// resolveVariableUsage implements §4.4.1. It returns the resolved
// declaration's SymbolID, or "" if nothing matched.
func (r *Resolver) resolveVariableUsage(ref *ast.SymbolInstance, fi *fileIndex) string {
	// Step 1: this/self short-circuit.
	if receiverTokens[ref.Language] == ref.Name {
		if st := enclosingStruct(ref, fi.byID); st != nil {
			return st.ID
		}
	}

	// Step 2: lexical walk up to the enclosing function, line by line.
	if id := lexicalWalk(ref, fi); id != "" {
		return id
	}

	// Step 3: function signature — scan the enclosing function's
	// parameters for a matching name.
	if fn := enclosingFunction(ref, fi.byID); fn != nil {
		for _, arg := range fn.Args {
			if arg.Name == ref.Name {
				// Parameters have no separate declaration symbol; the
				// function itself is the closest resolvable anchor.
				return fn.ID
			}
		}
	}

	// Step 4: enclosing class lookup.
	if st := enclosingStruct(ref, fi.byID); st != nil {
		if decl, ok := r.callerVarIndex[callerKey{containerID: st.ID, memberName: ref.Name}]; ok {
			return decl.ID
		}
	}

	// Step 5: type of caller — resolve the caller's own type, then look
	// up (caller-type-id, member-name).
	if ref.CallerID != "" {
		if callerTypeID := r.resolveCallerType(ref, fi); callerTypeID != "" {
			if decl, ok := r.callerVarIndex[callerKey{containerID: callerTypeID, memberName: ref.Name}]; ok {
				return decl.ID
			}
			if decl, ok := r.callerFuncIndex[callerKey{containerID: callerTypeID, memberName: ref.Name}]; ok {
				return decl.ID
			}
		}
	}

	return ""
}

// lexicalWalk looks, line by line from ref upward to the enclosing
// function declaration, for a VariableDefinition or ClassFieldDeclaration
// with a matching name, returning the first (nearest) hit.
func lexicalWalk(ref *ast.SymbolInstance, fi *fileIndex) string {
	fn := enclosingFunction(ref, fi.byID)
	if fn == nil {
		return ""
	}
	var best *ast.SymbolInstance
	for _, sym := range fi.byID {
		if sym.Name != ref.Name {
			continue
		}
		if sym.Kind != ast.SymbolKindVariableDefinition && sym.Kind != ast.SymbolKindClassFieldDeclaration {
			continue
		}
		if sym.DeclarationRange.StartPoint.Row > ref.DeclarationRange.StartPoint.Row {
			continue
		}
		if !within(fn, sym) {
			continue
		}
		if best == nil || sym.DeclarationRange.StartPoint.Row > best.DeclarationRange.StartPoint.Row {
			best = sym
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}

// within reports whether candidate's declaration falls inside fn's full
// range, i.e. candidate is local to fn (or an ancestor block of it).
func within(fn, candidate *ast.SymbolInstance) bool {
	return candidate.DeclarationRange.StartByte >= fn.FullRange.StartByte &&
		candidate.DeclarationRange.EndByte <= fn.FullRange.EndByte
}

// resolveCallerType resolves ref.CallerID — the raw receiver text of a
// member access — to the SymbolID of its declared type, recursively
// reusing the variable-usage strategies on a synthetic reference.
func (r *Resolver) resolveCallerType(ref *ast.SymbolInstance, fi *fileIndex) string {
	if receiverTokens[ref.Language] == ref.CallerID {
		if st := enclosingStruct(ref, fi.byID); st != nil {
			return st.ID
		}
	}

	var declID string
	for _, sym := range fi.byID {
		if sym.Name != ref.CallerID {
			continue
		}
		switch sym.Kind {
		case ast.SymbolKindVariableDefinition, ast.SymbolKindClassFieldDeclaration:
			if sym.VarType != nil {
				declID = typeRefDeclID(sym.VarType, r, fi)
			}
		}
		if declID != "" {
			return declID
		}
	}
	if fn := enclosingFunction(ref, fi.byID); fn != nil {
		for _, arg := range fn.Args {
			if arg.Name == ref.CallerID && arg.Type != nil {
				if id := typeRefDeclID(arg.Type, r, fi); id != "" {
					return id
				}
			}
		}
	}
	return ""
}

// typeRefDeclID resolves a TypeRef's bare name to a struct declaration's
// SymbolID, preferring one declared in the same file.
func typeRefDeclID(t *ast.TypeRef, r *Resolver, fi *fileIndex) string {
	if t.ResolvedSymbolID != "" {
		return t.ResolvedSymbolID
	}
	for _, decl := range r.structDeclarations[t.Name] {
		if decl.FilePath == fi.filePath {
			return decl.ID
		}
	}
	if decls := r.structDeclarations[t.Name]; len(decls) > 0 {
		candidates := append([]*ast.SymbolInstance(nil), decls...)
		sortByProximity(fi.filePath, candidates)
		return candidates[0].ID
	}
	return ""
}

// resolveFunctionCall implements §4.4.2.
func (r *Resolver) resolveFunctionCall(ref *ast.SymbolInstance, fi *fileIndex) string {
	// Member call: resolve the caller's type, then look up the method.
	if ref.CallerID != "" {
		if callerTypeID := r.resolveCallerType(ref, fi); callerTypeID != "" {
			if decl, ok := r.callerFuncIndex[callerKey{containerID: callerTypeID, memberName: ref.Name}]; ok {
				return decl.ID
			}
		}
	}

	// Step 1: in-file declaration with the same bare name.
	for _, decl := range r.declarationByName[ref.Name] {
		if decl.FilePath == fi.filePath && decl.Kind == ast.SymbolKindFunctionDeclaration {
			return decl.ID
		}
	}

	// Step 2: constructor hypothesis — in-file struct with the same name.
	for _, st := range r.structDeclarations[ref.Name] {
		if st.FilePath == fi.filePath {
			return st.ID
		}
	}

	// Step 3: project-wide function declaration, nearest file first.
	var funcs []*ast.SymbolInstance
	for _, decl := range r.declarationByName[ref.Name] {
		if decl.Kind == ast.SymbolKindFunctionDeclaration {
			funcs = append(funcs, decl)
		}
	}
	if len(funcs) > 0 {
		sortByProximity(fi.filePath, funcs)
		return funcs[0].ID
	}

	// Step 4: project-wide struct declaration, same tie-break.
	if decls := r.structDeclarations[ref.Name]; len(decls) > 0 {
		candidates := append([]*ast.SymbolInstance(nil), decls...)
		sortByProximity(fi.filePath, candidates)
		return candidates[0].ID
	}

	return ""
}
