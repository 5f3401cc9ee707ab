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
	"fmt"
	"path"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	pyNodeModule            = "module"
	pyNodeImportStatement   = "import_statement"
	pyNodeImportFrom        = "import_from_statement"
	pyNodeDottedName        = "dotted_name"
	pyNodeAliasedImport     = "aliased_import"
	pyNodeIdentifier        = "identifier"
	pyNodeFunctionDef       = "function_definition"
	pyNodeClassDef          = "class_definition"
	pyNodeParameters        = "parameters"
	pyNodeParameter         = "parameter"
	pyNodeTypedParameter    = "typed_parameter"
	pyNodeTypedDefault      = "typed_default_parameter"
	pyNodeDefaultParameter  = "default_parameter"
	pyNodeArgumentList      = "argument_list"
	pyNodeAssignment        = "assignment"
	pyNodeExpressionStmt    = "expression_statement"
	pyNodeComment           = "comment"
	pyNodeString            = "string"
	pyNodeBlock             = "block"
	pyNodeCall              = "call"
	pyNodeAttribute         = "attribute"
	pyNodeType              = "type"
)

// PythonParser implements Parser for Python, deriving the module's own
// Namespace from its file path (Python has no package clause) the way
// import resolution does: dots replace path separators, a trailing
// __init__ segment is dropped.
type PythonParser struct {
	maxFileSize int
}

func NewPythonParser() *PythonParser { return &PythonParser{maxFileSize: DefaultMaxFileSize} }

func (p *PythonParser) Language() string     { return "python" }
func (p *PythonParser) Extensions() []string { return []string{".py", ".pyi"} }

func (p *PythonParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "python", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "python", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "python", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{
		FilePath:      filePath,
		Language:      "python",
		Hash:          hashContent(content),
		ParsedAtMilli: start.UnixMilli(),
	}
	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	ns := pythonModuleNamespace(filePath)
	a := newArena()
	p.walkModule(ctxSpan, a, root, content, filePath, ns)

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "python", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func pythonModuleNamespace(filePath string) string {
	base := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	dir := path.Dir(filePath)
	if base == "__init__" {
		return strings.ReplaceAll(dir, "/", ".")
	}
	if dir == "." {
		return base
	}
	return strings.ReplaceAll(dir, "/", ".") + "." + base
}

func (p *PythonParser) walkModule(ctx context.Context, a *arena, node *sitter.Node, content []byte, filePath, ns string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case pyNodeImportStatement:
			p.extractImport(a, child, content, filePath, ns)
		case pyNodeImportFrom:
			p.extractImportFrom(a, child, content, filePath, ns)
		case pyNodeFunctionDef:
			p.extractFunction(ctx, a, child, content, filePath, ns)
		case pyNodeClassDef:
			p.extractClass(ctx, a, child, content, filePath, ns)
		case pyNodeExpressionStmt, pyNodeAssignment:
			p.extractModuleAssignment(a, child, content, filePath, ns)
		}
	}
}

func (p *PythonParser) extractImport(a *arena, decl *sitter.Node, content []byte, filePath, ns string) {
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case pyNodeDottedName:
			name := nodeText(c, content)
			a.push(&SymbolInstance{ID: newSymbolID(), Name: name, Kind: SymbolKindImportDeclaration, Language: "python", FilePath: filePath, Namespace: ns, FullRange: sourceRange(decl), DeclarationRange: sourceRange(c)})
		case pyNodeAliasedImport:
			dotted := childByType(c, pyNodeDottedName)
			ids := childrenByType(c, pyNodeIdentifier)
			if dotted == nil {
				continue
			}
			alias := ""
			if len(ids) > 0 {
				alias = nodeText(ids[len(ids)-1], content)
			}
			a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(dotted, content), Kind: SymbolKindImportDeclaration, Language: "python", FilePath: filePath, Namespace: ns, FullRange: sourceRange(decl), DeclarationRange: sourceRange(dotted), ImportAlias: alias})
		}
	}
}

func (p *PythonParser) extractImportFrom(a *arena, decl *sitter.Node, content []byte, filePath, ns string) {
	moduleNode := childByType(decl, pyNodeDottedName)
	module := ""
	if moduleNode != nil {
		module = nodeText(moduleNode, content)
	}
	for _, id := range childrenByType(decl, pyNodeIdentifier) {
		if id == moduleNode {
			continue
		}
		name := nodeText(id, content)
		full := name
		if module != "" {
			full = module + "." + name
		}
		a.push(&SymbolInstance{ID: newSymbolID(), Name: full, Kind: SymbolKindImportDeclaration, Language: "python", FilePath: filePath, Namespace: ns, FullRange: sourceRange(decl), DeclarationRange: sourceRange(id)})
	}
}

func (p *PythonParser) extractFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath, ns string) {
	nameNode := childByType(fn, pyNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{
		ID:               newSymbolID(),
		Name:             nodeText(nameNode, content),
		Kind:             SymbolKindFunctionDeclaration,
		Language:         "python",
		FilePath:         filePath,
		Namespace:        ns,
		FullRange:        sourceRange(fn),
		DeclarationRange: sourceRange(nameNode),
		DocComment:       precedingComment(fn, content, pyNodeComment),
	}
	if params := childByType(fn, pyNodeParameters); params != nil {
		for i := 0; i < int(params.ChildCount()); i++ {
			c := params.Child(i)
			switch c.Type() {
			case pyNodeIdentifier:
				sym.Args = append(sym.Args, Arg{Name: nodeText(c, content)})
			case pyNodeTypedParameter:
				nm := childByType(c, pyNodeIdentifier)
				tp := childByType(c, pyNodeType)
				arg := Arg{}
				if nm != nil {
					arg.Name = nodeText(nm, content)
				}
				if tp != nil {
					arg.Type = &TypeRef{Name: nodeText(tp, content)}
				}
				sym.Args = append(sym.Args, arg)
			}
		}
	}
	if retType := childByType(fn, pyNodeType); retType != nil {
		sym.ReturnType = &TypeRef{Name: nodeText(retType, content)}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(fn, pyNodeBlock); body != nil {
		walkReferences(ctx, a, body, content, filePath, "python", pyRefGrammar)
	}
}

func (p *PythonParser) extractClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath, ns string) {
	nameNode := childByType(cls, pyNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{
		ID:               newSymbolID(),
		Name:             nodeText(nameNode, content),
		Kind:             SymbolKindStructDeclaration,
		Language:         "python",
		FilePath:         filePath,
		Namespace:        ns,
		FullRange:        sourceRange(cls),
		DeclarationRange: sourceRange(nameNode),
		DocComment:       precedingComment(cls, content, pyNodeComment),
	}
	if argList := childByType(cls, pyNodeArgumentList); argList != nil {
		for i := 0; i < int(argList.ChildCount()); i++ {
			c := argList.Child(i)
			if c.Type() == pyNodeIdentifier {
				sym.InheritedTypes = append(sym.InheritedTypes, nodeText(c, content))
			}
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(cls, pyNodeBlock)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case pyNodeFunctionDef:
			p.extractFunction(ctx, a, child, content, filePath, ns)
		case pyNodeExpressionStmt, pyNodeAssignment:
			p.extractClassField(a, child, content, filePath, ns)
		}
	}
}

func (p *PythonParser) extractClassField(a *arena, stmt *sitter.Node, content []byte, filePath, ns string) {
	assign := stmt
	if stmt.Type() == pyNodeExpressionStmt {
		assign = childByType(stmt, pyNodeAssignment)
	}
	if assign == nil {
		return
	}
	left := assign.Child(0)
	if left == nil || left.Type() != pyNodeIdentifier {
		return
	}
	var vt *TypeRef
	if tp := childByType(assign, pyNodeType); tp != nil {
		vt = &TypeRef{Name: nodeText(tp, content)}
	}
	a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(left, content), Kind: SymbolKindClassFieldDeclaration, Language: "python", FilePath: filePath, Namespace: ns, FullRange: sourceRange(stmt), DeclarationRange: sourceRange(left), VarType: vt})
}

func (p *PythonParser) extractModuleAssignment(a *arena, stmt *sitter.Node, content []byte, filePath, ns string) {
	assign := stmt
	if stmt.Type() == pyNodeExpressionStmt {
		assign = childByType(stmt, pyNodeAssignment)
	}
	if assign == nil {
		return
	}
	left := assign.Child(0)
	if left == nil || left.Type() != pyNodeIdentifier {
		return
	}
	a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(left, content), Kind: SymbolKindVariableDefinition, Language: "python", FilePath: filePath, Namespace: ns, FullRange: sourceRange(stmt), DeclarationRange: sourceRange(left)})
}

var pyRefGrammar = refGrammar{call: pyNodeCall, member: pyNodeAttribute, identifier: pyNodeIdentifier, fieldName: pyNodeIdentifier}
