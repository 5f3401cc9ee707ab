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
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParserOption configures a GoParser.
type GoParserOption func(*GoParser)

// WithGoMaxFileSize overrides DefaultMaxFileSize.
func WithGoMaxFileSize(bytes int) GoParserOption {
	return func(p *GoParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// GoParser implements Parser for Go source. Each Parse call builds its own
// tree-sitter parser instance, so a GoParser value needs no internal
// locking to be safe for concurrent use.
type GoParser struct {
	maxFileSize int
}

// NewGoParser builds a GoParser with DefaultMaxFileSize unless overridden.
func NewGoParser(opts ...GoParserOption) *GoParser {
	p := &GoParser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GoParser) Language() string     { return "go" }
func (p *GoParser) Extensions() []string { return []string{".go"} }

func (p *GoParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (result *ParseResult, err error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "go", filePath, len(content))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if verr := validateContent(content, maxSize); verr != nil {
		recordParseMetrics(ctxSpan, "go", time.Since(start), 0, false)
		return nil, verr
	}

	sp := sitter.NewParser()
	sp.SetLanguage(golang.GetLanguage())
	tree, perr := sp.ParseCtx(ctxSpan, nil, content)
	if perr != nil {
		recordParseMetrics(ctxSpan, "go", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", perr)
	}
	defer tree.Close()

	result = &ParseResult{
		FilePath:      filePath,
		Language:      "go",
		Hash:          hashContent(content),
		ParsedAtMilli: start.UnixMilli(),
	}

	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		recordParseMetrics(ctxSpan, "go", time.Since(start), 0, false)
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	a := newArena()
	var pkgName string
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case goNodePackageClause:
			pkgName = p.extractPackage(a, child, content, filePath, root)
		case goNodeImportDeclaration:
			p.extractImportDecl(a, child, content, filePath, pkgName)
		case goNodeFunctionDeclaration:
			p.extractFunction(ctxSpan, a, child, content, filePath, pkgName, result)
		case goNodeMethodDeclaration:
			p.extractMethod(ctxSpan, a, child, content, filePath, pkgName, result)
		case goNodeTypeDeclaration:
			p.extractTypeDecl(a, child, content, filePath, pkgName)
		case goNodeVarDeclaration:
			p.extractVarDecl(a, child, content, filePath, pkgName, false)
		case goNodeConstDeclaration:
			p.extractVarDecl(a, child, content, filePath, pkgName, true)
		}
	}

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "go", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *GoParser) extractPackage(a *arena, clause *sitter.Node, content []byte, filePath string, root *sitter.Node) string {
	nameNode := childByType(clause, goNodePackageIdentifier)
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, content)
	sym := &SymbolInstance{
		ID:         newSymbolID(),
		Name:       name,
		Kind:       SymbolKindPackageDeclaration,
		Language:   "go",
		FilePath:   filePath,
		Namespace:  name,
		FullRange:  sourceRange(clause),
		DeclarationRange: sourceRange(nameNode),
		DocComment: precedingComment(clause, content, goNodeComment),
	}
	a.push(sym)
	return name
}

func (p *GoParser) extractImportDecl(a *arena, decl *sitter.Node, content []byte, filePath, pkgName string) {
	var specs []*sitter.Node
	if list := childByType(decl, goNodeImportSpecList); list != nil {
		specs = childrenByType(list, goNodeImportSpec)
	} else {
		specs = childrenByType(decl, goNodeImportSpec)
	}
	for _, spec := range specs {
		pathNode := childByType(spec, goNodeString)
		if pathNode == nil {
			continue
		}
		path := nodeText(pathNode, content)
		unquoted := path
		if len(unquoted) >= 2 {
			unquoted = unquoted[1 : len(unquoted)-1]
		}
		alias := ""
		for i := 0; i < int(spec.ChildCount()); i++ {
			c := spec.Child(i)
			if c.Type() == goNodePackageIdentifier {
				alias = nodeText(c, content)
			}
		}
		sym := &SymbolInstance{
			ID:             newSymbolID(),
			Name:           unquoted,
			Kind:           SymbolKindImportDeclaration,
			Language:       "go",
			FilePath:       filePath,
			Namespace:      pkgName,
			FullRange:      sourceRange(spec),
			DeclarationRange: sourceRange(pathNode),
			ImportAlias:    alias,
			ImportIsStdlib: !containsDot(unquoted),
		}
		a.push(sym)
	}
}

func containsDot(importPath string) bool {
	for i := 0; i < len(importPath); i++ {
		if importPath[i] == '.' {
			return true
		}
		if importPath[i] == '/' {
			return false
		}
	}
	return false
}

func (p *GoParser) extractFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath, pkgName string, result *ParseResult) {
	nameNode := childByType(fn, goNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := p.buildFuncSymbol(fn, nameNode, content, filePath, pkgName, SymbolKindFunctionDeclaration)
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	p.walkBody(ctx, a, fn, content, filePath, result, "")
}

func (p *GoParser) extractMethod(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath, pkgName string, result *ParseResult) {
	nameNode := childByType(fn, goNodeFieldIdentifier)
	if nameNode == nil {
		return
	}
	sym := p.buildFuncSymbol(fn, nameNode, content, filePath, pkgName, SymbolKindFunctionDeclaration)
	if recv := childByType(fn, goNodeParameterList); recv != nil {
		if t := childByType(recv, goNodeParameterDecl); t != nil {
			sym.InheritedTypes = append(sym.InheritedTypes, receiverTypeName(t, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	p.walkBody(ctx, a, fn, content, filePath, result, "")
}

func receiverTypeName(decl *sitter.Node, content []byte) string {
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case goNodeTypeIdentifier:
			return nodeText(c, content)
		case goNodePointerType:
			if inner := childByType(c, goNodeTypeIdentifier); inner != nil {
				return nodeText(inner, content)
			}
		}
	}
	return ""
}

func (p *GoParser) buildFuncSymbol(fn, nameNode *sitter.Node, content []byte, filePath, pkgName string, kind SymbolKind) *SymbolInstance {
	sym := &SymbolInstance{
		ID:         newSymbolID(),
		Name:       nodeText(nameNode, content),
		Kind:       kind,
		Language:   "go",
		FilePath:   filePath,
		Namespace:  pkgName,
		FullRange:  sourceRange(fn),
		DeclarationRange: sourceRange(nameNode),
		DocComment: precedingComment(fn, content, goNodeComment),
	}
	if params := childByType(fn, goNodeParameterList); params != nil {
		for _, decl := range childrenByType(params, goNodeParameterDecl) {
			sym.Args = append(sym.Args, paramArg(decl, content))
		}
	}
	return sym
}

func paramArg(decl *sitter.Node, content []byte) Arg {
	var name string
	var typeNode *sitter.Node
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case goNodeIdentifier:
			if name == "" {
				name = nodeText(c, content)
			}
		default:
			typeNode = c
		}
	}
	arg := Arg{Name: name}
	if typeNode != nil {
		arg.Type = &TypeRef{Name: nodeText(typeNode, content)}
	}
	return arg
}

func (p *GoParser) extractTypeDecl(a *arena, decl *sitter.Node, content []byte, filePath, pkgName string) {
	for _, spec := range childrenByType(decl, goNodeTypeSpec) {
		nameNode := childByType(spec, goNodeTypeIdentifier)
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, content)
		kind := SymbolKindTypeAlias
		var structBody *sitter.Node
		for i := 0; i < int(spec.ChildCount()); i++ {
			c := spec.Child(i)
			if c.Type() == goNodeStructType {
				kind = SymbolKindStructDeclaration
				structBody = c
			} else if c.Type() == goNodeInterfaceType {
				kind = SymbolKindStructDeclaration
				structBody = c
			}
		}
		sym := &SymbolInstance{
			ID:         newSymbolID(),
			Name:       name,
			Kind:       kind,
			Language:   "go",
			FilePath:   filePath,
			Namespace:  pkgName,
			FullRange:  sourceRange(spec),
			DeclarationRange: sourceRange(nameNode),
			DocComment: precedingComment(decl, content, goNodeComment),
		}
		id := a.push(sym)
		if structBody != nil {
			a.enter(id)
			for _, field := range childrenByType(structBody, goNodeFieldDeclaration) {
				p.extractField(a, field, content, filePath, pkgName)
			}
			a.leave()
		}
	}
}

func (p *GoParser) extractField(a *arena, field *sitter.Node, content []byte, filePath, pkgName string) {
	var typeNode *sitter.Node
	names := childrenByType(field, goNodeFieldIdentifier)
	for i := 0; i < int(field.ChildCount()); i++ {
		c := field.Child(i)
		if c.Type() != goNodeFieldIdentifier && c.Type() != goNodeComment {
			typeNode = c
		}
	}
	if len(names) == 0 {
		return
	}
	var vt *TypeRef
	if typeNode != nil {
		vt = &TypeRef{Name: nodeText(typeNode, content)}
	}
	for _, nameNode := range names {
		sym := &SymbolInstance{
			ID:         newSymbolID(),
			Name:       nodeText(nameNode, content),
			Kind:       SymbolKindClassFieldDeclaration,
			Language:   "go",
			FilePath:   filePath,
			Namespace:  pkgName,
			FullRange:  sourceRange(field),
			DeclarationRange: sourceRange(nameNode),
			VarType:    vt,
		}
		a.push(sym)
	}
}

func (p *GoParser) extractVarDecl(a *arena, decl *sitter.Node, content []byte, filePath, pkgName string, isConst bool) {
	specType := goNodeVarSpec
	if isConst {
		specType = goNodeConstSpec
	}
	for _, spec := range childrenByType(decl, specType) {
		var typeNode *sitter.Node
		for i := 0; i < int(spec.ChildCount()); i++ {
			c := spec.Child(i)
			if c.Type() != goNodeIdentifier && c.Type() != "=" {
				typeNode = c
			}
		}
		var vt *TypeRef
		if typeNode != nil {
			vt = &TypeRef{Name: nodeText(typeNode, content)}
		}
		for _, nameNode := range childrenByType(spec, goNodeIdentifier) {
			sym := &SymbolInstance{
				ID:         newSymbolID(),
				Name:       nodeText(nameNode, content),
				Kind:       SymbolKindVariableDefinition,
				Language:   "go",
				FilePath:   filePath,
				Namespace:  pkgName,
				FullRange:  sourceRange(spec),
				DeclarationRange: sourceRange(nameNode),
				VarType:    vt,
			}
			a.push(sym)
		}
	}
}

// walkBody recursively visits a function/method body, emitting
// FunctionCall and VariableUsage reference symbols. callerID is the id of
// the enclosing declaration symbol (used only for bookkeeping the arena's
// scope, already tracked via a.stack).
func (p *GoParser) walkBody(ctx context.Context, a *arena, n *sitter.Node, content []byte, filePath string, result *ParseResult, _ string) {
	if ctx.Err() != nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case goNodeCallExpression:
			p.extractCall(a, child, content, filePath)
		case goNodeIdentifier:
			if n.Type() != goNodeCallExpression && n.Type() != goNodeSelectorExpression {
				p.extractUsage(a, child, content, filePath)
			}
		}
		p.walkBody(ctx, a, child, content, filePath, result, "")
	}
}

func (p *GoParser) extractCall(a *arena, call *sitter.Node, content []byte, filePath string) {
	fn := call.Child(0)
	if fn == nil {
		return
	}
	var name, callerID string
	if fn.Type() == goNodeSelectorExpression {
		operand := fn.Child(0)
		field := childByType(fn, goNodeFieldIdentifier)
		if field == nil {
			return
		}
		name = nodeText(field, content)
		if operand != nil {
			callerID = nodeText(operand, content)
		}
	} else {
		name = nodeText(fn, content)
	}
	sym := &SymbolInstance{
		ID:         newSymbolID(),
		Name:       name,
		Kind:       SymbolKindFunctionCall,
		Language:   "go",
		FilePath:   filePath,
		FullRange:  sourceRange(call),
		DeclarationRange: sourceRange(fn),
		CallerID:   callerID,
	}
	a.push(sym)
}

func (p *GoParser) extractUsage(a *arena, id *sitter.Node, content []byte, filePath string) {
	sym := &SymbolInstance{
		ID:         newSymbolID(),
		Name:       nodeText(id, content),
		Kind:       SymbolKindVariableUsage,
		Language:   "go",
		FilePath:   filePath,
		FullRange:  sourceRange(id),
		DeclarationRange: sourceRange(id),
	}
	a.push(sym)
}
