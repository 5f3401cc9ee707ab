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
	"github.com/smacker/go-tree-sitter/rust"
)

const (
	rsNodeUseDeclaration  = "use_declaration"
	rsNodeScopedUse       = "scoped_use_list"
	rsNodeUseList         = "use_list"
	rsNodeIdentifier      = "identifier"
	rsNodeFunctionItem    = "function_item"
	rsNodeStructItem      = "struct_item"
	rsNodeEnumItem        = "enum_item"
	rsNodeImplItem        = "impl_item"
	rsNodeTraitItem       = "trait_item"
	rsNodeTypeIdentifier  = "type_identifier"
	rsNodeFieldDecl       = "field_declaration"
	rsNodeFieldDeclList   = "field_declaration_list"
	rsNodeParameters      = "parameters"
	rsNodeParameter       = "parameter"
	rsNodeBlock           = "block"
	rsNodeLetDeclaration  = "let_declaration"
	rsNodePattern         = "identifier"
	rsNodeCallExpression  = "call_expression"
	rsNodeFieldExpression = "field_expression"
	rsNodeScopedIdent     = "scoped_identifier"
	rsNodeFieldIdentifier = "field_identifier"
	rsNodeLineComment     = "line_comment"
	rsNodeReturnType      = "type_identifier"
)

// RustParser implements Parser for Rust, whose module path comes from
// `mod`/file layout rather than an in-file clause; Namespace is left
// empty here and derived by package markup from the file path instead.
type RustParser struct {
	maxFileSize int
}

func NewRustParser() *RustParser { return &RustParser{maxFileSize: DefaultMaxFileSize} }

func (p *RustParser) Language() string     { return "rust" }
func (p *RustParser) Extensions() []string { return []string{".rs"} }

func (p *RustParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "rust", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "rust", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(rust.GetLanguage())
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "rust", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: "rust", Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	a := newArena()
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case rsNodeUseDeclaration:
			p.extractUse(a, child, content, filePath)
		case rsNodeFunctionItem:
			p.extractFunction(ctxSpan, a, child, content, filePath)
		case rsNodeStructItem:
			p.extractStruct(a, child, content, filePath)
		case rsNodeImplItem:
			p.extractImpl(ctxSpan, a, child, content, filePath)
		}
	}

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "rust", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *RustParser) extractUse(a *arena, decl *sitter.Node, content []byte, filePath string) {
	a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(decl, content), Kind: SymbolKindImportDeclaration, Language: "rust", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(decl)})
}

func (p *RustParser) extractFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(fn, rsNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: "rust", FilePath: filePath, FullRange: sourceRange(fn), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(fn, content, rsNodeLineComment)}
	if params := childByType(fn, rsNodeParameters); params != nil {
		for _, decl := range childrenByType(params, rsNodeParameter) {
			sym.Args = append(sym.Args, rustParamArg(decl, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(fn, rsNodeBlock); body != nil {
		walkReferences(ctx, a, body, content, filePath, "rust", rsRefGrammar)
	}
}

func rustParamArg(decl *sitter.Node, content []byte) Arg {
	var name string
	var typeNode *sitter.Node
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case rsNodeIdentifier:
			if name == "" {
				name = nodeText(c, content)
			}
		case rsNodeTypeIdentifier:
			typeNode = c
		}
	}
	arg := Arg{Name: name}
	if typeNode != nil {
		arg.Type = &TypeRef{Name: nodeText(typeNode, content)}
	}
	return arg
}

func (p *RustParser) extractStruct(a *arena, st *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(st, rsNodeTypeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: "rust", FilePath: filePath, FullRange: sourceRange(st), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(st, content, rsNodeLineComment)}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if fields := childByType(st, rsNodeFieldDeclList); fields != nil {
		for _, field := range childrenByType(fields, rsNodeFieldDecl) {
			nm := childByType(field, rsNodeIdentifier)
			if nm == nil {
				continue
			}
			var vt *TypeRef
			if tp := childByType(field, rsNodeTypeIdentifier); tp != nil {
				vt = &TypeRef{Name: nodeText(tp, content)}
			}
			a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: "rust", FilePath: filePath, FullRange: sourceRange(field), DeclarationRange: sourceRange(nm), VarType: vt})
		}
	}
}

func (p *RustParser) extractImpl(ctx context.Context, a *arena, impl *sitter.Node, content []byte, filePath string) {
	typeNode := childByType(impl, rsNodeTypeIdentifier)
	typeName := ""
	if typeNode != nil {
		typeName = nodeText(typeNode, content)
	}
	body := childByType(impl, rsNodeBlock)
	if body == nil {
		if body = childByType(impl, rsNodeFieldDeclList); body == nil {
			return
		}
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() == rsNodeFunctionItem {
			nameNode := childByType(child, rsNodeIdentifier)
			if nameNode == nil {
				continue
			}
			sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: "rust", FilePath: filePath, FullRange: sourceRange(child), DeclarationRange: sourceRange(nameNode), InheritedTypes: []string{typeName}, DocComment: precedingComment(child, content, rsNodeLineComment)}
			mid := a.push(sym)
			a.enter(mid)
			if mb := childByType(child, rsNodeBlock); mb != nil {
				walkReferences(ctx, a, mb, content, filePath, "rust", rsRefGrammar)
			}
			a.leave()
		}
	}
}

var rsRefGrammar = refGrammar{call: rsNodeCallExpression, member: rsNodeFieldExpression, identifier: rsNodeIdentifier, fieldName: rsNodeFieldIdentifier}
