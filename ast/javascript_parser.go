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
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScriptParser implements Parser for plain JS/JSX. It mirrors
// TypeScriptParser's shape minus type annotations, since the grammars
// share most node names apart from TS-only type nodes.
type JavaScriptParser struct {
	maxFileSize int
}

func NewJavaScriptParser() *JavaScriptParser { return &JavaScriptParser{maxFileSize: DefaultMaxFileSize} }

func (p *JavaScriptParser) Language() string     { return "javascript" }
func (p *JavaScriptParser) Extensions() []string { return []string{".js", ".jsx", ".mjs", ".cjs"} }

func (p *JavaScriptParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "javascript", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "javascript", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(javascript.GetLanguage())
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "javascript", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: "javascript", Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
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
		case tsNodeImportStatement:
			p.extractImport(a, child, content, filePath)
		case tsNodeFunctionDeclaration:
			p.extractFunction(ctxSpan, a, child, content, filePath)
		case tsNodeClassDeclaration:
			p.extractClass(ctxSpan, a, child, content, filePath)
		case tsNodeLexicalDecl:
			p.extractLexical(a, child, content, filePath)
		}
	}

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "javascript", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *JavaScriptParser) extractImport(a *arena, decl *sitter.Node, content []byte, filePath string) {
	pathNode := childByType(decl, tsNodeString)
	modulePath := ""
	if pathNode != nil {
		modulePath = strings.Trim(nodeText(pathNode, content), `"'`)
	}
	a.push(&SymbolInstance{ID: newSymbolID(), Name: modulePath, Kind: SymbolKindImportDeclaration, Language: "javascript", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(decl)})
}

func (p *JavaScriptParser) extractFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(fn, tsNodeIdentifier)
	if nameNode == nil {
		nameNode = childByType(fn, tsNodePropertyIdentifier)
	}
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: "javascript", FilePath: filePath, FullRange: sourceRange(fn), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(fn, content, tsNodeComment)}
	if params := childByType(fn, tsNodeFormalParameters); params != nil {
		for _, id := range childrenByType(params, tsNodeIdentifier) {
			sym.Args = append(sym.Args, Arg{Name: nodeText(id, content)})
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(fn, tsNodeStatementBlock); body != nil {
		walkReferences(ctx, a, body, content, filePath, "javascript", tsRefGrammar)
	}
}

func (p *JavaScriptParser) extractClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(cls, tsNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: "javascript", FilePath: filePath, FullRange: sourceRange(cls), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(cls, content, tsNodeComment)}
	if heritage := childByType(cls, tsNodeClassHeritage); heritage != nil {
		for _, id := range childrenByType(heritage, tsNodeIdentifier) {
			sym.InheritedTypes = append(sym.InheritedTypes, nodeText(id, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(cls, tsNodeClassBody)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() == tsNodeMethodDefinition {
			p.extractFunction(ctx, a, child, content, filePath)
		}
	}
}

func (p *JavaScriptParser) extractLexical(a *arena, decl *sitter.Node, content []byte, filePath string) {
	for _, d := range childrenByType(decl, tsNodeVariableDeclarator) {
		nameNode := childByType(d, tsNodeIdentifier)
		if nameNode == nil {
			continue
		}
		a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindVariableDefinition, Language: "javascript", FilePath: filePath, FullRange: sourceRange(d), DeclarationRange: sourceRange(nameNode)})
	}
}
