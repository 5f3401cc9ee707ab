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
	"github.com/smacker/go-tree-sitter/php"
)

const (
	phpNodeNamespaceDef    = "namespace_definition"
	phpNodeNamespaceName   = "namespace_name"
	phpNodeNamespaceUse    = "namespace_use_declaration"
	phpNodeFunctionDef     = "function_definition"
	phpNodeClassDecl       = "class_declaration"
	phpNodeInterfaceDecl   = "interface_declaration"
	phpNodeMethodDecl      = "method_declaration"
	phpNodePropertyDecl    = "property_declaration"
	phpNodePropertyElement = "property_element"
	phpNodeVariableName    = "variable_name"
	phpNodeName            = "name"
	phpNodeDeclarationList = "declaration_list"
	phpNodeBaseClause      = "base_clause"
	phpNodeFormalParams    = "formal_parameters"
	phpNodeSimpleParameter = "simple_parameter"
	phpNodeCompoundStmt    = "compound_statement"
	phpNodeFunctionCall    = "function_call_expression"
	phpNodeMemberCall      = "member_call_expression"
	phpNodeMemberAccess    = "member_access_expression"
	phpNodeComment         = "comment"
)

// PHPParser implements Parser for PHP.
type PHPParser struct {
	maxFileSize int
}

func NewPHPParser() *PHPParser { return &PHPParser{maxFileSize: DefaultMaxFileSize} }

func (p *PHPParser) Language() string     { return "php" }
func (p *PHPParser) Extensions() []string { return []string{".php"} }

func (p *PHPParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "php", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "php", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(php.GetLanguage())
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "php", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: "php", Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	a := newArena()
	p.walk(ctxSpan, a, root, content, filePath, "")

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "php", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *PHPParser) walk(ctx context.Context, a *arena, n *sitter.Node, content []byte, filePath, ns string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case phpNodeNamespaceDef:
			nameNode := childByType(child, phpNodeNamespaceName)
			childNs := ns
			if nameNode != nil {
				childNs = nodeText(nameNode, content)
				a.push(&SymbolInstance{ID: newSymbolID(), Name: childNs, Kind: SymbolKindPackageDeclaration, Language: "php", FilePath: filePath, Namespace: childNs, FullRange: sourceRange(child), DeclarationRange: sourceRange(nameNode)})
			}
			p.walk(ctx, a, child, content, filePath, childNs)
		case phpNodeNamespaceUse:
			a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(child, content), Kind: SymbolKindImportDeclaration, Language: "php", FilePath: filePath, Namespace: ns, FullRange: sourceRange(child), DeclarationRange: sourceRange(child)})
		case phpNodeFunctionDef:
			p.extractFunction(ctx, a, child, content, filePath, ns)
		case phpNodeClassDecl, phpNodeInterfaceDecl:
			p.extractClass(ctx, a, child, content, filePath, ns)
		}
	}
}

func (p *PHPParser) extractFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath, ns string) {
	nameNode := childByType(fn, phpNodeName)
	if nameNode == nil {
		return
	}
	sym := phpFuncSymbol(fn, nameNode, content, filePath, ns)
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(fn, phpNodeCompoundStmt); body != nil {
		walkReferences(ctx, a, body, content, filePath, "php", phpRefGrammar)
	}
}

func phpFuncSymbol(fn, nameNode *sitter.Node, content []byte, filePath, ns string) *SymbolInstance {
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: "php", FilePath: filePath, Namespace: ns, FullRange: sourceRange(fn), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(fn, content, phpNodeComment)}
	if params := childByType(fn, phpNodeFormalParams); params != nil {
		for _, decl := range childrenByType(params, phpNodeSimpleParameter) {
			nm := childByType(decl, phpNodeVariableName)
			if nm == nil {
				continue
			}
			arg := Arg{Name: nodeText(nm, content)}
			if tp := childByType(decl, phpNodeName); tp != nil {
				arg.Type = &TypeRef{Name: nodeText(tp, content)}
			}
			sym.Args = append(sym.Args, arg)
		}
	}
	return sym
}

func (p *PHPParser) extractClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath, ns string) {
	nameNode := childByType(cls, phpNodeName)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: "php", FilePath: filePath, Namespace: ns, FullRange: sourceRange(cls), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(cls, content, phpNodeComment)}
	if base := childByType(cls, phpNodeBaseClause); base != nil {
		for _, id := range childrenByType(base, phpNodeName) {
			sym.InheritedTypes = append(sym.InheritedTypes, nodeText(id, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(cls, phpNodeDeclarationList)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case phpNodeMethodDecl:
			if nm := childByType(child, phpNodeName); nm != nil {
				sym := phpFuncSymbol(child, nm, content, filePath, ns)
				mid := a.push(sym)
				a.enter(mid)
				if mb := childByType(child, phpNodeCompoundStmt); mb != nil {
					walkReferences(ctx, a, mb, content, filePath, "php", phpRefGrammar)
				}
				a.leave()
			}
		case phpNodePropertyDecl:
			for _, el := range childrenByType(child, phpNodePropertyElement) {
				nm := childByType(el, phpNodeVariableName)
				if nm == nil {
					continue
				}
				a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: "php", FilePath: filePath, FullRange: sourceRange(child), DeclarationRange: sourceRange(nm)})
			}
		}
	}
}

var phpRefGrammar = refGrammar{call: phpNodeFunctionCall, member: phpNodeMemberCall, identifier: phpNodeVariableName, fieldName: phpNodeName}
