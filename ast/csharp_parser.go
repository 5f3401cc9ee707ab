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
	"github.com/smacker/go-tree-sitter/csharp"
)

const (
	csNodeNamespaceDecl    = "namespace_declaration"
	csNodeUsingDirective   = "using_directive"
	csNodeQualifiedName    = "qualified_name"
	csNodeIdentifier       = "identifier"
	csNodeClassDecl        = "class_declaration"
	csNodeInterfaceDecl    = "interface_declaration"
	csNodeMethodDecl       = "method_declaration"
	csNodeFieldDecl        = "field_declaration"
	csNodeVarDeclaration   = "variable_declaration"
	csNodeVarDeclarator    = "variable_declarator"
	csNodeDeclarationList  = "declaration_list"
	csNodeBaseList         = "base_list"
	csNodeParameterList    = "parameter_list"
	csNodeParameter        = "parameter"
	csNodeBlock            = "block"
	csNodePredefinedType   = "predefined_type"
	csNodeInvocationExpr   = "invocation_expression"
	csNodeMemberAccessExpr = "member_access_expression"
	csNodeComment          = "comment"
)

// CSharpParser implements Parser for C#.
type CSharpParser struct {
	maxFileSize int
}

func NewCSharpParser() *CSharpParser { return &CSharpParser{maxFileSize: DefaultMaxFileSize} }

func (p *CSharpParser) Language() string     { return "csharp" }
func (p *CSharpParser) Extensions() []string { return []string{".cs"} }

func (p *CSharpParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "csharp", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "csharp", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(csharp.GetLanguage())
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "csharp", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: "csharp", Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
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
	recordParseMetrics(ctxSpan, "csharp", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *CSharpParser) walk(ctx context.Context, a *arena, n *sitter.Node, content []byte, filePath, ns string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case csNodeNamespaceDecl:
			nameNode := lastOf(child, csNodeQualifiedName, csNodeIdentifier)
			childNs := ns
			if nameNode != nil {
				childNs = nodeText(nameNode, content)
				a.push(&SymbolInstance{ID: newSymbolID(), Name: childNs, Kind: SymbolKindPackageDeclaration, Language: "csharp", FilePath: filePath, Namespace: childNs, FullRange: sourceRange(child), DeclarationRange: sourceRange(nameNode)})
			}
			if body := childByType(child, csNodeDeclarationList); body != nil {
				p.walk(ctx, a, body, content, filePath, childNs)
			}
		case csNodeUsingDirective:
			nameNode := lastOf(child, csNodeQualifiedName, csNodeIdentifier)
			if nameNode != nil {
				a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindImportDeclaration, Language: "csharp", FilePath: filePath, Namespace: ns, FullRange: sourceRange(child), DeclarationRange: sourceRange(nameNode)})
			}
		case csNodeClassDecl, csNodeInterfaceDecl:
			p.extractClass(ctx, a, child, content, filePath, ns)
		}
	}
}

func (p *CSharpParser) extractClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath, ns string) {
	nameNode := childByType(cls, csNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: "csharp", FilePath: filePath, Namespace: ns, FullRange: sourceRange(cls), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(cls, content, csNodeComment)}
	if base := childByType(cls, csNodeBaseList); base != nil {
		for _, id := range childrenByType(base, csNodeIdentifier) {
			sym.InheritedTypes = append(sym.InheritedTypes, nodeText(id, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(cls, csNodeDeclarationList)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case csNodeMethodDecl:
			p.extractMethod(ctx, a, child, content, filePath)
		case csNodeFieldDecl:
			p.extractField(a, child, content, filePath)
		}
	}
}

func (p *CSharpParser) extractMethod(ctx context.Context, a *arena, m *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(m, csNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: "csharp", FilePath: filePath, FullRange: sourceRange(m), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(m, content, csNodeComment)}
	if params := childByType(m, csNodeParameterList); params != nil {
		for _, decl := range childrenByType(params, csNodeParameter) {
			nm := lastOf(decl, csNodeIdentifier)
			if nm == nil {
				continue
			}
			sym.Args = append(sym.Args, Arg{Name: nodeText(nm, content)})
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(m, csNodeBlock); body != nil {
		walkReferences(ctx, a, body, content, filePath, "csharp", csRefGrammar)
	}
}

func (p *CSharpParser) extractField(a *arena, f *sitter.Node, content []byte, filePath string) {
	decl := childByType(f, csNodeVarDeclaration)
	if decl == nil {
		return
	}
	for _, d := range childrenByType(decl, csNodeVarDeclarator) {
		nm := childByType(d, csNodeIdentifier)
		if nm == nil {
			continue
		}
		a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: "csharp", FilePath: filePath, FullRange: sourceRange(f), DeclarationRange: sourceRange(nm)})
	}
}

var csRefGrammar = refGrammar{call: csNodeInvocationExpr, member: csNodeMemberAccessExpr, identifier: csNodeIdentifier, fieldName: csNodeIdentifier}
