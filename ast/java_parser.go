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
	"github.com/smacker/go-tree-sitter/java"
)

const (
	javaNodePackageDecl    = "package_declaration"
	javaNodeImportDecl     = "import_declaration"
	javaNodeScopedIdent    = "scoped_identifier"
	javaNodeIdentifier     = "identifier"
	javaNodeClassDecl      = "class_declaration"
	javaNodeInterfaceDecl  = "interface_declaration"
	javaNodeMethodDecl     = "method_declaration"
	javaNodeFieldDecl      = "field_declaration"
	javaNodeVarDeclarator  = "variable_declarator"
	javaNodeClassBody      = "class_body"
	javaNodeSuperclass     = "superclass"
	javaNodeSuperInterface = "super_interfaces"
	javaNodeTypeIdentifier = "type_identifier"
	javaNodeFormalParams   = "formal_parameters"
	javaNodeFormalParam    = "formal_parameter"
	javaNodeBlock          = "block"
	javaNodeCallExpr       = "method_invocation"
	javaNodeFieldAccess    = "field_access"
	javaNodeLineComment    = "line_comment"
	javaNodeBlockComment   = "block_comment"
)

// JavaParser implements Parser for Java.
type JavaParser struct {
	maxFileSize int
}

func NewJavaParser() *JavaParser { return &JavaParser{maxFileSize: DefaultMaxFileSize} }

func (p *JavaParser) Language() string     { return "java" }
func (p *JavaParser) Extensions() []string { return []string{".java"} }

func (p *JavaParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "java", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "java", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(java.GetLanguage())
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "java", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: "java", Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
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
		case javaNodePackageDecl:
			pkgName = p.extractPackage(a, child, content, filePath)
		case javaNodeImportDecl:
			p.extractImport(a, child, content, filePath, pkgName)
		case javaNodeClassDecl, javaNodeInterfaceDecl:
			p.extractClass(ctxSpan, a, child, content, filePath, pkgName)
		}
	}

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "java", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *JavaParser) extractPackage(a *arena, decl *sitter.Node, content []byte, filePath string) string {
	nameNode := lastOf(decl, javaNodeScopedIdent, javaNodeIdentifier)
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, content)
	a.push(&SymbolInstance{ID: newSymbolID(), Name: name, Kind: SymbolKindPackageDeclaration, Language: "java", FilePath: filePath, Namespace: name, FullRange: sourceRange(decl), DeclarationRange: sourceRange(nameNode)})
	return name
}

func lastOf(n *sitter.Node, types ...string) *sitter.Node {
	for i := int(n.ChildCount()) - 1; i >= 0; i-- {
		c := n.Child(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func (p *JavaParser) extractImport(a *arena, decl *sitter.Node, content []byte, filePath, pkgName string) {
	nameNode := lastOf(decl, javaNodeScopedIdent, javaNodeIdentifier)
	if nameNode == nil {
		return
	}
	a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindImportDeclaration, Language: "java", FilePath: filePath, Namespace: pkgName, FullRange: sourceRange(decl), DeclarationRange: sourceRange(nameNode)})
}

func (p *JavaParser) extractClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath, pkgName string) {
	nameNode := childByType(cls, javaNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: "java", FilePath: filePath, Namespace: pkgName, FullRange: sourceRange(cls), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(cls, content, javaNodeLineComment)}
	if sc := childByType(cls, javaNodeSuperclass); sc != nil {
		if t := childByType(sc, javaNodeTypeIdentifier); t != nil {
			sym.InheritedTypes = append(sym.InheritedTypes, nodeText(t, content))
		}
	}
	if si := childByType(cls, javaNodeSuperInterface); si != nil {
		for _, t := range childrenByType(si, javaNodeTypeIdentifier) {
			sym.InheritedTypes = append(sym.InheritedTypes, nodeText(t, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(cls, javaNodeClassBody)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case javaNodeMethodDecl:
			p.extractMethod(ctx, a, child, content, filePath)
		case javaNodeFieldDecl:
			p.extractField(a, child, content, filePath)
		}
	}
}

func (p *JavaParser) extractMethod(ctx context.Context, a *arena, m *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(m, javaNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: "java", FilePath: filePath, FullRange: sourceRange(m), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(m, content, javaNodeLineComment)}
	if params := childByType(m, javaNodeFormalParams); params != nil {
		for _, decl := range childrenByType(params, javaNodeFormalParam) {
			nm := lastOf(decl, javaNodeIdentifier)
			if nm == nil {
				continue
			}
			arg := Arg{Name: nodeText(nm, content)}
			if tp := childByType(decl, javaNodeTypeIdentifier); tp != nil {
				arg.Type = &TypeRef{Name: nodeText(tp, content)}
			}
			sym.Args = append(sym.Args, arg)
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(m, javaNodeBlock); body != nil {
		walkReferences(ctx, a, body, content, filePath, "java", javaRefGrammar)
	}
}

func (p *JavaParser) extractField(a *arena, f *sitter.Node, content []byte, filePath string) {
	var vt *TypeRef
	if tp := childByType(f, javaNodeTypeIdentifier); tp != nil {
		vt = &TypeRef{Name: nodeText(tp, content)}
	}
	for _, d := range childrenByType(f, javaNodeVarDeclarator) {
		nm := childByType(d, javaNodeIdentifier)
		if nm == nil {
			continue
		}
		a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: "java", FilePath: filePath, FullRange: sourceRange(f), DeclarationRange: sourceRange(nm), VarType: vt})
	}
}

var javaRefGrammar = refGrammar{call: javaNodeCallExpr, member: javaNodeFieldAccess, identifier: javaNodeIdentifier, fieldName: javaNodeIdentifier}
