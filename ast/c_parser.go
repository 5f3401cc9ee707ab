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
	"github.com/smacker/go-tree-sitter/c"
)

const (
	cNodePreprocInclude   = "preproc_include"
	cNodeStringLiteral    = "string_literal"
	cNodeSystemLibString  = "system_lib_string"
	cNodeFunctionDef      = "function_definition"
	cNodeFunctionDecltor  = "function_declarator"
	cNodeIdentifier       = "identifier"
	cNodeFieldIdentifier  = "field_identifier"
	cNodeStructSpecifier  = "struct_specifier"
	cNodeFieldDeclList    = "field_declaration_list"
	cNodeFieldDeclaration = "field_declaration"
	cNodeParameterList    = "parameter_list"
	cNodeParameterDecl    = "parameter_declaration"
	cNodeCompoundStmt     = "compound_statement"
	cNodePrimitiveType    = "primitive_type"
	cNodeTypeIdentifier   = "type_identifier"
	cNodeCallExpression   = "call_expression"
	cNodeFieldExpression  = "field_expression"
	cNodeComment          = "comment"
)

// CParser implements Parser for C source/headers.
type CParser struct {
	maxFileSize int
}

func NewCParser() *CParser { return &CParser{maxFileSize: DefaultMaxFileSize} }

func (p *CParser) Language() string     { return "c" }
func (p *CParser) Extensions() []string { return []string{".c", ".h"} }

func (p *CParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	return parseCFamily(ctx, c.GetLanguage(), "c", content, filePath, opts, p.maxFileSize)
}

// parseCFamily is shared by CParser and CPPParser: the grammars differ
// mainly in which additional node types C++ adds (classes, namespaces),
// so the declaration/preprocessor/function extraction below is common.
func parseCFamily(ctx context.Context, lang *sitter.Language, langName string, content []byte, filePath string, opts ParseOptions, defaultMax int) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, langName, filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = defaultMax
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, langName, time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	sp.SetLanguage(lang)
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, langName, time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: langName, Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	a := newArena()
	walkCFamily(ctxSpan, a, root, content, filePath, langName)

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, langName, time.Since(start), len(result.Symbols), true)
	return result, nil
}

func walkCFamily(ctx context.Context, a *arena, root *sitter.Node, content []byte, filePath, langName string) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case cNodePreprocInclude:
			extractInclude(a, child, content, filePath, langName)
		case cNodeFunctionDef:
			extractCFunction(ctx, a, child, content, filePath, langName)
		case cNodeStructSpecifier:
			extractCStruct(a, child, content, filePath, langName)
		case cppNodeClassSpecifier:
			extractCPPClass(ctx, a, child, content, filePath, langName)
		case cppNodeNamespaceDef:
			extractCPPNamespace(ctx, a, child, content, filePath, langName)
		}
	}
}

func extractInclude(a *arena, decl *sitter.Node, content []byte, filePath, langName string) {
	pathNode := childByType(decl, cNodeStringLiteral)
	if pathNode == nil {
		pathNode = childByType(decl, cNodeSystemLibString)
	}
	if pathNode == nil {
		return
	}
	a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(pathNode, content), Kind: SymbolKindImportDeclaration, Language: langName, FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(pathNode)})
}

func extractCFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath, langName string) {
	decltor := childByType(fn, cNodeFunctionDecltor)
	if decltor == nil {
		return
	}
	nameNode := childByType(decltor, cNodeIdentifier)
	if nameNode == nil {
		nameNode = childByType(decltor, cNodeFieldIdentifier)
	}
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindFunctionDeclaration, Language: langName, FilePath: filePath, FullRange: sourceRange(fn), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(fn, content, cNodeComment)}
	if params := childByType(decltor, cNodeParameterList); params != nil {
		for _, decl := range childrenByType(params, cNodeParameterDecl) {
			sym.Args = append(sym.Args, cParamArg(decl, content))
		}
	}
	if retType := firstOf(fn, cNodePrimitiveType, cNodeTypeIdentifier); retType != nil {
		sym.ReturnType = &TypeRef{Name: nodeText(retType, content)}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(fn, cNodeCompoundStmt); body != nil {
		walkReferences(ctx, a, body, content, filePath, langName, cRefGrammar)
	}
}

func firstOf(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func cParamArg(decl *sitter.Node, content []byte) Arg {
	var name string
	var typeNode *sitter.Node
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case cNodeIdentifier:
			name = nodeText(c, content)
		case cNodePrimitiveType, cNodeTypeIdentifier:
			typeNode = c
		}
	}
	arg := Arg{Name: name}
	if typeNode != nil {
		arg.Type = &TypeRef{Name: nodeText(typeNode, content), IsPrimitive: typeNode.Type() == cNodePrimitiveType}
	}
	return arg
}

func extractCStruct(a *arena, st *sitter.Node, content []byte, filePath, langName string) {
	nameNode := childByType(st, cNodeTypeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: langName, FilePath: filePath, FullRange: sourceRange(st), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(st, content, cNodeComment)}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if fields := childByType(st, cNodeFieldDeclList); fields != nil {
		for _, field := range childrenByType(fields, cNodeFieldDeclaration) {
			nm := lastOf(field, cNodeIdentifier, cNodeFieldIdentifier)
			if nm == nil {
				continue
			}
			var vt *TypeRef
			if tp := firstOf(field, cNodePrimitiveType, cNodeTypeIdentifier); tp != nil {
				vt = &TypeRef{Name: nodeText(tp, content)}
			}
			a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: langName, FilePath: filePath, FullRange: sourceRange(field), DeclarationRange: sourceRange(nm), VarType: vt})
		}
	}
}

var cRefGrammar = refGrammar{call: cNodeCallExpression, member: cNodeFieldExpression, identifier: cNodeIdentifier, fieldName: cNodeFieldIdentifier}
