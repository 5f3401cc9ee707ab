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
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

const (
	tsNodeImportStatement     = "import_statement"
	tsNodeImportClause        = "import_clause"
	tsNodeNamespaceImport     = "namespace_import"
	tsNodeNamedImports        = "named_imports"
	tsNodeImportSpecifier     = "import_specifier"
	tsNodeString              = "string"
	tsNodeFunctionDeclaration = "function_declaration"
	tsNodeClassDeclaration    = "class_declaration"
	tsNodeInterfaceDecl       = "interface_declaration"
	tsNodeTypeAliasDecl       = "type_alias_declaration"
	tsNodeLexicalDecl         = "lexical_declaration"
	tsNodeVariableDeclarator  = "variable_declarator"
	tsNodeClassBody           = "class_body"
	tsNodeClassHeritage       = "class_heritage"
	tsNodeMethodDefinition    = "method_definition"
	tsNodePublicFieldDef      = "public_field_definition"
	tsNodePropertySignature   = "property_signature"
	tsNodeMethodSignature     = "method_signature"
	tsNodeInterfaceBody       = "interface_body"
	tsNodeTypeAnnotation      = "type_annotation"
	tsNodeTypeIdentifier      = "type_identifier"
	tsNodeFormalParameters    = "formal_parameters"
	tsNodeRequiredParameter   = "required_parameter"
	tsNodeOptionalParameter   = "optional_parameter"
	tsNodeIdentifier          = "identifier"
	tsNodePropertyIdentifier  = "property_identifier"
	tsNodeCallExpression      = "call_expression"
	tsNodeMemberExpression    = "member_expression"
	tsNodeStatementBlock      = "statement_block"
	tsNodeComment             = "comment"
)

// TypeScriptParser implements Parser for both .ts and .tsx, selecting the
// tsx grammar only for .tsx so JSX syntax parses without ambiguity, the
// way the teacher's typescript_parser.go does.
type TypeScriptParser struct {
	maxFileSize int
}

func NewTypeScriptParser() *TypeScriptParser { return &TypeScriptParser{maxFileSize: DefaultMaxFileSize} }

func (p *TypeScriptParser) Language() string     { return "typescript" }
func (p *TypeScriptParser) Extensions() []string { return []string{".ts", ".tsx"} }

func (p *TypeScriptParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	start := time.Now()
	ctxSpan, span := startParseSpan(ctx, "typescript", filePath, len(content))
	defer span.End()

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = p.maxFileSize
	}
	if err := validateContent(content, maxSize); err != nil {
		recordParseMetrics(ctxSpan, "typescript", time.Since(start), 0, false)
		return nil, err
	}

	sp := sitter.NewParser()
	if strings.HasSuffix(filePath, ".tsx") {
		sp.SetLanguage(tsx.GetLanguage())
	} else {
		sp.SetLanguage(typescript.GetLanguage())
	}
	tree, err := sp.ParseCtx(ctxSpan, nil, content)
	if err != nil {
		recordParseMetrics(ctxSpan, "typescript", time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	result := &ParseResult{FilePath: filePath, Language: "typescript", Hash: hashContent(content), ParsedAtMilli: start.UnixMilli()}
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
		p.walkTop(ctxSpan, a, root.Child(i), content, filePath)
	}

	result.Symbols = a.symbols
	result.ParseDurationMs = time.Since(start).Milliseconds()
	setParseSpanResult(span, len(result.Symbols), len(result.Errors))
	recordParseMetrics(ctxSpan, "typescript", time.Since(start), len(result.Symbols), true)
	return result, nil
}

func (p *TypeScriptParser) walkTop(ctx context.Context, a *arena, child *sitter.Node, content []byte, filePath string) {
	switch child.Type() {
	case tsNodeImportStatement:
		p.extractImport(a, child, content, filePath)
	case tsNodeFunctionDeclaration:
		p.extractFunction(ctx, a, child, content, filePath)
	case tsNodeClassDeclaration:
		p.extractClass(ctx, a, child, content, filePath)
	case tsNodeInterfaceDecl:
		p.extractInterface(a, child, content, filePath)
	case tsNodeTypeAliasDecl:
		p.extractTypeAlias(a, child, content, filePath)
	case tsNodeLexicalDecl:
		p.extractLexical(a, child, content, filePath)
	}
}

func (p *TypeScriptParser) extractImport(a *arena, decl *sitter.Node, content []byte, filePath string) {
	pathNode := childByType(decl, tsNodeString)
	modulePath := ""
	if pathNode != nil {
		modulePath = strings.Trim(nodeText(pathNode, content), `"'`)
	}
	clause := childByType(decl, tsNodeImportClause)
	if clause == nil {
		a.push(&SymbolInstance{ID: newSymbolID(), Name: modulePath, Kind: SymbolKindImportDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(decl)})
		return
	}
	if ns := childByType(clause, tsNodeNamespaceImport); ns != nil {
		if id := childByType(ns, tsNodeIdentifier); id != nil {
			a.push(&SymbolInstance{ID: newSymbolID(), Name: modulePath, Kind: SymbolKindImportDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(ns), ImportAlias: nodeText(id, content)})
		}
		return
	}
	if named := childByType(clause, tsNodeNamedImports); named != nil {
		for _, spec := range childrenByType(named, tsNodeImportSpecifier) {
			ids := childrenByType(spec, tsNodeIdentifier)
			if len(ids) == 0 {
				continue
			}
			name := nodeText(ids[0], content)
			alias := ""
			if len(ids) > 1 {
				alias = nodeText(ids[1], content)
			}
			a.push(&SymbolInstance{ID: newSymbolID(), Name: modulePath + "." + name, Kind: SymbolKindImportDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(spec), ImportAlias: alias})
		}
		return
	}
	if id := childByType(clause, tsNodeIdentifier); id != nil {
		a.push(&SymbolInstance{ID: newSymbolID(), Name: modulePath, Kind: SymbolKindImportDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(id), ImportAlias: nodeText(id, content)})
	}
}

func (p *TypeScriptParser) extractFunction(ctx context.Context, a *arena, fn *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(fn, tsNodeIdentifier)
	if nameNode == nil {
		return
	}
	sym := tsFuncSymbol(fn, nameNode, content, filePath)
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	if body := childByType(fn, tsNodeStatementBlock); body != nil {
		walkReferences(ctx, a, body, content, filePath, "typescript", tsRefGrammar)
	}
}

func tsFuncSymbol(fn, nameNode *sitter.Node, content []byte, filePath string) *SymbolInstance {
	sym := &SymbolInstance{
		ID:               newSymbolID(),
		Name:             nodeText(nameNode, content),
		Kind:             SymbolKindFunctionDeclaration,
		Language:         "typescript",
		FilePath:         filePath,
		FullRange:        sourceRange(fn),
		DeclarationRange: sourceRange(nameNode),
		DocComment:       precedingComment(fn, content, tsNodeComment),
	}
	if params := childByType(fn, tsNodeFormalParameters); params != nil {
		for i := 0; i < int(params.ChildCount()); i++ {
			c := params.Child(i)
			if c.Type() == tsNodeRequiredParameter || c.Type() == tsNodeOptionalParameter {
				sym.Args = append(sym.Args, tsParamArg(c, content))
			}
		}
	}
	if ret := childByType(fn, tsNodeTypeAnnotation); ret != nil {
		sym.ReturnType = &TypeRef{Name: strings.TrimPrefix(nodeText(ret, content), ":")}
	}
	return sym
}

func tsParamArg(decl *sitter.Node, content []byte) Arg {
	var name string
	var typeNode *sitter.Node
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case tsNodeIdentifier:
			if name == "" {
				name = nodeText(c, content)
			}
		case tsNodeTypeAnnotation:
			typeNode = c
		}
	}
	arg := Arg{Name: name}
	if typeNode != nil {
		arg.Type = &TypeRef{Name: strings.TrimPrefix(nodeText(typeNode, content), ":")}
	}
	return arg
}

func (p *TypeScriptParser) extractClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(cls, tsNodeTypeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{
		ID:               newSymbolID(),
		Name:             nodeText(nameNode, content),
		Kind:             SymbolKindStructDeclaration,
		Language:         "typescript",
		FilePath:         filePath,
		FullRange:        sourceRange(cls),
		DeclarationRange: sourceRange(nameNode),
		DocComment:       precedingComment(cls, content, tsNodeComment),
	}
	if heritage := childByType(cls, tsNodeClassHeritage); heritage != nil {
		for _, id := range childrenByType(heritage, tsNodeTypeIdentifier) {
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
		switch child.Type() {
		case tsNodeMethodDefinition:
			if nm := childByType(child, tsNodePropertyIdentifier); nm != nil {
				methSym := tsFuncSymbol(child, nm, content, filePath)
				methSym.Kind = SymbolKindFunctionDeclaration
				mid := a.push(methSym)
				a.enter(mid)
				if body := childByType(child, tsNodeStatementBlock); body != nil {
					walkReferences(ctx, a, body, content, filePath, "typescript", tsRefGrammar)
				}
				a.leave()
			}
		case tsNodePublicFieldDef:
			if nm := childByType(child, tsNodePropertyIdentifier); nm != nil {
				var vt *TypeRef
				if ann := childByType(child, tsNodeTypeAnnotation); ann != nil {
					vt = &TypeRef{Name: strings.TrimPrefix(nodeText(ann, content), ":")}
				}
				a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(child), DeclarationRange: sourceRange(nm), VarType: vt})
			}
		}
	}
}

func (p *TypeScriptParser) extractInterface(a *arena, iface *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(iface, tsNodeTypeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(iface), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(iface, content, tsNodeComment)}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(iface, tsNodeInterfaceBody)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() == tsNodePropertySignature || child.Type() == tsNodeMethodSignature {
			if nm := childByType(child, tsNodePropertyIdentifier); nm != nil {
				a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: "typescript", FilePath: filePath, FullRange: sourceRange(child), DeclarationRange: sourceRange(nm)})
			}
		}
	}
}

func (p *TypeScriptParser) extractTypeAlias(a *arena, decl *sitter.Node, content []byte, filePath string) {
	nameNode := childByType(decl, tsNodeTypeIdentifier)
	if nameNode == nil {
		return
	}
	a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindTypeAlias, Language: "typescript", FilePath: filePath, FullRange: sourceRange(decl), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(decl, content, tsNodeComment)})
}

func (p *TypeScriptParser) extractLexical(a *arena, decl *sitter.Node, content []byte, filePath string) {
	for _, d := range childrenByType(decl, tsNodeVariableDeclarator) {
		nameNode := childByType(d, tsNodeIdentifier)
		if nameNode == nil {
			continue
		}
		var vt *TypeRef
		if ann := childByType(d, tsNodeTypeAnnotation); ann != nil {
			vt = &TypeRef{Name: strings.TrimPrefix(nodeText(ann, content), ":")}
		}
		a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindVariableDefinition, Language: "typescript", FilePath: filePath, FullRange: sourceRange(d), DeclarationRange: sourceRange(nameNode), VarType: vt})
	}
}

var tsRefGrammar = refGrammar{call: tsNodeCallExpression, member: tsNodeMemberExpression, identifier: tsNodeIdentifier, fieldName: tsNodePropertyIdentifier}
