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

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

const (
	cppNodeClassSpecifier  = "class_specifier"
	cppNodeNamespaceDef    = "namespace_definition"
	cppNodeNamespaceIdent  = "namespace_identifier"
	cppNodeDeclarationList = "declaration_list"
	cppNodeBaseClauseList  = "base_class_clause"
	cppNodeFunctionDef     = "function_definition"
	cppNodeFieldDeclList   = "field_declaration_list"
	cppNodeFieldDecl       = "field_declaration"
)

// CPPParser implements Parser for C++. It shares walkCFamily with CParser
// and additionally walks class_specifier/namespace_definition nodes the C
// grammar does not have.
type CPPParser struct {
	maxFileSize int
}

func NewCPPParser() *CPPParser { return &CPPParser{maxFileSize: DefaultMaxFileSize} }

func (p *CPPParser) Language() string     { return "cpp" }
func (p *CPPParser) Extensions() []string { return []string{".cc", ".cpp", ".hpp", ".cxx"} }

func (p *CPPParser) Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error) {
	return parseCFamily(ctx, cpp.GetLanguage(), "cpp", content, filePath, opts, p.maxFileSize)
}

func extractCPPNamespace(ctx context.Context, a *arena, ns *sitter.Node, content []byte, filePath, langName string) {
	nameNode := childByType(ns, cppNodeNamespaceIdent)
	name := ""
	if nameNode != nil {
		name = nodeText(nameNode, content)
	}
	body := childByType(ns, cppNodeDeclarationList)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case cNodeFunctionDef:
			extractCFunction(ctx, a, child, content, filePath, langName)
		case cNodeStructSpecifier:
			extractCStruct(a, child, content, filePath, langName)
		case cppNodeClassSpecifier:
			extractCPPClass(ctx, a, child, content, filePath, langName)
		}
	}
	_ = name
}

func extractCPPClass(ctx context.Context, a *arena, cls *sitter.Node, content []byte, filePath, langName string) {
	nameNode := childByType(cls, cNodeTypeIdentifier)
	if nameNode == nil {
		return
	}
	sym := &SymbolInstance{ID: newSymbolID(), Name: nodeText(nameNode, content), Kind: SymbolKindStructDeclaration, Language: langName, FilePath: filePath, FullRange: sourceRange(cls), DeclarationRange: sourceRange(nameNode), DocComment: precedingComment(cls, content, cNodeComment)}
	if base := childByType(cls, cppNodeBaseClauseList); base != nil {
		for _, id := range childrenByType(base, cNodeTypeIdentifier) {
			sym.InheritedTypes = append(sym.InheritedTypes, nodeText(id, content))
		}
	}
	id := a.push(sym)
	a.enter(id)
	defer a.leave()
	body := childByType(cls, cppNodeFieldDeclList)
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case cppNodeFunctionDef:
			extractCFunction(ctx, a, child, content, filePath, langName)
		case cppNodeFieldDecl:
			nm := lastOf(child, cNodeIdentifier, cNodeFieldIdentifier)
			if nm == nil {
				continue
			}
			var vt *TypeRef
			if tp := firstOf(child, cNodePrimitiveType, cNodeTypeIdentifier); tp != nil {
				vt = &TypeRef{Name: nodeText(tp, content)}
			}
			a.push(&SymbolInstance{ID: newSymbolID(), Name: nodeText(nm, content), Kind: SymbolKindClassFieldDeclaration, Language: langName, FilePath: filePath, FullRange: sourceRange(child), DeclarationRange: sourceRange(nm), VarType: vt})
		}
	}
}
