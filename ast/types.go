// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast provides the language-agnostic symbol model shared by every
// per-language parser, plus the parser registry used to dispatch a file to
// the right one.
//
// A parse never mutates: Parser.Parse walks a tree-sitter concrete syntax
// tree once and lowers it into a flat arena of SymbolInstance values linked
// by opaque SymbolID, never by pointer. Parent/child relationships are
// integer-free (SymbolID is a generated UUID, not an index) so a
// SymbolInstance can be handed across goroutines and into the markup and
// resolve packages without copying a tree of back-references.
package ast

import (
	"encoding/json"
	"fmt"
)

// SymbolKind is a tagged variant over every construct a parser can emit.
//
// The first group (up to and including CommentDefinition) are declarations;
// IsDeclaration reports true for those and false for the reference kinds
// that follow (FunctionCall, VariableUsage).
type SymbolKind int

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindPackageDeclaration
	SymbolKindStructDeclaration
	SymbolKindTypeAlias
	SymbolKindClassFieldDeclaration
	SymbolKindImportDeclaration
	SymbolKindVariableDefinition
	SymbolKindFunctionDeclaration
	SymbolKindCommentDefinition

	// Reference kinds. is_declaration is false for these.
	SymbolKindFunctionCall
	SymbolKindVariableUsage
)

var symbolKindNames = map[SymbolKind]string{
	SymbolKindUnknown:               "unknown",
	SymbolKindPackageDeclaration:    "package_declaration",
	SymbolKindStructDeclaration:     "struct_declaration",
	SymbolKindTypeAlias:             "type_alias",
	SymbolKindClassFieldDeclaration: "class_field_declaration",
	SymbolKindImportDeclaration:     "import_declaration",
	SymbolKindVariableDefinition:    "variable_definition",
	SymbolKindFunctionDeclaration:   "function_declaration",
	SymbolKindCommentDefinition:     "comment_definition",
	SymbolKindFunctionCall:          "function_call",
	SymbolKindVariableUsage:         "variable_usage",
}

func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsDeclaration distinguishes the declaration group from the reference
// group (FunctionCall, VariableUsage).
func (k SymbolKind) IsDeclaration() bool {
	switch k {
	case SymbolKindFunctionCall, SymbolKindVariableUsage:
		return false
	default:
		return true
	}
}

func (k SymbolKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *SymbolKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("SymbolKind must be a string: %w", err)
	}
	*k = ParseSymbolKind(s)
	return nil
}

// ParseSymbolKind returns SymbolKindUnknown for an unrecognized string.
func ParseSymbolKind(s string) SymbolKind {
	for kind, name := range symbolKindNames {
		if name == s {
			return kind
		}
	}
	return SymbolKindUnknown
}

// Point is a zero-indexed row/column pair, matching tree-sitter's convention.
type Point struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// SourceRange is a half-open byte interval with its row/column endpoints.
//
// Invariant: StartByte <= EndByte.
type SourceRange struct {
	StartByte  uint32 `json:"start_byte"`
	EndByte    uint32 `json:"end_byte"`
	StartPoint Point  `json:"start_point"`
	EndPoint   Point  `json:"end_point"`
}

// ContainsPoint reports whether p falls within the range, with both the
// start and end points inclusive (used by symbols-at-position queries).
func (r SourceRange) ContainsPoint(p Point) bool {
	if p.Row < r.StartPoint.Row || p.Row > r.EndPoint.Row {
		return false
	}
	if p.Row == r.StartPoint.Row && p.Column < r.StartPoint.Column {
		return false
	}
	if p.Row == r.EndPoint.Row && p.Column > r.EndPoint.Column {
		return false
	}
	return true
}

// Slice returns the bytes of the range out of the original file content.
func (r SourceRange) Slice(content []byte) []byte {
	if int(r.EndByte) > len(content) || r.StartByte > r.EndByte {
		return nil
	}
	return content[r.StartByte:r.EndByte]
}

// TypeRef describes a referenced or declared type, including generic /
// template arguments via Nested.
type TypeRef struct {
	Name             string    `json:"name,omitempty"`
	InferenceHint    string    `json:"inference_hint,omitempty"`
	IsPrimitive      bool      `json:"is_primitive,omitempty"`
	Namespace        string    `json:"namespace,omitempty"`
	ResolvedSymbolID string    `json:"resolved_symbol_id,omitempty"`
	Nested           []TypeRef `json:"nested,omitempty"`
}

// Arg is a function/method parameter: a name and an optional declared type.
type Arg struct {
	Name string   `json:"name"`
	Type *TypeRef `json:"type,omitempty"`
}

// SymbolInstance is the raw, per-parse output of a Parser: one node of the
// arena described in SPEC_FULL.md §9. After Parse returns, the only
// mutation is markup.Assign rewriting a FileSentinel prefix in CallerID.
type SymbolInstance struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Language string     `json:"language"`
	FilePath string     `json:"file_path"`

	// Namespace is the language's own notion of scope (Go package name,
	// Python module, C++ namespace, ...), distinct from the FilePath-derived
	// official path markup assigns later.
	Namespace string `json:"namespace,omitempty"`

	ParentID string   `json:"parent_id,omitempty"`
	ChildIDs []string `json:"child_ids,omitempty"`

	FullRange        SourceRange `json:"full_range"`
	DeclarationRange SourceRange `json:"declaration_range"`
	DefinitionRange  SourceRange `json:"definition_range"`

	// LinkedDeclarationID links a reference kind to its declaration. The
	// built-in parsers and package resolve leave it empty; resolve reports
	// its results as symbolstore.Usage values instead.
	LinkedDeclarationID string `json:"linked_declaration_id,omitempty"`

	// CallerID is the source text of the receiver sub-expression for
	// `obj.m(...)` calls and member accesses (e.g. "obj"), not yet a
	// resolved SymbolID; empty for free function calls and bare variable
	// usages. Package resolve uses it to find the receiver's type when
	// resolving the call.
	CallerID string `json:"caller_id,omitempty"`

	IsErrorRegion bool `json:"is_error_region,omitempty"`

	// Struct-like declarations.
	InheritedTypes []string `json:"inherited_types,omitempty"`
	TemplateTypes  []string `json:"template_types,omitempty"`

	// Function declarations.
	Args       []Arg    `json:"args,omitempty"`
	ReturnType *TypeRef `json:"return_type,omitempty"`

	// Variable definitions and class fields.
	VarType *TypeRef `json:"var_type,omitempty"`

	// Import declarations.
	ImportAlias    string `json:"import_alias,omitempty"`
	ImportIsStdlib bool   `json:"import_is_stdlib,omitempty"`

	// DocComment is the comment block immediately preceding the symbol, if
	// any, carried here rather than as a separate CommentDefinition child
	// for declarations that have one obvious owner.
	DocComment string `json:"doc_comment,omitempty"`
}

// ParseResult is the output of parsing one file snapshot.
type ParseResult struct {
	FilePath        string            `json:"file_path"`
	Language        string            `json:"language"`
	Symbols         []*SymbolInstance `json:"symbols"`
	Hash            string            `json:"hash"`
	ParsedAtMilli   int64             `json:"parsed_at_milli"`
	ParseDurationMs int64             `json:"parse_duration_ms"`
	Errors          []string          `json:"errors,omitempty"`
}

// HasErrors reports whether any non-fatal parse error was recorded.
func (r *ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ByID returns a lookup map from SymbolInstance.ID to the instance, built on
// demand; callers needing repeated lookups should build their own index
// instead (see package resolve).
func (r *ParseResult) ByID() map[string]*SymbolInstance {
	out := make(map[string]*SymbolInstance, len(r.Symbols))
	for _, s := range r.Symbols {
		out[s.ID] = s
	}
	return out
}

// Root returns the top-level symbols (ParentID == "").
func (r *ParseResult) Root() []*SymbolInstance {
	var out []*SymbolInstance
	for _, s := range r.Symbols {
		if s.ParentID == "" {
			out = append(out, s)
		}
	}
	return out
}
