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
	"sync"
)

// Parser is the contract every language-specific extractor satisfies.
// Implementations lower a tree-sitter concrete syntax tree into the flat
// SymbolInstance arena; they never mutate content and tolerate syntax
// errors by returning partial results plus ParseResult.Errors rather than
// a non-nil error.
type Parser interface {
	// Parse extracts symbols from content. err is non-nil only for a
	// complete failure (invalid UTF-8, oversized content); grammar-level
	// syntax errors are reported in ParseResult.Errors instead of aborting
	// the parse. The built-in parsers do not set IsErrorRegion on symbols
	// extracted from inside an error subtree.
	Parse(ctx context.Context, content []byte, filePath string, opts ParseOptions) (*ParseResult, error)

	// Language is the canonical lowercase name ("go", "python", ...).
	Language() string

	// Extensions lists the file extensions (with leading dot) this parser
	// claims.
	Extensions() []string
}

// ParseOptions configures parser behavior. Not every field applies to
// every language.
type ParseOptions struct {
	// IncludeComments, when true, emits standalone CommentDefinition
	// symbols in addition to attaching doc comments to their owner.
	IncludeComments bool

	// MaxFileSize caps content length in bytes; 0 means the parser's own
	// default. Oversized content yields ErrFileTooLarge.
	MaxFileSize int
}

// DefaultParseOptions returns the options used when a caller does not
// specify its own.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		IncludeComments: false,
		MaxFileSize:     0,
	}
}

// Registry maps both language name and file extension to a Parser
// instance, so a caller can dispatch a file to the right parser without
// knowing the language up front.
type Registry struct {
	mu          sync.RWMutex
	byLanguage  map[string]Parser
	byExtension map[string]Parser
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage:  make(map[string]Parser),
		byExtension: make(map[string]Parser),
	}
}

// Register adds a parser under its Language() name and all of its
// Extensions(). A later registration for the same language or extension
// overwrites the earlier one. Register(nil) is a no-op.
func (r *Registry) Register(parser Parser) {
	if parser == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[parser.Language()] = parser
	for _, ext := range parser.Extensions() {
		r.byExtension[ext] = parser
	}
}

// ByLanguage returns the parser registered for language, if any.
func (r *Registry) ByLanguage(language string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byLanguage[language]
	return p, ok
}

// ByExtension returns the parser registered for ext (including the
// leading dot), if any.
func (r *Registry) ByExtension(ext string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byExtension[ext]
	return p, ok
}

// Languages lists every registered language name.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		out = append(out, lang)
	}
	return out
}

// NewDefaultRegistry builds a Registry with every built-in parser
// registered: ten parsers, with C and C++ registered separately.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoParser())
	r.Register(NewPythonParser())
	r.Register(NewTypeScriptParser())
	r.Register(NewJavaScriptParser())
	r.Register(NewRustParser())
	r.Register(NewJavaParser())
	r.Register(NewCSharpParser())
	r.Register(NewCParser())
	r.Register(NewCPPParser())
	r.Register(NewPHPParser())
	return r
}
