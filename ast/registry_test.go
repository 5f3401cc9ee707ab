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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistryCoversAllTenLanguages(t *testing.T) {
	r := NewDefaultRegistry()

	want := map[string]string{
		".go":   "go",
		".py":   "python",
		".ts":   "typescript",
		".js":   "javascript",
		".rs":   "rust",
		".java": "java",
		".cs":   "csharp",
		".c":    "c",
		".cpp":  "cpp",
		".php":  "php",
	}
	for ext, lang := range want {
		p, ok := r.ByExtension(ext)
		require.Truef(t, ok, "no parser registered for %s", ext)
		require.Equal(t, lang, p.Language())

		byLang, ok := r.ByLanguage(lang)
		require.True(t, ok)
		require.Same(t, p, byLang)
	}
	require.Len(t, r.Languages(), len(want))
}

func TestRegistryByExtensionUnknownReturnsFalse(t *testing.T) {
	r := NewDefaultRegistry()
	_, ok := r.ByExtension(".xyz")
	require.False(t, ok)
}

func TestRegisterNilIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Register(nil)
	require.Empty(t, r.Languages())
}

func TestRegisterLaterOverwritesEarlier(t *testing.T) {
	r := NewRegistry()
	first := NewGoParser()
	second := NewGoParser(WithGoMaxFileSize(1))
	r.Register(first)
	r.Register(second)

	got, ok := r.ByLanguage("go")
	require.True(t, ok)
	require.Same(t, second, got)
}
