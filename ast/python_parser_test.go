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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPythonParserExtractsClassWithBaseAndMethod(t *testing.T) {
	src := `class Animal(Base):
    def say(self):
        print(self.name)
`
	p := NewPythonParser()
	result, err := p.Parse(context.Background(), []byte(src), "animal.py", DefaultParseOptions())
	require.NoError(t, err)
	require.False(t, result.HasErrors())

	var class, method *SymbolInstance
	for _, sym := range result.Symbols {
		switch {
		case sym.Name == "Animal" && sym.Kind == SymbolKindStructDeclaration:
			class = sym
		case sym.Name == "say" && sym.Kind == SymbolKindFunctionDeclaration:
			method = sym
		}
	}
	require.NotNil(t, class)
	require.Equal(t, []string{"Base"}, class.InheritedTypes)
	require.NotNil(t, method)
	require.Equal(t, class.ID, method.ParentID)
	require.Len(t, method.Args, 1)
	require.Equal(t, "self", method.Args[0].Name)
}

func TestPythonParserLanguageAndExtensions(t *testing.T) {
	p := NewPythonParser()
	require.Equal(t, "python", p.Language())
	require.ElementsMatch(t, []string{".py", ".pyi"}, p.Extensions())
}
