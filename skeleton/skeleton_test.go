// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package skeleton

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeindex/ast"
	"github.com/AleutianAI/codeindex/markup"
)

func TestClassSkeletonsSlicesSourceVerbatim(t *testing.T) {
	src := []byte("package x\n\ntype Animal struct {\n\tName string\n}\n")
	p := ast.NewGoParser()
	result, err := p.Parse(context.Background(), src, "animal.go", ast.DefaultParseOptions())
	require.NoError(t, err)

	pathed := markup.Assign(result)
	skeletons := ClassSkeletons(pathed, src)
	require.Len(t, skeletons, 1)
	require.Contains(t, skeletons[0].Header, "Animal")

	for _, member := range skeletons[0].Members {
		require.Contains(t, string(src), member, "every rendered member line must be a literal subsequence of the source")
	}
}

func TestDeclarationPreviewIsSubsequenceOfSource(t *testing.T) {
	src := []byte("package x\n\n// Says something.\nfunc say() {\n\tprintln(\"hi\")\n}\n")
	p := ast.NewGoParser()
	result, err := p.Parse(context.Background(), src, "say.go", ast.DefaultParseOptions())
	require.NoError(t, err)

	var fn *ast.SymbolInstance
	for _, s := range result.Symbols {
		if s.Kind == ast.SymbolKindFunctionDeclaration {
			fn = s
		}
	}
	require.NotNil(t, fn)

	preview := DeclarationPreview(fn, src)
	require.Contains(t, preview, "say")
}
