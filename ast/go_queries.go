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

// Node type constants used by GoParser, matching tree-sitter-go's grammar.
// Reference: https://github.com/tree-sitter/tree-sitter-go/blob/master/src/grammar.json
const (
	goNodePackageClause       = "package_clause"
	goNodeImportDeclaration   = "import_declaration"
	goNodeImportSpec          = "import_spec"
	goNodeImportSpecList      = "import_spec_list"
	goNodeFunctionDeclaration = "function_declaration"
	goNodeMethodDeclaration   = "method_declaration"
	goNodeTypeDeclaration     = "type_declaration"
	goNodeVarDeclaration      = "var_declaration"
	goNodeConstDeclaration    = "const_declaration"
	goNodeTypeSpec            = "type_spec"
	goNodeStructType          = "struct_type"
	goNodeInterfaceType       = "interface_type"
	goNodeFieldDeclaration    = "field_declaration"
	goNodeVarSpec             = "var_spec"
	goNodeConstSpec           = "const_spec"
	goNodeIdentifier          = "identifier"
	goNodeFieldIdentifier     = "field_identifier"
	goNodePackageIdentifier   = "package_identifier"
	goNodeTypeIdentifier      = "type_identifier"
	goNodeParameterList       = "parameter_list"
	goNodeParameterDecl       = "parameter_declaration"
	goNodeComment             = "comment"
	goNodeString              = "interpreted_string_literal"
	goNodeCallExpression      = "call_expression"
	goNodeSelectorExpression  = "selector_expression"
	goNodePointerType         = "pointer_type"
	goNodeQualifiedType       = "qualified_type"
	goNodeSliceType           = "slice_type"
	goNodeArrayType           = "array_type"
)
