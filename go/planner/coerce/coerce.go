// Copyright 2026 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package coerce implements the type coercion the planner applies when it
// synthesizes column values: converting an expression to a column's type,
// applying the column's type modifier and producing type-level defaults.
package coerce

import (
	"github.com/multigres/multiplan/go/common/ast"
)

// Coercer converts expressions between types.
type Coercer interface {
	// CoerceToTarget converts expr, whose type is from, to type to with
	// modifier typmod, using implicit and assignment casts. It returns false
	// if no such conversion exists.
	CoerceToTarget(expr ast.Expression, from, to ast.Oid, typmod int32) (ast.Expression, bool)

	// CoerceTypmod applies typmod to an expression already of type typ, for
	// example the length of a char(n) column. Domain types also get their
	// domain check.
	CoerceTypmod(expr ast.Expression, typ ast.Oid, typmod int32) ast.Expression

	// TypeDefault returns the type-level default of typ, or nil.
	TypeDefault(typ ast.Oid, typmod int32) ast.Expression

	// BaseType returns the base type of a domain, or typ itself.
	BaseType(typ ast.Oid) ast.Oid

	// TypLenByVal returns the storage length and pass-by-value flag of typ.
	TypLenByVal(typ ast.Oid) (int, bool)

	// TypeName returns the SQL name of typ for messages.
	TypeName(typ ast.Oid) string

	// TypeByName resolves a type name, built-in or domain, to its OID.
	TypeByName(name string) (ast.Oid, bool)
}
