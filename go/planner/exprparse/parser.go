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

// Package exprparse turns the SQL text of stored column and domain defaults
// into planner expressions.
//
// Text is parsed with the PostgreSQL grammar (through pg_query) as the single
// target of a SELECT and then transformed the way parse analysis would:
// literals become typed constants, casts are resolved through the coercer
// and a small set of volatile built-in functions is recognized. Anything
// else is rejected with a diagnostic rather than guessed at.
package exprparse

import (
	"math"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/coerce"
)

// ColumnResolver resolves an unqualified column name to a column reference.
type ColumnResolver func(name string) (*ast.Var, error)

// Parser converts expression text into planner expressions.
type Parser struct {
	coercer coerce.Coercer
	columns ColumnResolver
}

// Option configures a Parser.
type Option func(*Parser)

// WithColumnResolver allows column references, resolved by fn. Without it
// column references are rejected, as they are in DEFAULT clauses.
func WithColumnResolver(fn ColumnResolver) Option {
	return func(p *Parser) {
		p.columns = fn
	}
}

// New creates a Parser that resolves types and casts through coercer.
func New(coercer coerce.Coercer, opts ...Option) *Parser {
	p := &Parser{coercer: coercer}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDefault parses the stored text of a default expression.
func (p *Parser) ParseDefault(text string) (ast.Expression, error) {
	return p.ParseExpr(text)
}

// ParseExpr parses a single scalar expression.
func (p *Parser) ParseExpr(text string) (ast.Expression, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid(mterrors.CodeSyntaxError, "empty expression")
	}
	tree, err := pg_query.Parse("SELECT " + text)
	if err != nil {
		return nil, invalid(mterrors.CodeSyntaxError, "could not parse expression %q: %v", text, err)
	}
	if len(tree.Stmts) != 1 {
		return nil, invalid(mterrors.CodeSyntaxError, "expression %q is not a single expression", text)
	}
	sel := tree.Stmts[0].GetStmt().GetSelectStmt()
	if sel == nil || len(sel.TargetList) != 1 || len(sel.FromClause) != 0 || sel.WhereClause != nil {
		return nil, invalid(mterrors.CodeSyntaxError, "expression %q is not a single expression", text)
	}
	target := sel.TargetList[0].GetResTarget()
	if target == nil || target.Name != "" {
		return nil, invalid(mterrors.CodeSyntaxError, "expression %q is not a single expression", text)
	}
	return p.transform(target.Val)
}

func (p *Parser) transform(node *pg_query.Node) (ast.Expression, error) {
	if node == nil {
		return nil, invalid(mterrors.CodeSyntaxError, "missing expression")
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_AConst:
		return makeConst(n.AConst)
	case *pg_query.Node_TypeCast:
		return p.transformTypeCast(n.TypeCast)
	case *pg_query.Node_FuncCall:
		return p.transformFuncCall(n.FuncCall)
	case *pg_query.Node_SqlvalueFunction:
		return transformSQLValueFunction(n.SqlvalueFunction)
	case *pg_query.Node_ColumnRef:
		return p.transformColumnRef(n.ColumnRef)
	default:
		return nil, invalid(mterrors.CodeFeatureNotSupported, "unsupported expression node %T", node.Node)
	}
}

// makeConst types a literal the way make_const does: integers that fit in
// int4 are int4, other numerics are int8 or numeric, strings stay unknown
// until something coerces them.
func makeConst(c *pg_query.A_Const) (ast.Expression, error) {
	if c.Isnull {
		return ast.NewNullConst(ast.UNKNOWNOID, -1, -2, false), nil
	}
	switch v := c.Val.(type) {
	case *pg_query.A_Const_Ival:
		return ast.NewConst(ast.INT4OID, -1, 4, v.Ival.GetIval(), false, true), nil
	case *pg_query.A_Const_Fval:
		text := v.Fval.GetFval()
		// The lexer only hands over integers that overflow before the sign
		// is applied, so -2147483648 still arrives here.
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return ast.NewConst(ast.INT4OID, -1, 4, int32(i), false, true), nil
			}
			return ast.NewConst(ast.INT8OID, -1, 8, i, false, true), nil
		}
		return ast.NewConst(ast.NUMERICOID, -1, -1, text, false, false), nil
	case *pg_query.A_Const_Boolval:
		return ast.NewConst(ast.BOOLOID, -1, 1, v.Boolval.GetBoolval(), false, true), nil
	case *pg_query.A_Const_Sval:
		return ast.NewConst(ast.UNKNOWNOID, -1, -2, v.Sval.GetSval(), false, false), nil
	case *pg_query.A_Const_Bsval:
		return ast.NewConst(ast.BITOID, -1, -1, v.Bsval.GetBsval(), false, false), nil
	}
	return nil, invalid(mterrors.CodeInternalError, "unrecognized literal %T", c.Val)
}

func (p *Parser) transformTypeCast(tc *pg_query.TypeCast) (ast.Expression, error) {
	arg, err := p.transform(tc.Arg)
	if err != nil {
		return nil, err
	}
	target, typmod, err := p.resolveTypeName(tc.TypeName)
	if err != nil {
		return nil, err
	}
	from := ast.ExprType(arg)
	result, ok := p.coercer.CoerceToTarget(arg, from, target, typmod)
	if !ok {
		return nil, invalid(mterrors.CodeCannotCoerce, "cannot cast type %s to %s",
			p.coercer.TypeName(from), p.coercer.TypeName(target))
	}
	return result, nil
}

// resolveTypeName looks up a type name and computes its typmod. Only
// pg_catalog or unqualified names are accepted.
func (p *Parser) resolveTypeName(tn *pg_query.TypeName) (ast.Oid, int32, error) {
	if tn == nil {
		return ast.InvalidOid, -1, invalid(mterrors.CodeSyntaxError, "missing type name")
	}
	if tn.Setof || tn.PctType {
		return ast.InvalidOid, -1, invalid(mterrors.CodeFeatureNotSupported, "type modifiers SETOF and %%TYPE are not supported")
	}
	names := stringList(tn.Names)
	if len(names) == 0 || (len(names) == 2 && names[0] != "pg_catalog") || len(names) > 2 {
		return ast.InvalidOid, -1, invalid(mterrors.CodeUndefinedObject, "type %q does not exist", strings.Join(names, "."))
	}
	name := names[len(names)-1]
	typ, ok := p.coercer.TypeByName(name)
	if !ok {
		return ast.InvalidOid, -1, invalid(mterrors.CodeUndefinedObject, "type %q does not exist", name)
	}

	var mods []int32
	for _, m := range tn.Typmods {
		ival := m.GetAConst().GetIval()
		if ival == nil {
			return ast.InvalidOid, -1, invalid(mterrors.CodeSyntaxError, "type modifiers must be simple constants or identifiers")
		}
		mods = append(mods, ival.Ival)
	}
	if typ == ast.INTERVALOID && len(mods) > 0 {
		return ast.InvalidOid, -1, invalid(mterrors.CodeFeatureNotSupported, "interval fields and precision are not supported")
	}
	typmod, err := coerce.TypmodIn(typ, mods)
	if err != nil {
		return ast.InvalidOid, -1, invalid(mterrors.CodeSyntaxError, "%v", err)
	}

	if len(tn.ArrayBounds) > 0 {
		arr, ok := ast.ArrayTypeOf(p.coercer.BaseType(typ))
		if !ok {
			return ast.InvalidOid, -1, invalid(mterrors.CodeUndefinedObject, "could not find array type for data type %s", name)
		}
		// Array typmods apply to the elements.
		return arr, typmod, nil
	}
	return typ, typmod, nil
}

func (p *Parser) transformColumnRef(cr *pg_query.ColumnRef) (ast.Expression, error) {
	if p.columns == nil {
		return nil, invalid(mterrors.CodeFeatureNotSupported, "cannot use column reference in DEFAULT expression")
	}
	names := stringList(cr.Fields)
	if len(names) != 1 || len(cr.Fields) != 1 {
		return nil, invalid(mterrors.CodeFeatureNotSupported, "qualified column references are not supported")
	}
	v, err := p.columns(names[0])
	if err != nil {
		return nil, err
	}
	return v, nil
}

func stringList(nodes []*pg_query.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := n.GetString_(); s != nil {
			out = append(out, s.Sval)
		}
	}
	return out
}

func invalid(code string, format string, args ...any) *mterrors.PgDiagnostic {
	return mterrors.NewPgError(mterrors.ErrInvalidDefault, code, format, args...)
}
