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

package exprparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
)

// builtinFunc is a pg_proc entry for a function commonly used in defaults.
type builtinFunc struct {
	oid        ast.Oid
	resultType ast.Oid
	argTypes   []ast.Oid
}

var builtinFuncs = map[string]builtinFunc{
	"now":                   {oid: 1299, resultType: ast.TIMESTAMPTZOID},
	"transaction_timestamp": {oid: 2647, resultType: ast.TIMESTAMPTZOID},
	"statement_timestamp":   {oid: 2648, resultType: ast.TIMESTAMPTZOID},
	"clock_timestamp":       {oid: 2649, resultType: ast.TIMESTAMPTZOID},
	"random":                {oid: 1598, resultType: ast.FLOAT8OID},
	"gen_random_uuid":       {oid: 3432, resultType: ast.UUIDOID},
	"nextval":               {oid: 1574, resultType: ast.INT8OID, argTypes: []ast.Oid{ast.REGCLASSOID}},
	"currval":               {oid: 1575, resultType: ast.INT8OID, argTypes: []ast.Oid{ast.REGCLASSOID}},

	// CURRENT_USER and friends arrive as calls of these.
	"current_user":     {oid: 745, resultType: ast.NAMEOID},
	"session_user":     {oid: 746, resultType: ast.NAMEOID},
	"current_database": {oid: 861, resultType: ast.NAMEOID},
	"current_schema":   {oid: 1402, resultType: ast.NAMEOID},
}

func (p *Parser) transformFuncCall(fc *pg_query.FuncCall) (ast.Expression, error) {
	names := stringList(fc.Funcname)
	qualified := strings.Join(names, ".")
	if len(names) == 2 && names[0] == "pg_catalog" {
		names = names[1:]
	}
	if len(names) != 1 {
		return nil, invalid(mterrors.CodeUndefinedFunction, "function %s does not exist", qualified)
	}
	if fc.AggStar || fc.AggDistinct || fc.Over != nil || fc.AggFilter != nil || len(fc.AggOrder) > 0 || fc.FuncVariadic {
		return nil, invalid(mterrors.CodeFeatureNotSupported, "aggregate and window calls are not allowed in a default expression")
	}
	fn, ok := builtinFuncs[names[0]]
	if !ok || len(fc.Args) != len(fn.argTypes) {
		return nil, invalid(mterrors.CodeUndefinedFunction, "function %s with %d arguments does not exist", qualified, len(fc.Args)).
			WithHint("No function matches the given name and argument types.")
	}

	args := make([]ast.Expression, 0, len(fc.Args))
	for i, argNode := range fc.Args {
		arg, err := p.transform(argNode)
		if err != nil {
			return nil, err
		}
		from := ast.ExprType(arg)
		coerced, ok := p.coercer.CoerceToTarget(arg, from, fn.argTypes[i], -1)
		if !ok {
			return nil, invalid(mterrors.CodeUndefinedFunction, "function %s(%s) does not exist",
				qualified, p.coercer.TypeName(from))
		}
		args = append(args, coerced)
	}
	format := ast.COERCE_EXPLICIT_CALL
	if fc.Funcformat == pg_query.CoercionForm_COERCE_SQL_SYNTAX {
		format = ast.COERCE_SQL_SYNTAX
	}
	return ast.NewFuncExpr(fn.oid, names[0], fn.resultType, args, format), nil
}

// svfTypes gives the result type of each SQL value function.
var svfTypes = map[pg_query.SQLValueFunctionOp]struct {
	op  ast.SQLValueFunctionOp
	typ ast.Oid
}{
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_DATE:        {ast.SVFOP_CURRENT_DATE, ast.DATEOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIME:        {ast.SVFOP_CURRENT_TIME, ast.TIMETZOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIME_N:      {ast.SVFOP_CURRENT_TIME_N, ast.TIMETZOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP:   {ast.SVFOP_CURRENT_TIMESTAMP, ast.TIMESTAMPTZOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP_N: {ast.SVFOP_CURRENT_TIMESTAMP_N, ast.TIMESTAMPTZOID},
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIME:           {ast.SVFOP_LOCALTIME, ast.TIMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIME_N:         {ast.SVFOP_LOCALTIME_N, ast.TIMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIMESTAMP:      {ast.SVFOP_LOCALTIMESTAMP, ast.TIMESTAMPOID},
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIMESTAMP_N:    {ast.SVFOP_LOCALTIMESTAMP_N, ast.TIMESTAMPOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_ROLE:        {ast.SVFOP_CURRENT_ROLE, ast.NAMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_USER:        {ast.SVFOP_CURRENT_USER, ast.NAMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_USER:                {ast.SVFOP_USER, ast.NAMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_SESSION_USER:        {ast.SVFOP_SESSION_USER, ast.NAMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_CATALOG:     {ast.SVFOP_CURRENT_CATALOG, ast.NAMEOID},
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_SCHEMA:      {ast.SVFOP_CURRENT_SCHEMA, ast.NAMEOID},
}

func transformSQLValueFunction(svf *pg_query.SQLValueFunction) (ast.Expression, error) {
	info, ok := svfTypes[svf.Op]
	if !ok {
		return nil, invalid(mterrors.CodeInternalError, "unrecognized SQL value function %v", svf.Op)
	}
	typmod := int32(-1)
	switch info.op {
	case ast.SVFOP_CURRENT_TIME_N, ast.SVFOP_CURRENT_TIMESTAMP_N, ast.SVFOP_LOCALTIME_N, ast.SVFOP_LOCALTIMESTAMP_N:
		if svf.Typmod < 0 {
			return nil, invalid(mterrors.CodeInvalidParameterValue, "precision of %v must not be negative", svf.Op)
		}
		typmod = min(svf.Typmod, 6)
	}
	return ast.NewSQLValueFunction(info.op, info.typ, typmod), nil
}
