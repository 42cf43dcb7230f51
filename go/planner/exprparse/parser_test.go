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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/coerce"
)

func TestParseLiterals(t *testing.T) {
	p := New(coerce.NewBuiltin())

	tests := []struct {
		text string
		want *ast.Const
	}{
		{text: "42", want: ast.NewConst(ast.INT4OID, -1, 4, int32(42), false, true)},
		{text: "-5", want: ast.NewConst(ast.INT4OID, -1, 4, int32(-5), false, true)},
		{text: "-2147483648", want: ast.NewConst(ast.INT4OID, -1, 4, int32(math.MinInt32), false, true)},
		{text: "2147483648", want: ast.NewConst(ast.INT8OID, -1, 8, int64(2147483648), false, true)},
		{text: "9000000000", want: ast.NewConst(ast.INT8OID, -1, 8, int64(9000000000), false, true)},
		{text: "3.14", want: ast.NewConst(ast.NUMERICOID, -1, -1, "3.14", false, false)},
		{text: "'abc'", want: ast.NewConst(ast.UNKNOWNOID, -1, -2, "abc", false, false)},
		{text: "true", want: ast.NewConst(ast.BOOLOID, -1, 1, true, false, true)},
		{text: "NULL", want: ast.NewNullConst(ast.UNKNOWNOID, -1, -2, false)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := p.ParseDefault(tt.text)
			require.NoError(t, err)
			assert.True(t, ast.Equal(tt.want, got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseCasts(t *testing.T) {
	b := coerce.NewBuiltin()
	require.NoError(t, b.ReplaceDomains([]coerce.Domain{{Oid: 90001, Name: "posint", BaseType: ast.INT4OID}}))
	p := New(b)

	t.Run("varchar with length", func(t *testing.T) {
		got, err := p.ParseDefault("'abc'::varchar(5)")
		require.NoError(t, err)
		want := ast.NewConst(ast.VARCHAROID, 9, -1, "abc", false, false)
		assert.True(t, ast.Equal(want, got), "got %s", got)
	})

	t.Run("char literal is padded", func(t *testing.T) {
		got, err := p.ParseDefault("CAST('ab' AS character(4))")
		require.NoError(t, err)
		c, ok := got.(*ast.Const)
		require.True(t, ok)
		assert.Equal(t, "ab  ", c.Constvalue)
		assert.Equal(t, ast.BPCHAROID, c.Consttype)
	})

	t.Run("integer literal to bigint", func(t *testing.T) {
		got, err := p.ParseDefault("7::bigint")
		require.NoError(t, err)
		want := ast.NewConst(ast.INT8OID, -1, 8, int64(7), false, true)
		assert.True(t, ast.Equal(want, got), "got %s", got)
	})

	t.Run("cast to a domain", func(t *testing.T) {
		got, err := p.ParseDefault("'3'::posint")
		require.NoError(t, err)
		d, ok := got.(*ast.CoerceToDomain)
		require.True(t, ok, "got %T", got)
		assert.Equal(t, ast.Oid(90001), d.Resulttype)
	})

	t.Run("array type", func(t *testing.T) {
		got, err := p.ParseDefault("'{}'::text[]")
		require.NoError(t, err)
		assert.Equal(t, ast.TEXTARRAYOID, ast.ExprType(got))
	})

	t.Run("numeric with precision", func(t *testing.T) {
		got, err := p.ParseDefault("0::numeric(10,2)")
		require.NoError(t, err)
		assert.Equal(t, ast.NUMERICOID, ast.ExprType(got))
		assert.Equal(t, int32((10<<16|2)+4), ast.ExprTypmod(got))
	})
}

func TestParseFunctions(t *testing.T) {
	p := New(coerce.NewBuiltin())

	t.Run("now", func(t *testing.T) {
		got, err := p.ParseDefault("now()")
		require.NoError(t, err)
		want := ast.NewFuncExpr(1299, "now", ast.TIMESTAMPTZOID, []ast.Expression{}, ast.COERCE_EXPLICIT_CALL)
		assert.True(t, ast.Equal(want, got), "got %s", got)
	})

	t.Run("nextval with regclass cast", func(t *testing.T) {
		got, err := p.ParseDefault("nextval('widgets_id_seq'::regclass)")
		require.NoError(t, err)
		f, ok := got.(*ast.FuncExpr)
		require.True(t, ok)
		assert.Equal(t, ast.INT8OID, f.Funcresulttype)
		require.Len(t, f.Args, 1)
		want := ast.NewConst(ast.REGCLASSOID, -1, 4, "widgets_id_seq", false, true)
		assert.True(t, ast.Equal(want, f.Args[0]), "arg %s", f.Args[0])
	})

	t.Run("nextval with plain literal", func(t *testing.T) {
		got, err := p.ParseDefault("pg_catalog.nextval('s')")
		require.NoError(t, err)
		assert.Equal(t, ast.INT8OID, ast.ExprType(got))
	})

	t.Run("gen_random_uuid", func(t *testing.T) {
		got, err := p.ParseDefault("gen_random_uuid()")
		require.NoError(t, err)
		assert.Equal(t, ast.UUIDOID, ast.ExprType(got))
	})

	t.Run("current_user keyword", func(t *testing.T) {
		got, err := p.ParseDefault("CURRENT_USER")
		require.NoError(t, err)
		assert.Equal(t, ast.NAMEOID, ast.ExprType(got))
	})
}

func TestParseSQLValueFunctions(t *testing.T) {
	p := New(coerce.NewBuiltin())

	tests := []struct {
		text string
		want *ast.SQLValueFunction
	}{
		{text: "CURRENT_TIMESTAMP", want: ast.NewSQLValueFunction(ast.SVFOP_CURRENT_TIMESTAMP, ast.TIMESTAMPTZOID, -1)},
		{text: "CURRENT_TIMESTAMP(3)", want: ast.NewSQLValueFunction(ast.SVFOP_CURRENT_TIMESTAMP_N, ast.TIMESTAMPTZOID, 3)},
		{text: "CURRENT_DATE", want: ast.NewSQLValueFunction(ast.SVFOP_CURRENT_DATE, ast.DATEOID, -1)},
		{text: "LOCALTIMESTAMP", want: ast.NewSQLValueFunction(ast.SVFOP_LOCALTIMESTAMP, ast.TIMESTAMPOID, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := p.ParseDefault(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want.String(), got.String()); diff != "" {
				t.Errorf("unexpected node (-want +got):\n%s", diff)
			}
			assert.True(t, ast.Equal(tt.want, got))
		})
	}
}

func TestParseColumnRef(t *testing.T) {
	b := coerce.NewBuiltin()

	_, err := New(b).ParseExpr("qty")
	requireDiag(t, err, mterrors.CodeFeatureNotSupported)

	p := New(b, WithColumnResolver(func(name string) (*ast.Var, error) {
		if name == "qty" {
			return ast.NewVar(1, 3, ast.INT4OID, -1), nil
		}
		return nil, mterrors.NewPgError(mterrors.ErrInvalidDefault, mterrors.CodeUndefinedColumn, "column %q does not exist", name)
	}))
	got, err := p.ParseExpr("qty")
	require.NoError(t, err)
	assert.True(t, ast.Equal(ast.NewVar(1, 3, ast.INT4OID, -1), got))

	_, err = p.ParseExpr("nope")
	requireDiag(t, err, mterrors.CodeUndefinedColumn)

	_, err = p.ParseExpr("t.qty")
	requireDiag(t, err, mterrors.CodeFeatureNotSupported)
}

func TestParseErrors(t *testing.T) {
	p := New(coerce.NewBuiltin())

	tests := []struct {
		text string
		code string
	}{
		{text: "", code: mterrors.CodeSyntaxError},
		{text: "1 +", code: mterrors.CodeSyntaxError},
		{text: "1, 2", code: mterrors.CodeSyntaxError},
		{text: "1; SELECT 2", code: mterrors.CodeSyntaxError},
		{text: "1 FROM t", code: mterrors.CodeSyntaxError},
		{text: "1 + 2", code: mterrors.CodeFeatureNotSupported},
		{text: "ARRAY[1, 2]", code: mterrors.CodeFeatureNotSupported},
		{text: "count(*)", code: mterrors.CodeFeatureNotSupported},
		{text: "foo()", code: mterrors.CodeUndefinedFunction},
		{text: "now(1)", code: mterrors.CodeUndefinedFunction},
		{text: "myschema.now()", code: mterrors.CodeUndefinedFunction},
		{text: "'x'::geometry", code: mterrors.CodeUndefinedObject},
		{text: "true::integer", code: mterrors.CodeCannotCoerce},
		{text: "'abc'::integer", code: mterrors.CodeCannotCoerce},
		{text: "'a'::integer(3)", code: mterrors.CodeSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := p.ParseDefault(tt.text)
			assert.Nil(t, got)
			requireDiag(t, err, tt.code)
		})
	}
}

func TestRegisterDomains(t *testing.T) {
	b := coerce.NewBuiltin()

	domains := []catalog.Domain{
		{Oid: 90001, Name: "posint", BaseType: ast.INT4OID, Default: "1"},
		{Oid: 90002, Name: "label", BaseType: ast.TEXTOID},
		{Oid: 90003, Name: "amount", BaseType: ast.NUMERICOID, Default: "'0.00'"},
	}
	require.NoError(t, RegisterDomains(b, domains))

	def := b.TypeDefault(90001, -1)
	require.NotNil(t, def)
	assert.True(t, ast.Equal(ast.NewConst(ast.INT4OID, -1, 4, int32(1), false, true), def))
	assert.Nil(t, b.TypeDefault(90002, -1))
	assert.Equal(t, ast.NUMERICOID, ast.ExprType(b.TypeDefault(90003, -1)))

	oid, ok := b.TypeByName("label")
	require.True(t, ok)
	assert.Equal(t, ast.Oid(90002), oid)

	// Re-registering replaces the previous set.
	require.NoError(t, RegisterDomains(b, domains[:1]))
	_, ok = b.TypeByName("label")
	assert.False(t, ok)

	err := RegisterDomains(b, []catalog.Domain{{Oid: 90004, Name: "flag", BaseType: ast.BOOLOID, Default: "42"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `domain "flag" default is of type integer, not boolean`)

	err = RegisterDomains(b, []catalog.Domain{{Oid: 90005, Name: "broken", BaseType: ast.INT4OID, Default: "1 +"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mterrors.ErrInvalidDefault))
}

func TestRegisterDomainsFailureKeepsPrevious(t *testing.T) {
	b := coerce.NewBuiltin()
	require.NoError(t, RegisterDomains(b, []catalog.Domain{
		{Oid: 90001, Name: "posint", BaseType: ast.INT4OID, Default: "1"},
	}))

	err := RegisterDomains(b, []catalog.Domain{
		{Oid: 90004, Name: "flag", BaseType: ast.BOOLOID, Default: "1 +"},
		{Oid: 90001, Name: "posint", BaseType: ast.INT4OID, Default: "2"},
	})
	require.Error(t, err)

	def := b.TypeDefault(90001, -1)
	require.NotNil(t, def)
	assert.True(t, ast.Equal(ast.NewConst(ast.INT4OID, -1, 4, int32(1), false, true), def))
	_, ok := b.TypeByName("flag")
	assert.False(t, ok)
}

func TestRegisterDomainsOverDomains(t *testing.T) {
	b := coerce.NewBuiltin()
	require.NoError(t, RegisterDomains(b, []catalog.Domain{
		{Oid: 90003, Name: "tinypos", BaseType: 90002, Default: "'3'::smallpos"},
		{Oid: 90002, Name: "smallpos", BaseType: 90001},
		{Oid: 90001, Name: "posint", BaseType: ast.INT4OID, Default: "1"},
	}))

	assert.Equal(t, ast.INT4OID, b.BaseType(90003))
	assert.Equal(t, ast.Oid(90002), ast.ExprType(b.TypeDefault(90003, -1)))
	inherited := b.TypeDefault(90002, -1)
	require.NotNil(t, inherited)
	assert.Equal(t, ast.INT4OID, ast.ExprType(inherited))

	err := RegisterDomains(b, []catalog.Domain{{Oid: 90010, Name: "orphan", BaseType: 90011}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a built-in type or domain")
	assert.Equal(t, ast.INT4OID, b.BaseType(90003))
}

func requireDiag(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, mterrors.ErrInvalidDefault), "error %v should be an invalid default", err)
	diag, ok := mterrors.AsPgDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, code, diag.SQLSTATE(), diag.FullError())
}
