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

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
)

const testCatalog = `
domains:
  - {name: posint, oid: 90001, base: int4, default: "1"}
relations:
  - name: widgets
    schema: public
    oid: 16384
    columns:
      - {name: id, type: int8, default: "nextval('widgets_id_seq')"}
      - {name: name, type: text}
      - {name: qty, type: int4, default: "5"}
      - {name: tags, type: "int4[]"}
      - {name: rank, type: posint}
  - name: legacy
    oid: 16385
    columns:
      - {name: a, type: int4}
      - {name: old, type: int4, dropped: true}
      - {name: c, type: text}
`

func newTestEnv(t *testing.T) *environment {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/catalog.yaml", []byte(testCatalog), 0o644))
	v := viper.New()
	v.Set("catalog-file", "/catalog.yaml")

	env := newEnvironment(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, loadCatalog(context.Background(), v, fs, env))
	return env
}

func decode(t *testing.T, text string) *Statement {
	t.Helper()
	stmt, err := DecodeStatement([]byte(text))
	require.NoError(t, err)
	return stmt
}

func requireDiag(t *testing.T, err error, kind error, code string) *mterrors.PgDiagnostic {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	diag, ok := mterrors.AsPgDiagnostic(err)
	require.True(t, ok, "expected a diagnostic, got %v", err)
	assert.Equal(t, code, diag.Code)
	return diag
}

func TestDecodeStatement(t *testing.T) {
	stmt := decode(t, `
command: update
relation: widgets
targets:
  - {column: name, value: "'gizmo'"}
  - {column: tags, subscripts: ["2"], value: "7"}
  - {name: extra, value: "42", junk: true}
`)
	assert.Equal(t, &Statement{
		Command:  "update",
		Relation: "widgets",
		Targets: []Target{
			{Column: "name", Value: "'gizmo'"},
			{Column: "tags", Subscripts: []string{"2"}, Value: "7"},
			{Name: "extra", Value: "42", Junk: true},
		},
	}, stmt)

	_, err := DecodeStatement([]byte("targets: {column: x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal statement")
}

func TestBuildInsert(t *testing.T) {
	env := newTestEnv(t)
	stmt := decode(t, `
command: INSERT
relation: public.widgets
targets:
  - {column: qty, value: "10"}
  - {column: name, value: "'gizmo'"}
`)
	q, err := stmt.Build(env.catalog, env.coercer)
	require.NoError(t, err)

	assert.Equal(t, ast.CMD_INSERT, q.CommandType)
	assert.Equal(t, ast.Index(1), q.ResultRelation)
	require.Len(t, q.RangeTable, 1)
	assert.Equal(t, ast.Oid(16384), q.RangeTable[0].Relid)

	require.Len(t, q.TargetList, 2)
	assert.Equal(t, ast.AttrNumber(3), q.TargetList[0].Resno)
	assert.Equal(t, "qty", q.TargetList[0].Resname)
	assert.Equal(t, ast.INT4OID, ast.ExprType(q.TargetList[0].Expr))
	assert.Equal(t, ast.AttrNumber(2), q.TargetList[1].Resno)
	assert.Equal(t, ast.TEXTOID, ast.ExprType(q.TargetList[1].Expr))
}

func TestBuildArrayAssignment(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		command  string
		wantBase ast.Expression
	}{
		{command: "update", wantBase: ast.NewVar(1, 4, ast.INT4ARRAYOID, -1)},
		{command: "insert", wantBase: ast.NewNullConst(ast.INT4ARRAYOID, -1, -1, false)},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			stmt := decode(t, `
command: `+tt.command+`
relation: widgets
targets:
  - {column: tags, subscripts: ["2"], value: "7"}
`)
			q, err := stmt.Build(env.catalog, env.coercer)
			require.NoError(t, err)
			require.Len(t, q.TargetList, 1)

			te := q.TargetList[0]
			assert.Equal(t, ast.AttrNumber(4), te.Resno)
			ref, ok := te.Expr.(*ast.SubscriptingRef)
			require.True(t, ok, "expected an array assignment, got %T", te.Expr)
			assert.True(t, ref.IsAssignment())
			assert.Equal(t, ast.INT4ARRAYOID, ref.Refcontainertype)
			assert.Equal(t, ast.INT4OID, ref.Refelemtype)
			assert.True(t, ast.Equal(tt.wantBase, ref.Refexpr), "base %s", ref.Refexpr)
			require.Len(t, ref.Refupperindexpr, 1)
			assert.Equal(t, ast.INT4OID, ast.ExprType(ref.Refupperindexpr[0]))
			assert.Equal(t, ast.INT4OID, ast.ExprType(ref.Refassgnexpr))
		})
	}
}

func TestBuildColumnReference(t *testing.T) {
	env := newTestEnv(t)
	stmt := decode(t, `
command: update
relation: legacy
targets:
  - {column: a, value: "a"}
  - {name: keep, value: "c", junk: true}
`)
	q, err := stmt.Build(env.catalog, env.coercer)
	require.NoError(t, err)
	require.Len(t, q.TargetList, 2)

	assert.True(t, ast.Equal(ast.NewVar(1, 1, ast.INT4OID, -1), q.TargetList[0].Expr))
	junk := q.TargetList[1]
	assert.True(t, junk.Resjunk)
	assert.Equal(t, "keep", junk.Resname)
	assert.Equal(t, ast.AttrNumber(2), junk.Resno)
	assert.True(t, ast.Equal(ast.NewVar(1, 3, ast.TEXTOID, -1), junk.Expr))
}

func TestBuildErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		stmt     string
		wantKind error
		wantCode string
	}{
		{
			name:     "unknown relation",
			stmt:     "command: insert\nrelation: gadgets\n",
			wantKind: mterrors.ErrInvalidStatement,
			wantCode: mterrors.CodeUndefinedTable,
		},
		{
			name:     "unknown column",
			stmt:     "command: insert\nrelation: widgets\ntargets:\n  - {column: colour, value: \"1\"}\n",
			wantKind: mterrors.ErrInvalidStatement,
			wantCode: mterrors.CodeUndefinedColumn,
		},
		{
			name:     "dropped column",
			stmt:     "command: insert\nrelation: legacy\ntargets:\n  - {column: old, value: \"1\"}\n",
			wantKind: mterrors.ErrInvalidStatement,
			wantCode: mterrors.CodeUndefinedColumn,
		},
		{
			name:     "type mismatch",
			stmt:     "command: insert\nrelation: widgets\ntargets:\n  - {column: qty, value: \"true\"}\n",
			wantKind: mterrors.ErrInvalidStatement,
			wantCode: mterrors.CodeDatatypeMismatch,
		},
		{
			name:     "subscripted scalar",
			stmt:     "command: update\nrelation: widgets\ntargets:\n  - {column: qty, subscripts: [\"1\"], value: \"1\"}\n",
			wantKind: mterrors.ErrInvalidStatement,
			wantCode: mterrors.CodeDatatypeMismatch,
		},
		{
			name:     "unparsable value",
			stmt:     "command: insert\nrelation: widgets\ntargets:\n  - {column: qty, value: \"1 +\"}\n",
			wantKind: mterrors.ErrInvalidDefault,
			wantCode: mterrors.CodeSyntaxError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.stmt).Build(env.catalog, env.coercer)
			requireDiag(t, err, tt.wantKind, tt.wantCode)
		})
	}

	_, err := decode(t, "command: select\nrelation: widgets\n").Build(env.catalog, env.coercer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no result relation")

	_, err = decode(t, "command: upsert\nrelation: widgets\n").Build(env.catalog, env.coercer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command type")
}

func TestRunStatement(t *testing.T) {
	env := newTestEnv(t)

	t.Run("insert", func(t *testing.T) {
		var out bytes.Buffer
		stmt := decode(t, "command: insert\nrelation: legacy\ntargets:\n  - {column: c, value: \"'x'\"}\n")
		require.NoError(t, runStatement(context.Background(), &out, env, stmt))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "RESNO"))
		assert.Contains(t, lines[1], "a")
		assert.NotContains(t, out.String(), "ctid")
	})

	t.Run("update", func(t *testing.T) {
		var out bytes.Buffer
		stmt := decode(t, "command: update\nrelation: widgets\ntargets:\n  - {column: qty, value: \"7\"}\n")
		require.NoError(t, runStatement(context.Background(), &out, env, stmt))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 7)
		assert.Contains(t, lines[6], "ctid (junk)")
	})

	t.Run("delete", func(t *testing.T) {
		var out bytes.Buffer
		stmt := decode(t, "command: delete\nrelation: widgets\n")
		require.NoError(t, runStatement(context.Background(), &out, env, stmt))
		assert.Contains(t, out.String(), "ctid (junk)")
	})
}

func TestRunWatchingPrintsOnlyChanges(t *testing.T) {
	env := newTestEnv(t)
	stmt := decode(t, "command: insert\nrelation: legacy\ntargets:\n  - {column: c, value: \"'x'\"}\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{})
	var out, errOut bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runWatching(ctx, &out, &errOut, env, stmt, changed) }()

	// Each send is received only once the previous pass has finished.
	changed <- struct{}{}
	changed <- struct{}{}

	rs, ok := env.catalog.Lookup("legacy")
	require.True(t, ok)
	withDefault := *rs
	withDefault.Defaults = []catalog.AttrDefault{{Adnum: 1, Expr: "9"}}
	require.NoError(t, env.catalog.Put(&withDefault))

	changed <- struct{}{}
	changed <- struct{}{}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 2, strings.Count(out.String(), "RESNO"), out.String())
	assert.Contains(t, out.String(), "Const(9::23)")
}

func TestLoadCatalogSources(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	v := viper.New()
	err := loadCatalog(context.Background(), v, fs, newEnvironment(logger))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of --catalog-file or --pg-dsn is required")

	v.Set("catalog-file", "/catalog.yaml")
	v.Set("pg-dsn", "postgres://localhost/app")
	err = loadCatalog(context.Background(), v, fs, newEnvironment(logger))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	v = viper.New()
	v.Set("catalog-file", "/missing.yaml")
	err = loadCatalog(context.Background(), v, fs, newEnvironment(logger))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog file")
}

func TestLoadCatalogRegistersDomains(t *testing.T) {
	env := newTestEnv(t)
	typ, ok := env.coercer.TypeByName("posint")
	require.True(t, ok)
	assert.Equal(t, ast.Oid(90001), typ)
	assert.Equal(t, ast.INT4OID, env.coercer.BaseType(typ))
}

func TestBadDomainRejectsCatalog(t *testing.T) {
	const badCatalog = `
domains:
  - {name: flag, oid: 90002, base: bool, default: "1 +"}
relations:
  - name: widgets
    columns:
      - {name: id, type: int4}
`
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/catalog.yaml", []byte(badCatalog), 0o644))
	v := viper.New()
	v.Set("catalog-file", "/catalog.yaml")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := newEnvironment(logger)
	err := loadCatalog(context.Background(), v, fs, env)
	require.Error(t, err)
	assert.ErrorIs(t, err, mterrors.ErrInvalidDefault)
	_, ok := env.catalog.Lookup("widgets")
	assert.False(t, ok)

	env = newEnvironment(logger)
	_, err = watchCatalog(v, fs, env, make(chan struct{}, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, mterrors.ErrInvalidDefault)
	_, ok = env.catalog.Lookup("widgets")
	assert.False(t, ok)
	_, ok = env.coercer.TypeByName("flag")
	assert.False(t, ok)
}

func TestFormatErrorAndExitCode(t *testing.T) {
	userErr := fmt.Errorf("statement 1: %w", mterrors.NewPgError(mterrors.ErrMultipleAssignment, mterrors.CodeSyntaxError,
		"multiple assignments to same column %q", "qty"))
	assert.Equal(t, `ERROR: multiple assignments to same column "qty" (SQLSTATE 42601)`, FormatError(userErr))
	assert.Equal(t, 1, ExitCode(userErr))

	internal := mterrors.NewPgError(mterrors.ErrInvalidDefault, mterrors.CodeInternalError,
		"invalid default expression for column %q: %s", "qty", "1 +")
	assert.Equal(t, 2, ExitCode(internal))

	plain := errors.New("one of --catalog-file or --pg-dsn is required")
	assert.Equal(t, "ERROR: one of --catalog-file or --pg-dsn is required", FormatError(plain))
	assert.Equal(t, 1, ExitCode(plain))
}

func TestDescribeRelation(t *testing.T) {
	env := newTestEnv(t)
	rs, ok := env.catalog.Lookup("legacy")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, describeRelation(&out, rs, env.coercer))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "legacy")
	assert.Contains(t, lines[0], "16385")
	assert.Contains(t, lines[3], "(dropped)")
}

func TestRootCommandDescribe(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	t.Setenv("TLPREP_CATALOG_FILE", path)

	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"describe", "widgets", "--config-path", dir, "--log-output", filepath.Join(dir, "tlprep.log")})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "public.widgets")
	assert.Contains(t, out.String(), "nextval")

	root = GetRootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"describe", "gadgets", "--config-path", dir, "--log-output", filepath.Join(dir, "tlprep.log")})
	err := root.Execute()
	requireDiag(t, err, mterrors.ErrUnknownRelation, mterrors.CodeUndefinedTable)
}

func TestRootCommandConfigFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))
	stmtPath := filepath.Join(dir, "insert.yaml")
	require.NoError(t, os.WriteFile(stmtPath, []byte("command: insert\nrelation: legacy\ntargets:\n  - {column: a, value: \"1\"}\n"), 0o644))
	configPath := filepath.Join(dir, "tlprep.yaml")
	config := "catalog-file: " + catalogPath + "\nlog-output: " + filepath.Join(dir, "tlprep.log") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"run", "--config-file", configPath, "--statement", stmtPath})
	require.NoError(t, root.Execute())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 4)

	root = GetRootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"run", "--config-file", filepath.Join(dir, "missing.yaml"), "--statement", stmtPath})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
