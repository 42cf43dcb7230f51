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

package prep

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/coerce"
	"github.com/multigres/multiplan/go/planner/exprparse"
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
      - {name: code, type: bpchar, length: 4, default: "'ab'"}
      - {name: rank, type: posint}
  - name: legacy
    oid: 16385
    columns:
      - {name: a, type: int4}
      - {name: old, type: int4, dropped: true}
      - {name: c, type: text}
  - name: sets
    oid: 16386
    columns:
      - {name: members, type: int4, set: true}
  - name: broken
    oid: 16387
    columns:
      - {name: flag, type: bool, default: "42"}
      - {name: bad, type: int4, default: "1 +"}
  - name: empty
    oid: 16388
`

const (
	widgetsOid ast.Oid = 16384
	legacyOid  ast.Oid = 16385
	setsOid    ast.Oid = 16386
	brokenOid  ast.Oid = 16387
	emptyOid   ast.Oid = 16388
	posintOid  ast.Oid = 90001
)

// countingAccessor records how often relations are opened and closed.
type countingAccessor struct {
	inner  catalog.Accessor
	opens  atomic.Int32
	closes atomic.Int32
}

func (a *countingAccessor) Open(ctx context.Context, relid ast.Oid) (*catalog.Relation, error) {
	rel, err := a.inner.Open(ctx, relid)
	if err != nil {
		return nil, err
	}
	a.opens.Add(1)
	return catalog.NewRelation(rel.Schema(), func() {
		rel.Close()
		a.closes.Add(1)
	}), nil
}

type testEnv struct {
	cat      *catalog.Catalog
	accessor *countingAccessor
	prep     *Preprocessor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	snap, err := catalog.ParseSnapshot([]byte(testCatalog))
	require.NoError(t, err)
	cat := catalog.New(logger)
	require.NoError(t, cat.Replace(snap.Relations))

	coercer := coerce.NewBuiltin()
	parser := exprparse.New(coercer)
	require.NoError(t, exprparse.RegisterDomains(coercer, snap.Domains))

	accessor := &countingAccessor{inner: cat}
	return &testEnv{
		cat:      cat,
		accessor: accessor,
		prep:     NewPreprocessor(accessor, coercer, parser, logger),
	}
}

// requireReleased checks that every relation opened was closed again.
func (e *testEnv) requireReleased(t *testing.T) {
	t.Helper()
	require.Equal(t, e.accessor.opens.Load(), e.accessor.closes.Load(), "relation left open")
	// The catalog write lock is only available once all readers are gone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.cat.Put(&catalog.RelationSchema{Relid: 99999, Name: "probe"})
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog read lock still held")
	}
}

func rtableFor(relid ast.Oid, name string) ast.RangeTable {
	return ast.RangeTable{ast.NewRelationRTE(relid, name)}
}

func intConst(v int32) *ast.Const {
	return ast.NewConst(ast.INT4OID, -1, 4, v, false, true)
}

func textConst(s string) *ast.Const {
	return ast.NewConst(ast.TEXTOID, -1, -1, s, false, false)
}

// snapshot records the fields of every entry so a test can check that the
// caller's list was left alone.
func snapshot(tlist ast.TargetList) []ast.TargetEntry {
	out := make([]ast.TargetEntry, len(tlist))
	for i, te := range tlist {
		out[i] = *te
	}
	return out
}

func assertUnchanged(t *testing.T, before []ast.TargetEntry, tlist ast.TargetList) {
	t.Helper()
	require.Len(t, tlist, len(before))
	for i, te := range tlist {
		assert.Equal(t, before[i].Resno, te.Resno, "entry %d renumbered in place", i)
		assert.Equal(t, before[i].Resname, te.Resname)
		assert.Equal(t, before[i].Resjunk, te.Resjunk)
		assert.Same(t, before[i].Expr, te.Expr, "entry %d expression replaced in place", i)
	}
}

// assertShape checks the layout every expanded list has: numAttrs visible
// entries at positions 1..numAttrs, then junk entries numbered on from there.
func assertShape(t *testing.T, tlist ast.TargetList, numAttrs int) {
	t.Helper()
	visible := tlist.Visible()
	require.Len(t, visible, numAttrs)
	for i, te := range visible {
		assert.Equal(t, ast.AttrNumber(i+1), te.Resno, "visible entry %d", i)
	}
	for i, te := range tlist[numAttrs:] {
		assert.True(t, te.Resjunk, "entry %d should be junk", numAttrs+i)
		assert.Equal(t, ast.AttrNumber(numAttrs+i+1), te.Resno, "junk entry %d", i)
	}
}
