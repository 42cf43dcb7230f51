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
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/coerce"
	"github.com/multigres/multiplan/go/planner/exprparse"
)

// Statement describes an analyzed INSERT, UPDATE or DELETE:
//
//	command: update
//	relation: widgets
//	targets:
//	  - {column: name, value: "'gizmo'"}
//	  - {column: tags, subscripts: ["2"], value: "7"}
//	  - {name: extra, value: "42", junk: true}
type Statement struct {
	Command  string   `yaml:"command"`
	Relation string   `yaml:"relation"`
	Targets  []Target `yaml:"targets"`
}

// Target is one assignment of a statement, or a junk entry when Junk is set.
type Target struct {
	Column     string   `yaml:"column"`
	Name       string   `yaml:"name"`
	Value      string   `yaml:"value"`
	Subscripts []string `yaml:"subscripts"`
	Junk       bool     `yaml:"junk"`
}

// DecodeStatement decodes a YAML statement description.
func DecodeStatement(data []byte) (*Statement, error) {
	var stmt Statement
	if err := yaml.Unmarshal(data, &stmt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}
	return &stmt, nil
}

// Build resolves the statement against cat and returns the query the
// parser would have produced for it. Values are parsed as SQL expressions
// that may reference columns of the result relation.
func (s *Statement) Build(cat *catalog.Catalog, coercer coerce.Coercer) (*ast.Query, error) {
	cmd, err := ast.ParseCmdType(s.Command)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case ast.CMD_INSERT, ast.CMD_UPDATE, ast.CMD_DELETE:
	default:
		return nil, fmt.Errorf("command %s has no result relation", cmd)
	}

	rs, ok := cat.Lookup(s.Relation)
	if !ok {
		return nil, mterrors.NewPgError(mterrors.ErrInvalidStatement, mterrors.CodeUndefinedTable,
			"relation %q does not exist", s.Relation)
	}
	const resultRelation ast.Index = 1
	b := &builder{
		cmd:     cmd,
		rs:      rs,
		varno:   resultRelation,
		coercer: coercer,
	}
	b.parser = exprparse.New(coercer, exprparse.WithColumnResolver(b.columnVar))

	q := &ast.Query{
		CommandType:    cmd,
		ResultRelation: resultRelation,
		RangeTable:     ast.RangeTable{ast.NewRelationRTE(rs.Relid, rs.Name)},
	}
	for _, t := range s.Targets {
		te, err := b.targetEntry(t, ast.AttrNumber(len(q.TargetList)+1))
		if err != nil {
			return nil, err
		}
		q.TargetList = append(q.TargetList, te)
	}
	return q, nil
}

type builder struct {
	cmd     ast.CmdType
	rs      *catalog.RelationSchema
	varno   ast.Index
	coercer coerce.Coercer
	parser  *exprparse.Parser
}

func (b *builder) column(name string) (*catalog.Attribute, error) {
	for i := range b.rs.Attrs {
		att := &b.rs.Attrs[i]
		if !att.IsDropped && att.Name == name {
			return att, nil
		}
	}
	return nil, mterrors.NewPgError(mterrors.ErrInvalidStatement, mterrors.CodeUndefinedColumn,
		"column %q of relation %q does not exist", name, b.rs.Name).
		WithTable(b.rs.Name).
		WithColumn(name)
}

func (b *builder) columnVar(name string) (*ast.Var, error) {
	att, err := b.column(name)
	if err != nil {
		return nil, err
	}
	return ast.NewVar(b.varno, att.Attnum, att.TypeID, att.Typmod), nil
}

func (b *builder) targetEntry(t Target, pos ast.AttrNumber) (*ast.TargetEntry, error) {
	value, err := b.parser.ParseExpr(t.Value)
	if err != nil {
		return nil, err
	}
	if t.Junk {
		name := t.Name
		if name == "" {
			name = t.Column
		}
		return ast.NewJunkTargetEntry(value, pos, name), nil
	}

	att, err := b.column(t.Column)
	if err != nil {
		return nil, err
	}
	if len(t.Subscripts) > 0 {
		value, err = b.arrayAssignment(att, t.Subscripts, value)
	} else {
		value, err = b.assignable(att.Name, value, att.TypeID, att.Typmod)
	}
	if err != nil {
		return nil, err
	}
	return ast.NewTargetEntry(value, att.Attnum, att.Name), nil
}

// arrayAssignment builds col[subscripts] = value. An INSERT assigns into a
// NULL array, an UPDATE into the column's current value.
func (b *builder) arrayAssignment(att *catalog.Attribute, subscripts []string, value ast.Expression) (ast.Expression, error) {
	elemType, ok := ast.ElementTypeOf(att.TypeID)
	if !ok {
		return nil, mterrors.NewPgError(mterrors.ErrInvalidStatement, mterrors.CodeDatatypeMismatch,
			"cannot subscript type %s because it does not support subscripting", b.coercer.TypeName(att.TypeID)).
			WithColumn(att.Name)
	}
	indexes := make([]ast.Expression, len(subscripts))
	for i, text := range subscripts {
		idx, err := b.parser.ParseExpr(text)
		if err != nil {
			return nil, err
		}
		if indexes[i], err = b.assignable(att.Name, idx, ast.INT4OID, -1); err != nil {
			return nil, err
		}
	}
	value, err := b.assignable(att.Name, value, elemType, -1)
	if err != nil {
		return nil, err
	}

	var base ast.Expression
	if b.cmd == ast.CMD_INSERT {
		typlen, byval := b.coercer.TypLenByVal(att.TypeID)
		base = ast.NewNullConst(att.TypeID, att.Typmod, typlen, byval)
	} else {
		base = ast.NewVar(b.varno, att.Attnum, att.TypeID, att.Typmod)
	}
	ref := ast.NewArrayAssignment(att.TypeID, elemType, base, indexes[0], value)
	ref.Refupperindexpr = indexes
	ref.Reftypmod = att.Typmod
	return ref, nil
}

func (b *builder) assignable(column string, expr ast.Expression, typ ast.Oid, typmod int32) (ast.Expression, error) {
	exprType := ast.ExprType(expr)
	coerced, ok := b.coercer.CoerceToTarget(expr, exprType, typ, typmod)
	if !ok {
		return nil, mterrors.NewPgError(mterrors.ErrInvalidStatement, mterrors.CodeDatatypeMismatch,
			"column %q is of type %s but expression is of type %s",
			column, b.coercer.TypeName(typ), b.coercer.TypeName(exprType)).
			WithHint("You will need to rewrite or cast the expression.").
			WithColumn(column)
	}
	return coerced, nil
}
