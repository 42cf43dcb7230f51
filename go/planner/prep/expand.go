// PostgreSQL Database Management System
// (also known as Postgres, formerly known as Postgres95)
//
//	Portions Copyright (c) 2025, Supabase, Inc
//
//	Portions Copyright (c) 1996-2025, PostgreSQL Global Development Group
//
//	Portions Copyright (c) 1994, The Regents of the University of California
//
// Permission to use, copy, modify, and distribute this software and its
// documentation for any purpose, without fee, and without a written agreement
// is hereby granted, provided that the above copyright notice and this
// paragraph and the following two paragraphs appear in all copies.
//
// IN NO EVENT SHALL THE UNIVERSITY OF CALIFORNIA BE LIABLE TO ANY PARTY FOR
// DIRECT, INDIRECT, SPECIAL, INCIDENTAL, OR CONSEQUENTIAL DAMAGES, INCLUDING
// LOST PROFITS, ARISING OUT OF THE USE OF THIS SOFTWARE AND ITS
// DOCUMENTATION, EVEN IF THE UNIVERSITY OF CALIFORNIA HAS BEEN ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.
//
// THE UNIVERSITY OF CALIFORNIA SPECIFICALLY DISCLAIMS ANY WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS FOR A PARTICULAR PURPOSE.  THE SOFTWARE PROVIDED HEREUNDER IS
// ON AN "AS IS" BASIS, AND THE UNIVERSITY OF CALIFORNIA HAS NO OBLIGATIONS TO
// PROVIDE MAINTENANCE, SUPPORT, UPDATES, ENHANCEMENTS, OR MODIFICATIONS.

package prep

import (
	"context"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
)

// expandTargetlist returns a target list with one visible entry per
// attribute of the result relation, in attribute order, followed by the
// junk entries of tlist renumbered to come after them.
//
// Entries are matched to attributes by name. An attribute with no entry gets
// its default for INSERT and its current value for UPDATE.
func (p *Preprocessor) expandTargetlist(
	ctx context.Context,
	tlist ast.TargetList,
	cmd ast.CmdType,
	resultRelation ast.Index,
	rtable ast.RangeTable,
) (ast.TargetList, error) {
	if cmd != ast.CMD_INSERT && cmd != ast.CMD_UPDATE {
		return nil, mterrors.NewPgError(mterrors.ErrUnsupportedCommand, mterrors.CodeInternalError,
			"unexpected command type %s in target list expansion", cmd)
	}
	rte, ok := rtable.Fetch(resultRelation)
	if !ok {
		return nil, mterrors.NewPgError(mterrors.ErrResultRelationInvalid, mterrors.CodeInternalError,
			"%s has no result relation", cmd)
	}

	rel, err := p.catalog.Open(ctx, rte.Relid)
	if err != nil {
		return nil, err
	}
	defer rel.Close()
	schema := rel.Schema()

	// used[i] is set once tlist[i] has been placed in the new list.
	used := make([]bool, len(tlist))
	numAttrs := schema.NumAttrs()
	newTlist := make(ast.TargetList, 0, numAttrs+len(tlist))

	for i := range schema.Attrs {
		att := &schema.Attrs[i]
		attrno := att.Attnum

		// Junk entries and dropped columns never match. Every matching
		// entry is consumed so that repeated assignments are caught.
		var newTLE *ast.TargetEntry
		if !att.IsDropped {
			for j, oldTLE := range tlist {
				if used[j] || oldTLE.Resjunk || oldTLE.Resname != att.Name {
					continue
				}
				newTLE, err = p.processMatchedTLE(ctx, oldTLE, newTLE, attrno)
				if err != nil {
					return nil, err
				}
				used[j] = true
			}
		}

		if newTLE == nil {
			var newExpr ast.Expression
			switch {
			case att.IsDropped:
				newExpr = p.droppedColumnValue(att)
			case cmd == ast.CMD_INSERT:
				newExpr, err = p.buildColumnDefault(ctx, schema, attrno)
				if err != nil {
					return nil, err
				}
			default:
				newExpr = ast.NewVar(resultRelation, attrno, att.TypeID, att.Typmod)
			}
			newTLE = ast.NewTargetEntry(newExpr, attrno, att.Name)
		}
		newTlist = append(newTlist, newTLE)
	}

	// Whatever was not matched must be junk (sort keys, system columns and
	// the like). It goes after the columns, renumbered.
	resno := ast.AttrNumber(numAttrs + 1)
	for j, oldTLE := range tlist {
		if used[j] {
			continue
		}
		if !oldTLE.Resjunk {
			return nil, unexpectedAssignment(schema, oldTLE)
		}
		if oldTLE.Resno != resno {
			oldTLE = oldTLE.WithResno(resno)
		}
		newTlist = append(newTlist, oldTLE)
		resno++
	}
	return newTlist, nil
}

// droppedColumnValue fills the slot of a dropped column: a NULL of the
// column's last type keeps later columns at their physical positions.
func (p *Preprocessor) droppedColumnValue(att *catalog.Attribute) ast.Expression {
	typlen, byval := p.coercer.TypLenByVal(att.TypeID)
	return ast.NewNullConst(att.TypeID, -1, typlen, byval)
}

func unexpectedAssignment(schema *catalog.RelationSchema, tle *ast.TargetEntry) error {
	return mterrors.NewPgError(mterrors.ErrUnexpectedJunkAssignment, mterrors.CodeInternalError,
		"unexpected assignment to attribute %q", tle.Resname).
		WithTable(schema.Name).
		WithColumn(tle.Resname).
		WithDetail("Relation %q has no column of that name.", schema.QualifiedName())
}
