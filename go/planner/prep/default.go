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
	"errors"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
)

// oidLen is the storage width of an OID, which is how set-valued columns
// are stored.
const oidLen = 4

// buildColumnDefault builds the value an INSERT stores in attribute attrno
// when the statement does not name it: the column's default expression,
// else the default of its type, else NULL. The result is always of the
// column's type and typmod.
func (p *Preprocessor) buildColumnDefault(ctx context.Context, schema *catalog.RelationSchema, attrno ast.AttrNumber) (ast.Expression, error) {
	att, ok := schema.Attr(attrno)
	if !ok {
		return nil, mterrors.NewPgError(mterrors.ErrResultRelationInvalid, mterrors.CodeInternalError,
			"invalid attribute number %d for relation %q", attrno, schema.QualifiedName())
	}
	atttype := att.TypeID
	atttypmod := att.Typmod

	if text, ok := schema.Default(attrno); ok {
		expr, err := p.parser.ParseDefault(text)
		if err != nil {
			return nil, invalidDefault(schema, att, text, err)
		}

		// A stored default is not necessarily of the column's type yet,
		// unless it is a constant. Coerce it as an explicit value would be.
		typeID := ast.ExprType(expr)
		if typeID != atttype {
			coerced, ok := p.coercer.CoerceToTarget(expr, typeID, p.coercer.BaseType(atttype), atttypmod)
			if !ok {
				return nil, mterrors.NewPgError(mterrors.ErrDefaultTypeMismatch, mterrors.CodeDatatypeMismatch,
					"column %q is of type %s but default expression is of type %s",
					att.Name, p.coercer.TypeName(atttype), p.coercer.TypeName(typeID)).
					WithHint("You will need to rewrite or cast the expression.").
					WithTable(schema.Name).
					WithColumn(att.Name).
					WithDataType(p.coercer.TypeName(atttype))
			}
			expr = coerced
		}

		p.logger.DebugContext(ctx, "using column default",
			"relation", schema.QualifiedName(),
			"column", att.Name,
			"default", text)
		return p.coercer.CoerceTypmod(expr, atttype, atttypmod), nil
	}

	var expr ast.Expression
	if att.IsSet {
		// Sets are stored as an OID handle whatever the element type, and
		// the element type's default does not apply.
		expr = ast.NewNullConst(atttype, -1, oidLen, true)
	} else {
		expr = p.coercer.TypeDefault(atttype, atttypmod)
		if expr == nil {
			typlen, byval := p.coercer.TypLenByVal(atttype)
			expr = ast.NewNullConst(atttype, -1, typlen, byval)
		}
	}

	p.logger.DebugContext(ctx, "using type default",
		"relation", schema.QualifiedName(),
		"column", att.Name,
		"null", isNullConst(expr))
	return p.coercer.CoerceTypmod(expr, atttype, atttypmod), nil
}

func isNullConst(expr ast.Expression) bool {
	c, ok := expr.(*ast.Const)
	return ok && c.Constisnull
}

// invalidDefault reports stored default text that cannot be turned into an
// expression. The catalog is expected to hold only valid defaults, so this
// is an internal error whatever the parser said.
func invalidDefault(schema *catalog.RelationSchema, att *catalog.Attribute, text string, cause error) error {
	diag := mterrors.NewPgError(mterrors.ErrInvalidDefault, mterrors.CodeInternalError,
		"invalid default expression for column %q: %s", att.Name, text).
		WithTable(schema.Name).
		WithColumn(att.Name)
	var parseDiag *mterrors.PgDiagnostic
	if errors.As(cause, &parseDiag) {
		return diag.WithDetail("%s", parseDiag.Message)
	}
	return diag.WithDetail("%v", cause)
}
