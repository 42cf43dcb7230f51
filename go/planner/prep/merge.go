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
)

// processMatchedTLE turns srcTLE, an entry of the original list matched to
// attribute attrno, into the entry for the new list. priorTLE is the result
// of an earlier match for the same attribute, or nil.
//
// Assigning a column twice, as in UPDATE t SET a = 1, a = 2, is an error
// unless every assignment sets an element of the same array:
//
//	UPDATE t SET a[2] = 42, a[4] = 43
//
// These are nested into one assignment, equivalent to
//
//	a = array_set(array_set(a, 2, 42), 4, 43)
//
// so later assignments apply on top of earlier ones.
func (p *Preprocessor) processMatchedTLE(ctx context.Context, srcTLE, priorTLE *ast.TargetEntry, attrno ast.AttrNumber) (*ast.TargetEntry, error) {
	if priorTLE == nil {
		// First assignment. Reuse the entry when it is already numbered
		// right, otherwise copy it so the original list stays intact.
		if srcTLE.Resno == attrno {
			return srcTLE, nil
		}
		return srcTLE.WithResno(attrno), nil
	}

	srcRef, ok := arrayAssignment(srcTLE.Expr)
	if !ok {
		return nil, multipleAssignment(srcTLE)
	}
	priorRef, ok := arrayAssignment(priorTLE.Expr)
	if !ok || srcRef.Refelemtype != priorRef.Refelemtype {
		return nil, multipleAssignment(srcTLE)
	}

	// The prior entry may already be a nest of assignments; all of them
	// must start from the same array value as this one.
	var priorBottom ast.Expression = priorRef.Refexpr
	for {
		ref, ok := arrayAssignment(priorBottom)
		if !ok {
			break
		}
		priorBottom = ref.Refexpr
	}
	if !ast.Equal(priorBottom, srcRef.Refexpr) {
		return nil, multipleAssignment(srcTLE)
	}

	merged := *srcRef
	merged.Refexpr = priorTLE.Expr

	p.logger.DebugContext(ctx, "merged array element assignments",
		"column", srcTLE.Resname,
		"attno", attrno)
	return srcTLE.WithExpr(&merged).WithResno(attrno), nil
}

// arrayAssignment returns expr as an array element assignment.
func arrayAssignment(expr ast.Expression) (*ast.SubscriptingRef, bool) {
	ref, ok := expr.(*ast.SubscriptingRef)
	if !ok || ref == nil || !ref.IsAssignment() {
		return nil, false
	}
	return ref, true
}

func multipleAssignment(tle *ast.TargetEntry) error {
	return mterrors.NewPgError(mterrors.ErrMultipleAssignment, mterrors.CodeSyntaxError,
		"multiple assignments to same column %q", tle.Resname).
		WithColumn(tle.Resname)
}
