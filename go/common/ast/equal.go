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
package ast

import (
	"reflect"
)

// Equal reports whether two node trees are structurally equal, the
// equivalent of equal() in equalfuncs.c. Nodes are compared by tag and then
// field by field, recursing into sub-expressions. Source locations are
// ignored. Two nil nodes are equal.
func Equal(a, b Node) bool {
	if isNilNode(a) || isNilNode(b) {
		return isNilNode(a) && isNilNode(b)
	}
	if a.NodeTag() != b.NodeTag() {
		return false
	}

	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && equalVar(x, y)
	case *Const:
		y, ok := b.(*Const)
		return ok && equalConst(x, y)
	case *Param:
		y, ok := b.(*Param)
		return ok && x.Paramkind == y.Paramkind &&
			x.Paramid == y.Paramid &&
			x.Paramtype == y.Paramtype &&
			x.Paramtypmod == y.Paramtypmod
	case *FuncExpr:
		y, ok := b.(*FuncExpr)
		return ok && x.Funcid == y.Funcid &&
			x.Funcresulttype == y.Funcresulttype &&
			x.Funcretset == y.Funcretset &&
			x.Funccollid == y.Funccollid &&
			equalList(x.Args, y.Args)
	case *RelabelType:
		y, ok := b.(*RelabelType)
		return ok && x.Resulttype == y.Resulttype &&
			x.Resulttypmod == y.Resulttypmod &&
			x.Resultcollid == y.Resultcollid &&
			Equal(x.Arg, y.Arg)
	case *CoerceToDomain:
		y, ok := b.(*CoerceToDomain)
		return ok && x.Resulttype == y.Resulttype &&
			x.Resulttypmod == y.Resulttypmod &&
			x.Resultcollid == y.Resultcollid &&
			Equal(x.Arg, y.Arg)
	case *SubscriptingRef:
		y, ok := b.(*SubscriptingRef)
		return ok && equalSubscriptingRef(x, y)
	case *SQLValueFunction:
		y, ok := b.(*SQLValueFunction)
		return ok && x.Op == y.Op &&
			x.Type == y.Type &&
			x.Typmod == y.Typmod
	case *TargetEntry:
		y, ok := b.(*TargetEntry)
		return ok && x.Resno == y.Resno &&
			x.Resname == y.Resname &&
			x.Ressortgroupref == y.Ressortgroupref &&
			x.Resorigtbl == y.Resorigtbl &&
			x.Resorigcol == y.Resorigcol &&
			x.Resjunk == y.Resjunk &&
			Equal(x.Expr, y.Expr)
	case *RangeTblEntry:
		y, ok := b.(*RangeTblEntry)
		return ok && x.RteKind == y.RteKind &&
			x.Relid == y.Relid &&
			x.Inh == y.Inh &&
			x.Subquery == y.Subquery
	default:
		return false
	}
}

// EqualTargetLists compares two target lists entry by entry.
func EqualTargetLists(a, b TargetList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalVar(x, y *Var) bool {
	return x.Varno == y.Varno &&
		x.Varattno == y.Varattno &&
		x.Vartype == y.Vartype &&
		x.Vartypmod == y.Vartypmod &&
		x.Varcollid == y.Varcollid &&
		x.Varlevelsup == y.Varlevelsup
}

func equalConst(x, y *Const) bool {
	if x.Consttype != y.Consttype ||
		x.Consttypmod != y.Consttypmod ||
		x.Constcollid != y.Constcollid ||
		x.Constlen != y.Constlen ||
		x.Constisnull != y.Constisnull ||
		x.Constbyval != y.Constbyval {
		return false
	}
	// Values of NULL constants are ignored, as in datumIsEqual callers.
	if x.Constisnull {
		return true
	}
	return reflect.DeepEqual(x.Constvalue, y.Constvalue)
}

func equalSubscriptingRef(x, y *SubscriptingRef) bool {
	return x.Refcontainertype == y.Refcontainertype &&
		x.Refelemtype == y.Refelemtype &&
		x.Refrestype == y.Refrestype &&
		x.Reftypmod == y.Reftypmod &&
		x.Refcollid == y.Refcollid &&
		equalList(x.Refupperindexpr, y.Refupperindexpr) &&
		equalList(x.Reflowerindexpr, y.Reflowerindexpr) &&
		Equal(x.Refexpr, y.Refexpr) &&
		Equal(x.Refassgnexpr, y.Refassgnexpr)
}

func equalList(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// isNilNode catches both a nil interface and a typed nil pointer stored in
// an interface.
func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
