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
	"fmt"
	"strings"
)

// ==============================================================================
// EXPRESSION FRAMEWORK - PostgreSQL primnodes.h
// ==============================================================================

// Oid represents an object identifier - ported from postgres/src/include/postgres_ext.h
type Oid uint32

// AttrNumber represents an attribute number - ported from postgres/src/include/access/attnum.h:21
type AttrNumber int16

// InvalidAttrNumber is the zero attribute number.
const InvalidAttrNumber AttrNumber = 0

// Index represents a range table index - ported from postgres/src/include/c.h
type Index uint32

// Datum holds the value of a constant. Unlike the C Datum it carries a Go
// value (int64, float64, string, bool, ...) rather than a machine word.
type Datum any

// CoercionForm represents type coercion display forms - ported from postgres/src/include/nodes/primnodes.h
type CoercionForm int

const (
	COERCE_EXPLICIT_CALL CoercionForm = iota // Explicit function call syntax
	COERCE_EXPLICIT_CAST                     // Explicit cast syntax
	COERCE_IMPLICIT_CAST                     // Implicit cast
	COERCE_SQL_SYNTAX                        // SQL standard syntax
)

// ParamKind represents parameter types - ported from postgres/src/include/nodes/primnodes.h
type ParamKind int

const (
	PARAM_EXTERN    ParamKind = iota // External parameter
	PARAM_EXEC                       // Executor internal parameter
	PARAM_SUBLINK                    // Sublink output column
	PARAM_MULTIEXPR                  // Multiexpr sublink column
)

// Var represents a reference to a table column.
// Ported from postgres/src/include/nodes/primnodes.h:247-294
type Var struct {
	BaseExpr
	Varno       Index      // Relation index in range table
	Varattno    AttrNumber // Attribute number (0 = whole-row, < 0 = system column)
	Vartype     Oid        // pg_type OID
	Vartypmod   int32      // Type modifier
	Varcollid   Oid        // Collation OID
	Varlevelsup Index      // Subquery nesting level
}

// NewVar creates a new Var node.
func NewVar(varno Index, varattno AttrNumber, vartype Oid, vartypmod int32) *Var {
	return &Var{
		BaseExpr:  BaseExpr{BaseNode: BaseNode{Tag: T_Var, Loc: -1}},
		Varno:     varno,
		Varattno:  varattno,
		Vartype:   vartype,
		Vartypmod: vartypmod,
	}
}

func (v *Var) ExpressionType() string {
	return "Var"
}

func (v *Var) String() string {
	return fmt.Sprintf("Var(%d.%d)", v.Varno, v.Varattno)
}

// Const represents a constant value in an expression.
// Ported from postgres/src/include/nodes/primnodes.h:306-336
type Const struct {
	BaseExpr
	Consttype   Oid   // Datatype OID
	Consttypmod int32 // Type modifier
	Constcollid Oid   // Collation OID
	Constlen    int   // Type length (-1 = varlena, -2 = cstring)
	Constvalue  Datum // The actual value
	Constisnull bool  // Whether null
	Constbyval  bool  // Pass by value?
}

// NewConst creates a new Const node, the equivalent of makeConst().
func NewConst(consttype Oid, consttypmod int32, constlen int, constvalue Datum, constisnull, constbyval bool) *Const {
	return &Const{
		BaseExpr:    BaseExpr{BaseNode: BaseNode{Tag: T_Const, Loc: -1}},
		Consttype:   consttype,
		Consttypmod: consttypmod,
		Constlen:    constlen,
		Constvalue:  constvalue,
		Constisnull: constisnull,
		Constbyval:  constbyval,
	}
}

// NewNullConst creates a NULL constant of the given type.
func NewNullConst(consttype Oid, consttypmod int32, constlen int, constbyval bool) *Const {
	return NewConst(consttype, consttypmod, constlen, nil, true, constbyval)
}

func (c *Const) ExpressionType() string {
	return "Const"
}

func (c *Const) String() string {
	if c.Constisnull {
		return fmt.Sprintf("Const(NULL::%d)", c.Consttype)
	}
	return fmt.Sprintf("Const(%v::%d)", c.Constvalue, c.Consttype)
}

// Param represents a parameter reference ($1, executor params, ...).
// Ported from postgres/src/include/nodes/primnodes.h:373-385
type Param struct {
	BaseExpr
	Paramkind   ParamKind
	Paramid     int
	Paramtype   Oid
	Paramtypmod int32
}

// NewParam creates a new Param node.
func NewParam(paramkind ParamKind, paramid int, paramtype Oid) *Param {
	return &Param{
		BaseExpr:    BaseExpr{BaseNode: BaseNode{Tag: T_Param, Loc: -1}},
		Paramkind:   paramkind,
		Paramid:     paramid,
		Paramtype:   paramtype,
		Paramtypmod: -1,
	}
}

func (p *Param) ExpressionType() string {
	return "Param"
}

func (p *Param) String() string {
	return fmt.Sprintf("Param($%d)", p.Paramid)
}

// FuncExpr represents a function call, including implicit casts.
// Ported from postgres/src/include/nodes/primnodes.h:745-760
type FuncExpr struct {
	BaseExpr
	Funcid         Oid          // PG_PROC OID of the function
	Funcname       string       // Function name, kept for display
	Funcresulttype Oid          // Result type OID
	Funcretset     bool         // Function returns set?
	Funcformat     CoercionForm // How to display this function call
	Funccollid     Oid          // Collation of result
	Args           []Expression // Arguments to the function
}

// NewFuncExpr creates a new FuncExpr node.
func NewFuncExpr(funcid Oid, funcname string, funcresulttype Oid, args []Expression, format CoercionForm) *FuncExpr {
	return &FuncExpr{
		BaseExpr:       BaseExpr{BaseNode: BaseNode{Tag: T_FuncExpr, Loc: -1}},
		Funcid:         funcid,
		Funcname:       funcname,
		Funcresulttype: funcresulttype,
		Funcformat:     format,
		Args:           args,
	}
}

func (f *FuncExpr) ExpressionType() string {
	return "FuncExpr"
}

func (f *FuncExpr) String() string {
	args := make([]string, len(f.Args))
	for i, arg := range f.Args {
		args[i] = fmt.Sprint(arg)
	}
	return fmt.Sprintf("FuncExpr(%s(%s))", f.Funcname, strings.Join(args, ", "))
}

// RelabelType represents a binary-compatible coercion that needs no runtime
// work.
// Ported from postgres/src/include/nodes/primnodes.h:1150-1160
type RelabelType struct {
	BaseExpr
	Arg           Expression   // Input expression
	Resulttype    Oid          // Output type of coercion expression
	Resulttypmod  int32        // Output typmod (usually -1)
	Resultcollid  Oid          // OID of collation, or InvalidOid if none
	Relabelformat CoercionForm // How to display this node
}

// NewRelabelType creates a new RelabelType node.
func NewRelabelType(arg Expression, resulttype Oid, resulttypmod int32, relabelformat CoercionForm) *RelabelType {
	return &RelabelType{
		BaseExpr:      BaseExpr{BaseNode: BaseNode{Tag: T_RelabelType, Loc: -1}},
		Arg:           arg,
		Resulttype:    resulttype,
		Resulttypmod:  resulttypmod,
		Relabelformat: relabelformat,
	}
}

func (r *RelabelType) ExpressionType() string {
	return "RelabelType"
}

func (r *RelabelType) String() string {
	return fmt.Sprintf("RelabelType(%s::%d)", r.Arg, r.Resulttype)
}

// CoerceToDomain represents the check that a value satisfies a domain's
// constraints.
// Ported from postgres/src/include/nodes/primnodes.h:2005-2015
type CoerceToDomain struct {
	BaseExpr
	Arg            Expression   // Input expression
	Resulttype     Oid          // Domain type ID (result type)
	Resulttypmod   int32        // Output typmod (currently always -1)
	Resultcollid   Oid          // OID of collation, or InvalidOid if none
	Coercionformat CoercionForm // How to display this node
}

// NewCoerceToDomain creates a new CoerceToDomain node.
func NewCoerceToDomain(arg Expression, resulttype Oid, resulttypmod int32, coercionformat CoercionForm) *CoerceToDomain {
	return &CoerceToDomain{
		BaseExpr:       BaseExpr{BaseNode: BaseNode{Tag: T_CoerceToDomain, Loc: -1}},
		Arg:            arg,
		Resulttype:     resulttype,
		Resulttypmod:   resulttypmod,
		Coercionformat: coercionformat,
	}
}

func (c *CoerceToDomain) ExpressionType() string {
	return "CoerceToDomain"
}

func (c *CoerceToDomain) String() string {
	return fmt.Sprintf("CoerceToDomain(%s::%d)", c.Arg, c.Resulttype)
}

// SQLValueFunctionOp identifies a parameterless SQL-standard function.
// Ported from postgres/src/include/nodes/primnodes.h (SQLValueFunctionOp)
type SQLValueFunctionOp int

const (
	SVFOP_CURRENT_DATE SQLValueFunctionOp = iota
	SVFOP_CURRENT_TIME
	SVFOP_CURRENT_TIME_N
	SVFOP_CURRENT_TIMESTAMP
	SVFOP_CURRENT_TIMESTAMP_N
	SVFOP_LOCALTIME
	SVFOP_LOCALTIME_N
	SVFOP_LOCALTIMESTAMP
	SVFOP_LOCALTIMESTAMP_N
	SVFOP_CURRENT_ROLE
	SVFOP_CURRENT_USER
	SVFOP_USER
	SVFOP_SESSION_USER
	SVFOP_CURRENT_CATALOG
	SVFOP_CURRENT_SCHEMA
)

// SQLValueFunction represents CURRENT_TIMESTAMP, CURRENT_USER and similar
// keywords that read like constants but are evaluated at run time.
// Ported from postgres/src/include/nodes/primnodes.h (SQLValueFunction)
type SQLValueFunction struct {
	BaseExpr
	Op     SQLValueFunctionOp
	Type   Oid   // Result type
	Typmod int32 // Precision for the _N variants, else -1
}

// NewSQLValueFunction creates a new SQLValueFunction node.
func NewSQLValueFunction(op SQLValueFunctionOp, typ Oid, typmod int32) *SQLValueFunction {
	return &SQLValueFunction{
		BaseExpr: BaseExpr{BaseNode: BaseNode{Tag: T_SQLValueFunction, Loc: -1}},
		Op:       op,
		Type:     typ,
		Typmod:   typmod,
	}
}

func (s *SQLValueFunction) ExpressionType() string {
	return "SQLValueFunction"
}

func (s *SQLValueFunction) String() string {
	return fmt.Sprintf("SQLValueFunction(%d::%d)", s.Op, s.Type)
}

// SubscriptingRef represents array subscripting, either a fetch (arr[1]) or,
// when Refassgnexpr is set, an element assignment (arr[1] = value).
// Ported from postgres/src/include/nodes/primnodes.h:679
type SubscriptingRef struct {
	BaseExpr
	Refcontainertype Oid          // Type OID of container
	Refelemtype      Oid          // The container type's pg_type.typelem
	Refrestype       Oid          // Type OID of the result
	Reftypmod        int32        // Typmod of the result
	Refcollid        Oid          // Collation of result, or InvalidOid if none
	Refupperindexpr  []Expression // Expressions for upper index bounds
	Reflowerindexpr  []Expression // Expressions for lower index bounds, nil if not a slice
	Refexpr          Expression   // Expression for the container value
	Refassgnexpr     Expression   // Expression for the new value, nil for a fetch
}

// NewArraySubscript creates a SubscriptingRef for array indexing (arr[index]).
func NewArraySubscript(arraytype, elemtype Oid, arrayexpr, indexexpr Expression) *SubscriptingRef {
	return &SubscriptingRef{
		BaseExpr:         BaseExpr{BaseNode: BaseNode{Tag: T_SubscriptingRef, Loc: -1}},
		Refcontainertype: arraytype,
		Refelemtype:      elemtype,
		Refrestype:       elemtype,
		Reftypmod:        -1,
		Refupperindexpr:  []Expression{indexexpr},
		Refexpr:          arrayexpr,
	}
}

// NewArrayAssignment creates a SubscriptingRef for array assignment (arr[index] = value).
func NewArrayAssignment(arraytype, elemtype Oid, arrayexpr, indexexpr, assignexpr Expression) *SubscriptingRef {
	return &SubscriptingRef{
		BaseExpr:         BaseExpr{BaseNode: BaseNode{Tag: T_SubscriptingRef, Loc: -1}},
		Refcontainertype: arraytype,
		Refelemtype:      elemtype,
		Refrestype:       arraytype, // assignment yields the whole container
		Reftypmod:        -1,
		Refupperindexpr:  []Expression{indexexpr},
		Refexpr:          arrayexpr,
		Refassgnexpr:     assignexpr,
	}
}

// IsAssignment reports whether the node stores a new element value.
func (sr *SubscriptingRef) IsAssignment() bool {
	return sr.Refassgnexpr != nil
}

func (sr *SubscriptingRef) ExpressionType() string {
	return "SubscriptingRef"
}

func (sr *SubscriptingRef) String() string {
	idx := make([]string, len(sr.Refupperindexpr))
	for i, e := range sr.Refupperindexpr {
		idx[i] = fmt.Sprint(e)
	}
	if sr.Refassgnexpr != nil {
		return fmt.Sprintf("SubscriptingRef(%s[%s] = %s)", sr.Refexpr, strings.Join(idx, ","), sr.Refassgnexpr)
	}
	return fmt.Sprintf("SubscriptingRef(%s[%s])", sr.Refexpr, strings.Join(idx, ","))
}

// ExprType returns the result type of an expression, the equivalent of
// exprType() in nodeFuncs.c. It returns InvalidOid for nil.
func ExprType(expr Expression) Oid {
	switch e := expr.(type) {
	case *Var:
		return e.Vartype
	case *Const:
		return e.Consttype
	case *Param:
		return e.Paramtype
	case *FuncExpr:
		return e.Funcresulttype
	case *RelabelType:
		return e.Resulttype
	case *CoerceToDomain:
		return e.Resulttype
	case *SubscriptingRef:
		return e.Refrestype
	case *SQLValueFunction:
		return e.Type
	default:
		return InvalidOid
	}
}

// ExprTypmod returns the type modifier of an expression's result, or -1 if
// it cannot be determined.
func ExprTypmod(expr Expression) int32 {
	switch e := expr.(type) {
	case *Var:
		return e.Vartypmod
	case *Const:
		return e.Consttypmod
	case *Param:
		return e.Paramtypmod
	case *FuncExpr:
		if typmod, ok := ExprIsLengthCoercion(e); ok {
			return typmod
		}
		return -1
	case *RelabelType:
		return e.Resulttypmod
	case *CoerceToDomain:
		return e.Resulttypmod
	case *SubscriptingRef:
		return e.Reftypmod
	case *SQLValueFunction:
		return e.Typmod
	default:
		return -1
	}
}

// ExprIsLengthCoercion reports whether expr is a call of a length-coercion
// function (bpchar(bpchar, int4), numeric(numeric, int4), ...) and if so
// returns the typmod it applies.
func ExprIsLengthCoercion(expr Expression) (int32, bool) {
	f, ok := expr.(*FuncExpr)
	if !ok {
		return -1, false
	}
	if f.Funcformat != COERCE_EXPLICIT_CAST && f.Funcformat != COERCE_IMPLICIT_CAST {
		return -1, false
	}
	if len(f.Args) < 2 {
		return -1, false
	}
	c, ok := f.Args[1].(*Const)
	if !ok || c.Constisnull || c.Consttype != INT4OID {
		return -1, false
	}
	typmod, ok := c.Constvalue.(int32)
	if !ok {
		return -1, false
	}
	return typmod, true
}
