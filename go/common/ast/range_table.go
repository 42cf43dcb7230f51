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
)

// RTEKind represents the type of a Range Table Entry.
// Ported from postgres/src/include/nodes/parsenodes.h:1022-1033
type RTEKind int

const (
	RTE_RELATION        RTEKind = iota // ordinary relation reference
	RTE_SUBQUERY                       // subquery in FROM
	RTE_JOIN                           // join
	RTE_FUNCTION                       // function in FROM
	RTE_TABLEFUNC                      // TableFunc(.., column list)
	RTE_VALUES                         // VALUES (<exprlist>), (<exprlist>), ...
	RTE_CTE                            // common table expr (WITH list element)
	RTE_NAMEDTUPLESTORE                // tuplestore, e.g. for AFTER triggers
	RTE_RESULT                         // RTE represents an empty FROM clause
)

// String returns the string representation of RTEKind.
func (k RTEKind) String() string {
	switch k {
	case RTE_RELATION:
		return "RELATION"
	case RTE_SUBQUERY:
		return "SUBQUERY"
	case RTE_JOIN:
		return "JOIN"
	case RTE_FUNCTION:
		return "FUNCTION"
	case RTE_TABLEFUNC:
		return "TABLEFUNC"
	case RTE_VALUES:
		return "VALUES"
	case RTE_CTE:
		return "CTE"
	case RTE_NAMEDTUPLESTORE:
		return "NAMEDTUPLESTORE"
	case RTE_RESULT:
		return "RESULT"
	default:
		return "UNKNOWN"
	}
}

// RangeTblEntry describes one relation or subquery of a query's range table.
// Only the fields the planner prep stages read are carried.
// Ported from postgres/src/include/nodes/parsenodes.h:1038-1251
type RangeTblEntry struct {
	BaseNode
	RteKind  RTEKind // see RTEKind enum above
	Relid    Oid     // OID of the relation (RTE_RELATION)
	RelName  string  // relation name, for messages
	Inh      bool    // inheritance requested?
	Subquery *Query  // the sub-query (RTE_SUBQUERY)
}

// NewRelationRTE creates a range table entry for a plain relation.
func NewRelationRTE(relid Oid, relname string) *RangeTblEntry {
	return &RangeTblEntry{
		BaseNode: BaseNode{Tag: T_RangeTblEntry, Loc: -1},
		RteKind:  RTE_RELATION,
		Relid:    relid,
		RelName:  relname,
		Inh:      true,
	}
}

// NewSubqueryRTE creates a range table entry for a subquery in FROM.
func NewSubqueryRTE(subquery *Query) *RangeTblEntry {
	return &RangeTblEntry{
		BaseNode: BaseNode{Tag: T_RangeTblEntry, Loc: -1},
		RteKind:  RTE_SUBQUERY,
		Subquery: subquery,
	}
}

func (r *RangeTblEntry) String() string {
	return fmt.Sprintf("RangeTblEntry{kind=%s relid=%d}", r.RteKind, r.Relid)
}

// RangeTable is a query's list of range table entries. Range table indexes
// (Var.Varno, Query.ResultRelation) are 1-based.
type RangeTable []*RangeTblEntry

// Fetch returns the entry at 1-based index rti, the equivalent of rt_fetch().
func (rt RangeTable) Fetch(rti Index) (*RangeTblEntry, bool) {
	if rti < 1 || int(rti) > len(rt) {
		return nil, false
	}
	return rt[rti-1], true
}

// Query is the analyzed form of a statement, reduced to what the target-list
// preprocessing needs.
// Ported from postgres/src/include/nodes/parsenodes.h (Query)
type Query struct {
	CommandType    CmdType
	ResultRelation Index // rtable index of target relation for INSERT/UPDATE/DELETE; 0 for SELECT
	RangeTable     RangeTable
	TargetList     TargetList
}
