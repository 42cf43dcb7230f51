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

// Package ast provides the PostgreSQL planner node definitions used by the
// target-list preprocessor: target entries, column references, constants,
// coercions and array subscripting.
// Ported from postgres/src/include/nodes/nodes.h and primnodes.h.
package ast

import (
	"fmt"
)

// NodeTag represents the type of a node.
// Ported from postgres/src/include/nodes/nodes.h (NodeTag enum)
type NodeTag int

const (
	T_Invalid NodeTag = iota

	// Expression nodes
	T_Var
	T_Const
	T_Param
	T_FuncExpr
	T_RelabelType
	T_CoerceToDomain
	T_SubscriptingRef
	T_SQLValueFunction

	// Planner infrastructure
	T_TargetEntry
	T_RangeTblEntry
)

// String returns the string representation of a NodeTag.
func (nt NodeTag) String() string {
	switch nt {
	case T_Invalid:
		return "T_Invalid"
	case T_Var:
		return "T_Var"
	case T_Const:
		return "T_Const"
	case T_Param:
		return "T_Param"
	case T_FuncExpr:
		return "T_FuncExpr"
	case T_RelabelType:
		return "T_RelabelType"
	case T_CoerceToDomain:
		return "T_CoerceToDomain"
	case T_SubscriptingRef:
		return "T_SubscriptingRef"
	case T_SQLValueFunction:
		return "T_SQLValueFunction"
	case T_TargetEntry:
		return "T_TargetEntry"
	case T_RangeTblEntry:
		return "T_RangeTblEntry"
	default:
		return fmt.Sprintf("NodeTag(%d)", int(nt))
	}
}

// Node is the base interface for all planner nodes.
type Node interface {
	// NodeTag returns the type tag for this node
	NodeTag() NodeTag

	// Location returns the byte offset in the source string where this node
	// begins, or -1 if unknown.
	Location() int

	// String returns a string representation of the node (for debugging)
	String() string
}

// BaseNode provides a basic implementation of the Node interface.
type BaseNode struct {
	Tag NodeTag // Node type tag
	Loc int     // Source location in bytes
}

// NodeTag returns the node's type tag.
func (n *BaseNode) NodeTag() NodeTag {
	return n.Tag
}

// Location returns the node's source location.
func (n *BaseNode) Location() int {
	return n.Loc
}

// String returns a basic string representation.
func (n *BaseNode) String() string {
	return fmt.Sprintf("%s@%d", n.Tag, n.Loc)
}

// SetLocation sets the source location for this node.
func (n *BaseNode) SetLocation(location int) {
	n.Loc = location
}

// Expression is implemented by every node that can appear in an expression
// tree.
type Expression interface {
	Node
	ExpressionType() string
}

// BaseExpr provides common expression functionality.
type BaseExpr struct {
	BaseNode
}

// IsExpr marks the embedding type as an expression node.
func (e *BaseExpr) IsExpr() bool {
	return true
}
