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

// CmdType represents the type of SQL command - ported from postgres/src/include/nodes/nodes.h:262
type CmdType int

const (
	CMD_UNKNOWN CmdType = iota // Unknown command type
	CMD_SELECT                 // SELECT statement
	CMD_UPDATE                 // UPDATE statement
	CMD_INSERT                 // INSERT statement
	CMD_DELETE                 // DELETE statement
	CMD_MERGE                  // MERGE statement
	CMD_UTILITY                // Utility commands (CREATE, DROP, etc.)
	CMD_NOTHING                // Dummy command for INSTEAD NOTHING rules
)

func (c CmdType) String() string {
	switch c {
	case CMD_UNKNOWN:
		return "UNKNOWN"
	case CMD_SELECT:
		return "SELECT"
	case CMD_UPDATE:
		return "UPDATE"
	case CMD_INSERT:
		return "INSERT"
	case CMD_DELETE:
		return "DELETE"
	case CMD_MERGE:
		return "MERGE"
	case CMD_UTILITY:
		return "UTILITY"
	case CMD_NOTHING:
		return "NOTHING"
	default:
		return fmt.Sprintf("CmdType(%d)", int(c))
	}
}

// ParseCmdType maps a command keyword ("insert", "UPDATE", ...) to its CmdType.
func ParseCmdType(s string) (CmdType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELECT":
		return CMD_SELECT, nil
	case "UPDATE":
		return CMD_UPDATE, nil
	case "INSERT":
		return CMD_INSERT, nil
	case "DELETE":
		return CMD_DELETE, nil
	case "MERGE":
		return CMD_MERGE, nil
	case "UTILITY":
		return CMD_UTILITY, nil
	default:
		return CMD_UNKNOWN, fmt.Errorf("unknown command type %q", s)
	}
}

// TargetEntry represents one entry of a query's target list.
// Ported from postgres/src/include/nodes/primnodes.h:2186
type TargetEntry struct {
	BaseNode
	Expr            Expression // The expression to compute
	Resno           AttrNumber // Attribute number (>= 1)
	Resname         string     // Name of the column (could be empty)
	Ressortgroupref Index      // Nonzero if referenced by ORDER BY/GROUP BY
	Resorigtbl      Oid        // OID of column's source table
	Resorigcol      AttrNumber // Column's number in source table
	Resjunk         bool       // Set to true to eliminate the attribute from final target list
}

// NewTargetEntry creates a new TargetEntry node.
func NewTargetEntry(expr Expression, resno AttrNumber, resname string) *TargetEntry {
	return &TargetEntry{
		BaseNode: BaseNode{Tag: T_TargetEntry, Loc: -1},
		Expr:     expr,
		Resno:    resno,
		Resname:  resname,
	}
}

// NewJunkTargetEntry creates a new junk TargetEntry, one that is carried
// through execution but not stored.
func NewJunkTargetEntry(expr Expression, resno AttrNumber, resname string) *TargetEntry {
	te := NewTargetEntry(expr, resno, resname)
	te.Resjunk = true
	return te
}

// WithResno returns a copy of te renumbered to resno. The expression tree is
// shared with te, the receiver is never modified.
func (te *TargetEntry) WithResno(resno AttrNumber) *TargetEntry {
	cp := *te
	cp.Resno = resno
	return &cp
}

// WithExpr returns a copy of te computing expr instead.
func (te *TargetEntry) WithExpr(expr Expression) *TargetEntry {
	cp := *te
	cp.Expr = expr
	return &cp
}

func (te *TargetEntry) String() string {
	junkStr := ""
	if te.Resjunk {
		junkStr = " (junk)"
	}
	return fmt.Sprintf("TargetEntry(%d: %s as %s)%s", te.Resno, te.Expr, te.Resname, junkStr)
}

// TargetList is an ordered list of target entries.
type TargetList []*TargetEntry

// Copy returns a shallow copy of the list: a new backing array holding the
// same entries.
func (tl TargetList) Copy() TargetList {
	if tl == nil {
		return nil
	}
	cp := make(TargetList, len(tl))
	copy(cp, tl)
	return cp
}

// Visible returns the entries that are stored back into the row.
func (tl TargetList) Visible() TargetList {
	var out TargetList
	for _, te := range tl {
		if !te.Resjunk {
			out = append(out, te)
		}
	}
	return out
}

// FindByName returns the first non-junk entry named name.
func (tl TargetList) FindByName(name string) (*TargetEntry, bool) {
	for _, te := range tl {
		if !te.Resjunk && te.Resname == name {
			return te, true
		}
	}
	return nil, false
}

func (tl TargetList) String() string {
	parts := make([]string, len(tl))
	for i, te := range tl {
		parts[i] = te.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
