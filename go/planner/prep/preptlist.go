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

// Package prep implements target-list preprocessing for INSERT, UPDATE and
// DELETE, the planner step that turns the parser's target list into the
// shape the executor stores.
//
// For INSERT and UPDATE the list is expanded to one entry per physical
// column in column order: missing columns get their default (INSERT) or
// their current value (UPDATE), and several assignments to elements of one
// array column are merged into a single nested assignment. UPDATE and DELETE
// additionally carry the row's ctid as a junk column so the executor can
// find the row to change.
//
// The caller's target list and its entries are never modified; every
// renumbered or merged entry is a new one.
//
// Ported from postgres/src/backend/optimizer/prep/preptlist.c
package prep

import (
	"context"
	"log/slog"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/coerce"
)

// DefaultParser converts the stored text of a column default into an
// expression.
type DefaultParser interface {
	ParseDefault(text string) (ast.Expression, error)
}

// Preprocessor runs target-list preprocessing against a catalog.
// It holds no per-statement state and may be shared between goroutines
// if its catalog, coercer and parser may.
type Preprocessor struct {
	catalog catalog.Accessor
	coercer coerce.Coercer
	parser  DefaultParser
	logger  *slog.Logger
}

// NewPreprocessor creates a Preprocessor.
func NewPreprocessor(accessor catalog.Accessor, coercer coerce.Coercer, parser DefaultParser, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{
		catalog: accessor,
		coercer: coercer,
		parser:  parser,
		logger:  logger,
	}
}

// PreprocessQuery preprocesses q's target list. q is not modified.
func (p *Preprocessor) PreprocessQuery(ctx context.Context, q *ast.Query) (ast.TargetList, error) {
	return p.PreprocessTargetlist(ctx, q.TargetList, q.CommandType, q.ResultRelation, q.RangeTable)
}

// PreprocessTargetlist returns the preprocessed form of tlist for a command
// of kind cmd whose result relation is range table entry resultRelation.
//
// Commands other than INSERT, UPDATE and DELETE get tlist back unchanged.
// On error the returned list is nil.
func (p *Preprocessor) PreprocessTargetlist(
	ctx context.Context,
	tlist ast.TargetList,
	cmd ast.CmdType,
	resultRelation ast.Index,
	rtable ast.RangeTable,
) (ast.TargetList, error) {
	// A result relation must be a real relation, not a subquery. Anything
	// else means the parser or rewriter produced a bad query.
	if resultRelation != 0 {
		if err := checkResultRelation(resultRelation, rtable); err != nil {
			return nil, err
		}
	}

	result := tlist
	if cmd == ast.CMD_INSERT || cmd == ast.CMD_UPDATE {
		var err error
		result, err = p.expandTargetlist(ctx, tlist, cmd, resultRelation, rtable)
		if err != nil {
			return nil, err
		}
	}

	if cmd == ast.CMD_UPDATE || cmd == ast.CMD_DELETE {
		if resultRelation == 0 {
			return nil, mterrors.NewPgError(mterrors.ErrResultRelationInvalid, mterrors.CodeInternalError,
				"%s has no result relation", cmd)
		}
		// UPDATE already has a fresh list from expansion; DELETE must not
		// append into the caller's backing array.
		if cmd == ast.CMD_DELETE {
			result = result.Copy()
		}
		result = appendRowLocator(result, resultRelation)
	}

	p.logger.DebugContext(ctx, "preprocessed target list",
		"command", cmd.String(),
		"result_relation", resultRelation,
		"input_entries", len(tlist),
		"output_entries", len(result))
	return result, nil
}

func checkResultRelation(resultRelation ast.Index, rtable ast.RangeTable) error {
	rte, ok := rtable.Fetch(resultRelation)
	if !ok {
		return mterrors.NewPgError(mterrors.ErrResultRelationInvalid, mterrors.CodeInternalError,
			"result relation %d is not in the range table", resultRelation)
	}
	if rte.RteKind != ast.RTE_RELATION || rte.Subquery != nil || rte.Relid == ast.InvalidOid {
		return mterrors.NewPgError(mterrors.ErrResultRelationInvalid, mterrors.CodeInternalError,
			"subquery cannot be result relation").
			WithDetail("Range table entry %d is of kind %s.", resultRelation, rte.RteKind)
	}
	return nil
}
