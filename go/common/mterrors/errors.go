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

package mterrors

import (
	"errors"
)

// SQLSTATE codes raised by the planner.
const (
	CodeInvalidParameterValue = "22023"
	CodeSyntaxError           = "42601"
	CodeDatatypeMismatch      = "42804"
	CodeUndefinedFunction     = "42883"
	CodeUndefinedTable        = "42P01"
	CodeUndefinedColumn       = "42703"
	CodeUndefinedObject       = "42704"
	CodeCannotCoerce          = "42846"
	CodeFeatureNotSupported   = "0A000"
	CodeInternalError         = "XX000"
)

// Planner error kinds. Every diagnostic returned by the target-list
// preprocessor unwraps to exactly one of these.
var (
	// ErrResultRelationInvalid reports a result relation that is not a plain
	// base table. It means the parser or rewriter produced a bad query.
	ErrResultRelationInvalid = errors.New("result relation is not a base relation")

	// ErrMultipleAssignment reports two assignments to the same column that
	// cannot be merged into one array update.
	ErrMultipleAssignment = errors.New("multiple assignments to same column")

	// ErrUnexpectedJunkAssignment reports a non-junk target entry that names
	// no column of the result relation.
	ErrUnexpectedJunkAssignment = errors.New("unexpected assignment to attribute")

	// ErrDefaultTypeMismatch reports a stored column default that cannot be
	// coerced to the column type.
	ErrDefaultTypeMismatch = errors.New("default expression type mismatch")

	// ErrUnsupportedCommand reports target-list expansion for a command other
	// than INSERT or UPDATE.
	ErrUnsupportedCommand = errors.New("unsupported command type")

	// ErrUnknownRelation reports a relation OID the catalog does not hold.
	ErrUnknownRelation = errors.New("relation does not exist")

	// ErrInvalidDefault reports stored default text that cannot be parsed.
	ErrInvalidDefault = errors.New("invalid default expression")

	// ErrInvalidStatement reports a statement description that cannot be
	// turned into a query against the loaded catalog.
	ErrInvalidStatement = errors.New("invalid statement")
)
