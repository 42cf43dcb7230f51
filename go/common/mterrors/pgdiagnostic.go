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

// Package mterrors defines the error types returned by the planner. Planner
// failures are reported as PostgreSQL diagnostics carrying a SQLSTATE code,
// and each one wraps a sentinel kind so callers can branch with errors.Is.
package mterrors

import (
	"errors"
	"fmt"
	"strings"
)

// PgDiagnostic represents a PostgreSQL diagnostic message (error or notice).
// PostgreSQL uses the same wire format for both ErrorResponse ('E') and NoticeResponse ('N'),
// differentiated by the MessageType field.
type PgDiagnostic struct {
	// MessageType is the PostgreSQL protocol message type byte.
	// 'E' (0x45 = 69) for ErrorResponse, 'N' (0x4E = 78) for NoticeResponse.
	MessageType byte
	Severity    string
	Code        string
	Message     string
	Detail      string
	Hint        string
	Where       string
	Schema      string
	Table       string
	Column      string
	DataType    string

	// kind is the sentinel this diagnostic reports, exposed through Unwrap.
	kind error
}

// NewPgError builds an ERROR diagnostic of the given kind and SQLSTATE code.
func NewPgError(kind error, code string, format string, args ...any) *PgDiagnostic {
	msg := format
	if len(args) != 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &PgDiagnostic{
		MessageType: 'E',
		Severity:    "ERROR",
		Code:        code,
		Message:     msg,
		kind:        kind,
	}
}

// WithDetail sets the DETAIL field and returns the diagnostic.
func (d *PgDiagnostic) WithDetail(format string, args ...any) *PgDiagnostic {
	d.Detail = fmt.Sprintf(format, args...)
	return d
}

// WithHint sets the HINT field and returns the diagnostic.
func (d *PgDiagnostic) WithHint(hint string) *PgDiagnostic {
	d.Hint = hint
	return d
}

// WithTable sets the TABLE field and returns the diagnostic.
func (d *PgDiagnostic) WithTable(table string) *PgDiagnostic {
	d.Table = table
	return d
}

// WithColumn sets the COLUMN field and returns the diagnostic.
func (d *PgDiagnostic) WithColumn(column string) *PgDiagnostic {
	d.Column = column
	return d
}

// WithDataType sets the DATATYPE field and returns the diagnostic.
func (d *PgDiagnostic) WithDataType(dataType string) *PgDiagnostic {
	d.DataType = dataType
	return d
}

// SQLSTATE returns the PostgreSQL SQLSTATE error code.
// This is an alias for the Code field, provided for clarity.
//
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
func (d *PgDiagnostic) SQLSTATE() string {
	return d.Code
}

// SQLSTATEClass returns the first 2 characters of the SQLSTATE code,
// which identifies the error class.
//
// Common classes:
//   - "22" = Data exception
//   - "42" = Syntax error or access rule violation
//   - "XX" = Internal error
//
// Returns empty string if Code is empty or less than 2 characters.
func (d *PgDiagnostic) SQLSTATEClass() string {
	if len(d.Code) < 2 {
		return ""
	}
	return d.Code[:2]
}

// IsClass returns true if the SQLSTATE code belongs to the specified class.
func (d *PgDiagnostic) IsClass(class string) bool {
	return d.SQLSTATEClass() == class
}

// Error implements the error interface.
// Returns PostgreSQL-native format: "SEVERITY: message".
// Use [PgDiagnostic.FullError] to include the SQLSTATE code for debugging.
func (d *PgDiagnostic) Error() string {
	if d == nil {
		return "ERROR: unknown error"
	}
	return d.Severity + ": " + d.Message
}

// FullError returns the error with SQLSTATE code and any detail or hint.
// Format: "SEVERITY: message (SQLSTATE code)"
func (d *PgDiagnostic) FullError() string {
	if d == nil {
		return "ERROR: unknown error (SQLSTATE 00000)"
	}
	var sb strings.Builder
	sb.WriteString(d.Severity + ": " + d.Message + " (SQLSTATE " + d.Code + ")")
	if d.Detail != "" {
		sb.WriteString("\nDETAIL: " + d.Detail)
	}
	if d.Hint != "" {
		sb.WriteString("\nHINT: " + d.Hint)
	}
	return sb.String()
}

// Unwrap returns the sentinel kind of the diagnostic.
func (d *PgDiagnostic) Unwrap() error {
	return d.kind
}

// AsPgDiagnostic extracts a PgDiagnostic from err's chain.
func AsPgDiagnostic(err error) (*PgDiagnostic, bool) {
	var diag *PgDiagnostic
	if errors.As(err, &diag) {
		return diag, true
	}
	return nil, false
}
