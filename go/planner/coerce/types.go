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

package coerce

import (
	"github.com/multigres/multiplan/go/common/ast"
)

// typeInfo is the subset of pg_type the coercer needs.
type typeInfo struct {
	sqlName string // format_type_be spelling
	typlen  int
	byval   bool

	// Length-coercion function, applied when a typmod is imposed.
	lenFunc     ast.Oid
	lenFuncName string
	lenExplicit bool // takes a third "is explicit" bool argument
}

var builtinTypes = map[ast.Oid]typeInfo{
	ast.BOOLOID:        {sqlName: "boolean", typlen: 1, byval: true},
	ast.BYTEAOID:       {sqlName: "bytea", typlen: -1},
	ast.CHAROID:        {sqlName: `"char"`, typlen: 1, byval: true},
	ast.NAMEOID:        {sqlName: "name", typlen: 64},
	ast.INT8OID:        {sqlName: "bigint", typlen: 8, byval: true},
	ast.INT2OID:        {sqlName: "smallint", typlen: 2, byval: true},
	ast.INT4OID:        {sqlName: "integer", typlen: 4, byval: true},
	ast.TEXTOID:        {sqlName: "text", typlen: -1},
	ast.OIDOID:         {sqlName: "oid", typlen: 4, byval: true},
	ast.TIDOID:         {sqlName: "tid", typlen: 6},
	ast.JSONOID:        {sqlName: "json", typlen: -1},
	ast.FLOAT4OID:      {sqlName: "real", typlen: 4, byval: true},
	ast.FLOAT8OID:      {sqlName: "double precision", typlen: 8, byval: true},
	ast.UNKNOWNOID:     {sqlName: "unknown", typlen: -2},
	ast.BPCHAROID:      {sqlName: "character", typlen: -1, lenFunc: 668, lenFuncName: "bpchar", lenExplicit: true},
	ast.VARCHAROID:     {sqlName: "character varying", typlen: -1, lenFunc: 669, lenFuncName: "varchar", lenExplicit: true},
	ast.DATEOID:        {sqlName: "date", typlen: 4, byval: true},
	ast.TIMEOID:        {sqlName: "time without time zone", typlen: 8, byval: true, lenFunc: 1968, lenFuncName: "time"},
	ast.TIMESTAMPOID:   {sqlName: "timestamp without time zone", typlen: 8, byval: true, lenFunc: 1961, lenFuncName: "timestamp"},
	ast.TIMESTAMPTZOID: {sqlName: "timestamp with time zone", typlen: 8, byval: true, lenFunc: 1967, lenFuncName: "timestamptz"},
	ast.INTERVALOID:    {sqlName: "interval", typlen: 16, lenFunc: 1200, lenFuncName: "interval"},
	ast.TIMETZOID:      {sqlName: "time with time zone", typlen: 12, lenFunc: 1969, lenFuncName: "timetz"},
	ast.BITOID:         {sqlName: "bit", typlen: -1, lenFunc: 1685, lenFuncName: "bit", lenExplicit: true},
	ast.VARBITOID:      {sqlName: "bit varying", typlen: -1, lenFunc: 1687, lenFuncName: "varbit", lenExplicit: true},
	ast.NUMERICOID:     {sqlName: "numeric", typlen: -1, lenFunc: 1703, lenFuncName: "numeric"},
	ast.REGCLASSOID:    {sqlName: "regclass", typlen: 4, byval: true},
	ast.UUIDOID:        {sqlName: "uuid", typlen: 16},
	ast.JSONBOID:       {sqlName: "jsonb", typlen: -1},
}

// castContext mirrors pg_cast.castcontext.
type castContext byte

const (
	castImplicit   castContext = 'i'
	castAssignment castContext = 'a'
)

// castInfo is a pg_cast row. A zero funcID marks a binary-coercible pair.
type castInfo struct {
	funcID   ast.Oid
	funcName string
	context  castContext
}

type castKey struct {
	source, target ast.Oid
}

// builtinCasts is the part of pg_cast between the built-in types above.
var builtinCasts = map[castKey]castInfo{
	// integer widening and narrowing
	{ast.INT2OID, ast.INT4OID}: {313, "int4", castImplicit},
	{ast.INT2OID, ast.INT8OID}: {754, "int8", castImplicit},
	{ast.INT4OID, ast.INT8OID}: {481, "int8", castImplicit},
	{ast.INT4OID, ast.INT2OID}: {314, "int2", castAssignment},
	{ast.INT8OID, ast.INT4OID}: {480, "int4", castAssignment},
	{ast.INT8OID, ast.INT2OID}: {714, "int2", castAssignment},

	// integer to floating point and numeric
	{ast.INT2OID, ast.FLOAT4OID}:  {236, "float4", castImplicit},
	{ast.INT4OID, ast.FLOAT4OID}:  {318, "float4", castImplicit},
	{ast.INT8OID, ast.FLOAT4OID}:  {652, "float4", castImplicit},
	{ast.INT2OID, ast.FLOAT8OID}:  {235, "float8", castImplicit},
	{ast.INT4OID, ast.FLOAT8OID}:  {316, "float8", castImplicit},
	{ast.INT8OID, ast.FLOAT8OID}:  {482, "float8", castImplicit},
	{ast.INT2OID, ast.NUMERICOID}: {1782, "numeric", castImplicit},
	{ast.INT4OID, ast.NUMERICOID}: {1740, "numeric", castImplicit},
	{ast.INT8OID, ast.NUMERICOID}: {1781, "numeric", castImplicit},

	// floating point
	{ast.FLOAT4OID, ast.FLOAT8OID}:  {311, "float8", castImplicit},
	{ast.FLOAT8OID, ast.FLOAT4OID}:  {312, "float4", castAssignment},
	{ast.FLOAT4OID, ast.INT2OID}:    {238, "int2", castAssignment},
	{ast.FLOAT4OID, ast.INT4OID}:    {319, "int4", castAssignment},
	{ast.FLOAT4OID, ast.INT8OID}:    {653, "int8", castAssignment},
	{ast.FLOAT8OID, ast.INT2OID}:    {237, "int2", castAssignment},
	{ast.FLOAT8OID, ast.INT4OID}:    {317, "int4", castAssignment},
	{ast.FLOAT8OID, ast.INT8OID}:    {483, "int8", castAssignment},
	{ast.FLOAT4OID, ast.NUMERICOID}: {1742, "numeric", castAssignment},
	{ast.FLOAT8OID, ast.NUMERICOID}: {1743, "numeric", castAssignment},

	// numeric
	{ast.NUMERICOID, ast.INT2OID}:   {1783, "int2", castAssignment},
	{ast.NUMERICOID, ast.INT4OID}:   {1744, "int4", castAssignment},
	{ast.NUMERICOID, ast.INT8OID}:   {1779, "int8", castAssignment},
	{ast.NUMERICOID, ast.FLOAT4OID}: {1745, "float4", castImplicit},
	{ast.NUMERICOID, ast.FLOAT8OID}: {1746, "float8", castImplicit},

	// date and time
	{ast.DATEOID, ast.TIMESTAMPOID}:        {2024, "timestamp", castImplicit},
	{ast.DATEOID, ast.TIMESTAMPTZOID}:      {1174, "timestamptz", castImplicit},
	{ast.TIMESTAMPOID, ast.TIMESTAMPTZOID}: {2028, "timestamptz", castImplicit},
	{ast.TIMESTAMPTZOID, ast.TIMESTAMPOID}: {2027, "timestamp", castAssignment},
	{ast.TIMESTAMPOID, ast.DATEOID}:        {2029, "date", castAssignment},
	{ast.TIMESTAMPTZOID, ast.DATEOID}:      {1178, "date", castAssignment},

	// character strings
	{ast.TEXTOID, ast.VARCHAROID}:   {0, "", castImplicit},
	{ast.VARCHAROID, ast.TEXTOID}:   {0, "", castImplicit},
	{ast.TEXTOID, ast.BPCHAROID}:    {0, "", castImplicit},
	{ast.VARCHAROID, ast.BPCHAROID}: {0, "", castImplicit},
	{ast.BPCHAROID, ast.TEXTOID}:    {401, "text", castImplicit},
	{ast.BPCHAROID, ast.VARCHAROID}: {401, "text", castImplicit},
	{ast.NAMEOID, ast.TEXTOID}:      {406, "text", castImplicit},
	{ast.TEXTOID, ast.NAMEOID}:      {407, "name", castImplicit},

	// object identifiers
	{ast.INT4OID, ast.OIDOID}:      {0, "", castImplicit},
	{ast.OIDOID, ast.INT4OID}:      {0, "", castAssignment},
	{ast.INT8OID, ast.OIDOID}:      {1287, "oid", castImplicit},
	{ast.TEXTOID, ast.REGCLASSOID}: {1079, "regclass", castImplicit},
	{ast.OIDOID, ast.REGCLASSOID}:  {0, "", castImplicit},
	{ast.REGCLASSOID, ast.OIDOID}:  {0, "", castImplicit},
}
