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

// PostgreSQL type OIDs used by the target-list preprocessor.
// Ported from postgres/src/include/catalog/pg_type_d.h.

const InvalidOid = Oid(0)

const (
	BOOLOID        Oid = 16
	BYTEAOID       Oid = 17
	CHAROID        Oid = 18
	NAMEOID        Oid = 19
	INT8OID        Oid = 20
	INT2OID        Oid = 21
	INT4OID        Oid = 23
	TEXTOID        Oid = 25
	OIDOID         Oid = 26
	TIDOID         Oid = 27 // physical row locator
	JSONOID        Oid = 114
	FLOAT4OID      Oid = 700
	FLOAT8OID      Oid = 701
	UNKNOWNOID     Oid = 705 // untyped string literal
	BPCHAROID      Oid = 1042
	VARCHAROID     Oid = 1043
	DATEOID        Oid = 1082
	TIMEOID        Oid = 1083
	TIMESTAMPOID   Oid = 1114
	TIMESTAMPTZOID Oid = 1184
	INTERVALOID    Oid = 1186
	TIMETZOID      Oid = 1266
	BITOID         Oid = 1560
	VARBITOID      Oid = 1562
	NUMERICOID     Oid = 1700
	REGCLASSOID    Oid = 2205
	UUIDOID        Oid = 2950
	JSONBOID       Oid = 3802
)

// Array types.
const (
	BOOLARRAYOID        Oid = 1000
	INT2ARRAYOID        Oid = 1005
	INT4ARRAYOID        Oid = 1007
	TEXTARRAYOID        Oid = 1009
	BPCHARARRAYOID      Oid = 1014
	VARCHARARRAYOID     Oid = 1015
	INT8ARRAYOID        Oid = 1016
	FLOAT4ARRAYOID      Oid = 1021
	FLOAT8ARRAYOID      Oid = 1022
	TIMESTAMPARRAYOID   Oid = 1115
	DATEARRAYOID        Oid = 1182
	TIMESTAMPTZARRAYOID Oid = 1185
	NUMERICARRAYOID     Oid = 1231
	UUIDARRAYOID        Oid = 2951
	JSONBARRAYOID       Oid = 3807
)

// SelfItemPointerAttributeNumber is the attribute number of the ctid system
// column. Ported from postgres/src/include/access/sysattr.h.
const SelfItemPointerAttributeNumber AttrNumber = -1

// typeNames maps the canonical pg_type name of each built-in type to its OID.
var typeNames = map[string]Oid{
	"bool":         BOOLOID,
	"bytea":        BYTEAOID,
	"char":         CHAROID,
	"name":         NAMEOID,
	"int8":         INT8OID,
	"int2":         INT2OID,
	"int4":         INT4OID,
	"text":         TEXTOID,
	"oid":          OIDOID,
	"tid":          TIDOID,
	"json":         JSONOID,
	"float4":       FLOAT4OID,
	"float8":       FLOAT8OID,
	"unknown":      UNKNOWNOID,
	"bpchar":       BPCHAROID,
	"varchar":      VARCHAROID,
	"date":         DATEOID,
	"time":         TIMEOID,
	"timestamp":    TIMESTAMPOID,
	"timestamptz":  TIMESTAMPTZOID,
	"interval":     INTERVALOID,
	"timetz":       TIMETZOID,
	"bit":          BITOID,
	"varbit":       VARBITOID,
	"numeric":      NUMERICOID,
	"regclass":     REGCLASSOID,
	"uuid":         UUIDOID,
	"jsonb":        JSONBOID,
	"_bool":        BOOLARRAYOID,
	"_int2":        INT2ARRAYOID,
	"_int4":        INT4ARRAYOID,
	"_text":        TEXTARRAYOID,
	"_bpchar":      BPCHARARRAYOID,
	"_varchar":     VARCHARARRAYOID,
	"_int8":        INT8ARRAYOID,
	"_float4":      FLOAT4ARRAYOID,
	"_float8":      FLOAT8ARRAYOID,
	"_timestamp":   TIMESTAMPARRAYOID,
	"_date":        DATEARRAYOID,
	"_timestamptz": TIMESTAMPTZARRAYOID,
	"_numeric":     NUMERICARRAYOID,
	"_uuid":        UUIDARRAYOID,
	"_jsonb":       JSONBARRAYOID,
}

// typeAliases maps SQL-standard spellings to canonical pg_type names, the
// same rewrites gram.y applies through SystemTypeName.
var typeAliases = map[string]string{
	"boolean":                     "bool",
	"smallint":                    "int2",
	"integer":                     "int4",
	"int":                         "int4",
	"bigint":                      "int8",
	"real":                        "float4",
	"double precision":            "float8",
	"float":                       "float8",
	"decimal":                     "numeric",
	"character":                   "bpchar",
	"character varying":           "varchar",
	"timestamp without time zone": "timestamp",
	"timestamp with time zone":    "timestamptz",
	"time without time zone":      "time",
	"time with time zone":         "timetz",
	"bit varying":                 "varbit",
}

// elementTypes maps array types to their element type.
var elementTypes = map[Oid]Oid{
	BOOLARRAYOID:        BOOLOID,
	INT2ARRAYOID:        INT2OID,
	INT4ARRAYOID:        INT4OID,
	TEXTARRAYOID:        TEXTOID,
	BPCHARARRAYOID:      BPCHAROID,
	VARCHARARRAYOID:     VARCHAROID,
	INT8ARRAYOID:        INT8OID,
	FLOAT4ARRAYOID:      FLOAT4OID,
	FLOAT8ARRAYOID:      FLOAT8OID,
	TIMESTAMPARRAYOID:   TIMESTAMPOID,
	DATEARRAYOID:        DATEOID,
	TIMESTAMPTZARRAYOID: TIMESTAMPTZOID,
	NUMERICARRAYOID:     NUMERICOID,
	UUIDARRAYOID:        UUIDOID,
	JSONBARRAYOID:       JSONBOID,
}

// TypeOidByName resolves a built-in type name, either the pg_type spelling
// ("int4", "_text") or its SQL alias ("integer", "text[]"), to its OID.
func TypeOidByName(name string) (Oid, bool) {
	if len(name) > 2 && name[len(name)-2:] == "[]" {
		elem, ok := TypeOidByName(name[:len(name)-2])
		if !ok {
			return InvalidOid, false
		}
		return ArrayTypeOf(elem)
	}
	if canonical, ok := typeAliases[name]; ok {
		name = canonical
	}
	oid, ok := typeNames[name]
	return oid, ok
}

// TypeNameByOid returns the pg_type name of a built-in type, or "" if the
// type is not known.
func TypeNameByOid(oid Oid) string {
	for name, o := range typeNames {
		if o == oid {
			return name
		}
	}
	return ""
}

// ElementTypeOf returns the element type of a built-in array type.
func ElementTypeOf(arrayType Oid) (Oid, bool) {
	elem, ok := elementTypes[arrayType]
	return elem, ok
}

// ArrayTypeOf returns the array type whose elements are elemType.
func ArrayTypeOf(elemType Oid) (Oid, bool) {
	for arr, elem := range elementTypes {
		if elem == elemType {
			return arr, true
		}
	}
	return InvalidOid, false
}
