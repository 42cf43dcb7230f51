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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	colVar := func() *Var { return NewVar(1, 3, INT4ARRAYOID, -1) }
	int4 := func(v int32) *Const { return NewConst(INT4OID, -1, 4, v, false, true) }

	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{
			name: "both nil",
			want: true,
		},
		{
			name: "nil and var",
			a:    colVar(),
			want: false,
		},
		{
			name: "typed nil and nil",
			a:    (*Var)(nil),
			want: true,
		},
		{
			name: "distinct but identical vars",
			a:    colVar(),
			b:    colVar(),
			want: true,
		},
		{
			name: "vars of different attributes",
			a:    NewVar(1, 3, INT4OID, -1),
			b:    NewVar(1, 4, INT4OID, -1),
			want: false,
		},
		{
			name: "var and const",
			a:    colVar(),
			b:    int4(3),
			want: false,
		},
		{
			name: "constants with same value",
			a:    int4(5),
			b:    int4(5),
			want: true,
		},
		{
			name: "constants with different values",
			a:    int4(5),
			b:    int4(6),
			want: false,
		},
		{
			name: "null constants ignore value",
			a:    NewConst(INT4OID, -1, 4, int32(1), true, true),
			b:    NewNullConst(INT4OID, -1, 4, true),
			want: true,
		},
		{
			name: "null and non-null constants",
			a:    NewNullConst(INT4OID, -1, 4, true),
			b:    int4(0),
			want: false,
		},
		{
			name: "nested array assignments",
			a:    NewArrayAssignment(INT4ARRAYOID, INT4OID, NewArrayAssignment(INT4ARRAYOID, INT4OID, colVar(), int4(1), int4(10)), int4(3), int4(30)),
			b:    NewArrayAssignment(INT4ARRAYOID, INT4OID, NewArrayAssignment(INT4ARRAYOID, INT4OID, colVar(), int4(1), int4(10)), int4(3), int4(30)),
			want: true,
		},
		{
			name: "array assignments differing in inner subscript",
			a:    NewArrayAssignment(INT4ARRAYOID, INT4OID, NewArrayAssignment(INT4ARRAYOID, INT4OID, colVar(), int4(1), int4(10)), int4(3), int4(30)),
			b:    NewArrayAssignment(INT4ARRAYOID, INT4OID, NewArrayAssignment(INT4ARRAYOID, INT4OID, colVar(), int4(2), int4(10)), int4(3), int4(30)),
			want: false,
		},
		{
			name: "fetch and assignment",
			a:    NewArraySubscript(INT4ARRAYOID, INT4OID, colVar(), int4(1)),
			b:    NewArrayAssignment(INT4ARRAYOID, INT4OID, colVar(), int4(1), int4(10)),
			want: false,
		},
		{
			name: "function calls with equal args",
			a:    NewFuncExpr(481, "int8", INT8OID, []Expression{colVar()}, COERCE_IMPLICIT_CAST),
			b:    NewFuncExpr(481, "int8", INT8OID, []Expression{colVar()}, COERCE_EXPLICIT_CALL),
			want: true,
		},
		{
			name: "relabel over different args",
			a:    NewRelabelType(NewVar(1, 1, VARCHAROID, -1), TEXTOID, -1, COERCE_IMPLICIT_CAST),
			b:    NewRelabelType(NewVar(1, 2, VARCHAROID, -1), TEXTOID, -1, COERCE_IMPLICIT_CAST),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a), "Equal must be symmetric")
		})
	}
}

func TestEqualIgnoresLocation(t *testing.T) {
	a := NewVar(1, 1, INT4OID, -1)
	b := NewVar(1, 1, INT4OID, -1)
	b.SetLocation(42)
	assert.True(t, Equal(a, b))
}

func TestEqualTargetLists(t *testing.T) {
	a := TargetList{
		NewTargetEntry(NewVar(1, 1, INT4OID, -1), 1, "id"),
		NewJunkTargetEntry(NewVar(1, SelfItemPointerAttributeNumber, TIDOID, -1), 2, "ctid"),
	}
	b := a.Copy()
	require.True(t, EqualTargetLists(a, b))

	b[1] = b[1].WithResno(3)
	assert.False(t, EqualTargetLists(a, b))
	assert.False(t, EqualTargetLists(a, a[:1]))
}
