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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigres/multiplan/go/common/ast"
)

func TestTypmodIn(t *testing.T) {
	tests := []struct {
		name    string
		typ     ast.Oid
		mods    []int32
		want    int32
		wantErr string
	}{
		{name: "no modifiers", typ: ast.INT4OID, want: -1},
		{name: "varchar length", typ: ast.VARCHAROID, mods: []int32{20}, want: 24},
		{name: "char length", typ: ast.BPCHAROID, mods: []int32{1}, want: 5},
		{name: "zero length char", typ: ast.BPCHAROID, mods: []int32{0}, wantErr: "must be at least 1"},
		{name: "bit length", typ: ast.BITOID, mods: []int32{8}, want: 8},
		{name: "numeric precision only", typ: ast.NUMERICOID, mods: []int32{10}, want: (10 << 16) + 4},
		{name: "numeric precision and scale", typ: ast.NUMERICOID, mods: []int32{10, 2}, want: ((10 << 16) | 2) + 4},
		{name: "numeric scale above precision", typ: ast.NUMERICOID, mods: []int32{2, 3}, wantErr: "scale 3"},
		{name: "timestamp precision", typ: ast.TIMESTAMPTZOID, mods: []int32{3}, want: 3},
		{name: "timestamp precision clamped", typ: ast.TIMESTAMPOID, mods: []int32{9}, want: 6},
		{name: "modifier on integer", typ: ast.INT4OID, mods: []int32{4}, wantErr: "not allowed"},
		{name: "two modifiers on varchar", typ: ast.VARCHAROID, mods: []int32{4, 1}, wantErr: "invalid type modifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TypmodIn(tt.typ, tt.mods)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
