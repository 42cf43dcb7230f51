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
	"fmt"

	"github.com/multigres/multiplan/go/common/ast"
)

// VARHDRSZ is the varlena header size folded into character typmods.
const VARHDRSZ = 4

const (
	maxCharLength        = 10 * 1024 * 1024
	maxNumericPrecision  = 1000
	maxDatetimePrecision = 6
)

// TypmodIn converts the modifiers written after a type name, as in
// varchar(20) or numeric(10,2), into the stored type modifier. An empty
// mods list yields -1.
func TypmodIn(typ ast.Oid, mods []int32) (int32, error) {
	if len(mods) == 0 {
		return -1, nil
	}
	name := ast.TypeNameByOid(typ)
	switch typ {
	case ast.BPCHAROID, ast.VARCHAROID:
		if len(mods) != 1 {
			return 0, fmt.Errorf("invalid type modifier for type %s", name)
		}
		if mods[0] < 1 {
			return 0, fmt.Errorf("length for type %s must be at least 1", name)
		}
		if mods[0] > maxCharLength {
			return 0, fmt.Errorf("length for type %s cannot exceed %d", name, maxCharLength)
		}
		return mods[0] + VARHDRSZ, nil

	case ast.BITOID, ast.VARBITOID:
		if len(mods) != 1 {
			return 0, fmt.Errorf("invalid type modifier for type %s", name)
		}
		if mods[0] < 1 {
			return 0, fmt.Errorf("length for type %s must be at least 1", name)
		}
		return mods[0], nil

	case ast.NUMERICOID:
		if len(mods) > 2 {
			return 0, fmt.Errorf("invalid NUMERIC type modifier")
		}
		precision := mods[0]
		var scale int32
		if len(mods) == 2 {
			scale = mods[1]
		}
		if precision < 1 || precision > maxNumericPrecision {
			return 0, fmt.Errorf("NUMERIC precision %d must be between 1 and %d", precision, maxNumericPrecision)
		}
		if scale < 0 || scale > precision {
			return 0, fmt.Errorf("NUMERIC scale %d must be between 0 and precision %d", scale, precision)
		}
		return ((precision << 16) | scale) + VARHDRSZ, nil

	case ast.TIMEOID, ast.TIMETZOID, ast.TIMESTAMPOID, ast.TIMESTAMPTZOID, ast.INTERVALOID:
		if len(mods) != 1 {
			return 0, fmt.Errorf("invalid type modifier for type %s", name)
		}
		if mods[0] < 0 {
			return 0, fmt.Errorf("precision for type %s must not be negative", name)
		}
		// Larger precisions are reduced to the maximum, as the server does
		// with a warning.
		return min(mods[0], maxDatetimePrecision), nil
	}
	return 0, fmt.Errorf("type modifier is not allowed for type %q", name)
}
