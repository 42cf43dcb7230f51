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
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/multigres/multiplan/go/common/ast"
)

// domainInfo describes a registered domain.
type domainInfo struct {
	name        string
	baseType    ast.Oid
	defaultExpr ast.Expression
}

// Builtin is a Coercer over the built-in types plus registered domains.
// It is safe for concurrent use; domains may be replaced while other
// goroutines coerce.
type Builtin struct {
	mu      sync.RWMutex
	domains map[ast.Oid]domainInfo
}

var _ Coercer = (*Builtin)(nil)

// NewBuiltin creates a coercer that knows only the built-in types.
func NewBuiltin() *Builtin {
	return &Builtin{domains: make(map[ast.Oid]domainInfo)}
}

// Domain describes a domain installed with ReplaceDomains.
type Domain struct {
	Oid      ast.Oid
	Name     string
	BaseType ast.Oid
	Default  ast.Expression // coerced to BaseType, nil if none
}

// ReplaceDomains installs domains in place of every domain registered
// before. A base type is a built-in type, an array or another domain of the
// same set. On error the registered domains are left as they were.
func (b *Builtin) ReplaceDomains(domains []Domain) error {
	next := make(map[ast.Oid]domainInfo, len(domains))
	for _, d := range domains {
		if isBuiltinType(d.Oid) {
			return fmt.Errorf("domain %q: OID %d belongs to a built-in type", d.Name, d.Oid)
		}
		if prev, dup := next[d.Oid]; dup {
			return fmt.Errorf("domain %q: OID %d is already used by domain %q", d.Name, d.Oid, prev.name)
		}
		next[d.Oid] = domainInfo{name: d.Name, baseType: d.BaseType, defaultExpr: d.Default}
	}
	for _, d := range domains {
		typ := d.BaseType
		for steps := 0; ; steps++ {
			info, ok := next[typ]
			if !ok {
				break
			}
			if steps == len(next) {
				return fmt.Errorf("domain %q: base type chain is circular", d.Name)
			}
			typ = info.baseType
		}
		if !isBuiltinType(typ) {
			return fmt.Errorf("domain %q: base type %d is not a built-in type or domain", d.Name, d.BaseType)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.domains = next
	return nil
}

func isBuiltinType(typ ast.Oid) bool {
	if _, ok := builtinTypes[typ]; ok {
		return true
	}
	_, isArray := ast.ElementTypeOf(typ)
	return isArray
}

func (b *Builtin) domain(typ ast.Oid) (domainInfo, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.domains[typ]
	return d, ok
}

// BaseType implements Coercer. A domain over a domain resolves to the
// bottom of the chain.
func (b *Builtin) BaseType(typ ast.Oid) ast.Oid {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for {
		d, ok := b.domains[typ]
		if !ok {
			return typ
		}
		typ = d.baseType
	}
}

// TypLenByVal implements Coercer.
func (b *Builtin) TypLenByVal(typ ast.Oid) (int, bool) {
	typ = b.BaseType(typ)
	if info, ok := builtinTypes[typ]; ok {
		return info.typlen, info.byval
	}
	// Arrays and anything unknown are varlena.
	return -1, false
}

// TypeName implements Coercer.
func (b *Builtin) TypeName(typ ast.Oid) string {
	if d, ok := b.domain(typ); ok {
		return d.name
	}
	if info, ok := builtinTypes[typ]; ok {
		return info.sqlName
	}
	if elem, ok := ast.ElementTypeOf(typ); ok {
		return b.TypeName(elem) + "[]"
	}
	return strconv.FormatUint(uint64(typ), 10)
}

// TypeByName implements Coercer. Domains shadow built-in names.
func (b *Builtin) TypeByName(name string) (ast.Oid, bool) {
	b.mu.RLock()
	for oid, d := range b.domains {
		if d.name == name {
			b.mu.RUnlock()
			return oid, true
		}
	}
	b.mu.RUnlock()
	return ast.TypeOidByName(name)
}

// TypeDefault implements Coercer. Built-in types have no type-level default;
// domains may, and a domain without one inherits its base domain's.
func (b *Builtin) TypeDefault(typ ast.Oid, typmod int32) ast.Expression {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for {
		d, ok := b.domains[typ]
		if !ok {
			return nil
		}
		if d.defaultExpr != nil {
			return d.defaultExpr
		}
		typ = d.baseType
	}
}

// CoerceToTarget implements Coercer.
func (b *Builtin) CoerceToTarget(expr ast.Expression, from, to ast.Oid, typmod int32) (ast.Expression, bool) {
	if from == to {
		return b.CoerceTypmod(expr, to, typmod), true
	}
	// Each level of a domain chain gets its own check, innermost first.
	if d, ok := b.domain(to); ok {
		result, ok := b.CoerceToTarget(expr, from, d.baseType, -1)
		if !ok {
			return nil, false
		}
		return b.CoerceTypmod(result, to, typmod), true
	}
	if d, ok := b.domain(from); ok {
		// A domain value is usable wherever its base type is.
		return b.CoerceToTarget(expr, d.baseType, to, typmod)
	}

	result, ok := b.coerceType(expr, from, to)
	if !ok {
		return nil, false
	}
	return b.CoerceTypmod(result, to, typmod), true
}

func (b *Builtin) coerceType(expr ast.Expression, from, to ast.Oid) (ast.Expression, bool) {
	if from == to {
		return expr, true
	}

	if c, ok := expr.(*ast.Const); ok {
		if c.Constisnull {
			typlen, byval := b.TypLenByVal(to)
			return ast.NewNullConst(to, -1, typlen, byval), true
		}
		if from == ast.UNKNOWNOID {
			return b.coerceUnknownLiteral(c, to)
		}
	}

	cast, ok := builtinCasts[castKey{source: from, target: to}]
	if !ok {
		return nil, false
	}
	if cast.funcID == ast.InvalidOid {
		return ast.NewRelabelType(expr, to, -1, ast.COERCE_IMPLICIT_CAST), true
	}
	if c, ok := expr.(*ast.Const); ok {
		if folded, ok := b.foldNumericCast(c, to); ok {
			return folded, true
		}
	}
	return ast.NewFuncExpr(cast.funcID, cast.funcName, to, []ast.Expression{expr}, ast.COERCE_IMPLICIT_CAST), true
}

// coerceUnknownLiteral runs a string literal through the target type's input
// conversion. Literals that do not parse are not coercible.
func (b *Builtin) coerceUnknownLiteral(c *ast.Const, to ast.Oid) (ast.Expression, bool) {
	s, ok := c.Constvalue.(string)
	if !ok {
		return nil, false
	}
	typlen, byval := b.TypLenByVal(to)
	var value ast.Datum
	switch to {
	case ast.INT2OID:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 16)
		if err != nil {
			return nil, false
		}
		value = int16(v)
	case ast.INT4OID:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, false
		}
		value = int32(v)
	case ast.INT8OID:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, false
		}
		value = v
	case ast.FLOAT4OID:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return nil, false
		}
		value = float32(v)
	case ast.FLOAT8OID:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, false
		}
		value = v
	case ast.BOOLOID:
		v, ok := parseBool(s)
		if !ok {
			return nil, false
		}
		value = v
	case ast.NUMERICOID:
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil && !isSpecialNumeric(s) {
			return nil, false
		}
		value = strings.TrimSpace(s)
	default:
		if _, known := builtinTypes[to]; !known {
			if _, isArray := ast.ElementTypeOf(to); !isArray {
				return nil, false
			}
		}
		// Everything else keeps its text form for the executor's input
		// function.
		value = s
	}
	return ast.NewConst(to, -1, typlen, value, false, byval), true
}

// foldNumericCast evaluates a cast between numeric types on a constant.
// Values that would overflow are left to the runtime cast.
func (b *Builtin) foldNumericCast(c *ast.Const, to ast.Oid) (*ast.Const, bool) {
	typlen, byval := b.TypLenByVal(to)
	mk := func(v ast.Datum) (*ast.Const, bool) {
		return ast.NewConst(to, -1, typlen, v, false, byval), true
	}

	switch v := c.Constvalue.(type) {
	case int16, int32, int64:
		i := toInt64(v)
		switch to {
		case ast.INT2OID:
			if i < math.MinInt16 || i > math.MaxInt16 {
				return nil, false
			}
			return mk(int16(i))
		case ast.INT4OID:
			if i < math.MinInt32 || i > math.MaxInt32 {
				return nil, false
			}
			return mk(int32(i))
		case ast.INT8OID:
			return mk(i)
		case ast.FLOAT4OID:
			return mk(float32(i))
		case ast.FLOAT8OID:
			return mk(float64(i))
		case ast.NUMERICOID:
			return mk(strconv.FormatInt(i, 10))
		}
	case float32, float64:
		f := toFloat64(v)
		switch to {
		case ast.FLOAT4OID:
			if math.Abs(f) > math.MaxFloat32 {
				return nil, false
			}
			return mk(float32(f))
		case ast.FLOAT8OID:
			return mk(f)
		case ast.NUMERICOID:
			return mk(strconv.FormatFloat(f, 'f', -1, 64))
		}
	}
	return nil, false
}

// CoerceTypmod implements Coercer.
func (b *Builtin) CoerceTypmod(expr ast.Expression, typ ast.Oid, typmod int32) ast.Expression {
	if d, ok := b.domain(typ); ok {
		if ast.ExprType(expr) == typ {
			return expr
		}
		base := b.CoerceTypmod(expr, d.baseType, typmod)
		return ast.NewCoerceToDomain(base, typ, -1, ast.COERCE_IMPLICIT_CAST)
	}

	if typmod < 0 || ast.ExprTypmod(expr) == typmod {
		return expr
	}
	info, ok := builtinTypes[typ]
	if !ok || info.lenFunc == ast.InvalidOid {
		return expr
	}

	if c, ok := expr.(*ast.Const); ok {
		if folded, ok := foldLengthCoercion(c, typ, typmod); ok {
			return folded
		}
	}

	args := []ast.Expression{expr, ast.NewConst(ast.INT4OID, -1, 4, typmod, false, true)}
	if info.lenExplicit {
		args = append(args, ast.NewConst(ast.BOOLOID, -1, 1, false, false, true))
	}
	return ast.NewFuncExpr(info.lenFunc, info.lenFuncName, typ, args, ast.COERCE_IMPLICIT_CAST)
}

// foldLengthCoercion applies a typmod to a constant when the result is known
// without running the length function: NULLs, varchar values that fit and
// char values that only need blank padding.
func foldLengthCoercion(c *ast.Const, typ ast.Oid, typmod int32) (*ast.Const, bool) {
	cp := *c
	cp.Consttypmod = typmod
	if c.Constisnull {
		return &cp, true
	}
	s, ok := c.Constvalue.(string)
	if !ok {
		return nil, false
	}
	maxLen := int(typmod) - 4
	n := utf8.RuneCountInString(s)
	switch typ {
	case ast.VARCHAROID:
		if n > maxLen {
			return nil, false
		}
		return &cp, true
	case ast.BPCHAROID:
		if n > maxLen {
			return nil, false
		}
		cp.Constvalue = s + strings.Repeat(" ", maxLen-n)
		return &cp, true
	}
	return nil, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "y", "yes", "on", "1":
		return true, true
	case "f", "false", "n", "no", "off", "0":
		return false, true
	}
	return false, false
}

func isSpecialNumeric(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nan", "infinity", "-infinity", "+infinity":
		return true
	}
	return false
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	}
	return 0
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return 0
}
