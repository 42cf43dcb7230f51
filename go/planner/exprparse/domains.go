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

package exprparse

import (
	"fmt"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/coerce"
)

// RegisterDomains installs catalog domains into b, replacing any registered
// before. Domains may be listed in any order and may be based on one
// another. Defaults are parsed once every domain name is known, so a default
// may cast to another domain. Nothing is installed unless every domain and
// default is valid.
func RegisterDomains(b *coerce.Builtin, domains []catalog.Domain) error {
	defs := make([]coerce.Domain, len(domains))
	for i, d := range domains {
		defs[i] = coerce.Domain{Oid: d.Oid, Name: d.Name, BaseType: d.BaseType}
	}

	// Defaults are resolved against a staging coercer so that a bad one
	// leaves b untouched.
	staging := coerce.NewBuiltin()
	if err := staging.ReplaceDomains(defs); err != nil {
		return err
	}
	p := New(staging)
	for i, d := range domains {
		if d.Default == "" {
			continue
		}
		expr, err := p.ParseDefault(d.Default)
		if err != nil {
			return fmt.Errorf("domain %q default: %w", d.Name, err)
		}
		coerced, ok := staging.CoerceToTarget(expr, ast.ExprType(expr), d.BaseType, -1)
		if !ok {
			return fmt.Errorf("domain %q default is of type %s, not %s",
				d.Name, staging.TypeName(ast.ExprType(expr)), staging.TypeName(d.BaseType))
		}
		defs[i].Default = coerced
	}
	return b.ReplaceDomains(defs)
}
