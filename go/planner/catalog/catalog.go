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

// Package catalog supplies relation schemas to the planner. A Catalog holds
// the attribute descriptors and stored column defaults of each relation and
// hands them out under a shared read lock, so a schema cannot change while a
// target list is being expanded against it.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
)

// FirstNormalObjectId is the first OID handed out to user objects.
const FirstNormalObjectId ast.Oid = 16384

// Attribute describes one physical column of a relation, the subset of
// pg_attribute the planner reads.
type Attribute struct {
	Attnum    ast.AttrNumber
	Name      string
	TypeID    ast.Oid
	Typmod    int32
	IsDropped bool
	// IsSet marks a set-valued attribute. Sets are stored as an OID handle
	// whatever their element type.
	IsSet bool
}

// AttrDefault is a stored column default, the subset of pg_attrdef the
// planner reads. Expr holds the expression in SQL text form.
type AttrDefault struct {
	Adnum ast.AttrNumber
	Expr  string
}

// RelationSchema is the ordered attribute list of a relation plus its column
// defaults. Attrs is in physical order: Attrs[i].Attnum == i+1.
type RelationSchema struct {
	Relid     ast.Oid
	Namespace string
	Name      string
	Attrs     []Attribute
	Defaults  []AttrDefault
}

// NumAttrs returns the number of physical attributes, dropped ones included.
func (rs *RelationSchema) NumAttrs() int {
	return len(rs.Attrs)
}

// Attr returns the descriptor of attribute attno (1-based).
func (rs *RelationSchema) Attr(attno ast.AttrNumber) (*Attribute, bool) {
	if attno < 1 || int(attno) > len(rs.Attrs) {
		return nil, false
	}
	return &rs.Attrs[attno-1], true
}

// Default returns the stored default expression text of attribute attno.
func (rs *RelationSchema) Default(attno ast.AttrNumber) (string, bool) {
	for _, def := range rs.Defaults {
		if def.Adnum == attno {
			return def.Expr, true
		}
	}
	return "", false
}

// QualifiedName returns namespace.name, or just the name without namespace.
func (rs *RelationSchema) QualifiedName() string {
	if rs.Namespace == "" {
		return rs.Name
	}
	return rs.Namespace + "." + rs.Name
}

// Validate checks that attribute numbers are dense and in physical order,
// that live column names are unique and that defaults refer to existing
// attributes.
func (rs *RelationSchema) Validate() error {
	if rs.Relid == ast.InvalidOid {
		return fmt.Errorf("relation %q has no OID", rs.Name)
	}
	seen := make(map[string]bool, len(rs.Attrs))
	for i, att := range rs.Attrs {
		if int(att.Attnum) != i+1 {
			return fmt.Errorf("relation %q: attribute %q has number %d, expected %d", rs.Name, att.Name, att.Attnum, i+1)
		}
		if att.IsDropped {
			continue
		}
		if att.Name == "" {
			return fmt.Errorf("relation %q: attribute %d has no name", rs.Name, att.Attnum)
		}
		if seen[att.Name] {
			return fmt.Errorf("relation %q: duplicate column name %q", rs.Name, att.Name)
		}
		seen[att.Name] = true
	}
	for _, def := range rs.Defaults {
		att, ok := rs.Attr(def.Adnum)
		if !ok {
			return fmt.Errorf("relation %q: default for nonexistent attribute %d", rs.Name, def.Adnum)
		}
		if att.IsDropped {
			return fmt.Errorf("relation %q: default for dropped attribute %d", rs.Name, def.Adnum)
		}
	}
	return nil
}

// clone returns a deep copy so the catalog never shares slices with callers.
func (rs *RelationSchema) clone() *RelationSchema {
	cp := *rs
	cp.Attrs = append([]Attribute(nil), rs.Attrs...)
	cp.Defaults = append([]AttrDefault(nil), rs.Defaults...)
	return &cp
}

// Accessor opens relations for reading. The returned Relation must be closed
// on every path; closing releases whatever lock Open acquired.
type Accessor interface {
	Open(ctx context.Context, relid ast.Oid) (*Relation, error)
}

// Relation is an open, read-locked relation schema.
type Relation struct {
	schema  *RelationSchema
	release func()
	once    sync.Once
}

// NewRelation wraps schema in an open handle. release, if not nil, runs
// exactly once on the first Close.
func NewRelation(schema *RelationSchema, release func()) *Relation {
	return &Relation{schema: schema, release: release}
}

// Schema returns the relation's schema. It must not be used after Close.
func (r *Relation) Schema() *RelationSchema {
	return r.schema
}

// Close releases the relation. Calling Close more than once is harmless.
func (r *Relation) Close() {
	r.once.Do(func() {
		if r.release != nil {
			r.release()
		}
	})
}

// Catalog is an in-memory Accessor. Open takes the read lock and the
// returned Relation's Close drops it; Put and Replace take the write lock.
type Catalog struct {
	mu     sync.RWMutex
	byOid  map[ast.Oid]*RelationSchema
	byName map[string]ast.Oid

	logger *slog.Logger
}

var _ Accessor = (*Catalog)(nil)

// New creates an empty catalog.
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		byOid:  make(map[ast.Oid]*RelationSchema),
		byName: make(map[string]ast.Oid),
		logger: logger,
	}
}

// Open implements Accessor.
func (c *Catalog) Open(ctx context.Context, relid ast.Oid) (*Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	rs, ok := c.byOid[relid]
	if !ok {
		c.mu.RUnlock()
		return nil, mterrors.NewPgError(mterrors.ErrUnknownRelation, mterrors.CodeUndefinedTable,
			"relation with OID %d does not exist", relid)
	}
	return NewRelation(rs, c.mu.RUnlock), nil
}

// Put adds or replaces one relation.
func (c *Catalog) Put(rs *RelationSchema) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(rs.clone())
	return nil
}

// Replace swaps the whole catalog content for rels. Nothing changes if any
// schema is invalid.
func (c *Catalog) Replace(rels []*RelationSchema) error {
	for _, rs := range rels {
		if err := rs.Validate(); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byOid = make(map[ast.Oid]*RelationSchema, len(rels))
	c.byName = make(map[string]ast.Oid, len(rels))
	for _, rs := range rels {
		c.putLocked(rs.clone())
	}
	c.logger.Debug("catalog replaced", "relations", len(rels))
	return nil
}

func (c *Catalog) putLocked(rs *RelationSchema) {
	if old, ok := c.byOid[rs.Relid]; ok {
		delete(c.byName, old.Name)
		delete(c.byName, old.QualifiedName())
	}
	c.byOid[rs.Relid] = rs
	c.byName[rs.Name] = rs.Relid
	c.byName[rs.QualifiedName()] = rs.Relid
}

// Lookup resolves a relation by plain or schema-qualified name.
func (c *Catalog) Lookup(name string) (*RelationSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	relid, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.byOid[relid], true
}

// Relations returns all relations ordered by qualified name.
func (c *Catalog) Relations() []*RelationSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*RelationSchema, 0, len(c.byOid))
	for _, rs := range c.byOid {
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QualifiedName() < out[j].QualifiedName()
	})
	return out
}
