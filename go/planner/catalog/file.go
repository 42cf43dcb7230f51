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

package catalog

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/planner/coerce"
)

// Domain is a user-defined domain over a built-in type or another domain.
type Domain struct {
	Oid      ast.Oid
	Name     string
	BaseType ast.Oid
	Default  string // SQL text, empty if the domain has no default
}

// Snapshot is the content of a catalog file.
type Snapshot struct {
	Relations []*RelationSchema
	Domains   []Domain
}

type fileDomain struct {
	Name    string  `yaml:"name"`
	Oid     ast.Oid `yaml:"oid"`
	Base    ast.Oid `yaml:"base"`
	Default string  `yaml:"default"`
}

type fileColumn struct {
	Name      string  `yaml:"name"`
	Type      ast.Oid `yaml:"type"`
	Typmod    *int32  `yaml:"typmod"`
	Length    int32   `yaml:"length"`
	Precision int32   `yaml:"precision"`
	Scale     int32   `yaml:"scale"`
	Default   string  `yaml:"default"`
	Dropped   bool    `yaml:"dropped"`
	Set       bool    `yaml:"set"`
}

type fileRelation struct {
	Name    string       `yaml:"name"`
	Schema  string       `yaml:"schema"`
	Oid     ast.Oid      `yaml:"oid"`
	Columns []fileColumn `yaml:"columns"`
}

// LoadFile reads a YAML catalog file from fs.
//
// The file lists domains and relations:
//
//	domains:
//	  - {name: posint, oid: 90001, base: int4, default: "1"}
//	relations:
//	  - name: widgets
//	    schema: public
//	    columns:
//	      - {name: id, type: int8, default: "nextval('widgets_id_seq')"}
//	      - {name: code, type: bpchar, length: 8}
//	      - {name: legacy, type: int4, dropped: true}
//
// Types are given by name, built-in or a domain declared in the same file.
// A domain's base may name a domain declared before it.
func LoadFile(fs afero.Fs, path string) (*Snapshot, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog file %s: %w", path, err)
	}
	return snap, nil
}

// ParseSnapshot decodes YAML catalog content.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw struct {
		Domains   []map[string]any `yaml:"domains"`
		Relations []map[string]any `yaml:"relations"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	// Domains are decoded first so columns can name them, one at a time so
	// a domain can be based on one declared above it.
	domainTypes := make(map[string]ast.Oid)
	snap := &Snapshot{}
	for i, rd := range raw.Domains {
		var d fileDomain
		if err := decode(rd, &d, domainTypes); err != nil {
			return nil, fmt.Errorf("failed to decode domain %d: %w", i, err)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("domain %d has no name", i)
		}
		if d.Oid == ast.InvalidOid {
			return nil, fmt.Errorf("domain %q has no oid", d.Name)
		}
		domainTypes[d.Name] = d.Oid
		snap.Domains = append(snap.Domains, Domain{Oid: d.Oid, Name: d.Name, BaseType: d.Base, Default: d.Default})
	}

	var rels []fileRelation
	if err := decode(raw.Relations, &rels, domainTypes); err != nil {
		return nil, fmt.Errorf("failed to decode relations: %w", err)
	}
	nextOid := FirstNormalObjectId
	for _, fr := range rels {
		rs := &RelationSchema{
			Relid:     fr.Oid,
			Namespace: fr.Schema,
			Name:      fr.Name,
		}
		if rs.Relid == ast.InvalidOid {
			rs.Relid = nextOid
		}
		if rs.Relid >= nextOid {
			nextOid = rs.Relid + 1
		}
		for i, col := range fr.Columns {
			attnum := ast.AttrNumber(i + 1)
			typmod, err := col.typmod()
			if err != nil {
				return nil, fmt.Errorf("relation %q column %q: %w", fr.Name, col.Name, err)
			}
			rs.Attrs = append(rs.Attrs, Attribute{
				Attnum:    attnum,
				Name:      col.Name,
				TypeID:    col.Type,
				Typmod:    typmod,
				IsDropped: col.Dropped,
				IsSet:     col.Set,
			})
			if col.Default != "" {
				rs.Defaults = append(rs.Defaults, AttrDefault{Adnum: attnum, Expr: col.Default})
			}
		}
		if err := rs.Validate(); err != nil {
			return nil, err
		}
		snap.Relations = append(snap.Relations, rs)
	}
	return snap, nil
}

// typmod derives the column type modifier from the length, precision and
// scale keys, unless an explicit typmod is given.
func (c fileColumn) typmod() (int32, error) {
	if c.Typmod != nil {
		return *c.Typmod, nil
	}
	var mods []int32
	switch c.Type {
	case ast.BPCHAROID, ast.VARCHAROID, ast.BITOID, ast.VARBITOID:
		if c.Length > 0 {
			mods = []int32{c.Length}
		}
	case ast.NUMERICOID:
		if c.Precision > 0 {
			mods = []int32{c.Precision, c.Scale}
		}
	case ast.TIMESTAMPOID, ast.TIMESTAMPTZOID, ast.TIMEOID, ast.TIMETZOID, ast.INTERVALOID:
		if c.Precision > 0 {
			mods = []int32{c.Precision}
		}
	}
	return coerce.TypmodIn(c.Type, mods)
}

func decode(input any, result any, domains map[string]ast.Oid) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       typeNameHook(domains),
		Result:           result,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var oidType = reflect.TypeOf(ast.Oid(0))

// typeNameHook resolves type names to OIDs while decoding. Numeric input is
// taken as a raw OID.
func typeNameHook(domains map[string]ast.Oid) mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != oidType || from.Kind() != reflect.String {
			return data, nil
		}
		name := data.(string)
		if oid, ok := domains[name]; ok {
			return oid, nil
		}
		if oid, ok := ast.TypeOidByName(name); ok {
			return oid, nil
		}
		return nil, fmt.Errorf("type %q does not exist", name)
	}
}
