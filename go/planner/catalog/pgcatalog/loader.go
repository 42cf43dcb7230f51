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

// Package pgcatalog reads relation schemas and domains from a running
// PostgreSQL server's system catalogs.
package pgcatalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Register the "postgres" driver.
	_ "github.com/lib/pq"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/planner/catalog"
)

const relationsQuery = `
SELECT c.oid, n.nspname, c.relname
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relkind IN ('r', 'p')
ORDER BY c.relname`

// Generated columns keep their expression in pg_attrdef too; it is not a
// default.
const attributesQuery = `
SELECT a.attrelid, a.attnum, a.attname, a.atttypid, a.atttypmod, a.attisdropped,
       CASE WHEN a.attgenerated = '' THEN pg_catalog.pg_get_expr(d.adbin, d.adrelid) END
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE n.nspname = $1 AND c.relkind IN ('r', 'p') AND a.attnum > 0
ORDER BY a.attrelid, a.attnum`

const domainsQuery = `
SELECT t.oid, t.typname, t.typbasetype, t.typdefault
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE t.typtype = 'd' AND n.nspname = $1
ORDER BY t.typname`

// Loader reads catalog snapshots over a database connection.
type Loader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLoader creates a Loader over an open database handle.
func NewLoader(db *sql.DB, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger}
}

// Connect opens a connection to the server at dsn and checks that it is
// reachable.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*Loader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to catalog server: %w", err)
	}
	return NewLoader(db, logger), nil
}

// Close closes the underlying database handle.
func (l *Loader) Close() error {
	return l.db.Close()
}

// Load reads the base tables and domains of namespace.
func (l *Loader) Load(ctx context.Context, namespace string) (*catalog.Snapshot, error) {
	rels, err := l.loadRelations(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if err := l.loadAttributes(ctx, namespace, rels); err != nil {
		return nil, err
	}
	domains, err := l.loadDomains(ctx, namespace)
	if err != nil {
		return nil, err
	}

	snap := &catalog.Snapshot{Domains: domains}
	for _, rs := range rels {
		if err := rs.Validate(); err != nil {
			return nil, err
		}
		snap.Relations = append(snap.Relations, rs)
	}
	l.logger.InfoContext(ctx, "loaded catalog from server",
		"schema", namespace,
		"relations", len(snap.Relations),
		"domains", len(snap.Domains))
	return snap, nil
}

// LoadInto loads namespace and replaces cat's content with it. install, if
// not nil, runs on the snapshot first; an error from it leaves cat as it was.
func (l *Loader) LoadInto(ctx context.Context, cat *catalog.Catalog, namespace string, install func(*catalog.Snapshot) error) (*catalog.Snapshot, error) {
	snap, err := l.Load(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if install != nil {
		if err := install(snap); err != nil {
			return nil, err
		}
	}
	if err := cat.Replace(snap.Relations); err != nil {
		return nil, err
	}
	return snap, nil
}

func (l *Loader) loadRelations(ctx context.Context, namespace string) ([]*catalog.RelationSchema, error) {
	rows, err := l.db.QueryContext(ctx, relationsQuery, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	var rels []*catalog.RelationSchema
	for rows.Next() {
		rs := &catalog.RelationSchema{}
		if err := rows.Scan(&rs.Relid, &rs.Namespace, &rs.Name); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		rels = append(rels, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read relations: %w", err)
	}
	return rels, nil
}

func (l *Loader) loadAttributes(ctx context.Context, namespace string, rels []*catalog.RelationSchema) error {
	byOid := make(map[ast.Oid]*catalog.RelationSchema, len(rels))
	for _, rs := range rels {
		byOid[rs.Relid] = rs
	}

	rows, err := l.db.QueryContext(ctx, attributesQuery, namespace)
	if err != nil {
		return fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			relid ast.Oid
			att   catalog.Attribute
			def   sql.NullString
		)
		if err := rows.Scan(&relid, &att.Attnum, &att.Name, &att.TypeID, &att.Typmod, &att.IsDropped, &def); err != nil {
			return fmt.Errorf("failed to scan attribute: %w", err)
		}
		rs, ok := byOid[relid]
		if !ok {
			// Created after the relation list was read.
			l.logger.DebugContext(ctx, "skipping attribute of unlisted relation", "relid", relid, "attname", att.Name)
			continue
		}
		rs.Attrs = append(rs.Attrs, att)
		if def.Valid && !att.IsDropped {
			rs.Defaults = append(rs.Defaults, catalog.AttrDefault{Adnum: att.Attnum, Expr: def.String})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read attributes: %w", err)
	}
	return nil
}

func (l *Loader) loadDomains(ctx context.Context, namespace string) ([]catalog.Domain, error) {
	rows, err := l.db.QueryContext(ctx, domainsQuery, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	var domains []catalog.Domain
	for rows.Next() {
		var (
			d   catalog.Domain
			def sql.NullString
		)
		if err := rows.Scan(&d.Oid, &d.Name, &d.BaseType, &def); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		d.Default = def.String
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domains: %w", err)
	}
	return domains, nil
}
