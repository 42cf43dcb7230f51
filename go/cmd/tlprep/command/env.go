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

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/catalog/pgcatalog"
	"github.com/multigres/multiplan/go/planner/coerce"
	"github.com/multigres/multiplan/go/planner/exprparse"
)

// environment is a loaded catalog with the coercer and default parser that
// know its domains.
type environment struct {
	catalog *catalog.Catalog
	coercer *coerce.Builtin
	parser  *exprparse.Parser
	logger  *slog.Logger
}

func newEnvironment(logger *slog.Logger) *environment {
	coercer := coerce.NewBuiltin()
	return &environment{
		catalog: catalog.New(logger),
		coercer: coercer,
		parser:  exprparse.New(coercer),
		logger:  logger,
	}
}

func (env *environment) install(snap *catalog.Snapshot) error {
	return exprparse.RegisterDomains(env.coercer, snap.Domains)
}

// loadCatalog fills env from the configured catalog source.
func loadCatalog(ctx context.Context, v *viper.Viper, fs afero.Fs, env *environment) error {
	file, dsn := v.GetString("catalog-file"), v.GetString("pg-dsn")
	switch {
	case file != "" && dsn != "":
		return errors.New("--catalog-file and --pg-dsn are mutually exclusive")
	case file != "":
		snap, err := catalog.LoadFile(fs, file)
		if err != nil {
			return err
		}
		if err := env.install(snap); err != nil {
			return fmt.Errorf("invalid catalog %s: %w", file, err)
		}
		if err := env.catalog.Replace(snap.Relations); err != nil {
			return fmt.Errorf("invalid catalog %s: %w", file, err)
		}
		return nil
	case dsn != "":
		loader, err := pgcatalog.Connect(ctx, dsn, env.logger)
		if err != nil {
			return err
		}
		defer loader.Close()
		_, err = loader.LoadInto(ctx, env.catalog, v.GetString("pg-schema"), env.install)
		return err
	default:
		return errors.New("one of --catalog-file or --pg-dsn is required")
	}
}

// watchCatalog loads --catalog-file into env and keeps it current. changed
// receives a value after each reload that follows the first one. A reload
// whose domains cannot be installed is rejected whole.
func watchCatalog(v *viper.Viper, fs afero.Fs, env *environment, changed chan<- struct{}) (*catalog.Watcher, error) {
	file := v.GetString("catalog-file")
	if file == "" {
		return nil, errors.New("--watch-catalog requires --catalog-file")
	}
	initial := true
	return catalog.Watch(env.catalog, fs, file, func(snap *catalog.Snapshot) error {
		if err := env.install(snap); err != nil {
			return err
		}
		if initial {
			initial = false
			return nil
		}
		select {
		case changed <- struct{}{}:
		default:
		}
		return nil
	}, env.logger)
}
