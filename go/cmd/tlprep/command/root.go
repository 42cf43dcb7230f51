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

// Package command contains the tlprep commands.
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/multigres/multiplan/go/common/servenv"
)

// TLPrepCommand holds the configuration shared by the tlprep commands.
type TLPrepCommand struct {
	v      *viper.Viper
	lg     *servenv.Logger
	logger *slog.Logger
}

// GetRootCommand creates and returns the root command for tlprep with all
// subcommands.
func GetRootCommand() *cobra.Command {
	v := viper.New()
	tc := &TLPrepCommand{
		v:  v,
		lg: servenv.NewLogger(v),
	}

	root := &cobra.Command{
		Use:   "tlprep",
		Short: "Normalize the target lists of INSERT, UPDATE and DELETE statements",
		Long: `tlprep runs the planner's target-list preprocessing over a statement
description and prints the resulting target list.

The catalog comes from a YAML file (--catalog-file) or from a live
PostgreSQL server (--pg-dsn, --pg-schema).

Configuration:
  Settings are read from flags, TLPREP_* environment variables and an
  optional config file: --config-file if given, otherwise a file named
  'tlprep' (.yaml, .yml, .json, .toml) in the --config-path directories.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flag errors still print usage; application errors do not.
			cmd.SilenceUsage = true
			if err := tc.loadConfig(); err != nil {
				return err
			}
			logger, err := tc.lg.SetupLogging()
			if err != nil {
				return err
			}
			tc.logger = logger
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return tc.lg.Close()
		},
	}

	fs := root.PersistentFlags()
	fs.String("config-file", "", "Full path of the config file (with extension) to use. If set, --config-path is ignored.")
	fs.StringSlice("config-path", []string{"."}, "Paths to search for a tlprep config file in.")
	fs.String("catalog-file", "", "YAML catalog file to load relations and domains from")
	fs.Bool("watch-catalog", false, "Keep running and re-run on every change of --catalog-file")
	fs.String("pg-dsn", "", "Connection string of a PostgreSQL server to read the catalog from")
	fs.String("pg-schema", "public", "Schema to read from the --pg-dsn server")
	tc.lg.RegisterFlags(fs)
	for _, key := range []string{"config-file", "config-path", "catalog-file", "watch-catalog", "pg-dsn", "pg-schema"} {
		_ = v.BindPFlag(key, fs.Lookup(key))
	}
	v.SetEnvPrefix("TLPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	AddRunCommand(root, tc)
	AddDescribeCommand(root, tc)
	return root
}

// loadConfig reads the config file. A missing file is only an error when it
// was named explicitly.
func (tc *TLPrepCommand) loadConfig() error {
	if file := tc.v.GetString("config-file"); file != "" {
		tc.v.SetConfigFile(file)
	} else {
		tc.v.SetConfigName("tlprep")
		for _, path := range tc.v.GetStringSlice("config-path") {
			tc.v.AddConfigPath(path)
		}
	}
	if err := tc.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}
