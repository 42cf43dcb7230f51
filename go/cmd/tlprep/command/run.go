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
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/multigres/multiplan/go/common/ast"
	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/prep"
)

// TLPrepRunCmd holds the run command configuration.
type TLPrepRunCmd struct {
	tc        *TLPrepCommand
	fs        afero.Fs
	statement string
}

// AddRunCommand adds the run subcommand to the root command.
func AddRunCommand(root *cobra.Command, tc *TLPrepCommand) {
	runCmd := &TLPrepRunCmd{
		tc: tc,
		fs: afero.NewOsFs(),
	}
	root.AddCommand(runCmd.createCommand())
}

func (r *TLPrepRunCmd) createCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Preprocess the target list of a statement",
		Long: `Load the catalog, build the statement described in --statement and print
its target list after preprocessing, one entry per line.

Examples:
  # Expand an INSERT against a catalog file
  tlprep run --catalog-file catalog.yaml --statement insert.yaml

  # Use the public schema of a running server
  tlprep run --pg-dsn "postgres://localhost/app?sslmode=disable" --statement update.yaml

  # Re-run whenever the catalog file changes
  tlprep run --catalog-file catalog.yaml --watch-catalog --statement insert.yaml`,
		Args: cobra.NoArgs,
		RunE: r.runRun,
	}
	cmd.Flags().StringVar(&r.statement, "statement", "", "YAML file describing the statement")
	_ = cmd.MarkFlagRequired("statement")
	return cmd
}

func (r *TLPrepRunCmd) runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := afero.ReadFile(r.fs, r.statement)
	if err != nil {
		return fmt.Errorf("failed to read statement file %s: %w", r.statement, err)
	}
	stmt, err := DecodeStatement(data)
	if err != nil {
		return err
	}

	env := newEnvironment(r.tc.logger)
	out := cmd.OutOrStdout()
	if !r.tc.v.GetBool("watch-catalog") {
		if err := loadCatalog(ctx, r.tc.v, r.fs, env); err != nil {
			return err
		}
		return runStatement(ctx, out, env, stmt)
	}

	changed := make(chan struct{}, 1)
	w, err := watchCatalog(r.tc.v, r.fs, env, changed)
	if err != nil {
		return err
	}
	defer w.Close()
	return runWatching(ctx, out, cmd.ErrOrStderr(), env, stmt, changed)
}

// runWatching preprocesses stmt now and after every catalog change until ctx
// is done. A target list is printed only when it differs from the last one
// printed.
func runWatching(ctx context.Context, out, errOut io.Writer, env *environment, stmt *Statement, changed <-chan struct{}) error {
	var last ast.TargetList
	for {
		tlist, err := prepareStatement(ctx, env, stmt)
		switch {
		case err != nil:
			// The next catalog change may fix it.
			fmt.Fprintln(errOut, FormatError(err))
			last = nil
		case last != nil && ast.EqualTargetLists(last, tlist):
			env.logger.InfoContext(ctx, "target list unchanged by catalog reload", "relation", stmt.Relation)
		default:
			if last != nil {
				fmt.Fprintln(out)
			}
			if err := printTargetList(out, tlist); err != nil {
				return err
			}
			last = tlist
		}
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		}
	}
}

// runStatement builds stmt against env's catalog, preprocesses it and
// writes the resulting target list to out.
func runStatement(ctx context.Context, out io.Writer, env *environment, stmt *Statement) error {
	tlist, err := prepareStatement(ctx, env, stmt)
	if err != nil {
		return err
	}
	return printTargetList(out, tlist)
}

func prepareStatement(ctx context.Context, env *environment, stmt *Statement) (ast.TargetList, error) {
	q, err := stmt.Build(env.catalog, env.coercer)
	if err != nil {
		return nil, err
	}
	p := prep.NewPreprocessor(env.catalog, env.coercer, env.parser, env.logger)
	return p.PreprocessQuery(ctx, q)
}

func printTargetList(out io.Writer, tlist ast.TargetList) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESNO\tNAME\tEXPRESSION\t")
	for _, te := range tlist {
		name := te.Resname
		if te.Resjunk {
			name += " (junk)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", te.Resno, name, te.Expr)
	}
	return tw.Flush()
}

// FormatError renders err the way the server would report it.
func FormatError(err error) string {
	if diag, ok := mterrors.AsPgDiagnostic(err); ok {
		return diag.FullError()
	}
	return "ERROR: " + err.Error()
}

// ExitCode is the process status for a command that failed with err: 2 for
// internal errors (SQLSTATE class XX), which point at a broken catalog or a
// bug rather than a bad statement, and 1 otherwise.
func ExitCode(err error) int {
	if diag, ok := mterrors.AsPgDiagnostic(err); ok && diag.IsClass("XX") {
		return 2
	}
	return 1
}
