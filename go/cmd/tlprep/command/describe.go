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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/multigres/multiplan/go/common/mterrors"
	"github.com/multigres/multiplan/go/planner/catalog"
	"github.com/multigres/multiplan/go/planner/coerce"
)

// AddDescribeCommand adds the describe subcommand to the root command.
func AddDescribeCommand(root *cobra.Command, tc *TLPrepCommand) {
	root.AddCommand(&cobra.Command{
		Use:   "describe <relation>",
		Short: "Print the attributes of a relation as loaded from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := newEnvironment(tc.logger)
			if err := loadCatalog(cmd.Context(), tc.v, afero.NewOsFs(), env); err != nil {
				return err
			}
			rs, ok := env.catalog.Lookup(args[0])
			if !ok {
				return mterrors.NewPgError(mterrors.ErrUnknownRelation, mterrors.CodeUndefinedTable,
					"relation %q does not exist", args[0])
			}
			return describeRelation(cmd.OutOrStdout(), rs, env.coercer)
		},
	})
}

func describeRelation(out io.Writer, rs *catalog.RelationSchema, coercer coerce.Coercer) error {
	fmt.Fprintf(out, "Relation %s (oid %d)\n", rs.QualifiedName(), rs.Relid)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTNUM\tNAME\tTYPE\tTYPMOD\tDEFAULT\t")
	for _, att := range rs.Attrs {
		name := att.Name
		if att.IsDropped {
			name = "(dropped)"
		}
		def, _ := rs.Default(att.Attnum)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t\n", att.Attnum, name, coercer.TypeName(att.TypeID), att.Typmod, def)
	}
	return tw.Flush()
}
