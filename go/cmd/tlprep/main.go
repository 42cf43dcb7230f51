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

// tlprep runs the planner's target-list preprocessing over statement
// descriptions, against a catalog file or a live PostgreSQL server.
package main

import (
	"fmt"
	"os"

	"github.com/multigres/multiplan/go/cmd/tlprep/command"
)

func main() {
	if err := command.GetRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, command.FormatError(err))
		os.Exit(command.ExitCode(err))
	}
}
