// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func (a *app) resolveCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "resolve [file...]",
		Short: "Resolve the imports of JavaScript files",
		Long: `Resolve rewrites the require() imports of the named files, or of every .js
file under the JS directory if none are named, so that they resolve against
the main sources and the configured external modules. Files are named
relative to the root.

With --check no file is written. The command fails if any file would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, fs, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			gen, err := cfg.Generator(fs, log)
			if err != nil {
				return err
			}
			res, err := gen.ResolveImports(cmd.Context(), args, check)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			changed := 0
			for _, r := range res.Imports {
				if !r.Changed {
					continue
				}
				changed++
				if check {
					fmt.Fprintf(out, "%s: %d imports to resolve\n", r.File, r.Rewritten)
				} else {
					fmt.Fprintf(out, "%s: %d imports resolved\n", r.File, r.Rewritten)
				}
			}
			if check && changed > 0 {
				return errors.WithHint(
					errors.Newf("%d of %d files have unresolved imports", changed, len(res.Imports)),
					"run jsparsers resolve without --check")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "report files with imports to resolve, without writing")
	return cmd
}
