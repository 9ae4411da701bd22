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
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bufbuild/jsparsers"
	"github.com/bufbuild/jsparsers/config"
)

func (a *app) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Append deserializers and type URL getters, write index.js and resolve imports",
		Example: `  protoc --js_out=import_style=commonjs:build/js \
    --descriptor_set_out=build/descriptors.pb --include_imports acme/tasks/v1/*.proto
  jsparsers generate --js-dir build/js --descriptor-set build/descriptors.pb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, fs, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			_, err = generate(cmd.Context(), cfg, fs, log, cmd.OutOrStdout())
			return err
		},
	}
	addSchemaFlags(cmd)
	return cmd
}

// generate loads the configured schema and runs every step.
func generate(ctx context.Context, cfg *config.Config, fs billy.Filesystem, log *zap.Logger, out io.Writer) (*jsparsers.Result, error) {
	loader, err := cfg.Loader(fs)
	if err != nil {
		return nil, err
	}
	set, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	gen, err := cfg.Generator(fs, log)
	if err != nil {
		return nil, err
	}
	res, err := gen.Generate(ctx, set)
	if err != nil {
		return res, err
	}
	rewritten := 0
	for _, r := range res.Imports {
		rewritten += r.Rewritten
	}
	fmt.Fprintf(out, "processed %d files: %d parsers, %d type URL getters, %d imports rewritten\n",
		len(res.Files), len(res.Parsers), len(res.TypeURLs), rewritten)
	if res.Index != "" {
		fmt.Fprintf(out, "wrote %s\n", res.Index)
	}
	return res, nil
}
