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

// Command jsparsers adds JSON deserializers to the JavaScript generated by
// protoc-gen-js and resolves the imports of the generated files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bufbuild/jsparsers/config"
	"github.com/bufbuild/jsparsers/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// app holds the flags shared by all commands.
type app struct {
	configFile string
	verbosity  int
	modules    []string
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "jsparsers",
		Short: "Add JSON deserializers to protoc-gen-js output",
		Long: `jsparsers post-processes the JavaScript generated by protoc-gen-js.

It appends a deserializer with a fromObject method to every generated
message, adds type URL getters, writes an index.js with lookup tables keyed by
type URL, and rewrites the require() imports of the generated files so that
they resolve against the configured external modules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (default ./jsparsers.yaml, if present)")
	flags.CountVarP(&a.verbosity, "verbose", "v", "log more; repeat for debug output")
	flags.String("log-format", "", "log format: console or json")
	flags.String("log-level", "", "log level, overriding -v")
	flags.String("root", "", "directory that all other paths are relative to")
	flags.String("js-dir", "", "directory of the generated _pb.js files")
	flags.String("generated-root", "", "directory of the generated well-known types (default js-dir)")
	flags.StringArrayVar(&a.modules, "module", nil, "external module as name=pattern[,pattern...]; may be repeated")
	flags.Int("max-parallelism", 0, "maximum number of files processed at once")

	root.AddCommand(
		a.generateCommand(),
		a.resolveCommand(),
		a.watchCommand(),
		a.configCommand(),
	)
	return root
}

func addSchemaFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("descriptor-set", "", "descriptor set written by protoc with --include_imports")
	flags.StringSlice("proto-path", nil, "import paths of the .proto sources")
	flags.StringSlice("proto-file", nil, ".proto sources to compile instead of reading a descriptor set")
	flags.String("type-url-prefix", "", "default prefix of type URLs")
	flags.Bool("verify", false, "syntax check every file before it is written")
}

// load returns the effective configuration of cmd.
func (a *app) load(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	for _, m := range a.modules {
		mod, err := config.ParseModule(m)
		if err != nil {
			return nil, err
		}
		cfg.Modules = append(cfg.Modules, mod)
	}
	if len(a.modules) > 0 {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup returns the configuration, the logger and the file system rooted
// at the configured root.
func (a *app) setup(cmd *cobra.Command) (*config.Config, *zap.Logger, billy.Filesystem, error) {
	cfg, err := a.load(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Format:    logging.Format(cfg.Log.Format),
		Level:     cfg.Log.Level,
		Verbosity: a.verbosity,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, osfs.New(cfg.Root), nil
}
