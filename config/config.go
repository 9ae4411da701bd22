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

// Package config holds the configuration of the command line tool.
//
// Configuration is read from a YAML (or TOML or JSON) file, from
// environment variables prefixed with JSPARSERS_ and from command line
// flags, in increasing order of precedence. Nested keys are separated by an
// underscore in environment variables, e.g. JSPARSERS_LOG_LEVEL.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bufbuild/jsparsers"
	"github.com/bufbuild/jsparsers/imports"
	"github.com/bufbuild/jsparsers/internal/logging"
	"github.com/bufbuild/jsparsers/reporter"
	"github.com/bufbuild/jsparsers/schema"
)

// FileName is the base name of the configuration file searched in the
// current directory.
const FileName = "jsparsers"

const envPrefix = "JSPARSERS"

// Type URL package prefixes contain dots, so keys are separated by
// keyDelimiter instead.
const keyDelimiter = "::"

// Keys of the configuration.
const (
	KeyRoot              = "root"
	KeyJSDir             = "js_dir"
	KeyGeneratedRoot     = "generated_root"
	KeyDescriptorSet     = "descriptor_set"
	KeyImportPaths       = "proto" + keyDelimiter + "import_paths"
	KeyProtoFiles        = "proto" + keyDelimiter + "files"
	KeyModules           = "modules"
	KeyTypeURLDefault    = "type_urls" + keyDelimiter + "default"
	KeyTypeURLPackages   = "type_urls" + keyDelimiter + "packages"
	KeyMainSourceSegment = "main_source_segment"
	KeyVerify            = "verify"
	KeyMaxParallelism    = "max_parallelism"
	KeyLogFormat         = "log" + keyDelimiter + "format"
	KeyLogLevel          = "log" + keyDelimiter + "level"
)

// Config is the configuration of a run.
type Config struct {
	// Root is the directory all other paths are relative to.
	Root string `mapstructure:"root" yaml:"root"`
	// JSDir holds the _pb.js files protoc-gen-js generated.
	JSDir string `mapstructure:"js_dir" yaml:"js_dir"`
	// GeneratedRoot holds the generated well-known types. Defaults to
	// JSDir.
	GeneratedRoot string `mapstructure:"generated_root" yaml:"generated_root"`
	// DescriptorSet is a descriptor set written with --include_imports.
	DescriptorSet string `mapstructure:"descriptor_set" yaml:"descriptor_set"`
	// Proto names .proto sources, used instead of DescriptorSet.
	Proto ProtoConfig `mapstructure:"proto" yaml:"proto"`
	// Modules are tried in order, before the predefined ones.
	Modules           []ModuleConfig `mapstructure:"modules" yaml:"modules"`
	TypeURLs          TypeURLConfig  `mapstructure:"type_urls" yaml:"type_urls"`
	MainSourceSegment string         `mapstructure:"main_source_segment" yaml:"main_source_segment"`
	Verify            bool           `mapstructure:"verify" yaml:"verify"`
	MaxParallelism    int            `mapstructure:"max_parallelism" yaml:"max_parallelism"`
	Log               LogConfig      `mapstructure:"log" yaml:"log"`
}

// ProtoConfig names the .proto sources to compile.
type ProtoConfig struct {
	ImportPaths []string `mapstructure:"import_paths" yaml:"import_paths"`
	Files       []string `mapstructure:"files" yaml:"files"`
}

// ModuleConfig is an external module and the directory patterns it
// provides.
type ModuleConfig struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
}

// TypeURLConfig configures the prefixes of type URLs.
type TypeURLConfig struct {
	Default  string            `mapstructure:"default" yaml:"default"`
	Packages map[string]string `mapstructure:"packages" yaml:"packages"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	// Level overrides the level chosen by -v.
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Root:              ".",
		JSDir:             "build/generated-proto/main/js",
		Modules:           []ModuleConfig{},
		TypeURLs:          TypeURLConfig{Default: schema.DefaultTypeURLPrefix, Packages: map[string]string{}},
		MainSourceSegment: imports.DefaultMainSourceSegment,
		Log:               LogConfig{Format: string(logging.FormatConsole)},
	}
}

// NewViper returns a viper instance with the defaults, the environment and
// the configuration file. If file is empty, a file named jsparsers.yaml (or
// any other supported extension) is looked up in the current directory,
// and it is not an error if there is none.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", file)
		}
		return v, nil
	}
	v.SetConfigName(FileName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault(KeyRoot, def.Root)
	v.SetDefault(KeyJSDir, def.JSDir)
	v.SetDefault(KeyGeneratedRoot, "")
	v.SetDefault(KeyDescriptorSet, "")
	v.SetDefault(KeyImportPaths, []string{})
	v.SetDefault(KeyProtoFiles, []string{})
	v.SetDefault(KeyModules, []map[string]any{})
	v.SetDefault(KeyTypeURLDefault, def.TypeURLs.Default)
	v.SetDefault(KeyTypeURLPackages, map[string]string{})
	v.SetDefault(KeyMainSourceSegment, def.MainSourceSegment)
	v.SetDefault(KeyVerify, false)
	v.SetDefault(KeyMaxParallelism, 0)
	v.SetDefault(KeyLogFormat, def.Log.Format)
	v.SetDefault(KeyLogLevel, "")
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"root":                KeyRoot,
	"js-dir":              KeyJSDir,
	"generated-root":      KeyGeneratedRoot,
	"descriptor-set":      KeyDescriptorSet,
	"proto-path":          KeyImportPaths,
	"proto-file":          KeyProtoFiles,
	"type-url-prefix":     KeyTypeURLDefault,
	"main-source-segment": KeyMainSourceSegment,
	"verify":              KeyVerify,
	"max-parallelism":     KeyMaxParallelism,
	"log-format":          KeyLogFormat,
	"log-level":           KeyLogLevel,
}

// BindFlags binds those of the known flags that flags defines.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "binding flag --%s", name)
		}
	}
	return nil
}

// Load decodes and validates the configuration of v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for errors that do not depend on the
// file system.
func (c *Config) Validate() error {
	if c.JSDir == "" {
		return errors.New("js_dir must not be empty")
	}
	if c.DescriptorSet != "" && len(c.Proto.Files) > 0 {
		return errors.WithHint(
			errors.New("descriptor_set and proto.files are mutually exclusive"),
			"configure either a descriptor set or the .proto sources")
	}
	if c.MaxParallelism < 0 {
		return errors.Newf("max_parallelism must not be negative, got %d", c.MaxParallelism)
	}
	switch logging.Format(strings.ToLower(c.Log.Format)) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return errors.Newf("unknown log format %q", c.Log.Format)
	}
	_, err := c.ImportModules()
	return err
}

// ParseModule parses a module given as name=pattern,pattern.
func ParseModule(s string) (ModuleConfig, error) {
	name, patterns, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(patterns) == "" {
		return ModuleConfig{}, errors.Newf("invalid module %q, expected name=pattern[,pattern...]", s)
	}
	mod := ModuleConfig{Name: name}
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			mod.Patterns = append(mod.Patterns, p)
		}
	}
	return mod, nil
}

// ImportModules returns the configured modules, without the predefined
// ones.
func (c *Config) ImportModules() ([]imports.Module, error) {
	modules := make([]imports.Module, 0, len(c.Modules))
	seen := map[string]struct{}{}
	for _, m := range c.Modules {
		if _, ok := seen[m.Name]; ok {
			return nil, errors.Newf("module %q is configured more than once", m.Name)
		}
		seen[m.Name] = struct{}{}
		mod, err := imports.NewModule(m.Name, m.Patterns...)
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}
	return modules, nil
}

// TypeURLPrefixes returns the configured type URL prefixes.
func (c *Config) TypeURLPrefixes() schema.TypeURLPrefixes {
	return schema.TypeURLPrefixes{Default: c.TypeURLs.Default, ByPackage: c.TypeURLs.Packages}
}

// Path returns p, given relative to Root, relative to the working
// directory.
func (c *Config) Path(p string) string {
	return filepath.Join(c.Root, p)
}

// Loader returns the loader of the configured schema. fs is rooted at Root
// and used to read the descriptor set.
func (c *Config) Loader(fs billy.Filesystem) (jsparsers.Loader, error) {
	switch {
	case c.DescriptorSet != "":
		return &jsparsers.DescriptorSetLoader{Path: c.DescriptorSet, FS: fs}, nil
	case len(c.Proto.Files) > 0:
		return &jsparsers.SourceLoader{ImportPaths: c.importPaths(), Files: c.Proto.Files}, nil
	default:
		return nil, errors.WithHint(
			errors.New("no schema configured"),
			"set descriptor_set or proto.files, or pass --descriptor-set")
	}
}

func (c *Config) importPaths() []string {
	if len(c.Proto.ImportPaths) == 0 {
		return []string{c.Path(".")}
	}
	paths := make([]string, len(c.Proto.ImportPaths))
	for i, p := range c.Proto.ImportPaths {
		paths[i] = c.Path(p)
	}
	return paths
}

// Generator returns a generator for the configuration, working on fs.
// Warnings, such as unresolved imports, are logged.
func (c *Config) Generator(fs billy.Filesystem, log *zap.Logger) (*jsparsers.Generator, error) {
	modules, err := c.ImportModules()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &jsparsers.Generator{
		FS:                fs,
		JSDir:             c.JSDir,
		GeneratedRoot:     c.GeneratedRoot,
		Modules:           modules,
		MainSourceSegment: c.MainSourceSegment,
		TypeURLs:          c.TypeURLPrefixes(),
		Verify:            c.Verify,
		MaxParallelism:    c.MaxParallelism,
		Reporter: reporter.NewReporter(nil, func(w reporter.ErrorWithPos) {
			log.Warn(w.Error(), zap.Stringer("pos", w.GetPosition()))
		}),
		Logger: log,
	}, nil
}

// WatchedPaths are the existing schema inputs, relative to the working
// directory.
func (c *Config) WatchedPaths() []string {
	if c.DescriptorSet != "" {
		return []string{c.Path(c.DescriptorSet)}
	}
	var paths []string
	for _, file := range c.Proto.Files {
		for _, dir := range c.importPaths() {
			p := filepath.Join(dir, file)
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
				break
			}
		}
	}
	return paths
}
