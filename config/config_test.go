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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/jsparsers"
	"github.com/bufbuild/jsparsers/imports"
	"github.com/bufbuild/jsparsers/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "jsparsers.yaml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func load(t *testing.T, file string) *Config {
	t.Helper()
	v, err := NewViper(file)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	cfg := load(t, writeConfig(t, ""))
	if diff := cmp.Diff(Default(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("default configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	cfg := load(t, writeConfig(t, `
js_dir: out/js
descriptor_set: out/descriptors.pb
modules:
  - name: web
    patterns: ["web/*"]
  - name: acme-common
    patterns: [acme/common, "acme/util/*"]
type_urls:
  default: types.example.com
  packages:
    acme.tasks: tasks.example.com
verify: true
max_parallelism: 2
log:
  level: debug
`))
	assert.Equal(t, "out/js", cfg.JSDir)
	assert.Equal(t, "out/descriptors.pb", cfg.DescriptorSet)
	assert.Equal(t, []ModuleConfig{
		{Name: "web", Patterns: []string{"web/*"}},
		{Name: "acme-common", Patterns: []string{"acme/common", "acme/util/*"}},
	}, cfg.Modules)
	// package keys keep their dots
	assert.Equal(t, schema.TypeURLPrefixes{
		Default:   "types.example.com",
		ByPackage: map[string]string{"acme.tasks": "tasks.example.com"},
	}, cfg.TypeURLPrefixes())
	assert.True(t, cfg.Verify)
	assert.Equal(t, 2, cfg.MaxParallelism)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, imports.DefaultMainSourceSegment, cfg.MainSourceSegment)

	modules, err := cfg.ImportModules()
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "web", modules[0].Name)
	assert.True(t, modules[1].Provides("acme/util/strings"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	// environment variables are process wide
	t.Setenv("JSPARSERS_JS_DIR", "env/js")
	t.Setenv("JSPARSERS_LOG_LEVEL", "info")
	t.Setenv("JSPARSERS_VERIFY", "true")
	cfg := load(t, writeConfig(t, "js_dir: file/js\n"))
	assert.Equal(t, "env/js", cfg.JSDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Verify)
}

func TestBindFlags(t *testing.T) {
	t.Parallel()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("js-dir", "", "")
	flags.String("log-level", "", "")
	flags.Bool("verify", false, "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--js-dir=flag/js", "--verify"}))

	v, err := NewViper(writeConfig(t, "js_dir: file/js\nlog:\n  level: warn\n"))
	require.NoError(t, err)
	require.NoError(t, BindFlags(v, flags))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "flag/js", cfg.JSDir)
	assert.True(t, cfg.Verify)
	// flags that were not set do not override the file
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{
			name:   "empty js dir",
			modify: func(c *Config) { c.JSDir = "" },
			want:   "js_dir must not be empty",
		},
		{
			name: "two schema sources",
			modify: func(c *Config) {
				c.DescriptorSet = "descriptors.pb"
				c.Proto.Files = []string{"a.proto"}
			},
			want: "mutually exclusive",
		},
		{
			name:   "negative parallelism",
			modify: func(c *Config) { c.MaxParallelism = -1 },
			want:   "max_parallelism",
		},
		{
			name:   "log format",
			modify: func(c *Config) { c.Log.Format = "xml" },
			want:   `unknown log format "xml"`,
		},
		{
			name:   "invalid pattern",
			modify: func(c *Config) { c.Modules = []ModuleConfig{{Name: "bad", Patterns: []string{"a/[b"}}} },
			want:   `module "bad"`,
		},
		{
			name: "duplicate module",
			modify: func(c *Config) {
				c.Modules = []ModuleConfig{{Name: "web", Patterns: []string{"a"}}, {Name: "web", Patterns: []string{"b"}}}
			},
			want: "configured more than once",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestParseModule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    ModuleConfig
		wantErr bool
	}{
		{in: "web=web/*", want: ModuleConfig{Name: "web", Patterns: []string{"web/*"}}},
		{in: " acme = acme/common, acme/util/* ,", want: ModuleConfig{Name: "acme", Patterns: []string{"acme/common", "acme/util/*"}}},
		{in: "web", wantErr: true},
		{in: "=web", wantErr: true},
		{in: "web=", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseModule(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStarter(t *testing.T) {
	t.Parallel()
	data, err := Starter()
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Directory protoc-gen-js wrote the _pb.js files to.")
	assert.Contains(t, text, "js_dir: build/generated-proto/main/js\n")
	assert.Contains(t, text, "name: acme-common")

	// the starter file loads as the defaults
	cfg := load(t, writeConfig(t, text))
	if diff := cmp.Diff(Default(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("starter configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Modules = []ModuleConfig{{Name: "web", Patterns: []string{"web/*"}}}
	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "modules:\n  - name: web\n    patterns:\n      - web/*\n")
	assert.False(t, strings.Contains(string(data), "#"))
}

func TestLoader(t *testing.T) {
	t.Parallel()
	cfg := Default()
	_, err := cfg.Loader(memfs.New())
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	cfg.DescriptorSet = "descriptors.pb"
	loader, err := cfg.Loader(memfs.New())
	require.NoError(t, err)
	assert.IsType(t, &jsparsers.DescriptorSetLoader{}, loader)

	cfg = Default()
	cfg.Root = "protos"
	cfg.Proto = ProtoConfig{ImportPaths: []string{"src", "vendor"}, Files: []string{"acme/a.proto"}}
	loader, err = cfg.Loader(memfs.New())
	require.NoError(t, err)
	require.IsType(t, &jsparsers.SourceLoader{}, loader)
	assert.Equal(t, []string{filepath.Join("protos", "src"), filepath.Join("protos", "vendor")},
		loader.(*jsparsers.SourceLoader).ImportPaths)
}

func TestGenerator(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Modules = []ModuleConfig{{Name: "web", Patterns: []string{"web/*"}}}
	cfg.MaxParallelism = 3
	fs := memfs.New()
	g, err := cfg.Generator(fs, nil)
	require.NoError(t, err)
	assert.Same(t, fs, g.FS)
	assert.Equal(t, cfg.JSDir, g.JSDir)
	assert.Equal(t, 3, g.MaxParallelism)
	require.Len(t, g.Modules, 1)
	assert.Equal(t, "web", g.Modules[0].Name)
	assert.NotNil(t, g.Reporter)
	assert.NotNil(t, g.Logger)
}

func TestWatchedPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor", "acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "acme", "a.proto"), nil, 0o600))

	cfg := Default()
	cfg.Root = dir
	cfg.Proto = ProtoConfig{ImportPaths: []string{"src", "vendor"}, Files: []string{"acme/a.proto", "acme/missing.proto"}}
	assert.Equal(t, []string{filepath.Join(dir, "vendor", "acme", "a.proto")}, cfg.WatchedPaths())

	cfg.DescriptorSet = "descriptors.pb"
	assert.Equal(t, []string{filepath.Join(dir, "descriptors.pb")}, cfg.WatchedPaths())
}
