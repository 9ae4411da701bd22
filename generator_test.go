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

package jsparsers

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bufbuild/jsparsers/codegen"
	"github.com/bufbuild/jsparsers/imports"
	"github.com/bufbuild/jsparsers/internal/testutil"
	"github.com/bufbuild/jsparsers/reporter"
	"github.com/bufbuild/jsparsers/schema"
	"github.com/bufbuild/jsparsers/verify"
)

const (
	taskJS = "js/acme/tasks/v1/task_pb.js"
	idsJS  = "js/acme/tasks/v1/ids_pb.js"
)

// protoc-gen-js output, trimmed to the imports
const (
	taskPB = `// source: acme/tasks/v1/task.proto
var jspb = require('google-protobuf');
var goog = jspb;

var acme_tasks_v1_ids_pb = require('./ids_pb.js');
goog.object.extend(proto, acme_tasks_v1_ids_pb);
var google_protobuf_struct_pb = require('google-protobuf/google/protobuf/struct_pb.js');
goog.object.extend(proto, google_protobuf_struct_pb);
`
	idsPB = `// source: acme/tasks/v1/ids.proto
var jspb = require('google-protobuf');
var goog = jspb;
`
)

func loadTaskSet(t *testing.T) *schema.FileSet {
	t.Helper()
	loader := &FilesLoader{Files: testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile, testutil.IDsFile)}
	set, err := loader.Load(context.Background())
	require.NoError(t, err)
	return set
}

func generatedTree(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, taskJS, []byte(taskPB), 0o644))
	require.NoError(t, util.WriteFile(fs, idsJS, []byte(idsPB), 0o644))
	return fs
}

func readString(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	fs := generatedTree(t)
	core, logs := observer.New(zapcore.InfoLevel)
	g := &Generator{FS: fs, JSDir: "js", Verify: true, Logger: zap.New(core)}

	res, err := g.Generate(context.Background(), loadTaskSet(t))
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.IDsFile, testutil.TaskFile}, res.Files)
	assert.Equal(t, []string{idsJS, taskJS}, res.Parsers)
	assert.Equal(t, []string{idsJS, taskJS}, res.TypeURLs)
	assert.Equal(t, "js/index.js", res.Index)
	assert.Empty(t, res.Failed)
	assert.Equal(t, 4, logs.FilterMessage("running step").Len())

	task := readString(t, fs, taskJS)
	// the original code is kept, followed by the generated code
	assert.True(t, strings.HasPrefix(task, "// source: acme/tasks/v1/task.proto\n"))
	assert.Contains(t, task, "\n"+codegen.ParsersMarker+"\n")
	assert.Contains(t, task, "proto.acme.tasks.v1.TaskParser.prototype.fromObject = function(obj) {")
	assert.Contains(t, task, "proto.acme.tasks.v1.Task.Comment.typeUrl = function() {")
	assert.Less(t, strings.Index(task, codegen.ParsersMarker), strings.Index(task, codegen.TypeURLMarker))

	// imports are resolved after all code has been appended
	assert.Contains(t, task, "require('./ids_pb.js');")
	assert.Contains(t, task, "require('jsparsers-runtime/proto/google/protobuf/struct_pb.js');")
	assert.Contains(t, task, "let ObjectParser = require('jsparsers-runtime/client/parser/object-parser.js');")
	assert.Contains(t, task, "let TypeParsers = require('jsparsers-runtime/client/parser/type-parsers.js');")
	assert.NotContains(t, task, "google-protobuf/google")

	idx := readString(t, fs, "js/index.js")
	assert.Contains(t, idx, "require('./acme/tasks/v1/ids_pb.js');\nrequire('./acme/tasks/v1/task_pb.js');\n")
	assert.Contains(t, idx, "['type.googleapis.com/acme.tasks.v1.Task', proto.acme.tasks.v1.TaskParser]")
	assert.NotContains(t, idx, "google.protobuf")
	assert.NoError(t, verify.JS("index.js", idx))
}

func TestGenerate_Rerun(t *testing.T) {
	t.Parallel()
	fs := generatedTree(t)
	core, logs := observer.New(zapcore.InfoLevel)
	g := &Generator{FS: fs, JSDir: "js", Logger: zap.New(core)}
	set := loadTaskSet(t)

	_, err := g.Generate(context.Background(), set)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessageSnippet("already processed").Len())
	task, ids := readString(t, fs, taskJS), readString(t, fs, idsJS)

	res, err := g.Generate(context.Background(), set)
	require.NoError(t, err)
	assert.Empty(t, res.Parsers)
	assert.Empty(t, res.TypeURLs)
	skipped := logs.FilterMessageSnippet("all files were already processed").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(2), skipped[0].ContextMap()["files"])
	for _, result := range res.Imports {
		assert.False(t, result.Changed, result.File)
	}
	assert.Equal(t, task, readString(t, fs, taskJS))
	assert.Equal(t, ids, readString(t, fs, idsJS))
}

func TestGenerate_OnlyFilesWithGeneratedCode(t *testing.T) {
	t.Parallel()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, idsJS, []byte(idsPB), 0o644))
	g := &Generator{FS: fs, JSDir: "js/"}

	res, err := g.Generate(context.Background(), loadTaskSet(t))
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.IDsFile}, res.Files)
	_, err = fs.Stat(taskJS)
	assert.Error(t, err)
	assert.NotContains(t, readString(t, fs, "js/index.js"), "task_pb.js")
}

func TestGenerate_MissingJSDir(t *testing.T) {
	t.Parallel()
	fs := memfs.New()
	g := &Generator{FS: fs, JSDir: "js"}
	res, err := g.Generate(context.Background(), loadTaskSet(t))
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	_, err = fs.Stat("js/index.js")
	assert.Error(t, err)
}

func TestGenerate_VerifyFailureAborts(t *testing.T) {
	t.Parallel()
	fs := generatedTree(t)
	broken := "var jspb = require('google-protobuf';\n"
	require.NoError(t, util.WriteFile(fs, idsJS, []byte(broken), 0o644))
	g := &Generator{FS: fs, JSDir: "js", Verify: true, MaxParallelism: 1}

	_, err := g.Generate(context.Background(), loadTaskSet(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, verify.ErrSyntax))
	assert.True(t, errors.Is(err, reporter.ErrSchemaInconsistency))
	assert.Equal(t, broken, readString(t, fs, idsJS))
}

func TestGenerate_ReporterSwallowsErrors(t *testing.T) {
	t.Parallel()
	fs := generatedTree(t)
	broken := "var jspb = require('google-protobuf';\n"
	require.NoError(t, util.WriteFile(fs, idsJS, []byte(broken), 0o644))
	var reported []reporter.ErrorWithPos
	g := &Generator{
		FS:     fs,
		JSDir:  "js",
		Verify: true,
		Reporter: reporter.NewReporter(func(err reporter.ErrorWithPos) error {
			reported = append(reported, err)
			return nil
		}, nil),
		// one at a time, since the reporter is not synchronized
		MaxParallelism: 1,
	}

	res, err := g.Generate(context.Background(), loadTaskSet(t))
	require.ErrorIs(t, err, reporter.ErrInvalidOutput)
	require.Len(t, reported, 1)
	assert.Equal(t, idsJS, reported[0].GetPosition().File)
	assert.Equal(t, []string{idsJS}, res.Failed)
	assert.Equal(t, []string{taskJS}, res.Parsers)
	assert.Equal(t, broken, readString(t, fs, idsJS))
	// the failed file is left out of the index
	assert.NotContains(t, readString(t, fs, "js/index.js"), "ids_pb.js")
}

func TestResolveImports(t *testing.T) {
	t.Parallel()
	fs := memfs.New()
	hand := "const lib = require('./vendor/lib.js');\nconst other = require('./elsewhere/x.js');\n"
	require.NoError(t, util.WriteFile(fs, "js/client.js", []byte(hand), 0o644))
	require.NoError(t, util.WriteFile(fs, "js/readme.md", []byte("require('./vendor/lib.js')"), 0o644))
	core, logs := observer.New(zapcore.DebugLevel)
	var warnings []reporter.ErrorWithPos
	g := &Generator{
		FS:      fs,
		JSDir:   "js",
		Modules: []imports.Module{imports.MustModule("acme-vendor", "vendor")},
		Logger:  zap.New(core),
		Reporter: reporter.NewReporter(nil, func(w reporter.ErrorWithPos) {
			warnings = append(warnings, w)
		}),
		MaxParallelism: 1,
	}

	// check mode: nothing is written, but the change is reported
	res, err := g.ResolveImports(context.Background(), nil, true)
	require.NoError(t, err)
	require.Len(t, res.Imports, 1)
	assert.Equal(t, imports.Result{File: "js/client.js", Changed: true, Rewritten: 1, Unresolved: 1}, res.Imports[0])
	assert.Equal(t, hand, readString(t, fs, "js/client.js"))
	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].GetPosition().Line)

	res, err = g.ResolveImports(context.Background(), []string{"js/client.js"}, false)
	require.NoError(t, err)
	assert.True(t, res.Imports[0].Changed)
	assert.Equal(t, "const lib = require('acme-vendor/vendor/lib.js');\nconst other = require('./elsewhere/x.js');\n",
		readString(t, fs, "js/client.js"))
	assert.Positive(t, logs.FilterMessage("resolved imports").Len())
}
