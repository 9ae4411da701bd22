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

package verify

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/jsparsers/codegen"
	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/internal/testutil"
	"github.com/bufbuild/jsparsers/schema"
)

func TestJS_Valid(t *testing.T) {
	t.Parallel()
	require.NoError(t, JS("a.js", "var jspb = require('google-protobuf');\nlet x = {a: 1};\n"))
}

func TestJS_Invalid(t *testing.T) {
	t.Parallel()
	err := JS("acme/a_pb.js", "let x = {a: 1;\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "acme/a_pb.js:1:")
}

func TestJS_GeneratedCode(t *testing.T) {
	t.Parallel()
	set, err := schema.NewFileSet(testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile)...)
	require.NoError(t, err)
	reg := schema.NewRegistry(set, schema.TypeURLPrefixes{}, nil)
	file := set.FindFileByPath(testutil.TaskFile)

	parsers, ok, err := codegen.FileParsers(file, reg, jscode.Options{})
	require.NoError(t, err)
	require.True(t, ok)
	getters, ok, err := codegen.TypeURLGetters(file, reg, jscode.Options{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.NoError(t, JS("task_pb.js", "var proto = {};\n"+parsers+getters))
}
