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
	"io"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/bufbuild/jsparsers/internal/testutil"
	"github.com/bufbuild/jsparsers/schema"
)

func requestedPaths(set *schema.FileSet) []string {
	var paths []string
	for _, file := range set.Requested() {
		paths = append(paths, file.Path)
	}
	return paths
}

func TestDescriptorSetLoader(t *testing.T) {
	t.Parallel()
	fds := testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile)
	data, err := proto.Marshal(testutil.DescriptorSet(fds...))
	require.NoError(t, err)
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "build/descriptors.pb", data, 0o644))

	set, err := (&DescriptorSetLoader{Path: "build/descriptors.pb", FS: fs}).Load(context.Background())
	require.NoError(t, err)
	// every file of the set is requested
	assert.Equal(t, []string{
		testutil.IDsFile,
		"google/protobuf/struct.proto",
		"google/protobuf/timestamp.proto",
		testutil.TaskFile,
	}, requestedPaths(set))
	assert.NotNil(t, set.FindMessage("acme.tasks.v1.Task.Comment"))
}

func TestDescriptorSetLoader_MissingImports(t *testing.T) {
	t.Parallel()
	fds := testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile)
	descriptors := testutil.DescriptorSet(fds...)
	// only the last file, as protoc writes it without --include_imports
	descriptors.File = descriptors.File[len(descriptors.File)-1:]
	data, err := proto.Marshal(descriptors)
	require.NoError(t, err)
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "descriptors.pb", data, 0o644))

	_, err = (&DescriptorSetLoader{Path: "descriptors.pb", FS: fs}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, strings.Join(errors.GetAllHints(err), "\n"), "--include_imports")
}

func TestDescriptorSetLoader_NotFound(t *testing.T) {
	t.Parallel()
	_, err := (&DescriptorSetLoader{Path: "missing.pb", FS: memfs.New()}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSourceLoader(t *testing.T) {
	t.Parallel()
	sources := testutil.TaskSources()
	loader := &SourceLoader{
		Files: []string{testutil.TaskFile},
		Accessor: func(path string) (io.ReadCloser, error) {
			src, ok := sources[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return io.NopCloser(strings.NewReader(src)), nil
		},
	}
	set, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.TaskFile}, requestedPaths(set))
	assert.Len(t, set.Files(), 4)
}

func TestLoaderFunc(t *testing.T) {
	t.Parallel()
	want, err := schema.NewFileSet()
	require.NoError(t, err)
	got, err := LoaderFunc(func(context.Context) (*schema.FileSet, error) { return want, nil }).Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
