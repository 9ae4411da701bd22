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

	"github.com/bufbuild/protocompile"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/jsparsers/schema"
)

// Loader provides the schema that code is generated from.
type Loader interface {
	Load(ctx context.Context) (*schema.FileSet, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*schema.FileSet, error)

var _ Loader = LoaderFunc(nil)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) (*schema.FileSet, error) {
	return f(ctx)
}

// DescriptorSetLoader loads a binary FileDescriptorSet, such as protoc
// writes with --descriptor_set_out. Every file of the set is requested, so
// the set must include the imports of its files (protoc --include_imports).
type DescriptorSetLoader struct {
	Path string
	// FS is the file system Path is on. If nil, Path is opened from the
	// operating system.
	FS billy.Filesystem
}

var _ Loader = (*DescriptorSetLoader)(nil)

// Load implements Loader.
func (l *DescriptorSetLoader) Load(_ context.Context) (*schema.FileSet, error) {
	data, err := l.read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading descriptor set %s", l.Path)
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, errors.Wrapf(err, "decoding descriptor set %s", l.Path)
	}
	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "linking descriptor set %s", l.Path),
			"the descriptor set must contain all imported files; pass --include_imports to protoc")
	}
	fds := make([]protoreflect.FileDescriptor, 0, len(set.GetFile()))
	for _, fdp := range set.GetFile() {
		fd, err := files.FindFileByPath(fdp.GetName())
		if err != nil {
			return nil, errors.Wrapf(err, "descriptor set %s", l.Path)
		}
		fds = append(fds, fd)
	}
	return schema.NewFileSet(fds...)
}

func (l *DescriptorSetLoader) read() ([]byte, error) {
	if l.FS == nil {
		return os.ReadFile(l.Path)
	}
	return util.ReadFile(l.FS, l.Path)
}

// SourceLoader compiles .proto sources. The files included with protoc
// are available without being on the import path.
type SourceLoader struct {
	// ImportPaths are searched for Files and their imports. If empty, paths
	// are relative to the current directory.
	ImportPaths []string
	// Files are the paths of the requested files, relative to an import
	// path.
	Files []string
	// Accessor opens source files. If nil, files are opened from the
	// operating system.
	Accessor func(path string) (io.ReadCloser, error)
}

var _ Loader = (*SourceLoader)(nil)

// Load implements Loader.
func (l *SourceLoader) Load(ctx context.Context) (*schema.FileSet, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: l.ImportPaths,
			Accessor:    l.Accessor,
		}),
	}
	linked, err := compiler.Compile(ctx, l.Files...)
	if err != nil {
		return nil, errors.Wrap(err, "compiling sources")
	}
	fds := make([]protoreflect.FileDescriptor, len(linked))
	for i, f := range linked {
		fds[i] = f
	}
	return schema.NewFileSet(fds...)
}

// FilesLoader provides already linked descriptors.
type FilesLoader struct {
	Files []protoreflect.FileDescriptor
}

var _ Loader = (*FilesLoader)(nil)

// Load implements Loader.
func (l *FilesLoader) Load(_ context.Context) (*schema.FileSet, error) {
	return schema.NewFileSet(l.Files...)
}
