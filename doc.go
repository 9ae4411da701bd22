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

// Package jsparsers post-processes the JavaScript that protoc-gen-js
// generates, so that messages can be created from plain JSON objects.
//
// A run has four steps, each of them run to completion before the next one
// starts:
//  1. Create parsers: a deserializer class is appended to the _pb.js file of
//     every schema file, with a fromObject method for each message.
//     Also see: codegen.FileParsers
//  2. Append type URL getters: every message and enum gets a static typeUrl
//     function.
//     Also see: codegen.TypeURLGetters
//  3. Generate the index: index.js at the root of the generated tree loads
//     all files and exports lookup tables of types and deserializers keyed
//     by type URL.
//     Also see: index.Generate
//  4. Resolve imports: the require('...') lines of the generated files are
//     rewritten so that they resolve in the deployed layout.
//     Also see: imports.Resolver
//
// Files within a step are processed in parallel. The generated code of a
// file only depends on the immutable schema and type registry, so the order
// in which files are processed is not observable.
//
// # Loaders
//
// A Loader provides the schema. A DescriptorSetLoader reads the descriptor
// set protoc wrote alongside the JavaScript; a SourceLoader compiles .proto
// sources; a FilesLoader takes descriptors that are already linked.
//
// # Generator
//
// A Generator works on a billy.Filesystem, which makes it possible to run
// it against an in-memory tree. Only the FS and JSDir fields are required:
//
//	gen := jsparsers.Generator{
//		FS:    osfs.New("build/generated"),
//		JSDir: "js",
//	}
//	set, err := (&jsparsers.DescriptorSetLoader{Path: "build/descriptors.pb"}).Load(ctx)
//	if err != nil {
//		return err
//	}
//	result, err := gen.Generate(ctx, set)
//
// By default the run fails at the first error and ignores warnings, such as
// imports that could not be resolved. A custom reporter may collect errors
// instead; the files that had errors are then left out of the later steps,
// and Generate returns reporter.ErrInvalidOutput.
package jsparsers
