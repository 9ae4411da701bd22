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

// Package codegen emits the JavaScript that deserializes JSON objects into
// messages generated by protoc-gen-js.
//
// For each message a deserializer class is generated. Its fromObject method
// dispatches on the shape and value kind of every field. Nested messages are
// deserialized through the runtime's TypeParsers registry, keyed by type
// URL, so generated files do not reference each other directly.
//
// The code of a file is meant to be appended to the _pb.js file that
// protoc-gen-js generated for the same proto file.
package codegen

import (
	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/schema"
)

// ParsersMarker starts the code appended by FileParsers.
const ParsersMarker = "// Code generated by jsparsers. DO NOT EDIT."

// Locations of the runtime facilities, relative to the root of the
// generated tree.
const (
	objectParserPath = "../client/parser/object-parser.js"
	typeParsersPath  = "../client/parser/type-parsers.js"
)

// FileParsers returns the deserializers of the messages of file that have
// one in reg. It returns false if there are none, in which case nothing
// should be appended to the file.
func FileParsers(file *schema.File, reg *schema.Registry, opts jscode.Options) (string, bool, error) {
	var targets []*schema.MessageType
	for _, msg := range file.Messages {
		if reg.HasParser(msg.FullName) {
			targets = append(targets, msg)
		}
	}
	if len(targets) == 0 {
		return "", false, nil
	}

	w := jscode.NewWriter(opts)
	w.Blank()
	w.Line(ParsersMarker)
	w.Blank()
	root := naming.PathToRoot(naming.JSFile(file.Path))
	w.Linef("let %s = require(%s);", ObjectParserImport, naming.Quote(root+objectParserPath))
	w.Linef("let %s = require(%s);", TypeParsersImport, naming.Quote(root+typeParsersPath))
	for _, msg := range targets {
		w.Blank()
		if err := Deserializer(w, reg, msg); err != nil {
			return "", false, err
		}
	}
	code, err := w.Render()
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}
