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

package codegen

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/reporter"
	"github.com/bufbuild/jsparsers/schema"
)

// TypeURLMarker starts the code appended by TypeURLGetters.
const TypeURLMarker = "// Type URLs generated by jsparsers. DO NOT EDIT."

// TypeURLGetters returns a static typeUrl function for every message and
// enum of file. It returns false if the file declares no types.
func TypeURLGetters(file *schema.File, reg *schema.Registry, opts jscode.Options) (string, bool, error) {
	if !file.HasTypes() {
		return "", false, nil
	}
	names := make([]protoreflect.FullName, 0, len(file.Messages)+len(file.Enums))
	for _, msg := range file.Messages {
		names = append(names, msg.FullName)
	}
	for _, en := range file.Enums {
		names = append(names, en.FullName)
	}

	w := jscode.NewWriter(opts)
	w.Blank()
	w.Line(TypeURLMarker)
	for _, name := range names {
		entry, ok := reg.Lookup(name)
		if !ok {
			return "", false, reporter.SchemaInconsistency(file.Path, string(name), "%v", errMissingEntry)
		}
		w.Blank()
		err := w.BlockWith(entry.Type+".typeUrl = function() {", "};", func() error {
			w.Linef("return %s;", naming.Quote(string(entry.URL)))
			return nil
		})
		if err != nil {
			return "", false, err
		}
	}
	code, err := w.Render()
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}
