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
	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/reporter"
	"github.com/bufbuild/jsparsers/schema"
)

// Deserializer emits the deserializer class of msg: a subclass of the
// runtime's ObjectParser whose fromObject method returns null for a null
// input and otherwise a new message with every field merged, in declaration
// order.
//
// Errors are *reporter.SchemaError values naming the offending field.
func Deserializer(w *jscode.Writer, reg *schema.Registry, msg *schema.MessageType) error {
	entry, ok := reg.Lookup(msg.FullName)
	if !ok || entry.Parser == "" {
		return reporter.SchemaInconsistency(msg.File.Path, string(msg.FullName), "%v", errMissingEntry)
	}
	parser := entry.Parser

	err := w.BlockWith(parser+" = function() {", "};", func() error {
		w.Linef("%s.call(this);", ObjectParserImport)
		return nil
	})
	if err != nil {
		return err
	}
	w.Linef("%s.prototype = Object.create(%s.prototype);", parser, ObjectParserImport)
	w.Linef("%s.prototype.constructor = %s;", parser, parser)
	w.Blank()

	header := parser + ".prototype." + parseMethod + " = function(" + sourceObject + ") {"
	return w.BlockWith(header, "};", func() error {
		err := w.Block("if ("+sourceObject+" === null) {", func() error {
			w.Line("return null;")
			return nil
		})
		if err != nil {
			return err
		}
		w.Blank()
		w.Linef("let %s = new %s();", targetMessage, entry.Type)
		for _, field := range msg.Fields {
			if err := GenerateField(w, reg, field, sourceObject, targetMessage); err != nil {
				return &reporter.SchemaError{
					Pos: reporter.Position{File: msg.File.Path, Element: string(msg.FullName) + "." + field.Name},
					Err: err,
				}
			}
		}
		if len(msg.Fields) > 0 {
			w.Blank()
		}
		w.Linef("return %s;", targetMessage)
		return nil
	})
}
