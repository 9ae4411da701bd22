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
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/schema"
)

// Variables of the generated code.
const (
	sourceObject  = "obj"
	targetMessage = "msg"
	parsedValue   = "value"
	listItem      = "listItem"
	attribute     = "attribute"
	mapKey        = "mapKey"
)

// GenerateField emits the code that reads field from the JSON object named
// source and merges it into the message named target.
func GenerateField(w *jscode.Writer, reg *schema.Registry, field *schema.Field, source, target string) error {
	raw := naming.Property(source, field.JSONName)
	switch field.Shape {
	case schema.ShapeSingular:
		return singular(w, reg, field, raw, target)
	case schema.ShapeRepeated:
		return repeated(w, reg, field, raw, target)
	case schema.ShapeMap:
		return mapEntries(w, reg, field, raw, target)
	default:
		return errors.Wrapf(errUnknownShape, "%v", field.Shape)
	}
}

func singular(w *jscode.Writer, reg *schema.Registry, field *schema.Field, raw, target string) error {
	merge := func(value string) string {
		return fmt.Sprintf("%s.%s(%s);", target, naming.Setter(field.Name), value)
	}
	return w.Block("if ("+raw+" !== undefined) {", func() error {
		return Guard(w, field.Value, raw, merge, func() error {
			return parseInto(w, reg, field.Value, raw, merge)
		})
	})
}

func repeated(w *jscode.Writer, reg *schema.Registry, field *schema.Field, raw, target string) error {
	merge := func(value string) string {
		return fmt.Sprintf("%s.%s(%s);", target, naming.Adder(field.Name), value)
	}
	return guardCollection(w, raw, func() error {
		header := fmt.Sprintf("%s.forEach((%s, index, array) => {", raw, listItem)
		return w.BlockWith(header, "});", func() error {
			return parseInto(w, reg, field.Value, listItem, merge)
		})
	})
}

// mapEntries iterates the own properties of the JSON object only. Keys and
// values are parsed separately; keys always arrive as strings.
func mapEntries(w *jscode.Writer, reg *schema.Registry, field *schema.Field, raw, target string) error {
	key, err := ParseMapKey(field.Key, attribute)
	if err != nil {
		return err
	}
	merge := func(value string) string {
		return fmt.Sprintf("%s.%s().set(%s, %s);", target, naming.MapGetter(field.Name), mapKey, value)
	}
	return guardCollection(w, raw, func() error {
		return w.Block(fmt.Sprintf("for (let %s in %s) {", attribute, raw), func() error {
			own := fmt.Sprintf("if (Object.prototype.hasOwnProperty.call(%s, %s)) {", raw, attribute)
			return w.Block(own, func() error {
				w.Linef("let %s = %s;", mapKey, key)
				return parseInto(w, reg, field.Value, raw+"["+attribute+"]", merge)
			})
		})
	})
}
