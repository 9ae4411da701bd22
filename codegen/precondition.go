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
	"github.com/cockroachdb/errors"

	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/schema"
)

// Guard emits the null check of a singular value around parseAndMerge: a
// null raw value is merged as null and not parsed.
//
// Values of KindMessageNoNullGuard are not checked at all. Null is a valid
// google.protobuf.Value, so it must reach the deserializer of that type.
func Guard(w *jscode.Writer, kind schema.ValueKind, raw string, merge func(string) string, parseAndMerge func() error) error {
	switch kind.Kind {
	case schema.KindMessageNoNullGuard:
		return parseAndMerge()
	case schema.KindPrimitive, schema.KindEnum, schema.KindMessage:
		w.Enter("if (" + raw + " === null) {")
		w.Line(merge("null"))
		if err := w.Else("} else {"); err != nil {
			return err
		}
		err := parseAndMerge()
		if exitErr := w.Exit(); err == nil {
			err = exitErr
		}
		return err
	default:
		return errors.Wrapf(errUnknownKind, "%v", kind)
	}
}

// guardCollection emits the check that a repeated or map field is present
// around body. JSON null stands for an empty collection, so nothing is
// merged for it.
func guardCollection(w *jscode.Writer, raw string, body func() error) error {
	return w.Block("if ("+raw+" !== undefined && "+raw+" !== null) {", body)
}
