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
	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/schema"
)

// Names of the runtime facilities imported by every generated file.
const (
	ObjectParserImport = "ObjectParser"
	TypeParsersImport  = "TypeParsers"
	parseMethod        = "fromObject"
)

var (
	errUnknownKind    = errors.New("unrecognized value kind")
	errMissingEntry   = errors.New("type is missing from the registry")
	errUnknownShape   = errors.New("unrecognized field shape")
	errUnsupportedKey = errors.New("unsupported map key kind")
)

// ParseValue returns the expression that converts the raw JSON value raw
// into a value of the given kind.
//
// 64-bit integers are encoded as strings and floats may be encoded as
// strings such as "NaN", so both are parsed. Enums are looked up by name.
// Messages are handed to the deserializer registered for their type URL.
// Every other primitive is used as is.
func ParseValue(kind schema.ValueKind, reg *schema.Registry, raw string) (string, error) {
	switch kind.Kind {
	case schema.KindPrimitive:
		switch {
		case !kind.Primitive.Valid():
			return "", errors.Wrapf(errUnknownKind, "%v", kind)
		case kind.Primitive.Is64Bit():
			return "parseInt(" + raw + ")", nil
		case kind.Primitive.IsFloat():
			return "parseFloat(" + raw + ")", nil
		default:
			return raw, nil
		}
	case schema.KindEnum:
		entry, err := lookup(reg, kind)
		if err != nil {
			return "", err
		}
		return entry.Type + "[" + raw + "]", nil
	case schema.KindMessage, schema.KindMessageNoNullGuard:
		entry, err := lookup(reg, kind)
		if err != nil {
			return "", err
		}
		return TypeParsersImport + ".parserFor(" + naming.Quote(string(entry.URL)) + ")." +
			parseMethod + "(" + raw + ")", nil
	default:
		return "", errors.Wrapf(errUnknownKind, "%v", kind)
	}
}

// ParseMapKey returns the expression that converts the property name raw of
// a JSON object into a map key of the given kind. Property names are always
// strings, whatever the declared key type.
func ParseMapKey(key schema.ValueKind, raw string) (string, error) {
	if key.Kind != schema.KindPrimitive {
		return "", errors.Wrapf(errUnsupportedKey, "%v", key)
	}
	switch {
	case key.Primitive.IsInteger():
		return "parseInt(" + raw + ")", nil
	case key.Primitive == schema.PrimitiveBool:
		return "(" + raw + " === 'true')", nil
	case key.Primitive == schema.PrimitiveString:
		return raw, nil
	default:
		return "", errors.Wrapf(errUnsupportedKey, "%v", key)
	}
}

func lookup(reg *schema.Registry, kind schema.ValueKind) (*schema.Entry, error) {
	entry, ok := reg.Lookup(kind.Type)
	if !ok {
		return nil, errors.Wrapf(errMissingEntry, "%s", kind.Type)
	}
	return entry, nil
}

// parseInto emits the parse of raw into a new variable named value, then the
// statement produced by merge for that variable.
func parseInto(w *jscode.Writer, reg *schema.Registry, kind schema.ValueKind, raw string, merge func(string) string) error {
	expr, err := ParseValue(kind, reg, raw)
	if err != nil {
		return err
	}
	w.Linef("let %s = %s;", parsedValue, expr)
	w.Line(merge(parsedValue))
	return nil
}
