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

// Package jstest executes generated deserializers in an embedded JavaScript
// engine. Messages are stand-ins that record every setter, adder and map
// call, so a test can assert on exactly what a deserializer merged.
package jstest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/schema"
)

const prelude = `
var proto = {};
var __parsers = {};

function __ns(path) {
  var o = proto;
  path.split('.').forEach(function(p) {
    if (p === '') {
      return;
    }
    if (!(p in o)) {
      o[p] = {};
    }
    o = o[p];
  });
}

function __message(type) {
  return function() {
    this.$type = type;
    this.$ops = [];
  };
}

function __op(msg, op) {
  msg.$ops.push(op);
}

function __register(url, fromObject) {
  var P = function() {};
  P.prototype.fromObject = fromObject;
  __parsers[url] = P;
}

var __runtime = {
  ObjectParser: function ObjectParser() {},
  TypeParsers: {
    parserFor: function(url) {
      var P = __parsers[url];
      if (P === undefined) {
        throw new Error('no parser registered for ' + url);
      }
      return new P();
    }
  }
};

function require(path) {
  if (path.endsWith('/object-parser.js')) {
    return __runtime.ObjectParser;
  }
  if (path.endsWith('/type-parsers.js')) {
    return __runtime.TypeParsers;
  }
  return {};
}

function __snapshot(v) {
  if (v === undefined) {
    return '<undefined>';
  }
  if (v === null) {
    return null;
  }
  if (typeof v === 'number') {
    if (isNaN(v)) {
      return 'NaN';
    }
    if (!isFinite(v)) {
      return v > 0 ? 'Infinity' : '-Infinity';
    }
    return v;
  }
  if (typeof v === 'object' && v.$ops !== undefined) {
    return {
      type: v.$type,
      ops: v.$ops.map(function(o) {
        var c = {op: o.op, field: o.field, value: __snapshot(o.value)};
        if (o.op === 'put') {
          c.key = __snapshot(o.key);
        }
        return c;
      })
    };
  }
  return v;
}
`

// Runtime is a JavaScript engine with stand-ins for the classes of a
// registry's types.
type Runtime struct {
	t   testing.TB
	vm  *goja.Runtime
	reg *schema.Registry
}

// New returns a Runtime with stand-ins for every type of set.
func New(t testing.TB, set *schema.FileSet, reg *schema.Registry) *Runtime {
	t.Helper()
	r := &Runtime{t: t, vm: goja.New(), reg: reg}
	r.Run(prelude)
	r.Run(stubs(set))
	return r
}

// Run runs src in the global scope.
func (r *Runtime) Run(src string) goja.Value {
	r.t.Helper()
	v, err := r.vm.RunString(src)
	require.NoError(r.t, err, "running:\n%s", src)
	return v
}

// Load runs generated code in a scope of its own, so that the top-level
// declarations of several files do not clash, and registers every
// deserializer of the registry that the code defined.
func (r *Runtime) Load(code string) {
	r.t.Helper()
	r.Run("(function() {\n" + code + "\n})();")
	for _, entry := range r.reg.Entries() {
		if entry.Parser == "" {
			continue
		}
		r.Run(fmt.Sprintf("if (typeof %[1]s === 'function') { __parsers[%[2]s] = %[1]s; }",
			entry.Parser, naming.Quote(string(entry.URL))))
	}
}

// RegisterParser registers a hand-written deserializer for url. fromObject
// is the source of a function taking the raw value.
func (r *Runtime) RegisterParser(url schema.TypeURL, fromObject string) {
	r.t.Helper()
	r.Run(fmt.Sprintf("__register(%s, %s);", naming.Quote(string(url)), fromObject))
}

// FromObject deserializes the JavaScript expression input with the
// deserializer of the named message and returns a JSON snapshot of the
// result: null, or {"type": ..., "ops": [...]} listing every merge in order.
func (r *Runtime) FromObject(name protoreflect.FullName, input string) string {
	r.t.Helper()
	value, err := r.TryFromObject(name, input)
	require.NoError(r.t, err)
	return value
}

// TryFromObject is like FromObject but returns the JavaScript exception
// rather than failing the test.
func (r *Runtime) TryFromObject(name protoreflect.FullName, input string) (string, error) {
	r.t.Helper()
	entry, ok := r.reg.Lookup(name)
	require.True(r.t, ok, "unknown type %s", name)
	require.NotEmpty(r.t, entry.Parser, "no deserializer for %s", name)
	v, err := r.vm.RunString(fmt.Sprintf("JSON.stringify(__snapshot(new %s().fromObject(%s)))", entry.Parser, input))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// stubs returns the stand-ins of all types of set, parents before nested
// types.
func stubs(set *schema.FileSet) string {
	var sb strings.Builder
	for _, file := range set.Files() {
		if file.Package != "" {
			fmt.Fprintf(&sb, "__ns(%s);\n", naming.Quote(string(file.Package)))
		}
		for _, msg := range file.Messages {
			typeName := naming.TypeName(msg.FullName)
			fmt.Fprintf(&sb, "%s = __message(%s);\n", typeName, naming.Quote(string(msg.FullName)))
			for _, field := range msg.Fields {
				quoted := naming.Quote(field.Name)
				switch field.Shape {
				case schema.ShapeSingular:
					fmt.Fprintf(&sb, "%s.prototype.%s = function(v) { __op(this, {op: 'set', field: %s, value: v}); };\n",
						typeName, naming.Setter(field.Name), quoted)
				case schema.ShapeRepeated:
					fmt.Fprintf(&sb, "%s.prototype.%s = function(v) { __op(this, {op: 'add', field: %s, value: v}); };\n",
						typeName, naming.Adder(field.Name), quoted)
				case schema.ShapeMap:
					fmt.Fprintf(&sb, "%s.prototype.%s = function() { var m = this; return {set: function(k, v) { __op(m, {op: 'put', field: %s, key: k, value: v}); return this; }}; };\n",
						typeName, naming.MapGetter(field.Name), quoted)
				}
			}
		}
	}
	// enums last: a nested enum needs its parent message
	for _, file := range set.Files() {
		for _, en := range file.Enums {
			var values []string
			for _, v := range en.Values {
				values = append(values, fmt.Sprintf("%s: %d", v.Name, v.Number))
			}
			fmt.Fprintf(&sb, "%s = {%s};\n", naming.TypeName(en.FullName), strings.Join(values, ", "))
		}
	}
	return sb.String()
}
