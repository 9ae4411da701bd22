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

// Package naming turns schema names into the JavaScript identifiers and file
// names used by protoc-gen-js generated code.
package naming

import (
	"path"
	"strings"
	"unicode"

	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	namespace    = "proto."
	parserSuffix = "Parser"
	jsSuffix     = "_pb.js"
)

// TypeName returns the identifier of the generated class of a message or enum.
func TypeName(name protoreflect.FullName) string {
	return namespace + string(name)
}

// ParserName returns the identifier of the deserializer class of a message.
func ParserName(name protoreflect.FullName) string {
	return TypeName(name) + parserSuffix
}

// JSFile returns the path of the file protoc-gen-js generates for the given
// proto file, in the same directory layout.
func JSFile(protoPath string) string {
	return strings.TrimSuffix(protoPath, ".proto") + jsSuffix
}

// PathToRoot returns the relative path from the directory of file to the root
// of the tree it is in, with a trailing slash. Files in the root yield "./".
func PathToRoot(file string) string {
	dir := path.Dir(path.Clean(file))
	if dir == "." {
		return "./"
	}
	return strings.Repeat("../", strings.Count(dir, "/")+1)
}

// Setter returns the setter of a singular field.
func Setter(field string) string {
	return "set" + accessor(field)
}

// Adder returns the method that appends one element to a repeated field.
func Adder(field string) string {
	return "add" + accessor(field)
}

// MapGetter returns the getter of the backing map of a map field.
func MapGetter(field string) string {
	return "get" + accessor(field) + "Map"
}

// accessor converts a field name the way protoc-gen-js names accessors: the
// name is split into words at underscores, each word is lower-cased and then
// capitalized. Names colliding with methods of jspb.Message get a "$" suffix.
func accessor(field string) string {
	var sb strings.Builder
	for _, word := range strings.Split(field, "_") {
		if word == "" {
			continue
		}
		word = strings.ToLower(word)
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	name := sb.String()
	if name == "Extension" || name == "JsPbMessageId" {
		name += "$"
	}
	return name
}

// Property returns an expression reading the property named key of object.
// Keys that are not identifiers use bracket notation.
func Property(object, key string) string {
	if isIdentifier(key) {
		return object + "." + key
	}
	return object + "[" + Quote(key) + "]"
}

// Quote returns s as a single-quoted JavaScript string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
