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

// Package schema is the read-only view of message types that code generation
// works from. It is built once from linked descriptors and never mutated
// afterwards, so it may be shared by concurrent generation of many files.
//
// Every field is reduced to a Shape and a ValueKind, which together decide
// what deserialization code the field gets.
package schema

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// File is one schema file and the types it declares.
type File struct {
	Path    string
	Package protoreflect.FullName
	// Messages in declaration order, nested messages right after their
	// parent. Map entries are not included.
	Messages []*MessageType
	// Enums in declaration order, including nested enums.
	Enums []*EnumType
	// Imports are the paths of the files this file imports.
	Imports []string
	// Requested is set for files that code is generated for, as opposed to
	// files that are only in the set because they are imported.
	Requested bool
}

// HasTypes reports whether the file declares any message or enum.
func (f *File) HasTypes() bool {
	return len(f.Messages) > 0 || len(f.Enums) > 0
}

// MessageType is a message and its fields.
type MessageType struct {
	FullName protoreflect.FullName
	File     *File
	// Fields in declaration order.
	Fields []*Field
}

// Field is one field of a message.
type Field struct {
	Name     string
	JSONName string
	Number   protoreflect.FieldNumber
	Shape    Shape
	// Value is the kind of the field's value, or of the map's values.
	Value ValueKind
	// Key is the kind of the map's keys; only set for ShapeMap.
	Key ValueKind
}

// EnumType is an enum and its values.
type EnumType struct {
	FullName protoreflect.FullName
	File     *File
	Values   []EnumValueDesc
}

// EnumValueDesc is a named value of an enum.
type EnumValueDesc struct {
	Name   string
	Number protoreflect.EnumNumber
}
