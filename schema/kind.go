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

package schema

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// DynamicValue is the message that represents an arbitrary JSON value,
// including null.
const DynamicValue protoreflect.FullName = "google.protobuf.Value"

// Shape says how many values a field holds.
type Shape uint8

const (
	ShapeSingular Shape = iota + 1
	ShapeRepeated
	ShapeMap
)

func (s Shape) String() string {
	switch s {
	case ShapeSingular:
		return "singular"
	case ShapeRepeated:
		return "repeated"
	case ShapeMap:
		return "map"
	default:
		return fmt.Sprintf("Shape(%d)", s)
	}
}

// Kind is the tag of a ValueKind.
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindEnum
	KindMessage
	// KindMessageNoNullGuard is a message that must see JSON null as a
	// value of its own rather than as the absence of the field. Only
	// google.protobuf.Value has this kind.
	KindMessageNoNullGuard
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindMessage:
		return "message"
	case KindMessageNoNullGuard:
		return "message (no null guard)"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Primitive is the scalar type of a primitive value.
type Primitive uint8

const (
	PrimitiveInt32 Primitive = iota + 1
	PrimitiveSint32
	PrimitiveSfixed32
	PrimitiveUint32
	PrimitiveFixed32
	PrimitiveInt64
	PrimitiveSint64
	PrimitiveSfixed64
	PrimitiveUint64
	PrimitiveFixed64
	PrimitiveFloat
	PrimitiveDouble
	PrimitiveBool
	PrimitiveString
	PrimitiveBytes
)

var primitiveNames = map[Primitive]string{
	PrimitiveInt32:    "int32",
	PrimitiveSint32:   "sint32",
	PrimitiveSfixed32: "sfixed32",
	PrimitiveUint32:   "uint32",
	PrimitiveFixed32:  "fixed32",
	PrimitiveInt64:    "int64",
	PrimitiveSint64:   "sint64",
	PrimitiveSfixed64: "sfixed64",
	PrimitiveUint64:   "uint64",
	PrimitiveFixed64:  "fixed64",
	PrimitiveFloat:    "float",
	PrimitiveDouble:   "double",
	PrimitiveBool:     "bool",
	PrimitiveString:   "string",
	PrimitiveBytes:    "bytes",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Primitive(%d)", p)
}

// Valid reports whether p is one of the declared primitives.
func (p Primitive) Valid() bool {
	return p >= PrimitiveInt32 && p <= PrimitiveBytes
}

// Is64Bit reports whether p is one of the 64-bit integer types, which the
// JSON mapping encodes as strings.
func (p Primitive) Is64Bit() bool {
	return p >= PrimitiveInt64 && p <= PrimitiveFixed64
}

// IsInteger reports whether p is an integer type of any width.
func (p Primitive) IsInteger() bool {
	return p >= PrimitiveInt32 && p <= PrimitiveFixed64
}

// IsFloat reports whether p is float or double.
func (p Primitive) IsFloat() bool {
	return p == PrimitiveFloat || p == PrimitiveDouble
}

// ValueKind is what a field, or a map key or value, holds. It is a tagged
// union: Primitive is set only for KindPrimitive, and Type names the enum or
// message for the other kinds. The zero ValueKind is invalid.
type ValueKind struct {
	Kind      Kind
	Primitive Primitive
	Type      protoreflect.FullName
}

// PrimitiveValue returns the ValueKind of a scalar.
func PrimitiveValue(p Primitive) ValueKind {
	return ValueKind{Kind: KindPrimitive, Primitive: p}
}

// EnumValue returns the ValueKind of the named enum.
func EnumValue(name protoreflect.FullName) ValueKind {
	return ValueKind{Kind: KindEnum, Type: name}
}

// MessageValue returns the ValueKind of the named message. The dynamic
// value message gets KindMessageNoNullGuard.
func MessageValue(name protoreflect.FullName) ValueKind {
	if name == DynamicValue {
		return ValueKind{Kind: KindMessageNoNullGuard, Type: name}
	}
	return ValueKind{Kind: KindMessage, Type: name}
}

// IsMessage reports whether v is a message of either message kind.
func (v ValueKind) IsMessage() bool {
	return v.Kind == KindMessage || v.Kind == KindMessageNoNullGuard
}

func (v ValueKind) String() string {
	switch v.Kind {
	case KindPrimitive:
		return v.Primitive.String()
	case KindEnum, KindMessage, KindMessageNoNullGuard:
		return fmt.Sprintf("%v %s", v.Kind, v.Type)
	default:
		return v.Kind.String()
	}
}

var scalarKinds = map[protoreflect.Kind]Primitive{
	protoreflect.Int32Kind:    PrimitiveInt32,
	protoreflect.Sint32Kind:   PrimitiveSint32,
	protoreflect.Sfixed32Kind: PrimitiveSfixed32,
	protoreflect.Uint32Kind:   PrimitiveUint32,
	protoreflect.Fixed32Kind:  PrimitiveFixed32,
	protoreflect.Int64Kind:    PrimitiveInt64,
	protoreflect.Sint64Kind:   PrimitiveSint64,
	protoreflect.Sfixed64Kind: PrimitiveSfixed64,
	protoreflect.Uint64Kind:   PrimitiveUint64,
	protoreflect.Fixed64Kind:  PrimitiveFixed64,
	protoreflect.FloatKind:    PrimitiveFloat,
	protoreflect.DoubleKind:   PrimitiveDouble,
	protoreflect.BoolKind:     PrimitiveBool,
	protoreflect.StringKind:   PrimitiveString,
	protoreflect.BytesKind:    PrimitiveBytes,
}

// valueKindOf returns the value kind of fd, or false if its kind is not one
// that has a JSON mapping.
func valueKindOf(fd protoreflect.FieldDescriptor) (ValueKind, bool) {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return EnumValue(fd.Enum().FullName()), true
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return MessageValue(fd.Message().FullName()), true
	default:
		p, ok := scalarKinds[fd.Kind()]
		if !ok {
			return ValueKind{}, false
		}
		return PrimitiveValue(p), true
	}
}
