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
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/jsparsers/reporter"
	"github.com/bufbuild/jsparsers/walk"
)

// FileSet is a set of files closed under imports.
type FileSet struct {
	files    []*File
	byPath   map[string]*File
	messages map[protoreflect.FullName]*MessageType
	enums    map[protoreflect.FullName]*EnumType
}

// NewFileSet builds a FileSet from the given files and everything they
// import, transitively. Files are ordered so that every file comes after
// the files it imports; otherwise the order of fds is kept. The files in fds
// are marked as requested; their imports are not, unless also in fds.
func NewFileSet(fds ...protoreflect.FileDescriptor) (*FileSet, error) {
	s := &FileSet{
		byPath:   map[string]*File{},
		messages: map[protoreflect.FullName]*MessageType{},
		enums:    map[protoreflect.FullName]*EnumType{},
	}
	for _, fd := range fds {
		if err := s.add(fd); err != nil {
			return nil, err
		}
		s.byPath[fd.Path()].Requested = true
	}
	return s, nil
}

func (s *FileSet) add(fd protoreflect.FileDescriptor) error {
	if _, ok := s.byPath[fd.Path()]; ok {
		return nil
	}
	file := &File{Path: fd.Path(), Package: fd.Package()}
	// mark as seen before visiting imports, in case of (invalid) cycles
	s.byPath[fd.Path()] = file
	for i := 0; i < fd.Imports().Len(); i++ {
		imp := fd.Imports().Get(i)
		file.Imports = append(file.Imports, imp.Path())
		if err := s.add(imp.FileDescriptor); err != nil {
			return err
		}
	}
	err := walk.Types(fd, func(d protoreflect.Descriptor) error {
		switch d := d.(type) {
		case protoreflect.MessageDescriptor:
			msg, err := newMessageType(file, d)
			if err != nil {
				return err
			}
			file.Messages = append(file.Messages, msg)
			s.messages[msg.FullName] = msg
		case protoreflect.EnumDescriptor:
			en := newEnumType(file, d)
			file.Enums = append(file.Enums, en)
			s.enums[en.FullName] = en
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.files = append(s.files, file)
	return nil
}

func newMessageType(file *File, md protoreflect.MessageDescriptor) (*MessageType, error) {
	msg := &MessageType{FullName: md.FullName(), File: file}
	for i := 0; i < md.Fields().Len(); i++ {
		field, err := newField(file, md.Fields().Get(i))
		if err != nil {
			return nil, err
		}
		msg.Fields = append(msg.Fields, field)
	}
	return msg, nil
}

func newField(file *File, fd protoreflect.FieldDescriptor) (*Field, error) {
	field := &Field{
		Name:     string(fd.Name()),
		JSONName: fd.JSONName(),
		Number:   fd.Number(),
	}
	valueDesc := fd
	switch {
	case fd.IsMap():
		field.Shape = ShapeMap
		key, ok := valueKindOf(fd.MapKey())
		if !ok {
			return nil, reporter.SchemaInconsistency(file.Path, string(fd.FullName()),
				"map key of kind %v has no JSON mapping", fd.MapKey().Kind())
		}
		field.Key = key
		valueDesc = fd.MapValue()
	case fd.IsList():
		field.Shape = ShapeRepeated
	default:
		field.Shape = ShapeSingular
	}
	value, ok := valueKindOf(valueDesc)
	if !ok {
		return nil, reporter.SchemaInconsistency(file.Path, string(fd.FullName()),
			"value of kind %v has no JSON mapping", valueDesc.Kind())
	}
	field.Value = value
	return field, nil
}

func newEnumType(file *File, ed protoreflect.EnumDescriptor) *EnumType {
	en := &EnumType{FullName: ed.FullName(), File: file}
	for i := 0; i < ed.Values().Len(); i++ {
		v := ed.Values().Get(i)
		en.Values = append(en.Values, EnumValueDesc{Name: string(v.Name()), Number: v.Number()})
	}
	return en
}

// Files returns all files of the set, imports first.
func (s *FileSet) Files() []*File {
	return s.files
}

// Requested returns the files the set was built from, imports first.
func (s *FileSet) Requested() []*File {
	var files []*File
	for _, file := range s.files {
		if file.Requested {
			files = append(files, file)
		}
	}
	return files
}

// FindFileByPath returns the file with the given path, or nil.
func (s *FileSet) FindFileByPath(path string) *File {
	return s.byPath[path]
}

// FindMessage returns the message with the given name, or nil.
func (s *FileSet) FindMessage(name protoreflect.FullName) *MessageType {
	return s.messages[name]
}

// FindEnum returns the enum with the given name, or nil.
func (s *FileSet) FindEnum(name protoreflect.FullName) *EnumType {
	return s.enums[name]
}
