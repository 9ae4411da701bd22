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

	"github.com/bufbuild/jsparsers/internal/naming"
)

// Eligibility decides whether a message gets a generated deserializer.
// Messages with a special JSON mapping provided by the runtime are not
// eligible.
type Eligibility func(*MessageType) bool

// Entry describes one type of the registry.
type Entry struct {
	URL      TypeURL
	FullName protoreflect.FullName
	// Type is the identifier of the generated class.
	Type string
	// Parser is the identifier of the generated deserializer. It is empty
	// for enums and for messages that do not get a deserializer.
	Parser string
	// File is the file declaring the type.
	File *File
}

// Registry maps types to their URLs and generated identifiers. It is built
// once per run and read-only afterwards.
type Registry struct {
	entries []*Entry
	byName  map[protoreflect.FullName]*Entry
}

// NewRegistry builds the registry of all messages and enums of set.
func NewRegistry(set *FileSet, prefixes TypeURLPrefixes, eligible Eligibility) *Registry {
	r := &Registry{
		byName: map[protoreflect.FullName]*Entry{},
	}
	for _, file := range set.Files() {
		for _, msg := range file.Messages {
			entry := r.add(file, msg.FullName, prefixes)
			if eligible == nil || eligible(msg) {
				entry.Parser = naming.ParserName(msg.FullName)
			}
		}
		for _, en := range file.Enums {
			r.add(file, en.FullName, prefixes)
		}
	}
	return r
}

func (r *Registry) add(file *File, name protoreflect.FullName, prefixes TypeURLPrefixes) *Entry {
	entry := &Entry{
		URL:      prefixes.URL(file.Package, name),
		FullName: name,
		Type:     naming.TypeName(name),
		File:     file,
	}
	r.entries = append(r.entries, entry)
	r.byName[name] = entry
	return entry
}

// Entries returns all entries, in the order types appear in the file set.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Lookup returns the entry of the named type.
func (r *Registry) Lookup(name protoreflect.FullName) (*Entry, bool) {
	entry, ok := r.byName[name]
	return entry, ok
}

// HasParser reports whether the named message gets a generated deserializer.
func (r *Registry) HasParser(name protoreflect.FullName) bool {
	entry, ok := r.byName[name]
	return ok && entry.Parser != ""
}
