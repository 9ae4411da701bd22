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

// Package index emits the index.js file at the root of a generated tree. It
// loads every generated file and exports two lookup tables keyed by type
// URL: one of the generated classes and one of the generated deserializers.
package index

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/schema"
)

// FileName is the name of the index file, relative to the root of the
// generated tree.
const FileName = "index.js"

// Marker starts the index file.
const Marker = "// Index generated by jsparsers. DO NOT EDIT."

// Tables are the contents of the two exported lookup tables, keyed by type
// URL.
type Tables struct {
	// Types has an entry for every message and enum.
	Types []Row
	// Parsers has an entry for every message with a deserializer.
	Parsers []Row
}

// Row is one entry of a table: a type URL and a JavaScript identifier.
type Row struct {
	URL        schema.TypeURL
	Identifier string
}

// Collect returns the tables for the types declared in files. Rows are in
// registry order.
func Collect(files []*schema.File, reg *schema.Registry) Tables {
	selected := make(map[*schema.File]struct{}, len(files))
	for _, file := range files {
		selected[file] = struct{}{}
	}
	var tables Tables
	for _, entry := range reg.Entries() {
		if _, ok := selected[entry.File]; !ok {
			continue
		}
		tables.Types = append(tables.Types, Row{URL: entry.URL, Identifier: entry.Type})
		if entry.Parser != "" {
			tables.Parsers = append(tables.Parsers, Row{URL: entry.URL, Identifier: entry.Parser})
		}
	}
	return tables
}

// Generate returns the contents of the index file for files.
func Generate(files []*schema.File, reg *schema.Registry, opts jscode.Options) (string, error) {
	var requires btree.Set[string]
	for _, file := range files {
		if file.HasTypes() {
			requires.Insert(naming.JSFile(file.Path))
		}
	}
	tables := Collect(files, reg)

	w := jscode.NewWriter(opts)
	w.Line(Marker)
	w.Blank()
	requires.Scan(func(file string) bool {
		w.Linef("require(%s);", naming.Quote("./"+file))
		return true
	})
	if requires.Len() > 0 {
		w.Blank()
	}
	w.List("module.exports.types = new Map([", rows(tables.Types), "]);")
	w.Blank()
	w.List("module.exports.parsers = new Map([", rows(tables.Parsers), "]);")
	return w.Render()
}

func rows(table []Row) []string {
	items := make([]string, 0, len(table))
	for _, row := range table {
		items = append(items, fmt.Sprintf("[%s, %s]", naming.Quote(string(row.URL)), row.Identifier))
	}
	return items
}
