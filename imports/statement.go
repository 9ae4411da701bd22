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

package imports

import (
	"path"
	"strings"

	"github.com/bufbuild/jsparsers/reporter"
)

const (
	importStart = "require('"
	importEnd   = "')"

	currentDir = "./"
	parentDir  = "../"
)

// Statement is an import found on one line of a file. Statements are
// immutable: rewriting the reference yields a new Statement.
type Statement struct {
	// Dir is the directory of the declaring file.
	Dir string
	// Text is the whole line.
	Text string
	// Ref is the referenced path, as written.
	Ref string

	// bounds of Ref in Text
	start, end int
}

// IsImport reports whether line contains an import statement.
func IsImport(line string) bool {
	return strings.Contains(line, importStart)
}

// ParseStatement parses the import on line, which is line number lineNo of
// the file named file. The reference ends at the first "')" following the
// opening "require('". A line without such an ending is reported as a
// *reporter.ImportError.
func ParseStatement(file string, lineNo int, line string) (Statement, error) {
	begin := strings.Index(line, importStart)
	if begin < 0 {
		return Statement{}, reporter.MalformedImport(file, lineNo, line, "no "+importStart)
	}
	begin += len(importStart)
	length := strings.Index(line[begin:], importEnd)
	if length < 0 {
		return Statement{}, reporter.MalformedImport(file, lineNo, line, "missing closing "+importEnd)
	}
	return Statement{
		Dir:   path.Dir(file),
		Text:  line,
		Ref:   line[begin : begin+length],
		start: begin,
		end:   begin + length,
	}, nil
}

// WithRef returns a copy of s referencing ref instead.
func (s Statement) WithRef(ref string) Statement {
	s.Text = s.Text[:s.start] + ref + s.Text[s.end:]
	s.Ref = ref
	s.end = s.start + len(ref)
	return s
}

// IsRelative reports whether the reference is relative to the declaring
// file.
func (s Statement) IsRelative() bool {
	return strings.HasPrefix(s.Ref, currentDir) || strings.HasPrefix(s.Ref, parentDir)
}

// Target returns the path of the referenced file, relative to the root of
// the file system, and false if the reference is not relative or leaves the
// root.
func (s Statement) Target() (string, bool) {
	if !s.IsRelative() {
		return "", false
	}
	target := path.Join(s.Dir, s.Ref)
	if target == ".." || strings.HasPrefix(target, parentDir) {
		return "", false
	}
	return target, true
}

func (s Statement) String() string {
	return s.Text
}
