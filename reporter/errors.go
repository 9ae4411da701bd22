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

package reporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidOutput is a sentinel error that is returned by a generation run
// in the event that errors were encountered, but the configured ErrorReporter
// always returns nil.
var ErrInvalidOutput = errors.New("generation failed: errors were reported")

// ErrSchemaInconsistency is matched (via errors.Is) by every *SchemaError.
// Such errors abort the emission for the file that contains the element.
var ErrSchemaInconsistency = errors.New("schema inconsistency")

// ErrMalformedImport is matched (via errors.Is) by every *ImportError. A
// malformed import statement fails the file it was found in.
var ErrMalformedImport = errors.New("malformed import statement")

// Position identifies the location that an error or warning is about. A
// schema problem names a file and an element. An import problem names a
// JavaScript file and a 1-based line.
type Position struct {
	File    string
	Element string
	Line    int
}

func (p Position) String() string {
	var sb strings.Builder
	sb.WriteString(p.File)
	if p.Line > 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(p.Line))
	}
	if p.Element != "" {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}
		sb.WriteString(p.Element)
	}
	return sb.String()
}

// ErrorWithPos is an error about a schema element or a generated file that
// includes information about its location.
//
// The value of Error() will contain both the Position and Underlying error.
// The value of Unwrap() will only be the Underlying error.
type ErrorWithPos interface {
	error
	GetPosition() Position
	Unwrap() error
}

// SchemaError reports a schema element whose shape or value kind cannot be
// turned into deserialization code.
type SchemaError struct {
	Pos Position
	Err error
}

// SchemaInconsistency returns a *SchemaError for the given file and element.
func SchemaInconsistency(file, element string, format string, args ...any) *SchemaError {
	return &SchemaError{
		Pos: Position{File: file, Element: element},
		Err: errors.Newf(format, args...),
	}
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %v", e.Pos, e.Err)
}

// GetPosition implements the ErrorWithPos interface.
func (e *SchemaError) GetPosition() Position {
	return e.Pos
}

// Unwrap implements the ErrorWithPos interface.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSchemaInconsistency.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaInconsistency
}

// ImportError reports a line that starts an import statement but does not
// follow its grammar.
type ImportError struct {
	Pos  Position
	Text string
	Err  error
}

// MalformedImport returns an *ImportError for the given line.
func MalformedImport(file string, line int, text string, reason string) *ImportError {
	return &ImportError{
		Pos:  Position{File: file, Line: line},
		Text: text,
		Err:  errors.New(reason),
	}
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%v: %v: %q", e.Pos, e.Err, e.Text)
}

// GetPosition implements the ErrorWithPos interface.
func (e *ImportError) GetPosition() Position {
	return e.Pos
}

// Unwrap implements the ErrorWithPos interface.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedImport.
func (e *ImportError) Is(target error) bool {
	return target == ErrMalformedImport
}

// UnresolvedImport is a warning: no resolution strategy could rewrite the
// reference, so the line was left as is.
type UnresolvedImport struct {
	Pos Position
	Ref string
}

func (w *UnresolvedImport) Error() string {
	return fmt.Sprintf("%v: unresolved import %q", w.Pos, w.Ref)
}

// GetPosition implements the ErrorWithPos interface.
func (w *UnresolvedImport) GetPosition() Position {
	return w.Pos
}

// Unwrap implements the ErrorWithPos interface.
func (w *UnresolvedImport) Unwrap() error {
	return nil
}

var (
	_ ErrorWithPos = (*SchemaError)(nil)
	_ ErrorWithPos = (*ImportError)(nil)
	_ ErrorWithPos = (*UnresolvedImport)(nil)
)
