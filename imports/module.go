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

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// RuntimeModule is the name of the module that ships the deserializer
// runtime and the processed well-known types.
const RuntimeModule = "jsparsers-runtime"

const nestedSuffix = "/*"

// PredefinedModules returns the modules that are always available, after
// any user supplied ones.
func PredefinedModules() []Module {
	return []Module{
		MustModule(RuntimeModule, "client/parser", "proto/google/protobuf/*"),
	}
}

// Module is a named external module and the directories it provides.
type Module struct {
	Name     string
	Patterns []DirectoryPattern
}

// NewModule returns a module providing the directories matched by patterns.
func NewModule(name string, patterns ...string) (Module, error) {
	if name == "" {
		return Module{}, errors.New("module name must not be empty")
	}
	mod := Module{Name: name}
	for _, p := range patterns {
		pattern, err := ParsePattern(p)
		if err != nil {
			return Module{}, errors.Wrapf(err, "module %q", name)
		}
		mod.Patterns = append(mod.Patterns, pattern)
	}
	return mod, nil
}

// MustModule is like NewModule but panics on an invalid pattern.
func MustModule(name string, patterns ...string) Module {
	mod, err := NewModule(name, patterns...)
	if err != nil {
		panic(err)
	}
	return mod
}

// Provides reports whether the module provides the directory dir, given
// relative to some unknown base, e.g. "../google/protobuf".
func (m Module) Provides(dir string) bool {
	_, ok := m.locate(dir)
	return ok
}

// FileInModule returns the reference to the file named ref (e.g.
// "../google/protobuf/any_pb.js") inside the module, and false if the module
// does not provide its directory.
func (m Module) FileInModule(ref string) (string, bool) {
	dir, file := path.Split(ref)
	inModule, ok := m.locate(strings.TrimSuffix(dir, "/"))
	if !ok {
		return "", false
	}
	return path.Join(m.Name, inModule, file), true
}

func (m Module) locate(dir string) (string, bool) {
	for _, p := range m.Patterns {
		if located, ok := p.Locate(dir); ok {
			return located, true
		}
	}
	return "", false
}

// DirectoryPattern matches a directory of a module, as a path relative to
// the module root. Path elements may use doublestar wildcards. A pattern
// ending in "/*" also matches all subdirectories.
type DirectoryPattern struct {
	dir    string
	nested bool
}

// ParsePattern parses a directory pattern such as "proto/google/protobuf/*".
func ParsePattern(pattern string) (DirectoryPattern, error) {
	dir, nested := strings.CutSuffix(pattern, nestedSuffix)
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return DirectoryPattern{}, errors.Newf("empty directory pattern %q", pattern)
	}
	if !doublestar.ValidatePattern(dir) {
		return DirectoryPattern{}, errors.Newf("invalid directory pattern %q", pattern)
	}
	return DirectoryPattern{dir: dir, nested: nested}, nil
}

func (p DirectoryPattern) String() string {
	if p.nested {
		return p.dir + nestedSuffix
	}
	return p.dir
}

// Locate matches dir, a relative directory reference, against the pattern.
// References do not know where the module root is, so leading "./" and
// "../" are dropped and the remainder is matched against every trailing
// part of the pattern, longest first. For pattern "proto/google/protobuf/*"
// and dir "../google/protobuf/compiler" the match is on "google/protobuf",
// and the located directory is "proto/google/protobuf/compiler".
func (p DirectoryPattern) Locate(dir string) (string, bool) {
	target := stripRelative(dir)
	if target == "" {
		return "", false
	}
	elems := strings.Split(p.dir, "/")
	for i := range elems {
		head, tail := strings.Join(elems[:i], "/"), strings.Join(elems[i:], "/")
		if strings.ContainsAny(head, "*?[{\\") || !p.matches(tail, target) {
			continue
		}
		return path.Join(head, target), true
	}
	return "", false
}

func (p DirectoryPattern) matches(pattern, target string) bool {
	if ok, err := doublestar.Match(pattern, target); err == nil && ok {
		return true
	}
	if !p.nested {
		return false
	}
	ok, err := doublestar.Match(pattern+"/**", target)
	return err == nil && ok
}

func stripRelative(dir string) string {
	for {
		switch {
		case strings.HasPrefix(dir, currentDir):
			dir = dir[len(currentDir):]
		case strings.HasPrefix(dir, parentDir):
			dir = dir[len(parentDir):]
		case dir == "." || dir == "..":
			return ""
		default:
			return strings.Trim(dir, "/")
		}
	}
}
