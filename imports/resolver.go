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

// Package imports rewrites the require('...') imports of JavaScript files so
// that they resolve in the layout the files are deployed in.
//
// Each import is resolved on its own, in two steps. First, imports of the
// well-known types shipped by the google-protobuf package are made relative
// to the root of the generated tree, where processed versions of those types
// are generated. Then a relative import of a file that does not exist is
// looked up in the sibling tree of main sources, and after that in the
// external modules, in order. Imports that cannot be resolved are left as
// they are.
package imports

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/bufbuild/jsparsers/reporter"
)

const (
	wellKnownModule = "google-protobuf/"
	wellKnownPrefix = wellKnownModule + "google/protobuf/"

	// DefaultMainSourceSegment leads from a test source tree to the main
	// source tree next to it.
	DefaultMainSourceSegment = "../main/"
)

// Resolver resolves the imports of files on a file system. All paths are
// slash-separated and relative to the root of FS.
type Resolver struct {
	FS billy.Filesystem
	// GeneratedRoot is the directory under which the well-known types are
	// generated.
	GeneratedRoot string
	// Modules are tried in order; the first that provides an import wins.
	Modules []Module
	// MainSourceSegment is inserted into an unresolved relative import to
	// look it up among main sources. Defaults to DefaultMainSourceSegment.
	MainSourceSegment string
	// DryRun prevents files from being written.
	DryRun bool
	// Reporter receives an *reporter.UnresolvedImport warning for every
	// import left unresolved. If nil, warnings are dropped.
	Reporter reporter.Reporter
	Logger   *zap.Logger
}

// Result describes the outcome of resolving the imports of one file.
type Result struct {
	File string
	// Changed reports whether any import was rewritten. Unless the resolver
	// is in dry-run mode, the file has been rewritten in that case.
	Changed bool
	// Rewritten is the number of imports that were rewritten.
	Rewritten int
	// Unresolved is the number of imports that were left unresolved.
	Unresolved int
}

// ResolveFile resolves the imports of the named file.
func (r *Resolver) ResolveFile(name string) (Result, error) {
	name = path.Clean(filepath.ToSlash(name))
	data, err := util.ReadFile(r.FS, name)
	if err != nil {
		return Result{}, errors.Wrapf(err, "reading %s", name)
	}
	content, result, err := r.resolveContent(name, string(data))
	if err != nil {
		return Result{}, err
	}
	if result.Changed && !r.DryRun {
		if err := util.WriteFile(r.FS, name, []byte(content), 0o644); err != nil {
			return Result{}, errors.Wrapf(err, "writing %s", name)
		}
	}
	r.logger().Debug("resolved imports",
		zap.String("file", name),
		zap.Int("rewritten", result.Rewritten),
		zap.Int("unresolved", result.Unresolved),
		zap.Bool("dry_run", r.DryRun))
	return result, nil
}

// ResolveContent resolves the imports in content, the contents of the named
// file, without touching the file itself.
func (r *Resolver) ResolveContent(name, content string) (string, Result, error) {
	return r.resolveContent(path.Clean(filepath.ToSlash(name)), content)
}

func (r *Resolver) resolveContent(name, content string) (string, Result, error) {
	result := Result{File: name}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !IsImport(line) {
			continue
		}
		stmt, err := ParseStatement(name, i+1, line)
		if err != nil {
			return "", Result{}, err
		}
		resolved, ok := r.Resolve(stmt)
		if !ok {
			result.Unresolved++
			r.warn(&reporter.UnresolvedImport{
				Pos: reporter.Position{File: name, Line: i + 1},
				Ref: resolved.Ref,
			})
		}
		if resolved.Text != line {
			lines[i] = resolved.Text
			result.Rewritten++
		}
	}
	result.Changed = result.Rewritten > 0
	return strings.Join(lines, "\n"), result, nil
}

// Resolve resolves one statement. It returns false if the statement is a
// relative import of a missing file that could not be resolved; the
// returned statement is then the input after well-known type
// relativization.
func (r *Resolver) Resolve(stmt Statement) (Statement, bool) {
	resolved := stmt
	if strings.HasPrefix(resolved.Ref, wellKnownPrefix) {
		resolved = r.relativizeWellKnown(resolved)
	}
	if !resolved.IsRelative() || r.exists(resolved) {
		return resolved, true
	}
	if main, ok := r.inMainSources(resolved); ok {
		return main, true
	}
	for _, mod := range r.Modules {
		if ref, ok := mod.FileInModule(resolved.Ref); ok {
			return resolved.WithRef(ref), true
		}
	}
	return resolved, false
}

// relativizeWellKnown replaces the google-protobuf module by the relative
// path from the declaring file to the generated root.
func (r *Resolver) relativizeWellKnown(stmt Statement) Statement {
	rel := relative(stmt.Dir, path.Clean(r.GeneratedRoot))
	var replacement string
	switch {
	case rel == "" || rel == ".":
		replacement = currentDir
	case rel == ".." || strings.HasPrefix(rel, parentDir):
		replacement = rel + "/"
	default:
		// a root below the file: keep the reference relative
		replacement = currentDir + rel + "/"
	}
	return stmt.WithRef(replacement + strings.TrimPrefix(stmt.Ref, wellKnownModule))
}

// inMainSources inserts the main source segment after the leading "./" and
// "../" elements of the reference, e.g. "./a/b.js" becomes
// "./../main/a/b.js". The result is only accepted if the file exists.
func (r *Resolver) inMainSources(stmt Statement) (Statement, bool) {
	ref := stmt.Ref
	insertAt := 0
	for {
		switch {
		case strings.HasPrefix(ref[insertAt:], currentDir):
			insertAt += len(currentDir)
			continue
		case strings.HasPrefix(ref[insertAt:], parentDir):
			insertAt += len(parentDir)
			continue
		}
		break
	}
	candidate := stmt.WithRef(ref[:insertAt] + r.mainSourceSegment() + ref[insertAt:])
	if !r.exists(candidate) {
		return Statement{}, false
	}
	return candidate, true
}

func (r *Resolver) exists(stmt Statement) bool {
	target, ok := stmt.Target()
	if !ok {
		return false
	}
	_, err := r.FS.Stat(target)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger().Debug("checking imported file", zap.String("path", target), zap.Error(err))
	}
	return err == nil
}

func (r *Resolver) warn(w *reporter.UnresolvedImport) {
	r.logger().Debug("unresolved import", zap.Stringer("position", w.Pos), zap.String("ref", w.Ref))
	if r.Reporter != nil {
		r.Reporter.Warning(w)
	}
}

func (r *Resolver) mainSourceSegment() string {
	if r.MainSourceSegment == "" {
		return DefaultMainSourceSegment
	}
	return strings.TrimSuffix(r.MainSourceSegment, "/") + "/"
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// relative returns the slash-separated path leading from directory from to
// directory to.
func relative(from, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		// only when one of the paths is absolute and the other is not
		return filepath.ToSlash(to)
	}
	return path.Clean(filepath.ToSlash(rel))
}

// JSFiles returns the paths of all .js files under root, in lexical order.
// A missing root yields no files.
func JSFiles(fs billy.Filesystem, root string) ([]string, error) {
	root = path.Clean(filepath.ToSlash(root))
	if _, err := fs.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	var files []string
	err := util.Walk(fs, root, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(name, ".js") {
			files = append(files, filepath.ToSlash(name))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", root)
	}
	slices.Sort(files)
	return files, nil
}
