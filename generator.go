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

package jsparsers

import (
	"context"
	"os"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/jsparsers/codegen"
	"github.com/bufbuild/jsparsers/imports"
	"github.com/bufbuild/jsparsers/index"
	"github.com/bufbuild/jsparsers/internal/jscode"
	"github.com/bufbuild/jsparsers/internal/naming"
	"github.com/bufbuild/jsparsers/reporter"
	"github.com/bufbuild/jsparsers/schema"
	"github.com/bufbuild/jsparsers/verify"
)

// Generator post-processes the JavaScript that protoc-gen-js generated for a
// schema. Only the FS and JSDir fields are required.
type Generator struct {
	// FS holds the generated tree. All paths are relative to its root.
	FS billy.Filesystem
	// JSDir is the directory protoc-gen-js wrote the _pb.js files to.
	JSDir string
	// GeneratedRoot is the directory the well-known types are generated
	// under, which imports of the google-protobuf module are made relative
	// to. Defaults to JSDir.
	GeneratedRoot string
	// Modules resolve relative imports of files that are not generated.
	// The predefined modules are always tried after these.
	Modules []imports.Module
	// MainSourceSegment leads from the generated tree to the tree of main
	// sources. Defaults to imports.DefaultMainSourceSegment.
	MainSourceSegment string
	// TypeURLs chooses the prefixes of type URLs.
	TypeURLs schema.TypeURLPrefixes
	// Eligible decides which messages get a deserializer. Defaults to
	// IsEligible.
	Eligible schema.Eligibility
	// Verify syntax checks every file before it is written.
	Verify bool
	// Layout configures the generated code.
	Layout jscode.Options
	// The maximum number of files processed at once. If unspecified or set
	// to a non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
	// A custom error and warning reporter. If unspecified a default reporter
	// is used. A default reporter fails the run after encountering any
	// errors and ignores all warnings.
	Reporter reporter.Reporter
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Step is one pass over the generated files.
type Step string

const (
	StepCreateParsers   Step = "create-parsers"
	StepTypeURLGetters  Step = "append-type-url-getters"
	StepGenerateIndex   Step = "generate-index"
	StepResolveImports  Step = "resolve-imports"
	StepResolveExisting Step = "resolve"
)

// Result summarizes a run.
type Result struct {
	// Files are the proto files whose _pb.js file was processed.
	Files []string
	// Parsers are the _pb.js files that deserializers were appended to.
	Parsers []string
	// TypeURLs are the _pb.js files that type URL getters were appended to.
	TypeURLs []string
	// Index is the path of the index file, if one was written.
	Index string
	// Imports are the outcomes of import resolution, per file.
	Imports []imports.Result
	// Failed are the generated files that had errors the reporter
	// swallowed. They were left out of later steps.
	Failed []string
}

// Generate runs every step, in order, over the requested files of set that
// have a _pb.js file under JSDir: deserializers are appended, then type URL
// getters, then the index file is written, and finally imports are
// resolved. A step never runs before the previous one completed.
func (g *Generator) Generate(ctx context.Context, set *schema.FileSet) (*Result, error) {
	e := g.newExecutor(ctx)
	defer e.cancel()
	log := g.logger()

	files, err := g.processedFiles(set.Requested())
	if err != nil {
		return nil, err
	}
	res := &Result{}
	for _, file := range files {
		res.Files = append(res.Files, file.Path)
	}
	if len(files) == 0 {
		log.Info("no generated files to process", zap.String("js_dir", g.JSDir))
		return res, nil
	}

	eligible := g.Eligible
	if eligible == nil {
		eligible = IsEligible
	}
	reg := schema.NewRegistry(set, g.TypeURLs, eligible)

	appendSteps := []struct {
		step   Step
		marker string
		emit   func(*schema.File, *schema.Registry, jscode.Options) (string, bool, error)
		out    *[]string
	}{
		{StepCreateParsers, codegen.ParsersMarker, codegen.FileParsers, &res.Parsers},
		{StepTypeURLGetters, codegen.TypeURLMarker, codegen.TypeURLGetters, &res.TypeURLs},
	}
	// one entry per file and step that already carried the marker
	var marked []string
	for _, s := range appendSteps {
		err := e.forEach(s.step, files, func(file *schema.File) error {
			outcome, err := g.appendCode(file, s.marker, func() (string, bool, error) {
				return s.emit(file, reg, g.Layout)
			})
			switch {
			case err != nil:
				return err
			case outcome == appended:
				e.record(s.out, g.jsPath(file))
			case outcome == alreadyProcessed:
				e.record(&marked, g.jsPath(file))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(marked) == len(appendSteps)*len(files) {
		log.Info("all files were already processed; regenerate them with protoc-gen-js to pick up schema changes",
			zap.Int("files", len(files)))
	}

	if err := e.run(StepGenerateIndex, func() error {
		name, err := g.writeIndex(e.succeeded(files), reg)
		res.Index = name
		return err
	}); err != nil {
		return nil, err
	}

	var jsFiles []string
	for _, file := range e.succeeded(files) {
		jsFiles = append(jsFiles, g.jsPath(file))
	}
	if err := g.resolve(e, StepResolveImports, jsFiles, false, res); err != nil {
		return nil, err
	}
	res.Failed = e.failedFiles()
	return res, e.h.Error()
}

// ResolveImports resolves the imports of the named files, or of every .js
// file under JSDir if none are named. In dry-run mode no file is written;
// a file whose result reports a change still has unresolved imports.
func (g *Generator) ResolveImports(ctx context.Context, files []string, dryRun bool) (*Result, error) {
	e := g.newExecutor(ctx)
	defer e.cancel()
	if len(files) == 0 {
		var err error
		files, err = imports.JSFiles(g.FS, g.JSDir)
		if err != nil {
			return nil, err
		}
	}
	res := &Result{}
	if err := g.resolve(e, StepResolveExisting, files, dryRun, res); err != nil {
		return nil, err
	}
	res.Failed = e.failedFiles()
	return res, e.h.Error()
}

func (g *Generator) resolve(e *executor, step Step, files []string, dryRun bool, res *Result) error {
	resolver := &imports.Resolver{
		FS:                g.FS,
		GeneratedRoot:     g.generatedRoot(),
		Modules:           append(slices.Clone(g.Modules), imports.PredefinedModules()...),
		MainSourceSegment: g.MainSourceSegment,
		DryRun:            dryRun,
		Reporter:          e.warnings(),
		Logger:            g.logger(),
	}
	var mu sync.Mutex
	err := e.forEachPath(step, files, func(name string) error {
		result, err := resolver.ResolveFile(name)
		if err != nil {
			return err
		}
		mu.Lock()
		res.Imports = append(res.Imports, result)
		mu.Unlock()
		return nil
	})
	slices.SortFunc(res.Imports, func(a, b imports.Result) int {
		return strings.Compare(a.File, b.File)
	})
	return err
}

// processedFiles returns the files whose _pb.js file exists.
func (g *Generator) processedFiles(files []*schema.File) ([]*schema.File, error) {
	if _, err := g.FS.Stat(g.jsDir()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			g.logger().Info("generated directory does not exist, skipping", zap.String("js_dir", g.jsDir()))
			return nil, nil
		}
		return nil, errors.Wrapf(err, "checking %s", g.jsDir())
	}
	var processed []*schema.File
	for _, file := range files {
		_, err := g.FS.Stat(g.jsPath(file))
		switch {
		case err == nil:
			processed = append(processed, file)
		case errors.Is(err, os.ErrNotExist):
			g.logger().Debug("no generated file", zap.String("file", file.Path))
		default:
			return nil, errors.Wrapf(err, "checking %s", g.jsPath(file))
		}
	}
	return processed, nil
}

// appendCode appends the code returned by emit to the _pb.js file of file,
// unless the file already carries marker from an earlier run. The file is
// written in one go, after the code has been verified.
type appendOutcome int

const (
	nothingToAppend appendOutcome = iota
	appended
	alreadyProcessed
)

func (g *Generator) appendCode(file *schema.File, marker string, emit func() (string, bool, error)) (appendOutcome, error) {
	name := g.jsPath(file)
	data, err := util.ReadFile(g.FS, name)
	if err != nil {
		return nothingToAppend, errors.Wrapf(err, "reading %s", name)
	}
	content := string(data)
	if strings.Contains(content, marker) {
		g.logger().Debug("already processed", zap.String("file", name), zap.String("marker", marker))
		return alreadyProcessed, nil
	}
	code, ok, err := emit()
	if err != nil || !ok {
		return nothingToAppend, err
	}
	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	if err := g.write(name, content+code); err != nil {
		return nothingToAppend, err
	}
	return appended, nil
}

func (g *Generator) writeIndex(files []*schema.File, reg *schema.Registry) (string, error) {
	code, err := index.Generate(files, reg, g.Layout)
	if err != nil {
		return "", err
	}
	name := path.Join(g.jsDir(), index.FileName)
	if err := g.write(name, code); err != nil {
		return "", err
	}
	return name, nil
}

func (g *Generator) write(name, content string) error {
	if g.Verify {
		if err := verify.JS(name, content); err != nil {
			return &reporter.SchemaError{Pos: reporter.Position{File: name}, Err: err}
		}
	}
	if err := util.WriteFile(g.FS, name, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	g.logger().Debug("wrote file", zap.String("file", name))
	return nil
}

func (g *Generator) jsPath(file *schema.File) string {
	return path.Join(g.jsDir(), naming.JSFile(file.Path))
}

func (g *Generator) jsDir() string {
	return path.Clean(g.JSDir)
}

func (g *Generator) generatedRoot() string {
	if g.GeneratedRoot == "" {
		return g.jsDir()
	}
	return path.Clean(g.GeneratedRoot)
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

func (g *Generator) newExecutor(ctx context.Context) *executor {
	ctx, cancel := context.WithCancel(ctx)
	par := g.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if par > cpus {
			par = cpus
		}
	}
	return &executor{
		ctx:    ctx,
		cancel: cancel,
		h:      reporter.NewHandler(g.Reporter),
		s:      semaphore.NewWeighted(int64(par)),
		log:    g.logger(),
		key:    g.jsPath,
		failed: map[string]struct{}{},
	}
}

// executor runs the steps of one run. Files that failed in one step are
// left out of the later steps.
type executor struct {
	ctx    context.Context
	cancel context.CancelFunc
	h      *reporter.Handler
	s      *semaphore.Weighted
	log    *zap.Logger
	// key names a schema file by its generated file
	key func(*schema.File) string

	mu     sync.Mutex
	failed map[string]struct{}
}

// run runs a step that is not per file.
func (e *executor) run(step Step, fn func() error) error {
	e.log.Info("running step", zap.String("step", string(step)))
	if err := fn(); err != nil {
		return e.h.HandleError(err)
	}
	return nil
}

func (e *executor) forEach(step Step, files []*schema.File, fn func(*schema.File) error) error {
	byPath := make(map[string]*schema.File, len(files))
	paths := make([]string, 0, len(files))
	for _, file := range e.succeeded(files) {
		byPath[e.key(file)] = file
		paths = append(paths, e.key(file))
	}
	return e.forEachPath(step, paths, func(p string) error {
		return fn(byPath[p])
	})
}

// forEachPath calls fn for every path, in parallel. An error is handed to
// the reporter: if that swallows it, the path is marked as failed and the
// step carries on; otherwise the step is canceled.
func (e *executor) forEachPath(step Step, paths []string, fn func(string) error) error {
	e.log.Info("running step", zap.String("step", string(step)), zap.Int("files", len(paths)))
	grp, ctx := errgroup.WithContext(e.ctx)
	for _, p := range paths {
		if err := e.s.Acquire(ctx, 1); err != nil {
			if werr := grp.Wait(); werr != nil {
				return werr
			}
			return err
		}
		grp.Go(func() error {
			defer e.s.Release(1)
			if err := fn(p); err != nil {
				e.log.Debug("file failed", zap.String("step", string(step)), zap.String("file", p), zap.Error(err))
				e.markFailed(p)
				return e.h.HandleError(err)
			}
			return nil
		})
	}
	return grp.Wait()
}

func (e *executor) markFailed(p string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed[p] = struct{}{}
}

func (e *executor) succeeded(files []*schema.File) []*schema.File {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ok []*schema.File
	for _, file := range files {
		if _, failed := e.failed[e.key(file)]; !failed {
			ok = append(ok, file)
		}
	}
	return ok
}

func (e *executor) failedFiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	failed := make([]string, 0, len(e.failed))
	for p := range e.failed {
		failed = append(failed, p)
	}
	slices.Sort(failed)
	return failed
}

func (e *executor) record(out *[]string, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	*out = append(*out, name)
	slices.Sort(*out)
}

func (e *executor) warnings() reporter.Reporter {
	return reporter.NewReporter(nil, e.h.HandleWarning)
}
