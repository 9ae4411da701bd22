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

package jscode

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnbalanced is returned when scopes entered on a Writer are not exited
// exactly once.
var ErrUnbalanced = errors.New("unbalanced scopes")

// Writer accumulates lines of code into a document. Scopes are kept on an
// explicit stack: every Enter must be matched by one Exit, and Render fails
// unless the stack is back at its bottom.
//
// A Writer is owned by a single goroutine.
type Writer struct {
	opts   Options
	frames []*frame
}

type frame struct {
	closer string
	tags   []Tag
}

// NewWriter returns an empty Writer.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts, frames: []*frame{{}}}
}

func (w *Writer) push(tags ...Tag) {
	top := w.frames[len(w.frames)-1]
	top.tags = append(top.tags, tags...)
}

// Line emits one line of code at the current depth.
func (w *Writer) Line(text string) {
	w.push(Text(text), Newline())
}

// Linef emits one formatted line of code at the current depth.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Blank emits an empty line.
func (w *Writer) Blank() {
	w.push(Newline())
}

// Enter emits header, which is expected to open a curly brace, and starts a
// new scope closed by "}".
func (w *Writer) Enter(header string) {
	w.EnterWith(header, "}")
}

// EnterWith emits header and starts a new scope that Exit closes with closer.
func (w *Writer) EnterWith(header, closer string) {
	w.Line(header)
	w.frames = append(w.frames, &frame{closer: closer})
}

// Exit closes the innermost scope.
func (w *Writer) Exit() error {
	f, err := w.pop()
	if err != nil {
		return err
	}
	w.Line(f.closer)
	return nil
}

// Else closes the innermost scope with header, which is expected to continue
// the statement (as in "} else {"), and starts a new scope with the same
// closer.
func (w *Writer) Else(header string) error {
	f, err := w.pop()
	if err != nil {
		return err
	}
	w.EnterWith(header, f.closer)
	return nil
}

func (w *Writer) pop() (*frame, error) {
	if len(w.frames) == 1 {
		return nil, errors.Wrap(ErrUnbalanced, "exit without a matching enter")
	}
	f := w.frames[len(w.frames)-1]
	w.frames = w.frames[:len(w.frames)-1]
	w.push(Indent(func(push Sink) { push(f.tags...) }))
	return f, nil
}

// Block emits header, runs body inside a new scope and closes the scope,
// also when body fails.
func (w *Writer) Block(header string, body func() error) error {
	return w.BlockWith(header, "}", body)
}

// BlockWith is like Block with an explicit closer.
func (w *Writer) BlockWith(header, closer string, body func() error) error {
	depth := w.Depth()
	w.EnterWith(header, closer)
	err := body()
	for w.Depth() > depth+1 {
		// body failed half way through a nested scope
		_ = w.Exit()
	}
	if exitErr := w.Exit(); err == nil {
		err = exitErr
	}
	return err
}

// List emits items separated by commas between open and close, on one line
// if it fits and one item per line otherwise.
func (w *Writer) List(open string, items []string, close string) {
	w.push(Group(func(push Sink) {
		push(Text(open))
		push(Indent(func(push Sink) {
			push(NewlineIf(Broken))
			for i, item := range items {
				push(Text(item))
				if i < len(items)-1 {
					push(Text(","), TextIf(Flat, " "), NewlineIf(Broken))
				} else {
					push(TextIf(Broken, ","), NewlineIf(Broken))
				}
			}
		}))
		push(Text(close))
	}), Newline())
}

// Depth returns the number of open scopes.
func (w *Writer) Depth() int {
	return len(w.frames) - 1
}

// Render renders everything written so far. It fails if any scope is
// still open.
func (w *Writer) Render() (string, error) {
	if depth := w.Depth(); depth != 0 {
		return "", errors.Wrapf(ErrUnbalanced, "%d scope(s) left open", depth)
	}
	root := w.frames[0]
	return Render(w.opts, func(push Sink) { push(root.tags...) }), nil
}
