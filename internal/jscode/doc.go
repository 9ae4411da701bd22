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

// Package jscode provides a small document model for emitting JavaScript.
//
// A document is built out of tags: text, newlines, indented regions and
// groups. A group is laid out flat when its contents fit in the remaining
// width of the line, and broken otherwise; tags may be conditioned on the
// layout of the enclosing group. Writer builds documents imperatively out of
// lines and balanced scopes.
package jscode

import (
	"strings"

	"github.com/rivo/uniseg"
)

const (
	defaultMaxWidth = 100
	defaultIndent   = "  "
)

// Options configures how a document is rendered.
type Options struct {
	// The maximum number of columns to render before a group is broken.
	// Defaults to 100.
	MaxWidth int
	// The string used for one level of indentation. Defaults to two spaces.
	Indent string
}

// WithDefaults returns a copy of o with unset fields populated.
func (o Options) WithDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = defaultMaxWidth
	}
	if o.Indent == "" {
		o.Indent = defaultIndent
	}
	return o
}

// Cond is a condition on the layout of the innermost enclosing group.
type Cond byte

const (
	Always Cond = iota
	Flat        // Render only in a flat group.
	Broken      // Render only in a broken group.
)

func (c Cond) applies(flat bool) bool {
	switch c {
	case Flat:
		return flat
	case Broken:
		return !flat
	default:
		return true
	}
}

// Tag is a piece of a document.
type Tag func(*doc)

// Sink appends tags to a document.
type Sink func(...Tag)

type kind byte

const (
	kindText kind = iota
	kindNewline
	kindGroup
	kindIndent
)

type node struct {
	kind     kind
	cond     Cond
	text     string
	children []node
}

type doc struct {
	nodes []node
}

func (d *doc) add(tags ...Tag) {
	for _, tag := range tags {
		tag(d)
	}
}

// Text emits verbatim text. It must not contain newlines; use Newline.
func Text(text string) Tag {
	return TextIf(Always, text)
}

// TextIf emits text only when cond holds.
func TextIf(cond Cond, text string) Tag {
	return func(d *doc) {
		if text == "" {
			return
		}
		d.nodes = append(d.nodes, node{kind: kindText, cond: cond, text: text})
	}
}

// Newline ends the current line.
func Newline() Tag {
	return NewlineIf(Always)
}

// NewlineIf ends the current line only when cond holds.
func NewlineIf(cond Cond) Tag {
	return func(d *doc) {
		d.nodes = append(d.nodes, node{kind: kindNewline, cond: cond})
	}
}

// Group lays out content flat if it fits in the rest of the line.
func Group(content func(push Sink)) Tag {
	return nested(kindGroup, content)
}

// Indent indents every line started within content by one level.
func Indent(content func(push Sink)) Tag {
	return nested(kindIndent, content)
}

func nested(k kind, content func(push Sink)) Tag {
	return func(d *doc) {
		inner := new(doc)
		content(inner.add)
		d.nodes = append(d.nodes, node{kind: k, children: inner.nodes})
	}
}

// Render renders the document produced by content.
func Render(options Options, content func(push Sink)) string {
	d := new(doc)
	content(d.add)
	p := printer{opts: options.WithDefaults(), lineStart: true}
	p.print(d.nodes, false)
	return p.out.String()
}

type printer struct {
	opts      Options
	out       strings.Builder
	column    int
	depth     int
	lineStart bool
}

func (p *printer) print(nodes []node, flat bool) {
	for _, n := range nodes {
		switch n.kind {
		case kindText:
			if !n.cond.applies(flat) {
				continue
			}
			p.indent()
			p.out.WriteString(n.text)
			p.column += uniseg.StringWidth(n.text)
		case kindNewline:
			if !n.cond.applies(flat) {
				continue
			}
			p.out.WriteByte('\n')
			p.column = 0
			p.lineStart = true
		case kindIndent:
			p.depth++
			p.print(n.children, flat)
			p.depth--
		case kindGroup:
			p.print(n.children, p.fits(n.children))
		}
	}
}

// indent writes the pending indentation of a fresh line. Indentation is
// written lazily so that blank lines carry no trailing whitespace.
func (p *printer) indent() {
	if !p.lineStart {
		return
	}
	p.lineStart = false
	for range p.depth {
		p.out.WriteString(p.opts.Indent)
	}
	p.column = p.depth * uniseg.StringWidth(p.opts.Indent)
}

func (p *printer) fits(nodes []node) bool {
	width, ok := measure(nodes)
	if !ok {
		return false
	}
	column := p.column
	if p.lineStart {
		column = p.depth * uniseg.StringWidth(p.opts.Indent)
	}
	return column+width <= p.opts.MaxWidth
}

// measure returns the width of nodes laid out flat. It reports false if the
// nodes contain an unconditional newline, which can never be flat.
func measure(nodes []node) (int, bool) {
	var width int
	for _, n := range nodes {
		switch n.kind {
		case kindText:
			if n.cond.applies(true) {
				width += uniseg.StringWidth(n.text)
			}
		case kindNewline:
			if n.cond == Always {
				return 0, false
			}
		case kindIndent, kindGroup:
			w, ok := measure(n.children)
			if !ok {
				return 0, false
			}
			width += w
		}
	}
	return width, true
}
