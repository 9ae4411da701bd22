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

package testutil

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/stretchr/testify/require"
)

// Syntax is a parsed JavaScript source.
type Syntax struct {
	src  []byte
	root *sitter.Node
}

// ParseJS parses src and fails the test if it has syntax errors.
func ParseJS(t testing.TB, src string) *Syntax {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	root := tree.RootNode()
	if root.HasError() {
		node := firstError(root)
		require.Failf(t, "invalid JavaScript", "syntax error at %d:%d near %q\n%s",
			node.StartPoint().Row+1, node.StartPoint().Column+1, node.Content([]byte(src)), src)
	}
	return &Syntax{src: []byte(src), root: root}
}

// Count returns the number of nodes of the given type, such as
// "for_in_statement" or "arrow_function".
func (s *Syntax) Count(nodeType string) int {
	var n int
	s.each(s.root, func(node *sitter.Node) {
		if node.Type() == nodeType {
			n++
		}
	})
	return n
}

// Contents returns the source text of every node of the given type, in
// source order.
func (s *Syntax) Contents(nodeType string) []string {
	var out []string
	s.each(s.root, func(node *sitter.Node) {
		if node.Type() == nodeType {
			out = append(out, node.Content(s.src))
		}
	})
	return out
}

func (s *Syntax) each(node *sitter.Node, fn func(*sitter.Node)) {
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		s.each(node.Child(i), fn)
	}
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstError(node.Child(i)); found != nil {
			return found
		}
	}
	if node.HasError() {
		return node
	}
	return nil
}
