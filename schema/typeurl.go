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
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// DefaultTypeURLPrefix is the prefix of type URLs unless configured otherwise.
const DefaultTypeURLPrefix = "type.googleapis.com"

// TypeURL identifies a type globally, as in google.protobuf.Any.
type TypeURL string

// TypeURLPrefixes chooses the prefix of a type URL by the package that
// declares the type.
type TypeURLPrefixes struct {
	// Default is used when no entry of ByPackage applies. If empty,
	// DefaultTypeURLPrefix is used.
	Default string
	// ByPackage maps a package, or a parent package, to a prefix. The entry
	// of the longest matching package wins.
	ByPackage map[string]string
}

// URL returns the type URL of the named type declared in pkg.
func (p TypeURLPrefixes) URL(pkg, name protoreflect.FullName) TypeURL {
	return TypeURL(p.prefix(string(pkg)) + "/" + string(name))
}

func (p TypeURLPrefixes) prefix(pkg string) string {
	best, bestLen := p.Default, -1
	if best == "" {
		best = DefaultTypeURLPrefix
	}
	for candidate, prefix := range p.ByPackage {
		if pkg != candidate && !strings.HasPrefix(pkg, candidate+".") {
			continue
		}
		if len(candidate) > bestLen {
			best, bestLen = prefix, len(candidate)
		}
	}
	return strings.TrimSuffix(best, "/")
}
