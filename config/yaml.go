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

package config

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

var starterComments = map[string]string{
	"root":           "Directory that all other paths are relative to.",
	"js_dir":         "Directory protoc-gen-js wrote the _pb.js files to.",
	"generated_root": "Directory of the generated well-known types. Defaults to js_dir.",
	"descriptor_set": "Descriptor set written by protoc with --descriptor_set_out and\n--include_imports. Alternatively, configure the .proto sources below.",
	"modules": "External modules, tried in order when a relative import does not resolve.\n" +
		"A pattern ending in /* also provides the subdirectories. For example:\n" +
		"  - name: acme-common\n" +
		"    patterns: [\"acme/common/*\"]",
	"type_urls":           "Prefixes of type URLs, by proto package.",
	"main_source_segment": "Inserted into unresolved relative imports of test sources, to look\nthe file up among main sources.",
	"verify":              "Syntax check every file before it is written.",
	"max_parallelism":     "Maximum number of files processed at once. 0 means the number of CPUs.",
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "encoding configuration")
	}
	return encode(&node)
}

// Starter returns a commented configuration file with the default values.
func Starter() ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(Default()); err != nil {
		return nil, errors.Wrap(err, "encoding configuration")
	}
	mapping := &node
	if mapping.Kind == yaml.DocumentNode && len(mapping.Content) > 0 {
		mapping = mapping.Content[0]
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		if comment, ok := starterComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}
	return encode(&node)
}

func encode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, errors.Wrap(err, "encoding configuration")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding configuration")
	}
	return buf.Bytes(), nil
}
