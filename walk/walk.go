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

// Package walk provides helper functions for traversing the types declared
// in a file. Only messages and enums are visited: those are the elements
// that get generated classes. Synthetic map entry messages are skipped.
package walk

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Types walks all messages and enums declared in file, calling fn for each
// one. The walk is performed in declaration order: the file's messages, each
// followed by its nested messages and enums, and then the file's enums. If
// fn returns an error, the walk is aborted and that error is returned.
func Types(file protoreflect.FileDescriptor, fn func(protoreflect.Descriptor) error) error {
	for i := 0; i < file.Messages().Len(); i++ {
		if err := message(file.Messages().Get(i), fn); err != nil {
			return err
		}
	}
	for i := 0; i < file.Enums().Len(); i++ {
		if err := fn(file.Enums().Get(i)); err != nil {
			return err
		}
	}
	return nil
}

func message(msg protoreflect.MessageDescriptor, fn func(protoreflect.Descriptor) error) error {
	if msg.IsMapEntry() {
		return nil
	}
	if err := fn(msg); err != nil {
		return err
	}
	for i := 0; i < msg.Messages().Len(); i++ {
		if err := message(msg.Messages().Get(i), fn); err != nil {
			return err
		}
	}
	for i := 0; i < msg.Enums().Len(); i++ {
		if err := fn(msg.Enums().Get(i)); err != nil {
			return err
		}
	}
	return nil
}
