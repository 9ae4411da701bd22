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

package walk_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/jsparsers/internal/testutil"
	"github.com/bufbuild/jsparsers/walk"
)

func TestTypes(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile)[0]

	var names []protoreflect.FullName
	err := walk.Types(file, func(d protoreflect.Descriptor) error {
		names = append(names, d.FullName())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []protoreflect.FullName{
		"acme.tasks.v1.Task",
		"acme.tasks.v1.Task.Comment",
		"acme.tasks.v1.Task.Status",
		"acme.tasks.v1.Empty",
		"acme.tasks.v1.Priority",
	}, names)
}

func TestTypesStopsOnError(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile)[0]

	stop := errors.New("stop")
	var seen []protoreflect.FullName
	err := walk.Types(file, func(d protoreflect.Descriptor) error {
		seen = append(seen, d.FullName())
		if d.FullName() == "acme.tasks.v1.Task.Comment" {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, []protoreflect.FullName{"acme.tasks.v1.Task", "acme.tasks.v1.Task.Comment"}, seen)
}
