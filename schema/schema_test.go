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

package schema_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/jsparsers/internal/testutil"
	"github.com/bufbuild/jsparsers/schema"
)

func loadTasks(t *testing.T) *schema.FileSet {
	t.Helper()
	fds := testutil.Compile(t, testutil.TaskSources(), testutil.TaskFile)
	set, err := schema.NewFileSet(fds...)
	require.NoError(t, err)
	return set
}

func TestNewFileSet_DependenciesFirst(t *testing.T) {
	t.Parallel()
	set := loadTasks(t)
	var paths []string
	for _, f := range set.Files() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		testutil.IDsFile,
		"google/protobuf/struct.proto",
		"google/protobuf/timestamp.proto",
		testutil.TaskFile,
	}, paths)

	task := set.FindFileByPath(testutil.TaskFile)
	require.NotNil(t, task)
	assert.Equal(t, protoreflect.FullName("acme.tasks.v1"), task.Package)
	assert.Equal(t, []string{testutil.IDsFile, "google/protobuf/struct.proto", "google/protobuf/timestamp.proto"}, task.Imports)

	require.Len(t, set.Requested(), 1)
	assert.Same(t, task, set.Requested()[0])
	assert.False(t, set.FindFileByPath(testutil.IDsFile).Requested)
}

func TestNewFileSet_TypesInDeclarationOrder(t *testing.T) {
	t.Parallel()
	set := loadTasks(t)
	task := set.FindFileByPath(testutil.TaskFile)

	var messages, enums []protoreflect.FullName
	for _, m := range task.Messages {
		messages = append(messages, m.FullName)
		assert.Same(t, task, m.File)
	}
	for _, e := range task.Enums {
		enums = append(enums, e.FullName)
	}
	// map entries are not types
	assert.Equal(t, []protoreflect.FullName{
		"acme.tasks.v1.Task",
		"acme.tasks.v1.Task.Comment",
		"acme.tasks.v1.Empty",
	}, messages)
	assert.Equal(t, []protoreflect.FullName{"acme.tasks.v1.Task.Status", "acme.tasks.v1.Priority"}, enums)

	status := set.FindEnum("acme.tasks.v1.Task.Status")
	require.NotNil(t, status)
	assert.Equal(t, []schema.EnumValueDesc{
		{Name: "STATUS_UNSPECIFIED", Number: 0},
		{Name: "STATUS_OPEN", Number: 1},
		{Name: "STATUS_DONE", Number: 2},
	}, status.Values)
	assert.True(t, task.HasTypes())
}

func TestNewFileSet_FieldShapesAndKinds(t *testing.T) {
	t.Parallel()
	set := loadTasks(t)
	msg := set.FindMessage("acme.tasks.v1.Task")
	require.NotNil(t, msg)

	type fieldView struct {
		Name, JSONName string
		Shape          schema.Shape
		Value, Key     schema.ValueKind
	}
	var got []fieldView
	for _, f := range msg.Fields {
		got = append(got, fieldView{Name: f.Name, JSONName: f.JSONName, Shape: f.Shape, Value: f.Value, Key: f.Key})
	}
	str := schema.PrimitiveValue(schema.PrimitiveString)
	want := []fieldView{
		{"id", "id", schema.ShapeSingular, schema.MessageValue("acme.tasks.v1.TaskId"), schema.ValueKind{}},
		{"title", "title", schema.ShapeSingular, str, schema.ValueKind{}},
		{"estimate_minutes", "estimateMinutes", schema.ShapeSingular, schema.PrimitiveValue(schema.PrimitiveInt64), schema.ValueKind{}},
		{"weight", "weight", schema.ShapeSingular, schema.PrimitiveValue(schema.PrimitiveDouble), schema.ValueKind{}},
		{"status", "status", schema.ShapeSingular, schema.EnumValue("acme.tasks.v1.Task.Status"), schema.ValueKind{}},
		{"tags", "tags", schema.ShapeRepeated, str, schema.ValueKind{}},
		{"comments", "comments", schema.ShapeRepeated, schema.MessageValue("acme.tasks.v1.Task.Comment"), schema.ValueKind{}},
		{"notes", "notes", schema.ShapeMap, str, schema.PrimitiveValue(schema.PrimitiveInt32)},
		{"related", "related", schema.ShapeMap, schema.MessageValue("acme.tasks.v1.Task"), str},
		{"payload", "payload", schema.ShapeSingular, schema.ValueKind{Kind: schema.KindMessageNoNullGuard, Type: schema.DynamicValue}, schema.ValueKind{}},
		{"due", "due", schema.ShapeSingular, schema.MessageValue("google.protobuf.Timestamp"), schema.ValueKind{}},
		{"done", "done", schema.ShapeSingular, schema.PrimitiveValue(schema.PrimitiveBool), schema.ValueKind{}},
		{"blob", "blob", schema.ShapeSingular, schema.PrimitiveValue(schema.PrimitiveBytes), schema.ValueKind{}},
		{"checkpoints", "checkpoints", schema.ShapeRepeated, schema.PrimitiveValue(schema.PrimitiveUint64), schema.ValueKind{}},
		{"flags", "flags", schema.ShapeMap, schema.PrimitiveValue(schema.PrimitiveFloat), schema.PrimitiveValue(schema.PrimitiveBool)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields differ (-want +got):\n%s", diff)
	}
}

func TestValueKinds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, schema.KindMessageNoNullGuard, schema.MessageValue("google.protobuf.Value").Kind)
	assert.Equal(t, schema.KindMessage, schema.MessageValue("google.protobuf.ListValue").Kind)
	assert.True(t, schema.MessageValue("google.protobuf.Value").IsMessage())
	assert.False(t, schema.EnumValue("a.E").IsMessage())

	for _, p := range []schema.Primitive{schema.PrimitiveInt64, schema.PrimitiveSint64, schema.PrimitiveSfixed64, schema.PrimitiveUint64, schema.PrimitiveFixed64} {
		assert.True(t, p.Is64Bit(), p.String())
		assert.True(t, p.IsInteger(), p.String())
	}
	for _, p := range []schema.Primitive{schema.PrimitiveInt32, schema.PrimitiveUint32, schema.PrimitiveFixed32} {
		assert.False(t, p.Is64Bit(), p.String())
		assert.True(t, p.IsInteger(), p.String())
	}
	assert.True(t, schema.PrimitiveFloat.IsFloat())
	assert.False(t, schema.PrimitiveBool.IsInteger())
	assert.Equal(t, "Kind(0)", schema.ValueKind{}.String())
	assert.Equal(t, "message acme.Msg", schema.MessageValue("acme.Msg").String())
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	set := loadTasks(t)
	notGoogle := func(m *schema.MessageType) bool {
		return !strings.HasPrefix(m.File.Path, "google/")
	}
	reg := schema.NewRegistry(set, schema.TypeURLPrefixes{}, notGoogle)

	task, ok := reg.Lookup("acme.tasks.v1.Task")
	require.True(t, ok)
	assert.Equal(t, schema.TypeURL("type.googleapis.com/acme.tasks.v1.Task"), task.URL)
	assert.Equal(t, "proto.acme.tasks.v1.Task", task.Type)
	assert.Equal(t, "proto.acme.tasks.v1.TaskParser", task.Parser)

	value, ok := reg.Lookup("google.protobuf.Value")
	require.True(t, ok)
	assert.Empty(t, value.Parser)
	assert.False(t, reg.HasParser("google.protobuf.Value"))
	assert.True(t, reg.HasParser("acme.tasks.v1.Task.Comment"))

	status, ok := reg.Lookup("acme.tasks.v1.Task.Status")
	require.True(t, ok)
	assert.Empty(t, status.Parser)

	_, ok = reg.Lookup("acme.tasks.v1.Task.NotesEntry")
	assert.False(t, ok)

	// entries are a set; only membership is compared
	var urls []schema.TypeURL
	for _, e := range reg.Entries() {
		if e.File.Path == testutil.TaskFile {
			urls = append(urls, e.URL)
		}
	}
	want := []schema.TypeURL{
		"type.googleapis.com/acme.tasks.v1.Priority",
		"type.googleapis.com/acme.tasks.v1.Empty",
		"type.googleapis.com/acme.tasks.v1.Task",
		"type.googleapis.com/acme.tasks.v1.Task.Comment",
		"type.googleapis.com/acme.tasks.v1.Task.Status",
	}
	sortURLs := cmpopts.SortSlices(func(a, b schema.TypeURL) bool { return a < b })
	if diff := cmp.Diff(want, urls, sortURLs); diff != "" {
		t.Errorf("entries differ (-want +got):\n%s", diff)
	}
}

func TestTypeURLPrefixes(t *testing.T) {
	t.Parallel()
	prefixes := schema.TypeURLPrefixes{
		ByPackage: map[string]string{
			"acme":       "type.acme.io",
			"acme.tasks": "type.tasks.acme.io/",
		},
	}
	assert.Equal(t, schema.TypeURL("type.tasks.acme.io/acme.tasks.v1.Task"), prefixes.URL("acme.tasks.v1", "acme.tasks.v1.Task"))
	assert.Equal(t, schema.TypeURL("type.acme.io/acme.users.User"), prefixes.URL("acme.users", "acme.users.User"))
	assert.Equal(t, schema.TypeURL("type.acme.io/acme.Root"), prefixes.URL("acme", "acme.Root"))
	// not a package boundary
	assert.Equal(t, schema.TypeURL("type.googleapis.com/acmecorp.Thing"), prefixes.URL("acmecorp", "acmecorp.Thing"))

	custom := schema.TypeURLPrefixes{Default: "type.example.com"}
	assert.Equal(t, schema.TypeURL("type.example.com/x.Y"), custom.URL("x", "x.Y"))
}
