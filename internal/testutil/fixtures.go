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

// TaskFile is the main fixture file. Its Task message has a field of every
// shape and of every value kind.
const TaskFile = "acme/tasks/v1/task.proto"

// IDsFile declares TaskId, imported by TaskFile.
const IDsFile = "acme/tasks/v1/ids.proto"

// TaskSources returns the sources of the fixture files.
func TaskSources() map[string]string {
	return map[string]string{
		IDsFile: `syntax = "proto3";
package acme.tasks.v1;

message TaskId {
  string value = 1;
}
`,
		TaskFile: `syntax = "proto3";
package acme.tasks.v1;

import "acme/tasks/v1/ids.proto";
import "google/protobuf/struct.proto";
import "google/protobuf/timestamp.proto";

message Task {
  TaskId id = 1;
  string title = 2;
  int64 estimate_minutes = 3;
  double weight = 4;
  Status status = 5;
  repeated string tags = 6;
  repeated Comment comments = 7;
  map<int32, string> notes = 8;
  map<string, Task> related = 9;
  google.protobuf.Value payload = 10;
  google.protobuf.Timestamp due = 11;
  bool done = 12;
  bytes blob = 13;
  repeated uint64 checkpoints = 14;
  map<bool, float> flags = 15;

  enum Status {
    STATUS_UNSPECIFIED = 0;
    STATUS_OPEN = 1;
    STATUS_DONE = 2;
  }

  message Comment {
    string text = 1;
    Priority priority = 2;
  }
}

message Empty {}

enum Priority {
  PRIORITY_UNSPECIFIED = 0;
  PRIORITY_HIGH = 1;
}
`,
	}
}
