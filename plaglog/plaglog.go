// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package plaglog wraps github.com/sourcegraph/log the way the
// teacher wraps it at its own service boundaries (e.g.
// grpc/defaults/server.go, cmd/zoekt-webserver/main.go): callers get a
// single scoped Logger per component, and every log call carries
// structured fields rather than a formatted string.
package plaglog

import (
	"time"

	sglog "github.com/sourcegraph/log"
)

// Scoped returns a component-scoped logger, the same shape as the
// teacher's sglog.Scoped(name, description) calls.
func Scoped(name string) sglog.Logger {
	return sglog.Scoped(name, "")
}

// BuildFields returns the structured fields AddFiles logs on
// completion, per SPEC_FULL's ambient-stack note that long-running
// operations log fields, not formatted strings.
func BuildFields(fileCount, warningCount int, elapsed time.Duration) []sglog.Field {
	return []sglog.Field{
		sglog.Int("file_count", fileCount),
		sglog.Int("warning_count", warningCount),
		sglog.Duration("elapsed", elapsed),
	}
}

// PairEnumerationFields returns the structured fields AllPairs logs on
// completion.
func PairEnumerationFields(fileCount, pairCount int, elapsed time.Duration) []sglog.Field {
	return []sglog.Field{
		sglog.Int("file_count", fileCount),
		sglog.Int("pair_count", pairCount),
		sglog.Duration("elapsed", elapsed),
	}
}
