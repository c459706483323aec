// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package catalogerr declares the catalog's fatal error kind: id-space
// exhaustion. The Allocate* or OpenFile call that hits it returns it and
// allocates nothing. The analyzer then sets a non-OK status, appends a
// CATALOG/LIMIT_EXCEEDED entry to AnalyzedScript.Errors and skips its
// remaining passes. See dashql/SPEC_FULL.md §7.
package catalogerr

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrLimitExceeded is raised when a monotonic id allocator (database,
	// schema, table, column, or file-buffer file id) runs out of space.
	ErrLimitExceeded = errors.NewKind("limit exceeded: %s")
)
