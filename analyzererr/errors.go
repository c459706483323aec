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

// Package analyzererr declares the recoverable error kinds produced while
// resolving names and classifying expressions; see dashql/SPEC_FULL.md §7.
package analyzererr

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrDuplicateTableAlias is raised when two table references in the
	// same name scope register the same alias.
	ErrDuplicateTableAlias = errors.NewKind("duplicate table alias: %s")
	// ErrColumnRefAmbiguous is raised when an unqualified column name
	// matches more than one table in scope; the message lists the
	// candidate `alias.column` pairs.
	ErrColumnRefAmbiguous = errors.NewKind("ambiguous column reference %q, candidates: %s")
	// ErrTableRefAmbiguous describes a table reference with more than
	// MaxTableRefAmbiguity candidates. Name resolution does not raise it:
	// it truncates the candidate list at that bound instead.
	ErrTableRefAmbiguous = errors.NewKind("ambiguous table reference %q, %d candidates")
)

// MaxTableRefAmbiguity bounds how many table candidates name resolution
// asks Catalog.ResolveTable for; candidates beyond the bound are dropped
// without an error. Mirrors MAX_TABLE_REF_AMBIGUITY in
// name_resolution_pass.cc.
const MaxTableRefAmbiguity = 100
