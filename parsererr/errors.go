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

// Package parsererr declares the recoverable error kinds produced by the
// scanner and parser. Every kind is collected onto a script's error list
// rather than returned early; see dashql/SPEC_FULL.md §7.
package parsererr

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidLiteral is raised when a string, blob or numeric literal
	// cannot be closed or decoded (unterminated quote, malformed escape).
	ErrInvalidLiteral = errors.NewKind("invalid literal: %s")
	// ErrInvalidParameter is raised when a `$n` parameter reference has no
	// digits or its number does not fit an unsigned 32-bit integer.
	ErrInvalidParameter = errors.NewKind("invalid parameter: %s")
	// ErrInvalidFloatPrecision is raised when a FLOAT(n) declaration names a
	// bit precision outside [1, 53].
	ErrInvalidFloatPrecision = errors.NewKind("invalid float precision: %s")
	// ErrGrammar is raised for any other grammar error at a location, the
	// catch-all PARSER kind.
	ErrGrammar = errors.NewKind("syntax error: %s")
)
