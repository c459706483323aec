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

package analyzer

import (
	"github.com/sirupsen/logrus"

	"github.com/ankoh/dashql-sub002/catalog"
	"github.com/ankoh/dashql-sub002/parser"
)

// Analyze runs the three-pass pipeline described in §4.E/§4.F over a parsed
// script: name-scope construction and table/column resolution against cat,
// then constant-expression and column-transform classification. Passes run
// left to right, single-threaded, over the already children-before-parents
// node order Parse produced (§5: no pass needs anything later in the array
// than what it is currently visiting).
func Analyze(parsed *parser.ParsedScript, cat *catalog.Catalog, logger logrus.FieldLogger) *AnalyzedScript {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	out := &AnalyzedScript{}

	logger.Tracef("analyzer: building name scopes over %d statements", len(parsed.Statements))
	roots := buildScopes(parsed.Nodes, parsed.Statements)
	flat := flattenScopes(roots)
	out.NameScopes = exportScopes(flat)

	r := &resolver{nodes: parsed.Nodes, names: parsed.Scanned.Names, cat: cat, out: out}

	logger.Trace("analyzer: registering table declarations")
	r.registerDeclarations(roots, parsed.Statements)
	if out.Status == StatusCatalogLimitExceeded {
		logger.Trace("analyzer: catalog id space exhausted, aborting remaining passes")
		return out
	}

	logger.Tracef("analyzer: resolving %d name scopes", len(flat))
	r.resolveTables(flat)
	r.resolveColumns(flat)
	r.assignStatementIDs(parsed.Statements)

	logger.Trace("analyzer: classifying constant expressions")
	classifyConstants(parsed.Scanned.Text, parsed.Nodes, out)

	logger.Trace("analyzer: classifying column transforms")
	classifyColumnTransforms(parsed.Nodes, out)

	return out
}
