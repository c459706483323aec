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

// Package script exposes the top-level Scan/Parse/Analyze/MoveCursor entry
// points of §6, wrapping the parser/analyzer packages with the span
// instrumentation an embedder's tracing middleware expects around each
// pipeline stage.
package script

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/ankoh/dashql-sub002/analyzer"
	"github.com/ankoh/dashql-sub002/catalog"
	"github.com/ankoh/dashql-sub002/parser"
)

// Options configures Scan, grounded on
// lib/include/dashql/parser/script_options.h from original_source/.
type Options struct {
	// TrackDSONKeys is forwarded to parser.ScanOptions, which Scan does not
	// consult; DSON key spans are not recorded.
	TrackDSONKeys bool
}

// logger is the package-level diagnostics sink, overridable via SetLogger
// the same way the teacher's engine exposes a settable logger rather than
// a context-only one.
var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger overrides the logger that the Scan/Parse/Analyze wrappers trace
// through and that Analyze hands to analyzer.Analyze. The scanner and the
// parser driver keep tracing through logrus.StandardLogger().
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger = l
}

// Scan lexes text into a ScannedScript, opening a child span off ctx per §6.
func Scan(ctx context.Context, text string, opts Options) *parser.ScannedScript {
	span, _ := opentracing.StartSpanFromContext(ctx, "dashql.Scan")
	defer span.Finish()
	logger.Tracef("script: scanning %d bytes", len(text))
	return parser.Scan(text, parser.ScanOptions{TrackDSONKeys: opts.TrackDSONKeys})
}

// Parse builds a ParsedScript from a scanned script's symbol stream.
func Parse(ctx context.Context, scanned *parser.ScannedScript) *parser.ParsedScript {
	span, _ := opentracing.StartSpanFromContext(ctx, "dashql.Parse")
	defer span.Finish()
	logger.Tracef("script: parsing %d symbols", len(scanned.Symbols))
	return parser.Parse(scanned)
}

// Analyze runs the name-resolution and expression-classification passes
// over a parsed script against cat, per §6.
func Analyze(ctx context.Context, parsed *parser.ParsedScript, cat *catalog.Catalog) *analyzer.AnalyzedScript {
	span, _ := opentracing.StartSpanFromContext(ctx, "dashql.Analyze")
	defer span.Finish()
	logger.Tracef("script: analyzing %d statements", len(parsed.Statements))
	return analyzer.Analyze(parsed, cat, logger)
}
