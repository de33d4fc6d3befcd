// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"
	"regexp"

	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/rules"
)

// SchemaPatternValid flags a schema's `pattern` keyword when it is not a
// syntactically valid RE2 regular expression, the way the teacher's
// renderer package discovers a bad pattern indirectly (reggen.Generate
// fails when asked to synthesize an example matching it). Here the check
// runs eagerly at lint time rather than at render/fixture-generation
// time, so an author finds the mistake before anything tries to use the
// pattern.
var SchemaPatternValid = rules.Rule{
	ID:              "schema-pattern-valid",
	Title:           "schema pattern must be a valid regular expression",
	DefaultSeverity: rules.SeverityError,
	Visitor: rules.Visitor{
		Schema: func(ctx *rules.Context, ref *project.SchemaRef) {
			patternNode := ref.Node.Child("pattern")
			pattern, ok := patternNode.StringValue()
			if !ok {
				return
			}
			if _, err := regexp.Compile(pattern); err != nil {
				ctx.ReportKey(ref.URI, patternNode, fmt.Sprintf("invalid pattern %q: %v", pattern, err))
			}
		},
	},
}
