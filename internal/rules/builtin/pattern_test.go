// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/lucasjones/reggen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSchemaPatternValidAcceptsGeneratableExamples exercises
// SchemaPatternValid against every pattern reggen can synthesize an
// example for, the way the teacher's renderer package uses reggen to
// fabricate example values for a schema's `pattern` — a pattern that
// reggen can generate from is, by construction, one regexp.Compile
// accepts too.
func TestSchemaPatternValidAcceptsGeneratableExamples(t *testing.T) {
	patterns := []string{`^[a-z0-9]+$`, `\d{3}-\d{4}`, `[A-Z][a-z]*`}
	for _, p := range patterns {
		example, err := reggen.Generate(p, 10)
		require.NoError(t, err, "reggen must be able to synthesize a value for %q", p)
		assert.Regexp(t, regexp.MustCompile(p), example)

		doc := fmt.Sprintf("components:\n  schemas:\n    A:\n      type: string\n      pattern: %q\n", p)
		findings := runRule(SchemaPatternValid, "file:///a.yaml", doc)
		assert.Empty(t, findings, "valid pattern %q should not be flagged", p)
	}
}

func TestSchemaPatternValidFlagsInvalidRegex(t *testing.T) {
	doc := "components:\n  schemas:\n    A:\n      type: string\n      pattern: \"[a-z\"\n"
	findings := runRule(SchemaPatternValid, "file:///a.yaml", doc)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "invalid pattern")
}
