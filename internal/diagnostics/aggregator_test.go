// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorDropsExactDuplicates(t *testing.T) {
	a := NewAggregator()
	d := Diagnostic{RuleID: "r1", URI: "file:///a.yaml", Message: "boom"}
	a.Add(d)
	a.Add(d)
	assert.Len(t, a.ForURI("file:///a.yaml"), 1)
}

func TestAggregatorForURISortsByPosition(t *testing.T) {
	a := NewAggregator()
	a.Add(Diagnostic{RuleID: "b", URI: "file:///a.yaml", Range: Range{Start: Position{Line: 1, Character: 0}}})
	a.Add(Diagnostic{RuleID: "a", URI: "file:///a.yaml", Range: Range{Start: Position{Line: 0, Character: 5}}})
	a.Add(Diagnostic{RuleID: "z", URI: "file:///a.yaml", Range: Range{Start: Position{Line: 0, Character: 0}}})

	items := a.ForURI("file:///a.yaml")
	require.Len(t, items, 3)
	assert.Equal(t, "z", items[0].RuleID)
	assert.Equal(t, "a", items[1].RuleID)
	assert.Equal(t, "b", items[2].RuleID)
}

func TestPullReportForIsFullOnFirstPull(t *testing.T) {
	a := NewAggregator()
	a.Add(Diagnostic{RuleID: "r1", URI: "file:///a.yaml", Message: "boom"})

	report := a.PullReportFor("file:///a.yaml", 1, "")
	assert.Equal(t, KindFull, report.Kind)
	assert.Len(t, report.Items, 1)
	assert.NotEmpty(t, report.ResultHash)
}

func TestPullReportForIsUnchangedWhenHashMatches(t *testing.T) {
	a := NewAggregator()
	a.Add(Diagnostic{RuleID: "r1", URI: "file:///a.yaml", Message: "boom"})
	first := a.PullReportFor("file:///a.yaml", 1, "")

	b := NewAggregator()
	b.Add(Diagnostic{RuleID: "r1", URI: "file:///a.yaml", Message: "boom"})
	second := b.PullReportFor("file:///a.yaml", 2, first.ResultHash)

	assert.Equal(t, KindUnchanged, second.Kind)
	assert.Empty(t, second.Items)
	assert.Equal(t, first.ResultHash, second.ResultHash)
}

func TestPullReportForIsFullWhenHashDiffers(t *testing.T) {
	a := NewAggregator()
	a.Add(Diagnostic{RuleID: "r1", URI: "file:///a.yaml", Message: "boom"})
	first := a.PullReportFor("file:///a.yaml", 1, "")

	a.Add(Diagnostic{RuleID: "r2", URI: "file:///a.yaml", Message: "also boom"})
	second := a.PullReportFor("file:///a.yaml", 2, first.ResultHash)

	assert.Equal(t, KindFull, second.Kind)
	assert.Len(t, second.Items, 2)
}
