// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/internal/rules"
)

// RefCycle flags every $ref node whose containing element sits on a
// non-trivial strongly-connected component of the reference graph (or is
// a self-loop). One diagnostic is emitted per side of the cycle, per
// spec.md §8's worked example.
var RefCycle = rules.Rule{
	ID:              "ref-cycle",
	Title:           "reference cycle detected",
	DefaultSeverity: rules.SeverityError,
	Visitor: rules.Visitor{
		Reference: func(ctx *rules.Context, loc project.Location) {
			node := refgraph.Node{URI: loc.URI, Pointer: loc.Pointer}
			if ctx.Graph().HasCycle(node) {
				ctx.Report(loc.URI, loc.Node, "Reference cycle detected")
			}
		},
	},
}
