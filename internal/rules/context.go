// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules

import (
	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/internal/sourcemap"
)

// Context is handed to every visitor callback. It exposes the workspace
// (for deref/lookup) and a report sink scoped to the currently-running
// rule, so a rule never has to know its own ID when calling Report.
type Context struct {
	ruleID   string
	severity Severity
	docs     map[string]*loader.Document
	index    *project.Index
	resolver *refgraph.Resolver
	graph    *refgraph.Graph
	sink     *diagnostics.Aggregator
}

// Graph exposes the reference graph to rules that need cycle/dependency
// information beyond a single element (e.g. ref-cycle).
func (c *Context) Graph() *refgraph.Graph {
	return c.graph
}

// Locate converts a byte offset within uri's document into a
// line/character position, clamping out-of-range offsets.
func (c *Context) Locate(uri string, offset int) sourcemap.Position {
	doc, ok := c.docs[uri]
	if !ok {
		return sourcemap.Position{}
	}
	return doc.SourceMap.OffsetToLineCol(offset)
}

// RangeOf converts an ir.Loc within uri's document into a diagnostics.Range.
func (c *Context) RangeOf(uri string, loc ir.Loc) diagnostics.Range {
	start := c.Locate(uri, loc.Start)
	end := c.Locate(uri, loc.End)
	return diagnostics.Range{
		Start: diagnostics.Position{Line: start.Line, Character: start.Column},
		End:   diagnostics.Position{Line: end.Line, Character: end.Column},
	}
}

// KeyRangeOf converts the key-half of loc, falling back to the whole
// node's range when the node has no separate key range (array elements,
// document root).
func (c *Context) KeyRangeOf(uri string, loc ir.Loc) diagnostics.Range {
	if !loc.HasKeyRange {
		return c.RangeOf(uri, loc)
	}
	start := c.Locate(uri, loc.KeyStart)
	end := c.Locate(uri, loc.KeyEnd)
	return diagnostics.Range{
		Start: diagnostics.Position{Line: start.Line, Character: start.Column},
		End:   diagnostics.Position{Line: end.Line, Character: end.Column},
	}
}

// Report emits a diagnostic anchored at node's full range within uri,
// using the rule's default severity.
func (c *Context) Report(uri string, node *ir.Node, message string) {
	c.ReportAt(uri, c.RangeOf(uri, node.Loc), message)
}

// ReportKey emits a diagnostic anchored at node's key range (e.g. the
// `paths` entry's key, not its whole value) within uri.
func (c *Context) ReportKey(uri string, node *ir.Node, message string) {
	c.ReportAt(uri, c.KeyRangeOf(uri, node.Loc), message)
}

// ReportAt emits a diagnostic at an explicit range, for rules that need
// to point at something other than the visited node itself (e.g. one end
// of a $ref cycle pointing at the other end).
func (c *Context) ReportAt(uri string, rng diagnostics.Range, message string) {
	c.sink.Add(diagnostics.Diagnostic{
		RuleID:   c.ruleID,
		URI:      uri,
		Range:    rng,
		Severity: int(c.severity),
		Message:  message,
	})
}

// Suggest attaches a fix-it patch to the most recently reported
// diagnostic's rule, by emitting a fresh diagnostic carrying the fix.
// Rules call Suggest immediately after ReportAt/Report in the same
// visitor invocation.
func (c *Context) Suggest(uri string, rng diagnostics.Range, message string, fixes ...diagnostics.FilePatch) {
	c.sink.Add(diagnostics.Diagnostic{
		RuleID:   c.ruleID,
		URI:      uri,
		Range:    rng,
		Severity: int(c.severity),
		Message:  message,
		Fixes:    fixes,
	})
}

// Deref follows a $ref string found at (uri, ptr) to its terminal value.
func (c *Context) Deref(uri, ptr, ref string) (*ir.Node, error) {
	return c.resolver.Deref(refgraph.Node{URI: uri, Pointer: ptr}, ref)
}

// Project exposes the full project index to rules that need cross-cutting
// context beyond the element they were invoked on (e.g. operationid-unique
// looks up every occurrence of an operationId, not just one operation).
func (c *Context) Project() *project.Index {
	return c.index
}

// Document returns the document identified by uri, if loaded.
func (c *Context) Document(uri string) (*loader.Document, bool) {
	d, ok := c.docs[uri]
	return d, ok
}
