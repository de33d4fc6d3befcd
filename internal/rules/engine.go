// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules

import (
	"fmt"

	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/internal/rootresolver"
)

// Engine runs a fixed set of rules over a workspace's project index,
// dispatching each rule's Visitor in the order spec.md §4.6 specifies:
// Document -> Root -> Tag/Server/SecurityScheme -> PathItem -> Operation
// -> Parameter -> RequestBody -> Response -> MediaType -> Header -> Link
// -> Callback -> Schema -> Reference -> Webhook -> Component.
type Engine struct {
	rules     []Rule
	overrides Overrides
}

// NewEngine returns an Engine that will run exactly the given rules, in
// the order they are provided, for every document visited.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// WithOverrides installs per-rule severity overrides, the constructor-
// plus-setter convention SPEC_FULL.md §2 names for this repo's
// configuration surface (mirroring index.SpecIndexConfig's setters). It
// returns e for chaining.
func (e *Engine) WithOverrides(overrides Overrides) *Engine {
	e.overrides = overrides
	return e
}

// Run executes every rule over the workspace described by docs/idx/resolver
// and returns the populated aggregator. A panicking visitor does not
// abort the run: the engine recovers it, skips the rest of that rule, and
// emits a single "rule-internal-error" diagnostic scoped to that rule and
// to the document being visited,
// per spec.md §4.6's failure-isolation requirement. root resolves the
// effective OpenAPI version for non-root documents (spec.md §4.4's
// "version propagates to partials"), so element visitors are gated by
// version exactly as Document/Root visitors are.
func (e *Engine) Run(docs map[string]*loader.Document, idx *project.Index, resolver *refgraph.Resolver, graph *refgraph.Graph, root *rootresolver.Resolver) *diagnostics.Aggregator {
	sink := diagnostics.NewAggregator()

	for _, rule := range e.rules {
		severity, enabled := e.overrides.resolve(rule)
		if !enabled {
			continue
		}
		ctx := &Context{
			ruleID:   rule.ID,
			severity: severity,
			docs:     docs,
			index:    idx,
			resolver: resolver,
			graph:    graph,
			sink:     sink,
		}
		e.runRule(rule, ctx, docs, idx, root)
	}
	return sink
}

// versionFor returns the effective OpenAPI version for uri: the
// document's own declared version if known, otherwise the version
// inherited from whichever root document pulls it in (spec.md §4.4).
func versionFor(docs map[string]*loader.Document, root *rootresolver.Resolver, uri string) loader.Version {
	doc, ok := docs[uri]
	if !ok {
		return loader.VersionUnknown
	}
	if doc.Version != "" && doc.Version != loader.VersionUnknown {
		return doc.Version
	}
	if root != nil {
		if v := root.GetVersionForPartial(uri); v != "" {
			return v
		}
	}
	return doc.Version
}

func (e *Engine) runRule(rule Rule, ctx *Context, docs map[string]*loader.Document, idx *project.Index, root *rootresolver.Resolver) {
	// current is the URI most recently passed to applies, i.e. the
	// document whose visitor is running when a panic is recovered.
	var current string
	defer func() {
		if r := recover(); r != nil {
			ctx.sink.Add(diagnostics.Diagnostic{
				RuleID:   "rule-internal-error",
				URI:      current,
				Severity: int(SeverityError),
				Message:  fmt.Sprintf("rule %q panicked: %v", rule.ID, r),
			})
		}
	}()

	v := rule.Visitor

	// applies reports whether rule is active for the document owning uri,
	// inheriting a fragment's version from its root when the fragment
	// declares none of its own (spec.md §4.6 "Version gating").
	applies := func(uri string) bool {
		current = uri
		return rule.AppliesTo(versionFor(docs, root, uri))
	}

	if v.Document != nil {
		for uri, doc := range docs {
			if !applies(uri) {
				continue
			}
			v.Document(ctx, uri, doc)
		}
	}
	if v.Root != nil {
		for uri, doc := range docs {
			if doc.Kind != loader.KindRoot || !applies(uri) {
				continue
			}
			v.Root(ctx, uri, doc)
		}
	}
	if v.Tag != nil {
		for pair := idx.Tags.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Tag(ctx, ref)
			}
		}
	}
	if v.Server != nil {
		for pair := idx.Servers.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Server(ctx, ref)
			}
		}
	}
	if v.SecurityScheme != nil {
		for pair := idx.SecuritySchemes.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.SecurityScheme(ctx, ref)
			}
		}
	}
	if v.PathItem != nil {
		for pair := idx.PathItems.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.PathItem(ctx, ref)
			}
		}
	}
	if v.Operation != nil {
		for pair := idx.Operations.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Operation(ctx, ref)
			}
		}
	}
	if v.Parameter != nil {
		for pair := idx.Parameters.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Parameter(ctx, ref)
			}
		}
	}
	if v.RequestBody != nil {
		for pair := idx.RequestBodies.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.RequestBody(ctx, ref)
			}
		}
	}
	if v.Response != nil {
		for pair := idx.Responses.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Response(ctx, ref)
			}
		}
	}
	if v.MediaType != nil {
		for pair := idx.MediaTypes.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.MediaType(ctx, ref)
			}
		}
	}
	if v.Header != nil {
		for pair := idx.Headers.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Header(ctx, ref)
			}
		}
	}
	if v.Link != nil {
		for pair := idx.Links.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Link(ctx, ref)
			}
		}
	}
	if v.Callback != nil {
		for pair := idx.Callbacks.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Callback(ctx, ref)
			}
		}
	}
	if v.Schema != nil {
		for pair := idx.Schemas.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Schema(ctx, ref)
			}
		}
	}
	if v.Reference != nil {
		for pair := idx.RefNodes.First(); pair != nil; pair = pair.Next() {
			if loc := pair.Value(); applies(loc.URI) {
				v.Reference(ctx, loc)
			}
		}
	}
	if v.Webhook != nil {
		for pair := idx.Webhooks.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Webhook(ctx, ref)
			}
		}
	}
	if v.Component != nil {
		for pair := idx.Components.First(); pair != nil; pair = pair.Next() {
			if ref := pair.Value(); applies(ref.URI) {
				v.Component(ctx, ref)
			}
		}
	}
}
