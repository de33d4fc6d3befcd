// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/internal/rootresolver"
	"github.com/specgraph/specgraph/internal/rules"
)

// runRule builds a single-document workspace from text, runs rule over
// it, and returns every diagnostic the run produced.
func runRule(rule rules.Rule, uri, text string) []diagnostics.Diagnostic {
	docs := map[string]*loader.Document{uri: loader.Load(uri, []byte(text))}
	lookup := func(u string) (*loader.Document, bool) { d, ok := docs[u]; return d, ok }
	graph := refgraph.Build(docs)
	resolver := refgraph.NewResolver(lookup)
	root := rootresolver.New(lookup, graph)
	idx := project.Build(docs, graph, resolver)
	sink := rules.NewEngine(rule).Run(docs, idx, resolver, graph, root)
	return sink.ForURI(uri)
}
