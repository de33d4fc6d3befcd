// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package rootresolver implements spec.md §4.4: identifying root OpenAPI
// documents and, for any fragment node, walking the reverse reference
// graph to find the root(s) that pull it in. It is the multi-file
// analogue of the teacher's index.SpecIndex.parentIndex/children walk-up,
// generalized to pointer granularity via refgraph.
package rootresolver

import (
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/refgraph"
)

// Resolver answers root-document queries over a workspace's documents
// and reference graph.
type Resolver struct {
	docs  func(uri string) (*loader.Document, bool)
	graph *refgraph.Graph

	memo map[string][]string // node key -> root uris
}

// New builds a Resolver backed by a document lookup and a built graph.
func New(docs func(uri string) (*loader.Document, bool), graph *refgraph.Graph) *Resolver {
	return &Resolver{docs: docs, graph: graph, memo: map[string][]string{}}
}

// IsRootDocument reports whether uri names a document whose kind is root
// (has "openapi" or "swagger" at its top level).
func (r *Resolver) IsRootDocument(uri string) bool {
	doc, ok := r.docs(uri)
	return ok && doc.Kind == loader.KindRoot
}

// FindRootsForNode returns every root document URI that (transitively,
// via reverse $ref edges) pulls in the given node. Results are memoized
// per node so repeated symbolic queries over a hot fragment are cheap.
func (r *Resolver) FindRootsForNode(uri, ptr string) []string {
	node := refgraph.Node{URI: uri, Pointer: ptr}
	key := node.Key()
	if cached, ok := r.memo[key]; ok {
		return cached
	}

	roots := map[string]bool{}
	visited := map[string]bool{}
	var visit func(n refgraph.Node)
	visit = func(n refgraph.Node) {
		if visited[n.Key()] {
			return
		}
		visited[n.Key()] = true

		if r.IsRootDocument(n.URI) {
			roots[n.URI] = true
		}
		for _, edge := range r.graph.DependentsOf(n) {
			visit(edge.From)
		}
		// A fragment document's own root ("#") is reachable without a
		// $ref edge: anything that references ANY pointer inside a file
		// also roots through that file's own document root.
		if n.Pointer != "#" {
			visit(refgraph.Node{URI: n.URI, Pointer: "#"})
		}
	}
	visit(node)

	out := make([]string, 0, len(roots))
	for u := range roots {
		out = append(out, u)
	}
	r.memo[key] = out
	return out
}

// GetPrimaryRoot returns the first root found for a node, or "" if none.
// When multiple roots reference the same fragment, the choice is
// arbitrary but stable across calls for the lifetime of the Resolver.
func (r *Resolver) GetPrimaryRoot(uri, ptr string) string {
	roots := r.FindRootsForNode(uri, ptr)
	if len(roots) == 0 {
		return ""
	}
	return roots[0]
}

// GetVersionForPartial returns the OpenAPI version declared by the
// primary root of a non-root document, or "" if no root is reachable.
func (r *Resolver) GetVersionForPartial(uri string) loader.Version {
	root := r.GetPrimaryRoot(uri, "#")
	if root == "" {
		return ""
	}
	doc, ok := r.docs(root)
	if !ok {
		return ""
	}
	return doc.Version
}

// Invalidate clears the memoization cache; callers must do this whenever
// the underlying graph changes (document add/remove/reload).
func (r *Resolver) Invalidate() {
	r.memo = map[string][]string{}
}
