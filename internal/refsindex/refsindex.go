// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package refsindex implements spec.md §4.8: on-demand inbound-reference
// search over a workspace's documents, partitioned into internal
// (same-file) and external (cross-file) hits, cached and conservatively
// invalidated. It is the query-shaped sibling of internal/refgraph: the
// graph already holds pointer-granular reverse edges, but §4.8 asks for a
// result shaped around "every file that points at this target" rather
// than a single edge list, plus a cache a host can hold across many LSP
// requests. The teacher has no find-references feature of its own; this
// is grounded in how index.SpecIndex.GetAllReferences iterates every
// known file's ref list on each call, generalized here into a workspace
// query with a cache in front of it.
package refsindex

import (
	"sync"

	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/refgraph"
)

// Location is a single inbound-reference hit: the file and $ref string
// that points at the query target.
type Location struct {
	URI       string
	Pointer   string // pointer of the node bearing the $ref
	RefString string
}

// Result is the answer to an inbound-reference query, partitioned by
// whether the referencing file is the same file as the target.
type Result struct {
	Locations []Location
	ByFile    map[string][]Location

	Internal      []Location // referencing URI == target URI
	External      []Location // referencing URI != target URI
	InternalCount int
	ExternalCount int
}

// Index answers GetInboundRefsToPointer/GetInboundRefs queries over a
// workspace's documents, caching results keyed by
// "target#pointer?excludeSelf" until Invalidate is called. Per spec.md
// §4.8/§5, any document change clears the whole cache conservatively
// rather than trying to reason about which cached queries it affects.
type Index struct {
	docs  func() map[string]*loader.Document
	graph *refgraph.Graph

	mu    sync.Mutex
	cache map[string]Result
}

// New builds an Index backed by a live document-map accessor and the
// workspace's reference graph.
func New(docs func() map[string]*loader.Document, graph *refgraph.Graph) *Index {
	return &Index{docs: docs, graph: graph, cache: map[string]Result{}}
}

// Invalidate drops every cached query result. Called whenever any
// document in the workspace is reloaded, added, or removed.
func (idx *Index) Invalidate() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cache = map[string]Result{}
}

func cacheKey(targetURI, targetPointer string, excludeSelf bool) string {
	if excludeSelf {
		return targetURI + "#" + targetPointer + "?excludeSelf"
	}
	return targetURI + "#" + targetPointer
}

// GetInboundRefsToPointer returns every $ref in the workspace that
// resolves to targetURI#targetPointer. When excludeSelf is true, refs
// originating from within the same pointer's own subtree are dropped
// (self-referential schemas do not count as an inbound reference to
// themselves).
func (idx *Index) GetInboundRefsToPointer(targetURI, targetPointer string, excludeSelf bool) Result {
	key := cacheKey(targetURI, targetPointer, excludeSelf)

	idx.mu.Lock()
	if cached, ok := idx.cache[key]; ok {
		idx.mu.Unlock()
		return cached
	}
	idx.mu.Unlock()

	target := refgraph.Node{URI: targetURI, Pointer: targetPointer}
	edges := idx.graph.DependentsOf(target)

	result := Result{ByFile: map[string][]Location{}}
	for _, e := range edges {
		if excludeSelf && e.From.URI == targetURI && isAncestorPointer(targetPointer, e.From.Pointer) {
			continue
		}
		loc := Location{URI: e.From.URI, Pointer: e.From.Pointer, RefString: e.RefString}
		result.Locations = append(result.Locations, loc)
		result.ByFile[loc.URI] = append(result.ByFile[loc.URI], loc)
		if e.From.URI == targetURI {
			result.Internal = append(result.Internal, loc)
		} else {
			result.External = append(result.External, loc)
		}
	}
	result.InternalCount = len(result.Internal)
	result.ExternalCount = len(result.External)

	idx.mu.Lock()
	idx.cache[key] = result
	idx.mu.Unlock()
	return result
}

// GetInboundRefs returns every $ref in the workspace that resolves to any
// pointer within targetURI, i.e. the union of GetInboundRefsToPointer
// across every distinct pointer that document's subtree exposes as a
// graph node.
func (idx *Index) GetInboundRefs(targetURI string) Result {
	key := "file:" + targetURI

	idx.mu.Lock()
	if cached, ok := idx.cache[key]; ok {
		idx.mu.Unlock()
		return cached
	}
	idx.mu.Unlock()

	result := Result{ByFile: map[string][]Location{}}
	for _, e := range idx.graph.AllNodes() {
		if e.URI != targetURI {
			continue
		}
		sub := idx.GetInboundRefsToPointer(targetURI, e.Pointer, false)
		result.Locations = append(result.Locations, sub.Locations...)
		result.Internal = append(result.Internal, sub.Internal...)
		result.External = append(result.External, sub.External...)
		for file, locs := range sub.ByFile {
			result.ByFile[file] = append(result.ByFile[file], locs...)
		}
	}
	result.InternalCount = len(result.Internal)
	result.ExternalCount = len(result.External)

	idx.mu.Lock()
	idx.cache[key] = result
	idx.mu.Unlock()
	return result
}

// isAncestorPointer reports whether ptr is root or an ancestor of
// candidate ("#/components/schemas/A" is an ancestor of
// "#/components/schemas/A/properties/child").
func isAncestorPointer(root, candidate string) bool {
	if root == candidate {
		return true
	}
	return len(candidate) > len(root) && candidate[:len(root)] == root && candidate[len(root)] == '/'
}
