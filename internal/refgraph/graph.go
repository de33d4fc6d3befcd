// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package refgraph implements spec.md §4.3: the cross-document $ref graph,
// at pointer granularity, with Tarjan SCC-based cycle detection and
// external/internal edge classification. It is the multi-file analogue of
// the teacher's index.Reference/index.SpecIndex ref-tracking maps, turned
// into an explicit graph so that dependentsOf/hasCycle queries don't have
// to walk every document's ref list on every call.
package refgraph

import (
	"strings"
	"sync"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/pointer"
)

// Node identifies a location in the graph: a document URI plus a
// fragment pointer within it. Equality is by value, matching spec.md §3's
// "equality by concatenated key uri#pointer".
type Node struct {
	URI     string
	Pointer string
}

// Key returns the "uri#pointer"-style identity string for n.
func (n Node) Key() string {
	return n.URI + n.Pointer
}

// Edge is a single $ref edge discovered while walking a document's IR.
type Edge struct {
	From       Node
	To         Node
	RefString  string
	IsExternal bool
}

// Graph is the full set of $ref edges collected across every loaded
// document. It is rebuilt incrementally: RemoveEdgesForURI followed by
// AddDocument lets a workspace re-index a single changed file without
// rescanning the rest.
type Graph struct {
	mu sync.RWMutex

	edgesByFromURI map[string][]*Edge
	edgesByToURI   map[string][]*Edge
	forwardByNode  map[string][]*Edge // keyed by From.Key()
	reverseByNode  map[string][]*Edge // keyed by To.Key()

	sccValid bool
	sccOf    map[string]int // node key -> SCC id
	selfLoop map[string]bool
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		edgesByFromURI: map[string][]*Edge{},
		edgesByToURI:   map[string][]*Edge{},
		forwardByNode:  map[string][]*Edge{},
		reverseByNode:  map[string][]*Edge{},
	}
}

// Build constructs a Graph from a set of loaded documents in one pass,
// equivalent to calling AddDocument for each.
func Build(docs map[string]*loader.Document) *Graph {
	g := New()
	for uri, doc := range docs {
		g.AddDocument(uri, doc.IR)
	}
	return g
}

// AddDocument walks doc's IR collecting every $ref node. $ref is a
// traversal boundary: once a node resolves to {"$ref": "..."} the walker
// records the edge and does not recurse into that node's other children,
// guaranteeing termination regardless of how the references eventually
// chain together (spec.md §4.3, §9).
func (g *Graph) AddDocument(uri string, root *ir.Node) {
	var walk func(n *ir.Node)
	walk = func(n *ir.Node) {
		if n == nil {
			return
		}
		if n.Kind == ir.KindObject {
			if refStr, ok := n.RefTarget(); ok {
				resolved := pointer.Resolve(uri, refStr)
				edge := &Edge{
					From:       Node{URI: uri, Pointer: n.Ptr},
					To:         Node{URI: resolved.URI, Pointer: resolved.Fragment},
					RefString:  refStr,
					IsExternal: resolved.Kind == pointer.KindExternal,
				}
				g.addEdge(edge)
				return
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

func (g *Graph) addEdge(e *Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edgesByFromURI[e.From.URI] = append(g.edgesByFromURI[e.From.URI], e)
	g.edgesByToURI[e.To.URI] = append(g.edgesByToURI[e.To.URI], e)
	g.forwardByNode[e.From.Key()] = append(g.forwardByNode[e.From.Key()], e)
	g.reverseByNode[e.To.Key()] = append(g.reverseByNode[e.To.Key()], e)
	g.sccValid = false
}

// RemoveEdgesForURI drops every edge whose From document is uri,
// invalidating the cycle cache. Used on document replace/reload.
func (g *Graph) RemoveEdgesForURI(uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := g.edgesByFromURI[uri]
	delete(g.edgesByFromURI, uri)
	for _, e := range removed {
		g.edgesByToURI[e.To.URI] = removeEdge(g.edgesByToURI[e.To.URI], e)
		g.reverseByNode[e.To.Key()] = removeEdge(g.reverseByNode[e.To.Key()], e)
		delete(g.forwardByNode, e.From.Key())
	}
	g.sccValid = false
}

func removeEdge(list []*Edge, target *Edge) []*Edge {
	out := list[:0]
	for _, e := range list {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

// ReferencesFrom returns the edges originating at node.
func (g *Graph) ReferencesFrom(node Node) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Edge(nil), g.forwardByNode[node.Key()]...)
}

// DependentsOf returns the edges that point at node — every place in the
// workspace that references it.
func (g *Graph) DependentsOf(node Node) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Edge(nil), g.reverseByNode[node.Key()]...)
}

// GetRefEdgesFrom returns edges from a document, optionally filtered to a
// specific pointer within it (empty ptr returns all edges from the uri).
func (g *Graph) GetRefEdgesFrom(uri, ptr string) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if ptr == "" {
		return append([]*Edge(nil), g.edgesByFromURI[uri]...)
	}
	return append([]*Edge(nil), g.forwardByNode[Node{URI: uri, Pointer: ptr}.Key()]...)
}

// IsExternalRef reports whether e targets an http(s) URI.
func IsExternalRef(e *Edge) bool {
	return e != nil && e.IsExternal
}

// AllNodes returns every distinct Node appearing as a From or To endpoint,
// used by refsindex.GetInboundRefs and by tests.
func (g *Graph) AllNodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := map[string]Node{}
	for _, edges := range g.edgesByFromURI {
		for _, e := range edges {
			seen[e.From.Key()] = e.From
			seen[e.To.Key()] = e.To
		}
	}
	nodes := make([]Node, 0, len(seen))
	for _, n := range seen {
		nodes = append(nodes, n)
	}
	return nodes
}

// edgeCountByURIPrefix is a small debugging helper that counts edges
// whose From.URI has the given prefix (e.g. scheme filtering); nothing in
// the package currently calls it.
func (g *Graph) edgeCountByURIPrefix(prefix string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for uri, edges := range g.edgesByFromURI {
		if strings.HasPrefix(uri, prefix) {
			n += len(edges)
		}
	}
	return n
}
