// Copyright 2022 Dave Shanley / Quobix
// SPDX-License-Identifier: MIT

package refgraph

import (
	"fmt"
	"sync"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/pointer"
)

// MaxRefDepth bounds how many chained $refs Deref will follow before
// giving up, per spec.md §9's open question ("recommend adding an
// explicit max-depth threshold, e.g., 64").
const MaxRefDepth = 64

// UnresolvedRefError is returned by Deref when a $ref cannot be followed
// to a value, distinguishing the two failure modes spec.md §4.3 names
// plus the depth-cap overflow.
type UnresolvedRefError struct {
	Kind string // "document-not-loaded" | "pointer-not-found" | "ref-depth-exceeded"
	URI  string
	Ptr  string
	Ref  string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("%s: cannot resolve %q to %s%s", e.Kind, e.Ref, e.URI, e.Ptr)
}

// Resolver follows $ref strings to their target IR value, tracking the
// origin of every value it returns so callers can later ask OriginOf to
// find where a dereferenced value actually lives. It mirrors
// index.Resolver/datamodel/low.LocateRefEnd in spirit: both chase ref
// chains to a non-$ref terminal node with a depth guard.
type Resolver struct {
	docs func(uri string) (*loader.Document, bool)

	mu     sync.Mutex
	origin map[*ir.Node]Node
}

// NewResolver builds a Resolver backed by a document lookup function,
// typically a workspace's document map.
func NewResolver(docs func(uri string) (*loader.Document, bool)) *Resolver {
	return &Resolver{docs: docs, origin: map[*ir.Node]Node{}}
}

// Deref resolves ref (as found within the document at origin.URI) to its
// terminal, non-$ref IR value, following chained references up to
// MaxRefDepth. It never returns a nil value without an error.
func (r *Resolver) Deref(origin Node, ref string) (*ir.Node, error) {
	resolved := pointer.Resolve(origin.URI, ref)
	return r.derefResolved(resolved, ref, 0)
}

func (r *Resolver) derefResolved(resolved pointer.Resolved, ref string, depth int) (*ir.Node, error) {
	if depth > MaxRefDepth {
		return nil, &UnresolvedRefError{Kind: "ref-depth-exceeded", URI: resolved.URI, Ptr: resolved.Fragment, Ref: ref}
	}
	if resolved.Kind == pointer.KindExternal {
		return nil, &UnresolvedRefError{Kind: "document-not-loaded", URI: resolved.URI, Ptr: resolved.Fragment, Ref: ref}
	}

	doc, ok := r.docs(resolved.URI)
	if !ok {
		return nil, &UnresolvedRefError{Kind: "document-not-loaded", URI: resolved.URI, Ptr: resolved.Fragment, Ref: ref}
	}

	value := lookupPointer(doc.IR, resolved.Fragment)
	if value == nil {
		return nil, &UnresolvedRefError{Kind: "pointer-not-found", URI: resolved.URI, Ptr: resolved.Fragment, Ref: ref}
	}

	if value.Kind == ir.KindObject {
		if next, ok := value.RefTarget(); ok {
			nextResolved := pointer.Resolve(resolved.URI, next)
			return r.derefResolved(nextResolved, next, depth+1)
		}
	}

	r.mu.Lock()
	r.origin[value] = Node{URI: resolved.URI, Pointer: value.Ptr}
	r.mu.Unlock()
	return value, nil
}

// OriginOf returns the graph Node a previously dereferenced value
// actually came from.
func (r *Resolver) OriginOf(value *ir.Node) (Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.origin[value]
	return n, ok
}

// lookupPointer walks an IR tree to the node identified by ptr,
// interpreting empty/"#" as the root.
func lookupPointer(root *ir.Node, ptr string) *ir.Node {
	if ptr == "" || ptr == pointer.Root {
		return root
	}
	segs := pointer.Split(ptr)
	cur := root
	for _, seg := range segs {
		if cur == nil {
			return nil
		}
		switch cur.Kind {
		case ir.KindObject:
			cur = cur.Child(seg)
		case ir.KindArray:
			idx, err := parseIndex(seg)
			if err != nil || idx < 0 || idx >= len(cur.Children) {
				return nil
			}
			cur = cur.Children[idx]
		default:
			return nil
		}
	}
	return cur
}

func parseIndex(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty index")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not numeric: %s", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
