// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package symbols implements spec.md §4.9: find-references, rename,
// go-to-definition, call hierarchy, code lens, inlay hints, and semantic
// tokens, all built on top of internal/ir, internal/sourcemap,
// internal/refgraph, and internal/project — the teacher has no LSP
// surface of its own, so these are grounded in the *shape* of the
// information the teacher already tracks (index.SpecIndex's operationId
// map, allRefSchemaDefinitions, polymorphicRefs) turned into
// position-addressable queries.
package symbols

import (
	"sort"
	"strconv"
	"strings"

	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
)

// Workspace is the minimal read-only view symbolic features need: the
// loaded documents, the reference graph/resolver, and the project index.
// It mirrors the fields internal/rules.Context threads through, since
// both are "everything a query-time consumer needs" bundles over the
// same read-only structures (spec.md §4.9: "Symbolic features consume
// IR+SourceMap+RefGraph+Index at query time").
type Workspace struct {
	Docs     map[string]*loader.Document
	Graph    *refgraph.Graph
	Resolver *refgraph.Resolver
	Index    *project.Index
}

// Location is a single position-addressable hit returned by the
// symbolic-feature queries below.
type Location struct {
	URI   string
	Range diagnostics.Range
}

func (w *Workspace) rangeOf(uri string, loc ir.Loc) diagnostics.Range {
	doc, ok := w.Docs[uri]
	if !ok {
		return diagnostics.Range{}
	}
	start := doc.SourceMap.OffsetToLineCol(loc.Start)
	end := doc.SourceMap.OffsetToLineCol(loc.End)
	return diagnostics.Range{
		Start: diagnostics.Position{Line: start.Line, Character: start.Column},
		End:   diagnostics.Position{Line: end.Line, Character: end.Column},
	}
}

// nodeAtOffset returns the smallest (deepest) IR node in root whose Loc
// contains offset, or nil if none does.
func nodeAtOffset(root *ir.Node, offset int) *ir.Node {
	if root == nil || offset < root.Loc.Start || offset > root.Loc.End {
		return nil
	}
	best := root
	for _, c := range root.Children {
		if match := nodeAtOffset(c, offset); match != nil {
			best = match
		}
	}
	return best
}

// NodeAt finds the deepest IR node at uri's byte offset, and the pointer
// of the object member that owns it (its nearest $ref-bearing ancestor
// pointer, when relevant, is recovered by callers from node.Ptr itself).
func (w *Workspace) NodeAt(uri string, offset int) (*ir.Node, bool) {
	doc, ok := w.Docs[uri]
	if !ok || doc.IR == nil {
		return nil, false
	}
	n := nodeAtOffset(doc.IR, offset)
	return n, n != nil
}

// FindReferences answers spec.md §4.9's FindReferences: if the node at
// (uri, offset) is an operationId value, return every occurrence from
// the OperationIdIndex; if it names a component definition, return every
// dependent $ref edge; if it is itself a $ref string value, return every
// sibling ref that resolves to the same target.
func (w *Workspace) FindReferences(uri string, offset int) []Location {
	node, ok := w.NodeAt(uri, offset)
	if !ok {
		return nil
	}

	if ref, isRef := node.RefTarget(); node.Kind == ir.KindObject && isRef {
		return w.referencesSharingTarget(uri, node.Ptr, ref)
	}
	if s, isStr := node.StringValue(); isStr {
		if locs := w.referencesByOperationID(s); locs != nil {
			return locs
		}
	}

	target := refgraph.Node{URI: uri, Pointer: node.Ptr}
	var out []Location
	for _, e := range w.Graph.DependentsOf(target) {
		out = append(out, Location{URI: e.From.URI, Range: w.rangeOf(e.From.URI, nodeRangeForEdge(w, e))})
	}
	return out
}

func nodeRangeForEdge(w *Workspace, e *refgraph.Edge) ir.Loc {
	doc, ok := w.Docs[e.From.URI]
	if !ok {
		return ir.Loc{}
	}
	n := findByPointer(doc.IR, e.From.Pointer)
	if n == nil {
		return ir.Loc{}
	}
	return n.Loc
}

func findByPointer(root *ir.Node, ptr string) *ir.Node {
	var found *ir.Node
	ir.Walk(root, func(n *ir.Node) {
		if n.Ptr == ptr {
			found = n
		}
	})
	return found
}

func (w *Workspace) referencesSharingTarget(originURI, originPtr, ref string) []Location {
	target, err := w.Resolver.Deref(refgraph.Node{URI: originURI, Pointer: originPtr}, ref)
	if err != nil {
		return nil
	}
	origin, ok := w.Resolver.OriginOf(target)
	if !ok {
		return nil
	}
	var out []Location
	for _, e := range w.Graph.DependentsOf(origin) {
		out = append(out, Location{URI: e.From.URI, Range: w.rangeOf(e.From.URI, nodeRangeForEdge(w, e))})
	}
	return out
}

func (w *Workspace) referencesByOperationID(id string) []Location {
	if w.Index == nil || w.Index.OperationIDs == nil {
		return nil
	}
	occ := w.Index.OperationIDs.Occurrences(id)
	if len(occ) == 0 {
		return nil
	}
	out := make([]Location, 0, len(occ))
	for _, loc := range occ {
		out = append(out, Location{URI: loc.URI, Range: w.rangeOf(loc.URI, loc.Node.Loc)})
	}
	return out
}

// Edit is a single textual rename target, paired with its replacement
// text so a host can build a WorkspaceEdit without re-deriving ranges.
type Edit struct {
	Location
	NewText string
}

// Rename renames the symbol at (uri, offset) to newName, returning one
// Edit per occurrence. For an operationId this is symmetric across the
// OperationIdIndex; for a component name this is every $ref string whose
// resolved pointer equals the renamed component (spec.md §8: "size of
// edit set equals opIdIndex.getOccurrences(oldName).length").
func (w *Workspace) Rename(uri string, offset int, newName string) []Edit {
	node, ok := w.NodeAt(uri, offset)
	if !ok {
		return nil
	}
	if s, isStr := node.StringValue(); isStr && w.Index != nil && w.Index.OperationIDs != nil {
		if occ := w.Index.OperationIDs.Occurrences(s); len(occ) > 0 {
			out := make([]Edit, 0, len(occ))
			for _, loc := range occ {
				out = append(out, Edit{Location: Location{URI: loc.URI, Range: w.rangeOf(loc.URI, loc.Node.Loc)}, NewText: newName})
			}
			return out
		}
	}
	refs := w.FindReferences(uri, offset)
	out := make([]Edit, 0, len(refs))
	for _, r := range refs {
		out = append(out, Edit{Location: r, NewText: newName})
	}
	return out
}

// DefinitionKind classifies what GoToDefinition resolved to.
type DefinitionKind string

const (
	DefinitionRef            DefinitionKind = "ref"
	DefinitionOperationID    DefinitionKind = "operationId"
	DefinitionSecurityScheme DefinitionKind = "securityScheme"
	DefinitionTag            DefinitionKind = "tag"
	DefinitionDiscriminator  DefinitionKind = "discriminatorMapping"
)

// Definition is a single go-to-definition result.
type Definition struct {
	Kind DefinitionKind
	Location
}

// GoToDefinition resolves the symbol at (uri, offset): a $ref string
// value resolves to its target; an operationId resolves to its (unique,
// by convention) declaration; a security-scheme name under a `security`
// requirement resolves to `#/components/securitySchemes/<name>`; a tag
// name resolves to its root-level `tags[]` declaration; a discriminator
// mapping value resolves to the schema it names.
func (w *Workspace) GoToDefinition(uri string, offset int) (Definition, bool) {
	node, ok := w.NodeAt(uri, offset)
	if !ok {
		return Definition{}, false
	}

	if parent, ok := findRefParent(w.Docs[uri].IR, node); ok {
		if ref, isRef := parent.RefTarget(); isRef {
			if target, err := w.Resolver.Deref(refgraph.Node{URI: uri, Pointer: parent.Ptr}, ref); err == nil {
				if origin, ok := w.Resolver.OriginOf(target); ok {
					return Definition{Kind: DefinitionRef, Location: Location{URI: origin.URI, Range: w.rangeOf(origin.URI, target.Loc)}}, true
				}
			}
		}
	}

	if s, isStr := node.StringValue(); isStr {
		if strings.Contains(node.Ptr, "/discriminator/mapping/") {
			ref := s
			if !strings.ContainsAny(ref, "#/") {
				ref = "#/components/schemas/" + ref
			}
			if target, err := w.Resolver.Deref(refgraph.Node{URI: uri, Pointer: node.Ptr}, ref); err == nil {
				if origin, ok := w.Resolver.OriginOf(target); ok {
					return Definition{Kind: DefinitionDiscriminator, Location: Location{URI: origin.URI, Range: w.rangeOf(origin.URI, target.Loc)}}, true
				}
			}
		}
		if w.Index != nil && w.Index.SecuritySchemes != nil {
			for pair := w.Index.SecuritySchemes.First(); pair != nil; pair = pair.Next() {
				if pair.Value().Name == s {
					loc := pair.Value().Location
					return Definition{Kind: DefinitionSecurityScheme, Location: Location{URI: loc.URI, Range: w.rangeOf(loc.URI, loc.Node.Loc)}}, true
				}
			}
		}
		if w.Index != nil && w.Index.OperationIDs != nil {
			if occ := w.Index.OperationIDs.Occurrences(s); len(occ) > 0 {
				loc := occ[0]
				return Definition{Kind: DefinitionOperationID, Location: Location{URI: loc.URI, Range: w.rangeOf(loc.URI, loc.Node.Loc)}}, true
			}
		}
		if w.Index != nil && w.Index.Tags != nil {
			for pair := w.Index.Tags.First(); pair != nil; pair = pair.Next() {
				if pair.Value().Name == s {
					loc := pair.Value().Location
					return Definition{Kind: DefinitionTag, Location: Location{URI: loc.URI, Range: w.rangeOf(loc.URI, loc.Node.Loc)}}, true
				}
			}
		}
	}

	return Definition{}, false
}

// findRefParent walks up from a scalar value node to the object that
// holds it, so GoToDefinition works whether offset lands on the "$ref"
// key or its string value. IR nodes do not carry parent pointers
// (spec.md §9 prefers a stable tagged variant over reflection-style
// bookkeeping), so this re-derives "parent" from the pointer prefix
// relationship already established during indexing: a ref value node's
// own Ptr is the same as its containing object's Ptr joined with
// "/$ref", so the containing object is found by trimming that suffix.
func findRefParent(root, node *ir.Node) (*ir.Node, bool) {
	if node.Kind == ir.KindObject {
		if _, ok := node.RefTarget(); ok {
			return node, true
		}
	}
	if node.Key != nil && *node.Key == "$ref" && strings.HasSuffix(node.Ptr, "/$ref") {
		parent := findByPointer(root, strings.TrimSuffix(node.Ptr, "/$ref"))
		if parent != nil && parent.Kind == ir.KindObject {
			return parent, true
		}
	}
	return nil, false
}

// CodeLensItem is a single inline annotation over a schema or operation.
type CodeLensItem struct {
	Location
	Title string
}

// CodeLens produces "N references" lenses for every schema (backed by
// DependentsOf) and a response-code/security-scheme summary lens for
// every operation.
func (w *Workspace) CodeLens() []CodeLensItem {
	var out []CodeLensItem
	if w.Index == nil {
		return out
	}
	for pair := w.Index.Schemas.First(); pair != nil; pair = pair.Next() {
		s := pair.Value()
		node := refgraph.Node{URI: s.URI, Pointer: s.Pointer}
		n := len(w.Graph.DependentsOf(node))
		out = append(out, CodeLensItem{
			Location: Location{URI: s.URI, Range: w.rangeOf(s.URI, s.Node.Loc)},
			Title:    referencesTitle(n),
		})
	}
	for pair := w.Index.Operations.First(); pair != nil; pair = pair.Next() {
		op := pair.Value()
		out = append(out, CodeLensItem{
			Location: Location{URI: op.URI, Range: w.rangeOf(op.URI, op.Node.Loc)},
			Title:    operationSummaryTitle(w.Index, op),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

func referencesTitle(n int) string {
	if n == 1 {
		return "1 reference"
	}
	return strconv.Itoa(n) + " references"
}

func operationSummaryTitle(idx *project.Index, op *project.OperationRef) string {
	codes, schemes := 0, 0
	for pair := idx.Responses.First(); pair != nil; pair = pair.Next() {
		r := pair.Value()
		if r.URI == op.URI && isDescendantPointer(op.Pointer, r.Pointer) {
			codes++
		}
	}
	for pair := idx.SecurityRequirements.First(); pair != nil; pair = pair.Next() {
		s := pair.Value()
		if s.Level == "operation" && s.URI == op.URI && isDescendantPointer(op.Pointer, s.Pointer) {
			schemes++
		}
	}
	return strconv.Itoa(codes) + " responses, " + strconv.Itoa(schemes) + " security schemes"
}

func isDescendantPointer(ancestor, candidate string) bool {
	return len(candidate) > len(ancestor) && candidate[:len(ancestor)] == ancestor && candidate[len(ancestor)] == '/'
}

// InlayHint is a single rendered annotation attached to a position
// within a document, without altering its text.
type InlayHint struct {
	URI      string
	Position diagnostics.Position
	Label    string
}

// InlayHints renders the resolved target's type/composition kind next to
// every $ref, and a "*" marker next to every object property listed in
// its schema's `required` array.
func (w *Workspace) InlayHints(uri string) []InlayHint {
	doc, ok := w.Docs[uri]
	if !ok || doc.IR == nil {
		return nil
	}
	var out []InlayHint
	ir.Walk(doc.IR, func(n *ir.Node) {
		if n.Kind != ir.KindObject {
			return
		}
		if ref, isRef := n.RefTarget(); isRef {
			if target, err := w.Resolver.Deref(refgraph.Node{URI: uri, Pointer: n.Ptr}, ref); err == nil {
				pos := doc.SourceMap.OffsetToLineCol(n.Loc.End)
				out = append(out, InlayHint{URI: uri, Position: diagnostics.Position{Line: pos.Line, Character: pos.Column}, Label: schemaKindLabel(target)})
			}
			return
		}
		required := requiredSet(n.Child("required"))
		props := n.Child("properties")
		if props == nil {
			return
		}
		for _, p := range props.Children {
			if p.Key != nil && required[*p.Key] {
				pos := doc.SourceMap.OffsetToLineCol(p.Loc.KeyEnd)
				out = append(out, InlayHint{URI: uri, Position: diagnostics.Position{Line: pos.Line, Character: pos.Column}, Label: "*"})
			}
		}
	})
	return out
}

func requiredSet(n *ir.Node) map[string]bool {
	out := map[string]bool{}
	if n == nil || n.Kind != ir.KindArray {
		return out
	}
	for _, c := range n.Children {
		if s, ok := c.StringValue(); ok {
			out[s] = true
		}
	}
	return out
}

func schemaKindLabel(n *ir.Node) string {
	if t := n.Child("type"); t != nil {
		if s, ok := t.StringValue(); ok {
			return s
		}
	}
	switch {
	case n.HasKey("allOf"):
		return "allOf"
	case n.HasKey("oneOf"):
		return "oneOf"
	case n.HasKey("anyOf"):
		return "anyOf"
	default:
		return "object"
	}
}
