// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package project implements spec.md §4.5: a single walk over every
// loaded document that populates typed, $ref-aware element maps keyed by
// "uri#pointer". It is the generalization of the teacher's
// index.SpecIndex element maps (pathRefs, paramAllRefs, allResponses, ...)
// from a single-spec index into a workspace-wide one built on top of
// refgraph instead of a bespoke reference-tracking layer.
package project

import (
	"sort"
	"strings"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/orderedmap"
)

// componentSections lists the components/<section> maps walked identically
// across every root document, per spec.md §4.5 point 5.
var componentSections = []string{
	"schemas", "responses", "parameters", "headers", "examples",
	"requestBodies", "securitySchemes", "links", "callbacks",
}

// Index is the full, $ref-aware inventory of a workspace's OpenAPI
// elements. It is built once per workspace generation and is read-only
// thereafter; a document change triggers a full rebuild (spec.md §5).
type Index struct {
	PathItems   orderedmap.Map[string, *PathItemRef]
	Webhooks    orderedmap.Map[string, *PathItemRef]
	Operations  orderedmap.Map[string, *OperationRef]
	Parameters  orderedmap.Map[string, *ParameterRef]
	RequestBodies orderedmap.Map[string, *RequestBodyRef]
	Responses   orderedmap.Map[string, *ResponseRef]
	Headers     orderedmap.Map[string, *HeaderRef]
	MediaTypes  orderedmap.Map[string, *MediaTypeRef]
	Examples    orderedmap.Map[string, *ExampleRef]
	Links       orderedmap.Map[string, *LinkRef]
	Callbacks   orderedmap.Map[string, *CallbackRef]
	Schemas     orderedmap.Map[string, *SchemaRef]
	SecuritySchemes orderedmap.Map[string, *SecuritySchemeRef]
	SecurityRequirements orderedmap.Map[string, *SecurityRequirementRef]
	Tags        orderedmap.Map[string, *TagRef]
	Servers     orderedmap.Map[string, *ServerRef]
	Components  orderedmap.Map[string, *ComponentRef]
	RefNodes    orderedmap.Map[string, Location] // every node bearing a "$ref"

	OperationIDs *OperationIDIndex

	graph    *refgraph.Graph
	resolver *refgraph.Resolver
}

// Build walks every document in docs and returns a populated Index.
func Build(docs map[string]*loader.Document, graph *refgraph.Graph, resolver *refgraph.Resolver) *Index {
	idx := &Index{
		PathItems:            orderedmap.New[string, *PathItemRef](),
		Webhooks:             orderedmap.New[string, *PathItemRef](),
		Operations:           orderedmap.New[string, *OperationRef](),
		Parameters:           orderedmap.New[string, *ParameterRef](),
		RequestBodies:        orderedmap.New[string, *RequestBodyRef](),
		Responses:            orderedmap.New[string, *ResponseRef](),
		Headers:              orderedmap.New[string, *HeaderRef](),
		MediaTypes:           orderedmap.New[string, *MediaTypeRef](),
		Examples:             orderedmap.New[string, *ExampleRef](),
		Links:                orderedmap.New[string, *LinkRef](),
		Callbacks:            orderedmap.New[string, *CallbackRef](),
		Schemas:              orderedmap.New[string, *SchemaRef](),
		SecuritySchemes:      orderedmap.New[string, *SecuritySchemeRef](),
		SecurityRequirements: orderedmap.New[string, *SecurityRequirementRef](),
		Tags:                 orderedmap.New[string, *TagRef](),
		Servers:              orderedmap.New[string, *ServerRef](),
		Components:           orderedmap.New[string, *ComponentRef](),
		RefNodes:             orderedmap.New[string, Location](),
		OperationIDs:         newOperationIDIndex(),
		graph:                graph,
		resolver:             resolver,
	}

	// sort uris for determinism even though map iteration order is not
	// itself meaningful; per-document indexing below is order-independent.
	uris := make([]string, 0, len(docs))
	for uri := range docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	for _, uri := range uris {
		doc := docs[uri]
		idx.indexRefNodes(uri, doc.IR)

		switch doc.Kind {
		case loader.KindRoot:
			idx.indexRoot(uri, doc)
		default:
			idx.indexFragment(uri, doc)
		}
	}
	return idx
}

// indexRefNodes records every "$ref"-bearing node, cycle-safe: it does
// not recurse through a $ref boundary (spec.md §4.5 point 1).
func (idx *Index) indexRefNodes(uri string, root *ir.Node) {
	var walk func(n *ir.Node)
	walk = func(n *ir.Node) {
		if n == nil {
			return
		}
		if n.Kind == ir.KindObject {
			if _, ok := n.RefTarget(); ok {
				idx.RefNodes.Set(uri+n.Ptr, Location{URI: uri, Pointer: n.Ptr, Node: n})
				return
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

func (idx *Index) indexRoot(uri string, doc *loader.Document) {
	root := doc.IR

	if sec := root.Child("security"); sec != nil {
		idx.indexSecurityRequirements(uri, "#/security", sec, "root")
	}
	for _, t := range childrenOf(root, "tags") {
		name, _ := t.Child("name").StringValue()
		idx.Tags.Set(uri+t.Ptr, &TagRef{Location: Location{URI: uri, Pointer: t.Ptr, Node: t}, Name: name})
	}
	for _, s := range childrenOf(root, "servers") {
		u, _ := s.Child("url").StringValue()
		idx.Servers.Set(uri+s.Ptr, &ServerRef{Location: Location{URI: uri, Pointer: s.Ptr, Node: s}, URL: u})
	}

	if paths := root.Child("paths"); paths != nil {
		idx.indexPathsLike(uri, paths, false)
	}
	if webhooks := root.Child("webhooks"); webhooks != nil {
		idx.indexPathsLike(uri, webhooks, true)
	}
	if components := root.Child("components"); components != nil {
		idx.indexComponents(uri, components)
	}
	// Swagger 2.0 top-level definitions/parameters/responses are treated
	// as an equivalent "components" surface.
	if defs := root.Child("definitions"); defs != nil {
		idx.indexComponentSection(uri, "schemas", defs)
	}
	if params := root.Child("parameters"); params != nil {
		idx.indexComponentSection(uri, "parameters", params)
	}
	if resps := root.Child("responses"); resps != nil {
		idx.indexComponentSection(uri, "responses", resps)
	}
}

// indexFragment registers a non-root document under the appropriate map
// with pointer "#", per spec.md §4.5 point 6. A fragment that carries a
// top-level `components` section has that section indexed as well.
func (idx *Index) indexFragment(uri string, doc *loader.Document) {
	loc := Location{URI: uri, Pointer: "#", Node: doc.IR}
	switch doc.Kind {
	case loader.KindPathItem:
		idx.indexPathItem(uri, "#", doc.IR, sameLocation(uri, "#"), "", false)
	case loader.KindParameter:
		name, _ := doc.IR.Child("name").StringValue()
		in, _ := doc.IR.Child("in").StringValue()
		idx.Parameters.Set(uri+"#", &ParameterRef{Location: loc, Indirection: sameLocation(uri, "#"), Name: name, In: in})
	case loader.KindResponse:
		idx.Responses.Set(uri+"#", &ResponseRef{Location: loc, Indirection: sameLocation(uri, "#")})
		idx.indexResponseBody(uri, "#", doc.IR)
	case loader.KindRequestBody:
		idx.RequestBodies.Set(uri+"#", &RequestBodyRef{Location: loc, Indirection: sameLocation(uri, "#")})
		idx.indexContent(uri, "#", doc.IR)
	case loader.KindSchema:
		idx.walkSchema(uri, "#", doc.IR, 0, nil, "", false, false, "")
	}
	if doc.IR != nil {
		if components := doc.IR.Child("components"); components != nil {
			idx.indexComponents(uri, components)
		}
	}
}

func childrenOf(parent *ir.Node, key string) []*ir.Node {
	c := parent.Child(key)
	if c == nil {
		return nil
	}
	return c.Children
}

// derefOrSelf follows a possible $ref on node, returning the definition
// location. When node is not a $ref, definition equals reference,
// matching spec.md §3's invariant.
func (idx *Index) derefOrSelf(uri, ptr string, node *ir.Node) (Indirection, *ir.Node) {
	refStr, isRef := node.RefTarget()
	if !isRef {
		return sameLocation(uri, ptr), node
	}
	origin := refgraph.Node{URI: uri, Pointer: ptr}
	value, err := idx.resolver.Deref(origin, refStr)
	if err != nil || value == nil {
		// Unresolved: reference location is still valid, definition is unknown.
		return Indirection{ReferenceURI: uri, ReferencePointer: ptr}, node
	}
	defOrigin, _ := idx.resolver.OriginOf(value)
	return Indirection{
		ReferenceURI: uri, ReferencePointer: ptr,
		DefinitionURI: defOrigin.URI, DefinitionPointer: defOrigin.Pointer,
	}, value
}

func (idx *Index) indexPathsLike(uri string, paths *ir.Node, webhooks bool) {
	for _, p := range paths.Children {
		if p.Key == nil {
			continue
		}
		pathKey := *p.Key
		indirection, defNode := idx.derefOrSelf(uri, p.Ptr, p)
		idx.indexPathItem(uri, p.Ptr, defNode, indirection, pathKey, webhooks)
	}
}

func (idx *Index) indexPathItem(uri, refPtr string, defNode *ir.Node, indirection Indirection, pathKey string, webhooks bool) {
	pir := &PathItemRef{
		Location:    Location{URI: uri, Pointer: refPtr, Node: defNode},
		Indirection: indirection,
		Path:        pathKey,
		IsWebhook:   webhooks,
		Operations:  map[string]*OperationRef{},
	}
	mapKey := uri + refPtr
	if webhooks {
		idx.Webhooks.Set(mapKey, pir)
	} else {
		idx.PathItems.Set(mapKey, pir)
	}

	defURI := indirection.DefinitionURI
	if defURI == "" {
		defURI = uri
	}

	for _, pp := range childrenOf(defNode, "parameters") {
		idx.indexParameter(defURI, pp.Ptr, pp)
	}

	for _, m := range defNode.Children {
		if m.Key == nil || !loader.IsHTTPMethod(*m.Key) {
			continue
		}
		method := strings.ToLower(*m.Key)
		opIndirection, opNode := idx.derefOrSelf(defURI, m.Ptr, m)
		opID, _ := opNode.Child("operationId").StringValue()
		opr := &OperationRef{
			Location:    Location{URI: defURI, Pointer: m.Ptr, Node: opNode},
			Indirection: opIndirection,
			Method:      method,
			OperationID: opID,
			Path:        pathKey,
		}
		idx.Operations.Set(defURI+m.Ptr, opr)
		pir.Operations[method] = opr
		if opID != "" {
			idx.OperationIDs.add(opID, Location{URI: defURI, Pointer: m.Ptr, Node: opNode})
		}

		odefURI, odefPtr := opIndirection.DefinitionURI, opIndirection.DefinitionPointer
		if odefURI == "" {
			odefURI, odefPtr = defURI, m.Ptr
		}
		_ = odefPtr

		for _, op := range childrenOf(opNode, "parameters") {
			idx.indexParameter(odefURI, op.Ptr, op)
		}
		if rb := opNode.Child("requestBody"); rb != nil {
			idx.indexRequestBody(odefURI, rb.Ptr, rb)
		}
		if resps := opNode.Child("responses"); resps != nil {
			for _, r := range resps.Children {
				if r.Key == nil {
					continue
				}
				idx.indexResponse(odefURI, r.Ptr, r, *r.Key)
			}
		}
		if sec := opNode.Child("security"); sec != nil {
			idx.indexSecurityRequirements(odefURI, m.Ptr+"/security", sec, "operation")
		}
		if cbs := opNode.Child("callbacks"); cbs != nil {
			for _, cb := range cbs.Children {
				if cb.Key == nil {
					continue
				}
				idx.Callbacks.Set(odefURI+cb.Ptr, &CallbackRef{Location: Location{URI: odefURI, Pointer: cb.Ptr, Node: cb}, Name: *cb.Key})
			}
		}
	}
}

func (idx *Index) indexParameter(uri, ptr string, node *ir.Node) {
	indirection, defNode := idx.derefOrSelf(uri, ptr, node)
	name, _ := defNode.Child("name").StringValue()
	in, _ := defNode.Child("in").StringValue()
	idx.Parameters.Set(uri+ptr, &ParameterRef{
		Location: Location{URI: uri, Pointer: ptr, Node: defNode}, Indirection: indirection, Name: name, In: in,
	})
	if schema := defNode.Child("schema"); schema != nil {
		idx.walkSchema(uri, schema.Ptr, schema, 0, nil, "", false, false, "")
	}
}

func (idx *Index) indexRequestBody(uri, ptr string, node *ir.Node) {
	indirection, defNode := idx.derefOrSelf(uri, ptr, node)
	idx.RequestBodies.Set(uri+ptr, &RequestBodyRef{Location: Location{URI: uri, Pointer: ptr, Node: defNode}, Indirection: indirection})
	defURI := indirection.DefinitionURI
	defPtr := indirection.DefinitionPointer
	if defURI == "" {
		defURI, defPtr = uri, ptr
	}
	idx.indexContent(defURI, defPtr, defNode)
}

func (idx *Index) indexResponse(uri, ptr string, node *ir.Node, statusCode string) {
	indirection, defNode := idx.derefOrSelf(uri, ptr, node)
	idx.Responses.Set(uri+ptr, &ResponseRef{Location: Location{URI: uri, Pointer: ptr, Node: defNode}, Indirection: indirection, StatusCode: statusCode})
	defURI := indirection.DefinitionURI
	defPtr := indirection.DefinitionPointer
	if defURI == "" {
		defURI, defPtr = uri, ptr
	}
	idx.indexResponseBody(defURI, defPtr, defNode)
}

func (idx *Index) indexResponseBody(uri, ptr string, defNode *ir.Node) {
	idx.indexContent(uri, ptr, defNode)
	if headers := defNode.Child("headers"); headers != nil {
		for _, h := range headers.Children {
			if h.Key == nil {
				continue
			}
			hIndirection, hDef := idx.derefOrSelf(uri, h.Ptr, h)
			idx.Headers.Set(uri+h.Ptr, &HeaderRef{Location: Location{URI: uri, Pointer: h.Ptr, Node: hDef}, Indirection: hIndirection, Name: *h.Key})
			if schema := hDef.Child("schema"); schema != nil {
				idx.walkSchema(uri, schema.Ptr, schema, 0, nil, "", false, false, "")
			}
			if examples := hDef.Child("examples"); examples != nil {
				idx.indexExamples(uri, examples)
			}
		}
	}
	if links := defNode.Child("links"); links != nil {
		for _, l := range links.Children {
			if l.Key == nil {
				continue
			}
			idx.Links.Set(uri+l.Ptr, &LinkRef{Location: Location{URI: uri, Pointer: l.Ptr, Node: l}, Name: *l.Key})
		}
	}
}

func (idx *Index) indexContent(uri, ptr string, node *ir.Node) {
	content := node.Child("content")
	if content == nil {
		return
	}
	for _, mt := range content.Children {
		if mt.Key == nil {
			continue
		}
		idx.MediaTypes.Set(uri+mt.Ptr, &MediaTypeRef{Location: Location{URI: uri, Pointer: mt.Ptr, Node: mt}, MediaType: *mt.Key})
		if schema := mt.Child("schema"); schema != nil {
			idx.walkSchema(uri, schema.Ptr, schema, 0, nil, "", false, false, "")
		}
		if examples := mt.Child("examples"); examples != nil {
			idx.indexExamples(uri, examples)
		}
		if example := mt.Child("example"); example != nil {
			idx.Examples.Set(uri+example.Ptr, &ExampleRef{Location: Location{URI: uri, Pointer: example.Ptr, Node: example}, Name: "example"})
		}
	}
	_ = ptr
}

func (idx *Index) indexExamples(uri string, examples *ir.Node) {
	for _, ex := range examples.Children {
		if ex.Key == nil {
			continue
		}
		idx.Examples.Set(uri+ex.Ptr, &ExampleRef{Location: Location{URI: uri, Pointer: ex.Ptr, Node: ex}, Name: *ex.Key})
	}
}

func (idx *Index) indexSecurityRequirements(uri, ptr string, sec *ir.Node, level string) {
	for _, s := range sec.Children {
		idx.SecurityRequirements.Set(uri+s.Ptr, &SecurityRequirementRef{Location: Location{URI: uri, Pointer: s.Ptr, Node: s}, Level: level})
	}
	_ = ptr
}

func (idx *Index) indexComponents(uri string, components *ir.Node) {
	for _, section := range componentSections {
		sectionNode := components.Child(section)
		if sectionNode == nil {
			continue
		}
		idx.indexComponentSection(uri, section, sectionNode)
	}
}

func (idx *Index) indexComponentSection(uri, section string, sectionNode *ir.Node) {
	for _, entry := range sectionNode.Children {
		if entry.Key == nil {
			continue
		}
		name := *entry.Key
		idx.Components.Set(uri+entry.Ptr, &ComponentRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Section: section, Name: name})

		switch section {
		case "schemas":
			idx.walkSchema(uri, entry.Ptr, entry, 0, nil, "", false, true, name)
		case "responses":
			idx.Responses.Set(uri+entry.Ptr, &ResponseRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Indirection: sameLocation(uri, entry.Ptr)})
			idx.indexResponseBody(uri, entry.Ptr, entry)
		case "parameters":
			idx.indexParameter(uri, entry.Ptr, entry)
		case "headers":
			idx.Headers.Set(uri+entry.Ptr, &HeaderRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Indirection: sameLocation(uri, entry.Ptr), Name: name})
			if schema := entry.Child("schema"); schema != nil {
				idx.walkSchema(uri, schema.Ptr, schema, 0, nil, "", false, false, "")
			}
		case "examples":
			idx.Examples.Set(uri+entry.Ptr, &ExampleRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Name: name})
		case "requestBodies":
			idx.RequestBodies.Set(uri+entry.Ptr, &RequestBodyRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Indirection: sameLocation(uri, entry.Ptr)})
			idx.indexContent(uri, entry.Ptr, entry)
		case "securitySchemes":
			idx.SecuritySchemes.Set(uri+entry.Ptr, &SecuritySchemeRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Name: name})
		case "links":
			idx.Links.Set(uri+entry.Ptr, &LinkRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Name: name})
		case "callbacks":
			idx.Callbacks.Set(uri+entry.Ptr, &CallbackRef{Location: Location{URI: uri, Pointer: entry.Ptr, Node: entry}, Name: name})
		}
	}
}

// walkSchema recursively registers a schema node and every schema nested
// beneath it via properties/items/allOf/oneOf/anyOf/additionalProperties,
// computing depth/parent/property-name/required-ness as it goes. It
// respects the $ref boundary: a nested "$ref" schema is recorded via the
// RefNodes map (already captured in indexRefNodes) but not expanded here,
// so a self-referential schema cannot cause unbounded recursion.
func (idx *Index) walkSchema(uri, ptr string, node *ir.Node, depth int, parent *SchemaRef, propertyName string, required bool, inComponents bool, componentName string) {
	if node == nil {
		return
	}
	ref := &SchemaRef{
		Location:      Location{URI: uri, Pointer: ptr, Node: node},
		Depth:         depth,
		Parent:        parent,
		PropertyName:  propertyName,
		Required:      required,
		InComponents:  inComponents,
		ComponentName: componentName,
	}
	idx.Schemas.Set(uri+ptr, ref)

	if _, isRef := node.RefTarget(); isRef {
		return
	}

	requiredSet := map[string]bool{}
	if req := node.Child("required"); req != nil {
		for _, r := range req.Children {
			if s, ok := r.StringValue(); ok {
				requiredSet[s] = true
			}
		}
	}

	if props := node.Child("properties"); props != nil {
		for _, p := range props.Children {
			if p.Key == nil {
				continue
			}
			idx.walkSchema(uri, p.Ptr, p, depth+1, ref, *p.Key, requiredSet[*p.Key], false, "")
		}
	}
	if items := node.Child("items"); items != nil {
		idx.walkSchema(uri, items.Ptr, items, depth+1, ref, "", false, false, "")
	}
	if addl := node.Child("additionalProperties"); addl != nil && addl.Kind == ir.KindObject {
		idx.walkSchema(uri, addl.Ptr, addl, depth+1, ref, "", false, false, "")
	}
	for _, composition := range []string{"allOf", "oneOf", "anyOf"} {
		if list := node.Child(composition); list != nil {
			for i, c := range list.Children {
				_ = i
				idx.walkSchema(uri, c.Ptr, c, depth+1, ref, "", false, false, "")
			}
		}
	}
}
