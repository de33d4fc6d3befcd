// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package project

import "github.com/specgraph/specgraph/internal/ir"

// Location is the plain (uri, pointer, node) triple shared by every
// indexed element, mirroring the teacher's index.Reference but scoped to
// a single IR node rather than a raw *yaml.Node.
type Location struct {
	URI     string
	Pointer string
	Node    *ir.Node
}

// Indirection separates where an element is *referenced* from where it
// is *defined*, per spec.md §3: "the record separates reference location
// ... from definition location ... when no $ref indirection exists,
// definition == reference."
type Indirection struct {
	ReferenceURI     string
	ReferencePointer string
	DefinitionURI    string
	DefinitionPointer string
}

func sameLocation(uri, ptr string) Indirection {
	return Indirection{ReferenceURI: uri, ReferencePointer: ptr, DefinitionURI: uri, DefinitionPointer: ptr}
}

// PathItemRef indexes a single entry under `paths` or `webhooks`.
type PathItemRef struct {
	Location
	Indirection
	Path       string // the raw paths[] key, e.g. "/users/{id}"
	IsWebhook  bool
	Operations map[string]*OperationRef // keyed by lower-case HTTP method
}

// OperationRef indexes a single HTTP-method operation within a path item.
type OperationRef struct {
	Location
	Indirection
	Method      string
	OperationID string
	Path        string
}

// ParameterRef indexes one parameter, whether declared inline on a path
// item, an operation, or under components/parameters.
type ParameterRef struct {
	Location
	Indirection
	Name string
	In   string
}

// RequestBodyRef indexes an operation's requestBody or a
// components/requestBodies entry.
type RequestBodyRef struct {
	Location
	Indirection
}

// ResponseRef indexes one status-code response within an operation's
// `responses`, or a components/responses entry.
type ResponseRef struct {
	Location
	Indirection
	StatusCode string
}

// HeaderRef indexes a response header or a components/headers entry.
type HeaderRef struct {
	Location
	Indirection
	Name string
}

// MediaTypeRef indexes one `content.<media-type>` entry under a request
// body or response.
type MediaTypeRef struct {
	Location
	MediaType string
}

// ExampleRef indexes one example, whether inline under a media type or
// header, or a components/examples entry.
type ExampleRef struct {
	Location
	Name string
}

// LinkRef indexes one response link, or a components/links entry.
type LinkRef struct {
	Location
	Name string
}

// CallbackRef indexes one operation callback, or a components/callbacks
// entry.
type CallbackRef struct {
	Location
	Name string
}

// SchemaRef indexes every schema node found anywhere in the workspace:
// under components, inline in a media type, or nested via
// properties/items/allOf/oneOf/anyOf. Depth/Parent/PropertyName/Required
// are populated so rule visitors can reason about nesting context
// (spec.md §4.6: "A rule's Schema visitor is invoked for every schema
// found anywhere ... with depth, parent, property-name, and
// required-ness populated").
type SchemaRef struct {
	Location
	Depth        int
	Parent       *SchemaRef
	PropertyName string
	Required     bool
	InComponents bool
	ComponentName string
}

// SecuritySchemeRef indexes a components/securitySchemes entry.
type SecuritySchemeRef struct {
	Location
	Name string
}

// SecurityRequirementRef indexes one `security[]` entry at root or
// operation level.
type SecurityRequirementRef struct {
	Location
	Level string // "root" | "operation"
}

// TagRef indexes a root-level tag declaration.
type TagRef struct {
	Location
	Name string
}

// ServerRef indexes a server entry, root-level or operation-level.
type ServerRef struct {
	Location
	URL string
}

// ComponentRef indexes any entry under a components/<section> map,
// regardless of which typed XxxRef also covers it; it is what lets
// go-to-definition for "#/components/securitySchemes/apiKey" and similar
// generic lookups work without knowing the section's specific shape.
type ComponentRef struct {
	Location
	Section string
	Name    string
}
