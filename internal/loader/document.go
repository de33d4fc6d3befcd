// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package loader implements spec.md §4.1: parsing a single file's raw
// text into an IR tree with accurate locations, and classifying its kind
// and OpenAPI version. It mirrors the teacher's document.go / index
// bootstrap, replacing the high/low typed-model build with the IR tree
// this system's rule engine and project index operate on.
package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/sourcemap"
	"gopkg.in/yaml.v3"
)

// Version is the detected (or declared) OpenAPI version of a document.
type Version string

const (
	Version20      Version = "2.0"
	Version30      Version = "3.0"
	Version31      Version = "3.1"
	Version32      Version = "3.2"
	VersionUnknown Version = "unknown"
)

// Kind classifies the structural role of a document, per spec.md §3.
type Kind string

const (
	KindRoot        Kind = "root"
	KindSchema      Kind = "schema"
	KindParameter   Kind = "parameter"
	KindResponse    Kind = "response"
	KindRequestBody Kind = "requestBody"
	KindExample     Kind = "example"
	KindPathItem    Kind = "path-item"
	KindUnknown     Kind = "unknown"
)

// httpMethods mirrors the teacher's index.methodTypes set, extended with
// "query" for OpenAPI 3.2 webhooks/path-items per spec.md §4.5.
var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "options": true, "head": true, "trace": true,
	"query": true,
}

// Document is a single parsed file: its raw text, IR tree, source map,
// and classification. It is immutable after LoadDocument returns; a
// reload produces a brand-new Document value, never a mutation, so that
// downstream structures keyed on the old value are safely discarded.
type Document struct {
	URI         string
	RawText     []byte
	IR          *ir.Node
	SourceMap   *sourcemap.SourceMap
	Hash        string
	Version     Version
	Kind        Kind
	ParseErrors []ParseError
}

// ParseError is a synthetic diagnostic-shaped error produced when a
// document fails to parse; the engine tolerates an empty IR downstream.
type ParseError struct {
	Message string
	Offset  int
}

// Load parses text into a Document. Non-UTF-8 text is rejected per
// spec.md §6; valid-but-malformed YAML/JSON produces a Document with an
// empty IR and a ParseError, per spec.md §4.1 failure semantics.
func Load(uri string, text []byte) *Document {
	sm := sourcemap.New(text)
	doc := &Document{URI: uri, RawText: text, SourceMap: sm, Hash: hashOf(text)}

	if !isValidUTF8(text) {
		doc.ParseErrors = append(doc.ParseErrors, ParseError{Message: "document is not valid UTF-8", Offset: firstInvalidUTF8Offset(text)})
		doc.IR = emptyIR()
		doc.Kind = KindUnknown
		doc.Version = VersionUnknown
		return doc
	}

	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		doc.ParseErrors = append(doc.ParseErrors, ParseError{Message: err.Error(), Offset: 0})
		doc.IR = emptyIR()
		doc.Kind = KindUnknown
		doc.Version = VersionUnknown
		return doc
	}

	if root.Kind == 0 {
		doc.IR = emptyIR()
		doc.Kind = KindUnknown
		doc.Version = VersionUnknown
		return doc
	}

	doc.IR = buildIR(sm, text, &root, "#")
	doc.Kind = IdentifyKind(doc.IR)
	doc.Version = DetectVersion(doc.IR)
	return doc
}

func emptyIR() *ir.Node {
	return &ir.Node{Kind: ir.KindNull, Ptr: "#"}
}

func hashOf(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:])
}

func isValidUTF8(text []byte) bool {
	return firstInvalidUTF8Offset(text) == -1
}

func firstInvalidUTF8Offset(text []byte) int {
	for i := 0; i < len(text); {
		b := text[i]
		if b < 0x80 {
			i++
			continue
		}
		n := utf8SeqLen(b)
		if n == 0 || i+n > len(text) {
			return i
		}
		for k := 1; k < n; k++ {
			if text[i+k]&0xC0 != 0x80 {
				return i
			}
		}
		i += n
	}
	return -1
}

func utf8SeqLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

var semverRe = regexp.MustCompile(`^3\.\d+\.\d+$`)

// DetectVersion reads the root "openapi" or "swagger" key, per spec.md
// §4.1. A present-but-malformed version string classifies as unknown
// rather than erroring, matching the teacher's tolerant parsing style.
func DetectVersion(root *ir.Node) Version {
	if root == nil || root.Kind != ir.KindObject {
		return VersionUnknown
	}
	if v, ok := root.Child("openapi").StringValue(); ok {
		switch {
		case strings.HasPrefix(v, "3.2"):
			return Version32
		case strings.HasPrefix(v, "3.1"):
			return Version31
		case semverRe.MatchString(v) || strings.HasPrefix(v, "3.0"):
			return Version30
		}
		return VersionUnknown
	}
	if v, ok := root.Child("swagger").StringValue(); ok {
		if v == "2.0" {
			return Version20
		}
		return VersionUnknown
	}
	return VersionUnknown
}

// IdentifyKind classifies a document's root node per spec.md §4.1.
func IdentifyKind(root *ir.Node) Kind {
	if root == nil || root.Kind != ir.KindObject {
		return KindUnknown
	}
	if root.HasKey("openapi") || root.HasKey("swagger") {
		return KindRoot
	}
	for _, c := range root.Children {
		if c.Key != nil && httpMethods[strings.ToLower(*c.Key)] {
			return KindPathItem
		}
	}
	if root.HasKey("name") && root.HasKey("in") {
		return KindParameter
	}
	if root.HasKey("content") && (root.HasKey("description") || len(root.Children) == 1) && !root.HasKey("responses") {
		return KindRequestBody
	}
	if root.HasKey("description") && root.HasKey("content") && root.HasKey("headers") {
		return KindResponse
	}
	if root.HasKey("value") || root.HasKey("summary") && root.HasKey("externalValue") {
		return KindExample
	}
	if root.HasKey("schema") && !root.HasKey("responses") {
		return KindUnknown
	}
	if root.HasKey("type") || root.HasKey("properties") || root.HasKey("allOf") || root.HasKey("oneOf") || root.HasKey("anyOf") || root.HasKey("$ref") {
		return KindSchema
	}
	return KindUnknown
}

// IsHTTPMethod reports whether s (already lower-cased by the caller, or
// not) names an operation-bearing HTTP method key recognised by this
// system, including the OpenAPI 3.2 "query" method.
func IsHTTPMethod(s string) bool {
	return httpMethods[strings.ToLower(s)]
}

func (d *Document) String() string {
	return fmt.Sprintf("Document{%s kind=%s version=%s}", d.URI, d.Kind, d.Version)
}
