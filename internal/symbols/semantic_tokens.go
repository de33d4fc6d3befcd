// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package symbols

import (
	"strings"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/loader"
	"gopkg.in/yaml.v3"

	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
)

// TokenType is the semantic-token classification for a single span,
// matching the LSP SemanticTokenTypes an editor would register.
type TokenType string

const (
	TokenHTTPMethod        TokenType = "method"
	TokenPath              TokenType = "namespace"
	TokenStatusCode        TokenType = "number"
	TokenRef               TokenType = "macro"
	TokenOperationID       TokenType = "function"
	TokenTypeKeyword       TokenType = "type"
	TokenDeprecated        TokenType = "deprecated"
	TokenPathParam         TokenType = "parameter"
	TokenComponentsSection TokenType = "namespace"
	TokenSchemaName        TokenType = "class"
)

// SemanticToken is one (line, column, length, type, modifiers) tuple, the
// shape an LSP textDocument/semanticTokens/full handler encodes into its
// delta-compressed wire format.
type SemanticToken struct {
	Line, Column, Length int
	Type                 TokenType
	Modifiers            []string
}

var httpMethodKeys = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "options": true, "head": true, "trace": true, "query": true,
}

// SemanticTokens walks uri's IR producing one token per: HTTP-method key
// under a path item, each path-template key under `paths`/`webhooks`,
// each response status-code key, each `$ref` value, each `operationId`
// value, each `type` value, each `deprecated` key (tagged with the
// "deprecated" modifier), each `{param}` segment of a path template, each
// components/<section> key, and each top-level schema name under
// components/schemas.
func (w *Workspace) SemanticTokens(uri string) []SemanticToken {
	doc, ok := w.Docs[uri]
	if !ok || doc.IR == nil {
		return nil
	}
	var out []SemanticToken
	emit := func(loc ir.Loc, useKey bool, t TokenType, mods ...string) {
		start, end := loc.Start, loc.End
		if useKey && loc.HasKeyRange {
			start, end = loc.KeyStart, loc.KeyEnd
		} else if !useKey && loc.HasKeyRange {
			start, end = loc.ValStart, loc.ValEnd
		}
		pos := doc.SourceMap.OffsetToLineCol(start)
		out = append(out, SemanticToken{Line: pos.Line, Column: pos.Column, Length: end - start, Type: t, Modifiers: mods})
	}

	emitParam := func(keyStart int, seg string, offsetInKey int) {
		start := keyStart + offsetInKey
		pos := doc.SourceMap.OffsetToLineCol(start)
		out = append(out, SemanticToken{Line: pos.Line, Column: pos.Column, Length: len(seg) + 2, Type: TokenPathParam})
	}

	if paths := doc.IR.Child("paths"); paths != nil {
		emitPathsContainer(paths, emit, emitParam)
	}
	if hooks := doc.IR.Child("webhooks"); hooks != nil {
		emitPathsContainer(hooks, emit, emitParam)
	}
	if comps := doc.IR.Child("components"); comps != nil {
		for _, section := range comps.Children {
			if section.Key != nil {
				emit(section.Loc, true, TokenComponentsSection)
			}
			if section.Key != nil && *section.Key == "schemas" {
				for _, schema := range section.Children {
					if schema.Key != nil {
						emit(schema.Loc, true, TokenSchemaName)
					}
				}
			}
		}
	}

	ir.Walk(doc.IR, func(n *ir.Node) {
		if n.Key == nil {
			return
		}
		switch *n.Key {
		case "$ref":
			if _, ok := n.StringValue(); ok {
				emit(n.Loc, false, TokenRef)
			}
		case "operationId":
			if _, ok := n.StringValue(); ok {
				emit(n.Loc, false, TokenOperationID)
			}
		case "type":
			if _, ok := n.StringValue(); ok {
				emit(n.Loc, false, TokenTypeKeyword)
			}
		case "deprecated":
			emit(n.Loc, true, TokenDeprecated, "deprecated")
		}
	})

	return out
}

func emitPathsContainer(paths *ir.Node, emit func(ir.Loc, bool, TokenType, ...string), emitParam func(keyStart int, seg string, offsetInKey int)) {
	for _, pathItem := range paths.Children {
		if pathItem.Key != nil {
			emit(pathItem.Loc, true, TokenPath)
			if pathItem.Loc.HasKeyRange {
				for _, hit := range pathParamOffsets(*pathItem.Key) {
					emitParam(pathItem.Loc.KeyStart, hit.seg, hit.offset)
				}
			}
		}
		for _, member := range pathItem.Children {
			if member.Key != nil && httpMethodKeys[*member.Key] {
				emit(member.Loc, true, TokenHTTPMethod)
				if responses := member.Child("responses"); responses != nil {
					for _, r := range responses.Children {
						if r.Key != nil {
							emit(r.Loc, true, TokenStatusCode)
						}
					}
				}
			}
		}
	}
}

type pathParamHit struct {
	seg    string
	offset int
}

// pathParamOffsets extracts the "{name}" segments from a path template
// string along with their byte offset within it, e.g.
// "/users/{id}" -> [{seg: "id", offset: 7}]. Offsets are relative to the
// start of the key token; callers add the key's own start offset.
func pathParamOffsets(pathTemplate string) []pathParamHit {
	var out []pathParamHit
	base := 0
	for {
		start := strings.IndexByte(pathTemplate, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(pathTemplate[start:], '}')
		if end < 0 {
			break
		}
		out = append(out, pathParamHit{seg: pathTemplate[start+1 : start+end], offset: base + start})
		pathTemplate = pathTemplate[start+end+1:]
		base += start + end + 1
	}
	return out
}

// DiscriminatorMapping is one `discriminator.mapping` entry: the literal
// value used on the wire and the schema name/ref it maps to.
type DiscriminatorMapping struct {
	Value string
	Ref    string
}

// DiscriminatorMappings scans uri's raw text for every
// `discriminator.mapping` object using a JSONPath query, the way the
// teacher's utils.FindNodes/FindNodesWithoutDeserializing scan raw YAML
// for structural matches the typed index does not pre-compute (spec.md
// §4.9 go-to-definition "discriminator mappings").
func (w *Workspace) DiscriminatorMappings(uri string) ([]DiscriminatorMapping, error) {
	doc, ok := w.Docs[uri]
	if !ok {
		return nil, nil
	}
	return findDiscriminatorMappings(doc)
}

func findDiscriminatorMappings(doc *loader.Document) ([]DiscriminatorMapping, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc.RawText, &root); err != nil {
		return nil, err
	}
	path, err := yamlpath.NewPath("$..discriminator.mapping")
	if err != nil {
		return nil, err
	}
	nodes, err := path.Find(&root)
	if err != nil {
		return nil, err
	}
	var out []DiscriminatorMapping
	for _, mapping := range nodes {
		if mapping.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			out = append(out, DiscriminatorMapping{Value: mapping.Content[i].Value, Ref: mapping.Content[i+1].Value})
		}
	}
	return out, nil
}
