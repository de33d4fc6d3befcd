// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package loader

import (
	"strconv"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/pointer"
	"github.com/specgraph/specgraph/internal/sourcemap"
	"gopkg.in/yaml.v3"
)

// buildIR walks a resolved *yaml.Node (post DocumentNode/AliasNode
// unwrapping) into an *ir.Node tree, propagating `ptr` the way
// index.Reference tracking does in the teacher, but as an explicit tree
// rather than a flat map.
func buildIR(sm *sourcemap.SourceMap, text []byte, node *yaml.Node, ptr string) *ir.Node {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return &ir.Node{Kind: ir.KindNull, Ptr: ptr}
		}
		return buildIR(sm, text, node.Content[0], ptr)
	case yaml.AliasNode:
		if node.Alias != nil {
			return buildIR(sm, text, node.Alias, ptr)
		}
		return &ir.Node{Kind: ir.KindNull, Ptr: ptr}
	case yaml.MappingNode:
		return buildMapping(sm, text, node, ptr)
	case yaml.SequenceNode:
		return buildSequence(sm, text, node, ptr)
	default:
		return buildScalar(sm, text, node, ptr, nil, ir.Loc{})
	}
}

func buildMapping(sm *sourcemap.SourceMap, text []byte, node *yaml.Node, ptr string) *ir.Node {
	n := &ir.Node{Kind: ir.KindObject, Ptr: ptr}
	children := make([]*ir.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		key := keyNode.Value
		childPtr := pointer.Append(ptr, key)

		keyStart := sm.LineColToOffset(sourcemap.Position{Line: keyNode.Line - 1, Column: keyNode.Column - 1})
		keyEnd := scalarEnd(text, keyStart, keyNode)
		valStart := sm.LineColToOffset(sourcemap.Position{Line: valNode.Line - 1, Column: valNode.Column - 1})

		child := buildIR(sm, text, valNode, childPtr)
		valEnd := child.Loc.End
		if valEnd <= valStart {
			valEnd = valStart
		}

		child.Loc.HasKeyRange = true
		child.Loc.KeyStart, child.Loc.KeyEnd = keyStart, keyEnd
		child.Loc.ValStart, child.Loc.ValEnd = valStart, valEnd
		child.Loc.Start, child.Loc.End = keyStart, valEnd
		keyCopy := key
		child.Key = &keyCopy

		children = append(children, child)
	}
	n.Children = children
	if len(children) > 0 {
		n.Loc.Start = children[0].Loc.Start
		n.Loc.End = children[len(children)-1].Loc.End
	} else {
		start := sm.LineColToOffset(sourcemap.Position{Line: node.Line - 1, Column: node.Column - 1})
		n.Loc.Start, n.Loc.End = start, start+2 // "{}"
	}
	return n
}

func buildSequence(sm *sourcemap.SourceMap, text []byte, node *yaml.Node, ptr string) *ir.Node {
	n := &ir.Node{Kind: ir.KindArray, Ptr: ptr}
	children := make([]*ir.Node, 0, len(node.Content))
	for i, item := range node.Content {
		childPtr := pointer.AppendIndex(ptr, i)
		child := buildIR(sm, text, item, childPtr)
		children = append(children, child)
	}
	n.Children = children
	if len(children) > 0 {
		n.Loc.Start = children[0].Loc.Start
		n.Loc.End = children[len(children)-1].Loc.End
	} else {
		start := sm.LineColToOffset(sourcemap.Position{Line: node.Line - 1, Column: node.Column - 1})
		n.Loc.Start, n.Loc.End = start, start+2 // "[]"
	}
	return n
}

func buildScalar(sm *sourcemap.SourceMap, text []byte, node *yaml.Node, ptr string, _ *string, _ ir.Loc) *ir.Node {
	start := sm.LineColToOffset(sourcemap.Position{Line: node.Line - 1, Column: node.Column - 1})
	end := scalarEnd(text, start, node)

	kind, value := classifyScalar(node)
	return &ir.Node{
		Kind:  kind,
		Value: value,
		Ptr:   ptr,
		Loc:   ir.Loc{Start: start, End: end, ValStart: start, ValEnd: end},
	}
}

func classifyScalar(node *yaml.Node) (ir.Kind, any) {
	switch node.Tag {
	case "!!null":
		return ir.KindNull, nil
	case "!!bool":
		b, _ := strconv.ParseBool(node.Value)
		return ir.KindBoolean, b
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return ir.KindString, node.Value
		}
		return ir.KindNumber, f
	default:
		return ir.KindString, node.Value
	}
}
