// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"

	"github.com/specgraph/specgraph/internal/ir"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/rules"
)

// SchemaShape is the "zod-like" structural-validation bridge rule named in
// SPEC_FULL.md §5.10(6): it fulfills spec.md §8 scenario 5 by validating
// an instance against a schema's declared `type`/`required`/`properties`
// constraints and reporting "Expected <type>, received <actual-or-
// undefined>", without introducing an external schema-validation library
// (out of scope per spec.md §1 — "YAML/JSON schema services" are an
// external collaborator). The instance it validates is the schema's own
// `example` (or the first element of `examples`) — every OpenAPI document
// already carries its instance data alongside the schema that describes
// it, so there is no need for a second, separately loaded document to
// pair schema with instance.
var SchemaShape = rules.Rule{
	ID:              "schema-shape",
	Title:           "example does not match declared schema shape",
	DefaultSeverity: rules.SeverityError,
	Visitor: rules.Visitor{
		Schema: func(ctx *rules.Context, ref *project.SchemaRef) {
			checkShape(ctx, ref.URI, ref.Node)
		},
	},
}

// checkShape validates a schema's own example against its declared shape.
func checkShape(ctx *rules.Context, uri string, schema *ir.Node) {
	instance := exampleOf(schema)
	if instance == nil {
		return
	}
	validateInstance(ctx, uri, schema, instance, instance)
}

// exampleOf returns the node holding schema's sample instance: its
// `example` member, or the first element of `examples` (the OAS 3.1/JSON
// Schema 2020-12 plural form) when present.
func exampleOf(schema *ir.Node) *ir.Node {
	if schema == nil {
		return nil
	}
	if ex := schema.Child("example"); ex != nil {
		return ex
	}
	if exs := schema.Child("examples"); exs != nil && exs.Kind == ir.KindArray && len(exs.Children) > 0 {
		return exs.Children[0]
	}
	return nil
}

// validateInstance walks schema's declared properties against instance,
// recursing into nested objects. anchor is the nearest ancestor instance
// node that actually exists, so a missing deeply-nested property is still
// reported at a real location rather than one that doesn't exist in the
// document.
func validateInstance(ctx *rules.Context, uri string, schema, instance, anchor *ir.Node) {
	if schema == nil || schema.Kind != ir.KindObject {
		return
	}
	properties := schema.Child("properties")
	if properties == nil {
		return
	}
	required := map[string]bool{}
	if req := schema.Child("required"); req != nil && req.Kind == ir.KindArray {
		for _, r := range req.Children {
			if name, ok := r.StringValue(); ok {
				required[name] = true
			}
		}
	}

	for _, prop := range properties.Children {
		if prop.Key == nil {
			continue
		}
		name := *prop.Key

		var child *ir.Node
		if instance != nil {
			child = instance.Child(name)
		}

		if child == nil {
			if required[name] {
				ctx.ReportKey(uri, anchor, fmt.Sprintf("Expected %s, received undefined", declaredType(prop)))
			}
			continue
		}

		if mismatch, want, got := typeMismatch(prop, child); mismatch {
			ctx.ReportKey(uri, child, fmt.Sprintf("Expected %s, received %s", want, got))
			continue
		}

		validateInstance(ctx, uri, prop, child, child)
	}
}

// declaredType returns a schema node's own "type", defaulting to "value"
// when unset (an untyped schema accepts anything, but a missing required
// member still has to say something is missing).
func declaredType(schema *ir.Node) string {
	if t := schema.Child("type"); t != nil {
		if s, ok := t.StringValue(); ok {
			return s
		}
	}
	return "value"
}

// typeMismatch reports whether instance's runtime kind disagrees with
// schema's declared "type", and if so the declared and actual type names.
func typeMismatch(schema, instance *ir.Node) (mismatch bool, want, got string) {
	t := schema.Child("type")
	if t == nil {
		return false, "", ""
	}
	declared, ok := t.StringValue()
	if !ok || kindMatchesType(instance.Kind, declared) {
		return false, "", ""
	}
	return true, declared, instance.Kind.String()
}

// kindMatchesType reports whether an IR node's kind satisfies an OpenAPI
// schema's declared primitive "type", treating "integer" as a number
// (the IR does not distinguish the two, matching YAML/JSON's own lack of
// an integer/float distinction at the scanner level).
func kindMatchesType(k ir.Kind, declared string) bool {
	switch declared {
	case "object":
		return k == ir.KindObject
	case "array":
		return k == ir.KindArray
	case "string":
		return k == ir.KindString
	case "number", "integer":
		return k == ir.KindNumber
	case "boolean":
		return k == ir.KindBoolean
	case "null":
		return k == ir.KindNull
	default:
		return true
	}
}
