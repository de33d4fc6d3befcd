// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package rules implements spec.md §4.6: a visitor-based rule engine that
// walks the project index in a fixed order and lets each rule report
// diagnostics against whatever element kinds it cares about. It plays the
// role the teacher has no direct analogue for; its dispatch-by-kind shape
// is grounded in how index.SpecIndex itself organizes lookups by element
// kind (pathRefs, paramAllRefs, allResponses, ...), generalized here into
// a pluggable visitor per kind instead of a fixed consumer.
package rules

import (
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
)

// Severity mirrors the LSP DiagnosticSeverity enum (spec.md §4.7).
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Visitor holds one callback per element kind a rule cares about; any nil
// field is simply skipped during dispatch. A rule need not implement
// every kind — most implement one or two.
type Visitor struct {
	Document       func(ctx *Context, uri string, doc *loader.Document)
	Root           func(ctx *Context, uri string, doc *loader.Document)
	Tag            func(ctx *Context, ref *project.TagRef)
	Server         func(ctx *Context, ref *project.ServerRef)
	SecurityScheme func(ctx *Context, ref *project.SecuritySchemeRef)
	PathItem       func(ctx *Context, ref *project.PathItemRef)
	Operation      func(ctx *Context, ref *project.OperationRef)
	Parameter      func(ctx *Context, ref *project.ParameterRef)
	RequestBody    func(ctx *Context, ref *project.RequestBodyRef)
	Response       func(ctx *Context, ref *project.ResponseRef)
	MediaType      func(ctx *Context, ref *project.MediaTypeRef)
	Header         func(ctx *Context, ref *project.HeaderRef)
	Link           func(ctx *Context, ref *project.LinkRef)
	Callback       func(ctx *Context, ref *project.CallbackRef)
	Schema         func(ctx *Context, ref *project.SchemaRef)
	Reference      func(ctx *Context, loc project.Location)
	Webhook        func(ctx *Context, ref *project.PathItemRef)
	Component      func(ctx *Context, ref *project.ComponentRef)
}

// Rule is a single named check. MinVersion/MaxVersion ("" = unbounded)
// gate a rule to the OpenAPI versions it applies to, per spec.md §4.6
// "a rule declares which OpenAPI versions it applies to".
type Rule struct {
	ID              string
	Title           string
	DefaultSeverity Severity
	MinVersion      loader.Version
	MaxVersion      loader.Version
	Visitor         Visitor
}

// AppliesTo reports whether the rule is active for a document of version v.
func (r Rule) AppliesTo(v loader.Version) bool {
	if r.MinVersion != "" && versionLess(v, r.MinVersion) {
		return false
	}
	if r.MaxVersion != "" && versionLess(r.MaxVersion, v) {
		return false
	}
	return true
}

// Overrides maps a rule ID to a configured severity override, the engine
// surface spec.md §6 names as workspace config's `rulesOverrides: map<ruleId,
// "off" | "error" | "warn" | "info" | "hint">` and §4.6 "Severity
// resolution" describes: "off" drops the rule entirely; any other value
// replaces its DefaultSeverity. Loading the map from a config file is the
// host's job (spec.md §1's "configuration loading" is an external
// collaborator) — Overrides is what the engine consumes once loaded.
type Overrides map[string]string

// resolve returns the effective severity for rule under o, and whether
// the rule should run at all.
func (o Overrides) resolve(rule Rule) (Severity, bool) {
	raw, ok := o[rule.ID]
	if !ok {
		return rule.DefaultSeverity, true
	}
	if raw == "off" {
		return 0, false
	}
	if sev, ok := parseSeverity(raw); ok {
		return sev, true
	}
	return rule.DefaultSeverity, true
}

func parseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SeverityError, true
	case "warn", "warning":
		return SeverityWarning, true
	case "info", "information":
		return SeverityInformation, true
	case "hint":
		return SeverityHint, true
	default:
		return 0, false
	}
}

var versionOrder = map[loader.Version]int{
	loader.Version20: 0,
	loader.Version30: 1,
	loader.Version31: 2,
	loader.Version32: 3,
}

func versionLess(a, b loader.Version) bool {
	return versionOrder[a] < versionOrder[b]
}
