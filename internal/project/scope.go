// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package project

import "strings"

// Scope describes the structural context a pointer sits within: which
// path, operation, parameter, security requirement, or component it
// belongs to, if any. Rule visitors are not handed a Scope; a consumer
// derives one from a pointer so it can, for example, tell whether a schema is
// reachable from a response body versus a request body (spec.md §4.6).
type Scope struct {
	PathItem  *PathItemRef
	Operation *OperationRef
	Parameter *ParameterRef
	Security  *SecurityRequirementRef
	Component *ComponentRef
}

// ScopeOf derives the Scope containing uri#ptr by matching it against
// the index's path-item/operation/parameter/component maps. It does a
// longest-prefix match over each map's pointer component, mirroring the
// teacher's approach of deriving context from a node's position in the
// tree rather than carrying a separate parent pointer on every IR node.
func (idx *Index) ScopeOf(uri, ptr string) Scope {
	var scope Scope

	bestOpLen := -1
	for pair := idx.Operations.First(); pair != nil; pair = pair.Next() {
		op := pair.Value()
		if op.URI != uri {
			continue
		}
		if isPrefixPointer(op.Pointer, ptr) && len(op.Pointer) > bestOpLen {
			scope.Operation = op
			bestOpLen = len(op.Pointer)
		}
	}

	bestPathLen := -1
	for pair := idx.PathItems.First(); pair != nil; pair = pair.Next() {
		pi := pair.Value()
		if pi.URI != uri {
			continue
		}
		if isPrefixPointer(pi.Pointer, ptr) && len(pi.Pointer) > bestPathLen {
			scope.PathItem = pi
			bestPathLen = len(pi.Pointer)
		}
	}

	bestParamLen := -1
	for pair := idx.Parameters.First(); pair != nil; pair = pair.Next() {
		p := pair.Value()
		if p.URI != uri {
			continue
		}
		if isPrefixPointer(p.Pointer, ptr) && len(p.Pointer) > bestParamLen {
			scope.Parameter = p
			bestParamLen = len(p.Pointer)
		}
	}

	bestSecLen := -1
	for pair := idx.SecurityRequirements.First(); pair != nil; pair = pair.Next() {
		s := pair.Value()
		if s.URI != uri {
			continue
		}
		if isPrefixPointer(s.Pointer, ptr) && len(s.Pointer) > bestSecLen {
			scope.Security = s
			bestSecLen = len(s.Pointer)
		}
	}

	bestCompLen := -1
	for pair := idx.Components.First(); pair != nil; pair = pair.Next() {
		c := pair.Value()
		if c.URI != uri {
			continue
		}
		if isPrefixPointer(c.Pointer, ptr) && len(c.Pointer) > bestCompLen {
			scope.Component = c
			bestCompLen = len(c.Pointer)
		}
	}

	return scope
}

// isPrefixPointer reports whether candidate is ptr itself or an ancestor
// pointer of it ("#/paths/~1a" is a prefix of "#/paths/~1a/get").
func isPrefixPointer(candidate, ptr string) bool {
	if candidate == ptr {
		return true
	}
	return strings.HasPrefix(ptr, candidate+"/")
}
