// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package symbols

// CallHierarchyItem is one node in an operation/callback call hierarchy:
// an operation "calls" the callback requests it declares, and an
// operation is "called by" any links that reference it.
type CallHierarchyItem struct {
	Location
	Name string
}

// IncomingCalls returns every operation whose `links[name].operationId`
// targets the operation at (uri, pointer) — i.e. who calls it. Links that
// use operationRef are not matched.
func (w *Workspace) IncomingCalls(uri, pointer string) []CallHierarchyItem {
	if w.Index == nil {
		return nil
	}
	var target *CallHierarchyItem
	for pair := w.Index.Operations.First(); pair != nil; pair = pair.Next() {
		op := pair.Value()
		if op.URI == uri && op.Pointer == pointer {
			target = &CallHierarchyItem{Location: Location{URI: op.URI, Range: w.rangeOf(op.URI, op.Node.Loc)}, Name: op.OperationID}
			break
		}
	}
	if target == nil {
		return nil
	}

	var out []CallHierarchyItem
	for pair := w.Index.Links.First(); pair != nil; pair = pair.Next() {
		link := pair.Value()
		opID, ok := link.Node.Child("operationId").StringValue()
		if !ok || opID != target.Name {
			continue
		}
		scope := w.Index.ScopeOf(link.URI, link.Pointer)
		if scope.Operation != nil {
			out = append(out, CallHierarchyItem{
				Location: Location{URI: scope.Operation.URI, Range: w.rangeOf(scope.Operation.URI, scope.Operation.Node.Loc)},
				Name:     scope.Operation.OperationID,
			})
		}
	}
	return out
}

// OutgoingCalls returns every callback declared on the operation at
// (uri, pointer) — the requests it, in turn, may trigger.
func (w *Workspace) OutgoingCalls(uri, pointer string) []CallHierarchyItem {
	if w.Index == nil {
		return nil
	}
	var out []CallHierarchyItem
	for pair := w.Index.Callbacks.First(); pair != nil; pair = pair.Next() {
		cb := pair.Value()
		if cb.URI != uri || !isDescendantPointer(pointer, cb.Pointer) {
			continue
		}
		out = append(out, CallHierarchyItem{
			Location: Location{URI: cb.URI, Range: w.rangeOf(cb.URI, cb.Node.Loc)},
			Name:     cb.Name,
		})
	}
	return out
}

// WorkspaceSymbol is a single named element surfaced by a workspace
// symbol search, e.g. "listUsers" for an operation or "User" for a
// component schema.
type WorkspaceSymbol struct {
	Location
	Name string
	Kind string
}

// WorkspaceSymbols returns every operation (by operationId), schema (by
// component name), and tag (by name) across the whole workspace whose
// name contains query (case-sensitive substring match, matching the
// teacher's plain-string scans rather than fuzzy scoring).
func (w *Workspace) WorkspaceSymbols(query string) []WorkspaceSymbol {
	if w.Index == nil {
		return nil
	}
	var out []WorkspaceSymbol
	for pair := w.Index.Operations.First(); pair != nil; pair = pair.Next() {
		op := pair.Value()
		if op.OperationID != "" && contains(op.OperationID, query) {
			out = append(out, WorkspaceSymbol{Location: Location{URI: op.URI, Range: w.rangeOf(op.URI, op.Node.Loc)}, Name: op.OperationID, Kind: "operation"})
		}
	}
	for pair := w.Index.Components.First(); pair != nil; pair = pair.Next() {
		c := pair.Value()
		if c.Section == "schemas" && contains(c.Name, query) {
			out = append(out, WorkspaceSymbol{Location: Location{URI: c.URI, Range: w.rangeOf(c.URI, c.Node.Loc)}, Name: c.Name, Kind: "schema"})
		}
	}
	for pair := w.Index.Tags.First(); pair != nil; pair = pair.Next() {
		t := pair.Value()
		if contains(t.Name, query) {
			out = append(out, WorkspaceSymbol{Location: Location{URI: t.URI, Range: w.rangeOf(t.URI, t.Node.Loc)}, Name: t.Name, Kind: "tag"})
		}
	}
	return out
}

func contains(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
