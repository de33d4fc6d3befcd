// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package project

// OperationIDIndex maps each declared operationId to every location it
// occurs at, so rename and find-references can treat operationId like a
// workspace-wide symbol even though OpenAPI gives it no formal scoping
// rules of its own (spec.md §4.9, §8 "rename operationId ... must find
// every occurrence across every file").
type OperationIDIndex struct {
	occurrences map[string][]Location
	order       []string
}

func newOperationIDIndex() *OperationIDIndex {
	return &OperationIDIndex{occurrences: map[string][]Location{}}
}

func (o *OperationIDIndex) add(id string, loc Location) {
	if _, ok := o.occurrences[id]; !ok {
		o.order = append(o.order, id)
	}
	o.occurrences[id] = append(o.occurrences[id], loc)
}

// Occurrences returns every location where id was declared as an
// operationId, in the order documents were indexed.
func (o *OperationIDIndex) Occurrences(id string) []Location {
	return o.occurrences[id]
}

// IsDuplicate reports whether id was declared more than once across the
// workspace.
func (o *OperationIDIndex) IsDuplicate(id string) bool {
	return len(o.occurrences[id]) > 1
}

// IDs returns every distinct operationId found, in first-seen order.
func (o *OperationIDIndex) IDs() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}
