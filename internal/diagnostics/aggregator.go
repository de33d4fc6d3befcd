// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package diagnostics

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/google/uuid"
)

// Aggregator collects diagnostics from every rule run across a workspace
// generation, deduplicates identical findings, and serves them sorted and
// grouped by document, per spec.md §4.7.
type Aggregator struct {
	byKey map[string]Diagnostic
	order []string
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byKey: map[string]Diagnostic{}}
}

// Add records d, silently dropping an exact duplicate of one already
// recorded ((ruleId, uri, range, message) per spec.md §4.7).
func (a *Aggregator) Add(d Diagnostic) {
	key := d.dedupeKey()
	if _, ok := a.byKey[key]; ok {
		return
	}
	a.byKey[key] = d
	a.order = append(a.order, key)
}

// AddAll records every diagnostic in ds.
func (a *Aggregator) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		a.Add(d)
	}
}

// ForURI returns every diagnostic recorded for uri, sorted by
// (startLine, startChar, ruleId).
func (a *Aggregator) ForURI(uri string) []Diagnostic {
	var out []Diagnostic
	for _, k := range a.order {
		d := a.byKey[k]
		if d.URI == uri {
			out = append(out, d)
		}
	}
	sortDiagnostics(out)
	return out
}

// All returns every diagnostic recorded, grouped by uri into a map (which
// has no iteration order), each group internally sorted.
func (a *Aggregator) All() map[string][]Diagnostic {
	out := map[string][]Diagnostic{}
	for _, k := range a.order {
		d := a.byKey[k]
		out[d.URI] = append(out[d.URI], d)
	}
	for uri := range out {
		sortDiagnostics(out[uri])
	}
	return out
}

func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}
		if a.Range.Start.Character != b.Range.Start.Character {
			return a.Range.Start.Character < b.Range.Start.Character
		}
		return a.RuleID < b.RuleID
	})
}

// PullReportKind distinguishes a full report from an unchanged
// (not-modified-since-last-pull) report, per the LSP pull-diagnostics
// model spec.md §4.7 follows.
type PullReportKind string

const (
	KindFull      PullReportKind = "full"
	KindUnchanged PullReportKind = "unchanged"
)

// PullReport is the envelope returned to a single diagnostics-pull
// request for one document. ResultHash identifies the reported item set
// so a client can pass it back as previousHash on its next pull and
// receive a KindUnchanged report instead of the full item list.
type PullReport struct {
	BatchID    string
	Kind       PullReportKind
	URI        string
	Version    int
	ResultHash string
	Items      []Diagnostic
}

// PullReportFor builds a PullReport for uri. previousHash, when non-empty
// and equal to the newly-computed hash of the sorted diagnostic set,
// yields a KindUnchanged report with no items, letting a client skip
// re-rendering.
func (a *Aggregator) PullReportFor(uri string, version int, previousHash string) PullReport {
	items := a.ForURI(uri)
	hash := hashItems(items)

	report := PullReport{
		BatchID:    uuid.NewString(),
		URI:        uri,
		Version:    version,
		ResultHash: hash,
		Kind:       KindFull,
		Items:      items,
	}
	if previousHash != "" && previousHash == hash {
		report.Kind = KindUnchanged
		report.Items = nil
	}
	return report
}

// hashItems computes a stable digest of a sorted diagnostic set's dedupe
// keys, used to detect an unchanged pull-diagnostics result.
func hashItems(items []Diagnostic) string {
	h := sha256.New()
	for _, d := range items {
		h.Write([]byte(d.dedupeKey()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
