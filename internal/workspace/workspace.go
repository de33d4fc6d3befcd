// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package workspace adapts the teacher's rolodex package (multi-file
// loading across local/remote filesystems, with a parent/child index
// relationship) into the "workspace-scale" framing spec.md §1 and §5.11
// of SPEC_FULL.md call for: a single mutable document map plus a
// rebuildable graph/index, with no other global state (spec.md §9).
// Workspace.Load replaces rolodex.AddLocalFS/AddRemoteFS's per-filesystem
// registration with a per-URI load, and keeps the rolodex's
// children/parentIndex shape, renamed dependents/dependsOn, backed by
// internal/rootresolver's reverse-BFS instead of the teacher's
// ad hoc parent pointer bookkeeping.
package workspace

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/specgraph/specgraph/internal/diagnostics"
	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/internal/refsindex"
	"github.com/specgraph/specgraph/internal/rootresolver"
	"github.com/specgraph/specgraph/internal/rules"
)

// Workspace holds every loaded document plus the derived, rebuildable
// structures the rest of the engine reads at query time: the reference
// graph, the root resolver, the project index, and the references index.
// It is the single mutable state in the system (spec.md §9, "the
// workspace holds a single mutable map of documents and a rebuildable
// graph/index; all other state is derived and cacheable").
type Workspace struct {
	mu     sync.RWMutex
	docs   map[string]*loader.Document
	logger *slog.Logger

	graph     *refgraph.Graph
	resolver  *refgraph.Resolver
	root      *rootresolver.Resolver
	index     *project.Index
	refs      *refsindex.Index
}

// New returns an empty Workspace. A nil logger defaults to a JSON
// handler whose output is discarded, matching the teacher's
// rolodex_file_loader.go/rolodex_remote_loader.go "Logger *slog.Logger"
// override pattern.
func New(logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(newDiscardWriter(), nil))
	}
	w := &Workspace{docs: map[string]*loader.Document{}, logger: logger}
	w.rebuild()
	return w
}

// Load parses text into a Document and installs (or replaces) it at uri,
// then rebuilds every derived structure. Per spec.md §9, "Replacing a
// document drops its IR and all derived caches keyed by that URI" — here
// that is implemented conservatively via a full rebuild rather than
// trying to patch each derived structure incrementally.
func (w *Workspace) Load(uri string, text []byte) *loader.Document {
	doc := loader.Load(uri, text)

	w.mu.Lock()
	w.docs[uri] = doc
	w.mu.Unlock()

	w.logger.Debug("document loaded", "uri", uri, "kind", string(doc.Kind), "version", string(doc.Version))
	w.rebuild()
	return doc
}

// Remove drops uri from the workspace and rebuilds derived structures.
func (w *Workspace) Remove(uri string) {
	w.mu.Lock()
	delete(w.docs, uri)
	w.mu.Unlock()
	w.logger.Debug("document removed", "uri", uri)
	w.rebuild()
}

// LoadFS walks every file in fsys matching the default OpenAPI extensions
// (*.yaml, *.yml, *.json, *.jsonc) rooted at baseDir, loading each one.
// It mirrors rolodex.LocalFS's directory walk, generalized to the
// standard fs.FS interface so tests can use fstest.MapFS directly.
func (w *Workspace) LoadFS(baseDir string, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSpecFile(path) {
			return nil
		}
		data, rErr := fs.ReadFile(fsys, path)
		if rErr != nil {
			w.logger.Debug("failed reading file", "path", path, "error", rErr)
			return nil
		}
		uri := "file://" + filepath.Join(baseDir, path)
		w.Load(uri, data)
		return nil
	})
}

func isSpecFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return true
	default:
		return false
	}
}

// rebuild reconstructs the graph, resolver, root resolver, project
// index, and references index from the current document map. Documents
// themselves are untouched: only the derived, read-only structures are
// replaced (spec.md §5, "the IR, source map, graph, and index are
// read-only after construction").
func (w *Workspace) rebuild() {
	w.mu.Lock()
	docsCopy := make(map[string]*loader.Document, len(w.docs))
	for uri, doc := range w.docs {
		docsCopy[uri] = doc
	}
	w.mu.Unlock()

	lookup := func(uri string) (*loader.Document, bool) {
		w.mu.RLock()
		defer w.mu.RUnlock()
		d, ok := w.docs[uri]
		return d, ok
	}

	graph := refgraph.Build(docsCopy)
	resolver := refgraph.NewResolver(lookup)
	root := rootresolver.New(lookup, graph)
	idx := project.Build(docsCopy, graph, resolver)
	refs := refsindex.New(func() map[string]*loader.Document {
		w.mu.RLock()
		defer w.mu.RUnlock()
		snapshot := make(map[string]*loader.Document, len(w.docs))
		for uri, doc := range w.docs {
			snapshot[uri] = doc
		}
		return snapshot
	}, graph)

	w.mu.Lock()
	w.graph, w.resolver, w.root, w.index, w.refs = graph, resolver, root, idx, refs
	w.mu.Unlock()
}

// Document returns the loaded document at uri, if any.
func (w *Workspace) Document(uri string) (*loader.Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	d, ok := w.docs[uri]
	return d, ok
}

// Documents returns a snapshot copy of every loaded document, keyed by
// URI, suitable for a single request's consistent view (spec.md §5:
// "each request operates on a consistent snapshot of the index taken at
// request start").
func (w *Workspace) Documents() map[string]*loader.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]*loader.Document, len(w.docs))
	for uri, doc := range w.docs {
		out[uri] = doc
	}
	return out
}

// Graph returns the current reference graph.
func (w *Workspace) Graph() *refgraph.Graph { w.mu.RLock(); defer w.mu.RUnlock(); return w.graph }

// Resolver returns the current $ref resolver.
func (w *Workspace) Resolver() *refgraph.Resolver { w.mu.RLock(); defer w.mu.RUnlock(); return w.resolver }

// Index returns the current project index.
func (w *Workspace) Index() *project.Index { w.mu.RLock(); defer w.mu.RUnlock(); return w.index }

// References returns the current references index.
func (w *Workspace) References() *refsindex.Index { w.mu.RLock(); defer w.mu.RUnlock(); return w.refs }

// DependentsOf returns every root document URI that (transitively, via
// reverse $ref edges) pulls in uri#ptr — the rolodex's "children" walk,
// renamed to match spec.md §4.4's RootResolver naming.
func (w *Workspace) DependentsOf(uri, ptr string) []string {
	w.mu.RLock()
	r := w.root
	w.mu.RUnlock()
	return r.FindRootsForNode(uri, ptr)
}

// DependsOn reports whether uri is itself a root OpenAPI document — the
// rolodex's "parentIndex" inverse: a root document has no parent.
func (w *Workspace) DependsOn(uri string) bool {
	w.mu.RLock()
	r := w.root
	w.mu.RUnlock()
	return !r.IsRootDocument(uri)
}

// Validate runs engine over every loaded document and returns the
// aggregated diagnostics, per spec.md §6's CLI surface.
func (w *Workspace) Validate(engine *rules.Engine) *diagnostics.Aggregator {
	w.mu.RLock()
	docsCopy := make(map[string]*loader.Document, len(w.docs))
	for uri, doc := range w.docs {
		docsCopy[uri] = doc
	}
	graph, resolver, root, idx := w.graph, w.resolver, w.root, w.index
	w.mu.RUnlock()
	return engine.Run(docsCopy, idx, resolver, graph, root)
}

// discardWriter is a minimal io.Writer sink for the default logger, so a
// Workspace constructed without an explicit logger does not write to
// stdout/stderr by default (a host wires its own slog.Logger per
// spec.md's "external collaborator" boundary for transport/config).
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newDiscardWriter() discardWriter { return discardWriter{} }
