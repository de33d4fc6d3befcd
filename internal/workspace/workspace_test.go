package workspace

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRebuildsDerivedStructures(t *testing.T) {
	w := New(nil)
	w.Load("file:///a.yaml", []byte("openapi: '3.1.0'\ncomponents:\n  schemas:\n    A:\n      type: object\n"))

	doc, ok := w.Document("file:///a.yaml")
	require.True(t, ok)
	assert.Equal(t, "3.1", string(doc.Version))
	assert.NotNil(t, w.Graph())
	assert.NotNil(t, w.Index())
	assert.NotNil(t, w.References())
}

func TestRemoveDropsDocumentAndRebuilds(t *testing.T) {
	w := New(nil)
	w.Load("file:///a.yaml", []byte("openapi: '3.1.0'\n"))
	w.Remove("file:///a.yaml")
	_, ok := w.Document("file:///a.yaml")
	assert.False(t, ok)
}

func TestLoadFSWalksMatchingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml":    {Data: []byte("openapi: '3.1.0'\n")},
		"notes.txt": {Data: []byte("ignore me")},
	}
	w := New(nil)
	require.NoError(t, w.LoadFS("/root", fsys))
	docs := w.Documents()
	assert.Len(t, docs, 1)
}

func TestDependentsOfFindsRootForFragment(t *testing.T) {
	w := New(nil)
	w.Load("file:///a.yaml", []byte("openapi: '3.1.0'\ncomponents:\n  schemas:\n    A:\n      $ref: './b.yaml#/components/schemas/B'\n"))
	w.Load("file:///b.yaml", []byte("components:\n  schemas:\n    B:\n      type: string\n"))

	roots := w.DependentsOf("file:///b.yaml", "#/components/schemas/B")
	assert.Contains(t, roots, "file:///a.yaml")
	assert.True(t, w.DependsOn("file:///b.yaml"))
	assert.False(t, w.DependsOn("file:///a.yaml"))
}
