package rootresolver

import (
	"testing"

	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAll(m map[string]string) map[string]*loader.Document {
	out := map[string]*loader.Document{}
	for uri, text := range m {
		out[uri] = loader.Load(uri, []byte(text))
	}
	return out
}

func TestFindRootsForFragment(t *testing.T) {
	docs := loadAll(map[string]string{
		"file:///root.yaml": "openapi: 3.0.0\ninfo:\n  title: x\n  version: \"1\"\npaths:\n  /a:\n    $ref: './frag.yaml'\n",
		"file:///frag.yaml":  "get:\n  summary: hi\n",
	})
	g := refgraph.Build(docs)
	rr := New(func(uri string) (*loader.Document, bool) { d, ok := docs[uri]; return d, ok }, g)

	roots := rr.FindRootsForNode("file:///frag.yaml", "#")
	require.Len(t, roots, 1)
	assert.Equal(t, "file:///root.yaml", roots[0])
}

func TestIsRootDocument(t *testing.T) {
	docs := loadAll(map[string]string{
		"file:///root.yaml": "openapi: 3.1.0\ninfo:\n  title: x\n  version: \"1\"\n",
		"file:///frag.yaml":  "type: object\n",
	})
	g := refgraph.Build(docs)
	rr := New(func(uri string) (*loader.Document, bool) { d, ok := docs[uri]; return d, ok }, g)
	assert.True(t, rr.IsRootDocument("file:///root.yaml"))
	assert.False(t, rr.IsRootDocument("file:///frag.yaml"))
}

func TestGetVersionForPartial(t *testing.T) {
	docs := loadAll(map[string]string{
		"file:///root.yaml": "openapi: 3.2.0\ninfo:\n  title: x\n  version: \"1\"\ncomponents:\n  schemas:\n    A:\n      $ref: './frag.yaml'\n",
		"file:///frag.yaml":  "type: string\n",
	})
	g := refgraph.Build(docs)
	rr := New(func(uri string) (*loader.Document, bool) { d, ok := docs[uri]; return d, ok }, g)
	assert.Equal(t, loader.Version32, rr.GetVersionForPartial("file:///frag.yaml"))
}

func TestNoRootFoundForOrphanFragment(t *testing.T) {
	docs := loadAll(map[string]string{
		"file:///frag.yaml": "type: string\n",
	})
	g := refgraph.Build(docs)
	rr := New(func(uri string) (*loader.Document, bool) { d, ok := docs[uri]; return d, ok }, g)
	assert.Empty(t, rr.FindRootsForNode("file:///frag.yaml", "#"))
	assert.Equal(t, "", rr.GetPrimaryRoot("file:///frag.yaml", "#"))
}
