package refsindex

import (
	"testing"

	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(m map[string]string) map[string]*loader.Document {
	out := map[string]*loader.Document{}
	for uri, text := range m {
		out[uri] = loader.Load(uri, []byte(text))
	}
	return out
}

func TestGetInboundRefsToPointerPartitionsInternalAndExternal(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      type: object\n      properties:\n        self:\n          $ref: '#/components/schemas/A'\n        other:\n          $ref: './b.yaml#/components/schemas/Shared'\n",
		"file:///b.yaml": "components:\n  schemas:\n    Shared:\n      type: string\n",
	})
	g := refgraph.Build(d)
	idx := New(func() map[string]*loader.Document { return d }, g)

	result := idx.GetInboundRefsToPointer("file:///b.yaml", "#/components/schemas/Shared", false)
	require.Len(t, result.Locations, 1)
	assert.Equal(t, "file:///a.yaml", result.External[0].URI)
	assert.Equal(t, 1, result.ExternalCount)
	assert.Equal(t, 0, result.InternalCount)
}

func TestGetInboundRefsToPointerCachesUntilInvalidated(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      type: object\n    B:\n      $ref: '#/components/schemas/A'\n",
	})
	g := refgraph.Build(d)
	idx := New(func() map[string]*loader.Document { return d }, g)

	first := idx.GetInboundRefsToPointer("file:///a.yaml", "#/components/schemas/A", false)
	require.Len(t, first.Locations, 1)

	// Mutate the underlying graph directly; a cached query must not see it
	// until Invalidate is called.
	g.RemoveEdgesForURI("file:///a.yaml")
	stale := idx.GetInboundRefsToPointer("file:///a.yaml", "#/components/schemas/A", false)
	assert.Len(t, stale.Locations, 1, "cached result should be served until Invalidate")

	idx.Invalidate()
	fresh := idx.GetInboundRefsToPointer("file:///a.yaml", "#/components/schemas/A", false)
	assert.Empty(t, fresh.Locations)
}

func TestGetInboundRefsUnionsAllPointersInFile(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      type: object\n    B:\n      type: object\n",
		"file:///c.yaml": "components:\n  schemas:\n    X:\n      $ref: './a.yaml#/components/schemas/A'\n    Y:\n      $ref: './a.yaml#/components/schemas/B'\n",
	})
	g := refgraph.Build(d)
	idx := New(func() map[string]*loader.Document { return d }, g)

	result := idx.GetInboundRefs("file:///a.yaml")
	assert.Len(t, result.Locations, 2)
	assert.Len(t, result.ByFile["file:///c.yaml"], 2)
}
