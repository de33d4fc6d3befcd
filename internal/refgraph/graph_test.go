package refgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specgraph/specgraph/internal/loader"
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

func TestAcyclicGraphHasNoCycles(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      type: object\n      properties:\n        b:\n          $ref: '#/components/schemas/B'\n    B:\n      type: string\n",
	})
	g := Build(d)
	for _, n := range g.AllNodes() {
		assert.False(t, g.HasCycle(n), "node %s should not be cyclic", n.Key())
	}
}

func TestDirectCycleDetected(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      $ref: '#/components/schemas/B'\n    B:\n      $ref: '#/components/schemas/A'\n",
	})
	g := Build(d)
	a := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/A"}
	b := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/B"}
	assert.True(t, g.HasCycle(a))
	assert.True(t, g.HasCycle(b))
}

func TestSelfLoopDetected(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      $ref: '#/components/schemas/A'\n",
	})
	g := Build(d)
	a := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/A"}
	assert.True(t, g.HasCycle(a))
}

func TestCrossDocumentCycle(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      $ref: './b.yaml#/components/schemas/B'\n",
		"file:///b.yaml": "components:\n  schemas:\n    B:\n      $ref: './a.yaml#/components/schemas/A'\n",
	})
	g := Build(d)
	a := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/A"}
	assert.True(t, g.HasCycle(a))
}

func TestExternalEdgeClassifiedAndExcludedFromCycles(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      $ref: 'https://example.com/schemas.yaml#/Foo'\n",
	})
	g := Build(d)
	edges := g.GetRefEdgesFrom("file:///a.yaml", "")
	require.Len(t, edges, 1)
	assert.True(t, edges[0].IsExternal)
	a := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/A"}
	assert.False(t, g.HasCycle(a))
}

func TestDependentsOfCountsReferences(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    X:\n      type: string\n    A:\n      properties:\n        one:\n          $ref: '#/components/schemas/X'\n        two:\n          $ref: '#/components/schemas/X'\n",
	})
	g := Build(d)
	x := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/X"}
	deps := g.DependentsOf(x)
	assert.Len(t, deps, 2)
}

func TestRemoveEdgesForURI(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "components:\n  schemas:\n    A:\n      $ref: '#/components/schemas/B'\n    B:\n      type: string\n",
	})
	g := Build(d)
	require.Len(t, g.GetRefEdgesFrom("file:///a.yaml", ""), 1)
	g.RemoveEdgesForURI("file:///a.yaml")
	assert.Empty(t, g.GetRefEdgesFrom("file:///a.yaml", ""))
	b := Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/B"}
	assert.Empty(t, g.DependentsOf(b))
}

func TestOneEdgePerRefString(t *testing.T) {
	d := docs(map[string]string{
		"file:///a.yaml": "paths:\n  /x:\n    $ref: '#/components/pathItems/X'\n",
	})
	g := Build(d)
	edges := g.GetRefEdgesFrom("file:///a.yaml", "")
	require.Len(t, edges, 1)
	assert.Equal(t, "file:///a.yaml", edges[0].From.URI)
	assert.Equal(t, "#/paths/~1x", edges[0].From.Pointer)
}

// TestEdgeSetMatchesExpectedShape rebuilds the same document twice and
// diffs the resulting edge sets with cmp rather than reflect.DeepEqual,
// so a future field added to Edge fails with a readable path instead of
// a bare "not equal".
func TestEdgeSetMatchesExpectedShape(t *testing.T) {
	text := "components:\n  schemas:\n    A:\n      properties:\n        b:\n          $ref: '#/components/schemas/B'\n    B:\n      type: string\n"
	want := []*Edge{{
		From:       Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/A/properties/b"},
		To:         Node{URI: "file:///a.yaml", Pointer: "#/components/schemas/B"},
		RefString:  "#/components/schemas/B",
		IsExternal: false,
	}}
	got := Build(docs(map[string]string{"file:///a.yaml": text})).GetRefEdgesFrom("file:///a.yaml", "")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edge set mismatch (-want +got):\n%s", diff)
	}
}
