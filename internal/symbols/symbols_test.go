package symbols

import (
	"testing"

	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWorkspace(t *testing.T, files map[string]string) *Workspace {
	t.Helper()
	docs := map[string]*loader.Document{}
	for uri, text := range files {
		docs[uri] = loader.Load(uri, []byte(text))
	}
	graph := refgraph.Build(docs)
	resolver := refgraph.NewResolver(func(uri string) (*loader.Document, bool) {
		d, ok := docs[uri]
		return d, ok
	})
	idx := project.Build(docs, graph, resolver)
	return &Workspace{Docs: docs, Graph: graph, Resolver: resolver, Index: idx}
}

const twoOpsSpec = `openapi: "3.1.0"
paths:
  /users:
    get:
      operationId: listUsers
      responses:
        "200":
          description: ok
  /users/{id}:
    get:
      operationId: getUser
      responses:
        "200":
          description: ok
components:
  schemas:
    User:
      type: object
      required:
        - id
      properties:
        id:
          type: string
        friend:
          $ref: '#/components/schemas/User'
`

func TestFindReferencesOnComponentFindsDependents(t *testing.T) {
	w := buildWorkspace(t, map[string]string{"file:///a.yaml": twoOpsSpec})
	locs := w.FindReferences("file:///a.yaml", offsetOfSubstring(t, twoOpsSpec, "User:\n      type"))
	require.NotEmpty(t, locs)
}

func TestGoToDefinitionOnRefResolvesToTarget(t *testing.T) {
	w := buildWorkspace(t, map[string]string{"file:///a.yaml": twoOpsSpec})
	offset := offsetOfSubstring(t, twoOpsSpec, "$ref: '#/components/schemas/User'")
	def, ok := w.GoToDefinition("file:///a.yaml", offset)
	require.True(t, ok)
	assert.Equal(t, DefinitionRef, def.Kind)
}

func TestCodeLensCountsSchemaReferences(t *testing.T) {
	w := buildWorkspace(t, map[string]string{"file:///a.yaml": twoOpsSpec})
	lenses := w.CodeLens()
	var found bool
	for _, l := range lenses {
		if l.Title == "1 reference" {
			found = true
		}
	}
	assert.True(t, found, "expected a schema lens reporting 1 reference, got %+v", lenses)
}

func TestInlayHintsMarksRequiredProperties(t *testing.T) {
	w := buildWorkspace(t, map[string]string{"file:///a.yaml": twoOpsSpec})
	hints := w.InlayHints("file:///a.yaml")
	var foundStar bool
	for _, h := range hints {
		if h.Label == "*" {
			foundStar = true
		}
	}
	assert.True(t, foundStar)
}

func TestSemanticTokensCoversMethodsAndRefs(t *testing.T) {
	w := buildWorkspace(t, map[string]string{"file:///a.yaml": twoOpsSpec})
	tokens := w.SemanticTokens("file:///a.yaml")
	kinds := map[TokenType]int{}
	for _, tok := range tokens {
		kinds[tok.Type]++
	}
	assert.Greater(t, kinds[TokenHTTPMethod], 0)
	assert.Greater(t, kinds[TokenOperationID], 0)
	assert.Greater(t, kinds[TokenRef], 0)
	assert.Greater(t, kinds[TokenPathParam], 0)
}

func TestWorkspaceSymbolsFindsOperationsAndSchemas(t *testing.T) {
	w := buildWorkspace(t, map[string]string{"file:///a.yaml": twoOpsSpec})
	syms := w.WorkspaceSymbols("User")
	require.NotEmpty(t, syms)
	assert.Equal(t, "operation", syms[0].Kind)
	assert.Equal(t, "schema", syms[len(syms)-1].Kind)
}

func offsetOfSubstring(t *testing.T, text, substr string) int {
	t.Helper()
	for i := 0; i+len(substr) <= len(text); i++ {
		if text[i:i+len(substr)] == substr {
			return i
		}
	}
	t.Fatalf("substring %q not found", substr)
	return -1
}
