package project

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

func buildIndex(docs map[string]*loader.Document) *Index {
	g := refgraph.Build(docs)
	r := refgraph.NewResolver(func(uri string) (*loader.Document, bool) { d, ok := docs[uri]; return d, ok })
	return Build(docs, g, r)
}

const simpleSpec = `
openapi: 3.0.3
info:
  title: x
  version: "1"
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        tag:
          type: string
`

func TestBuildIndexWalksOperationsAndSchemas(t *testing.T) {
	docs := loadAll(map[string]string{"file:///root.yaml": simpleSpec})
	idx := buildIndex(docs)

	require.Equal(t, 1, idx.Operations.Len())
	var op *OperationRef
	for pair := idx.Operations.First(); pair != nil; pair = pair.Next() {
		op = pair.Value()
	}
	require.NotNil(t, op)
	assert.Equal(t, "listPets", op.OperationID)
	assert.Equal(t, "get", op.Method)
	assert.Equal(t, "/pets", op.Path)
	assert.NotEmpty(t, op.Location.Pointer)
	assert.Len(t, idx.OperationIDs.Occurrences("listPets"), 1)

	petSchema, ok := idx.Schemas.Get("file:///root.yaml#/components/schemas/Pet")
	require.True(t, ok)
	assert.True(t, petSchema.InComponents)
	assert.Equal(t, "Pet", petSchema.ComponentName)

	nameSchema, ok := idx.Schemas.Get("file:///root.yaml#/components/schemas/Pet/properties/name")
	require.True(t, ok)
	assert.True(t, nameSchema.Required)
	assert.Equal(t, "name", nameSchema.PropertyName)
	assert.Equal(t, 1, nameSchema.Depth)
}

func TestBuildIndexFollowsRefForResponseSchema(t *testing.T) {
	docs := loadAll(map[string]string{"file:///root.yaml": simpleSpec})
	idx := buildIndex(docs)

	itemsSchema, ok := idx.Schemas.Get("file:///root.yaml#/paths/~1pets/get/responses/200/content/application~1json/schema/items")
	require.True(t, ok)
	_, isRef := itemsSchema.Node.RefTarget()
	assert.True(t, isRef)
}

func TestBuildIndexRegistersRefNodes(t *testing.T) {
	docs := loadAll(map[string]string{"file:///root.yaml": simpleSpec})
	idx := buildIndex(docs)
	assert.Equal(t, 1, idx.RefNodes.Len())
}

func TestBuildIndexDetectsDuplicateOperationID(t *testing.T) {
	spec := `
openapi: 3.0.3
info:
  title: x
  version: "1"
paths:
  /a:
    get:
      operationId: dup
      responses:
        '200':
          description: ok
  /b:
    get:
      operationId: dup
      responses:
        '200':
          description: ok
`
	docs := loadAll(map[string]string{"file:///root.yaml": spec})
	idx := buildIndex(docs)
	assert.True(t, idx.OperationIDs.IsDuplicate("dup"))
	assert.Len(t, idx.OperationIDs.Occurrences("dup"), 2)
}

func TestBuildIndexFragmentDocument(t *testing.T) {
	docs := loadAll(map[string]string{
		"file:///root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\npaths:\n  /a:\n    $ref: './frag.yaml'\n",
		"file:///frag.yaml":  "get:\n  operationId: fromFrag\n  responses:\n    '200':\n      description: ok\n",
	})
	idx := buildIndex(docs)
	op, ok := idx.Operations.Get("file:///frag.yaml#/get")
	require.True(t, ok)
	assert.Equal(t, "fromFrag", op.OperationID)
}
