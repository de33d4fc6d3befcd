package rules

import (
	"testing"

	"github.com/specgraph/specgraph/internal/loader"
	"github.com/specgraph/specgraph/internal/project"
	"github.com/specgraph/specgraph/internal/refgraph"
	"github.com/specgraph/specgraph/internal/rootresolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWorkspace(docMap map[string]string) (map[string]*loader.Document, *project.Index, *refgraph.Resolver, *refgraph.Graph, *rootresolver.Resolver) {
	docs := map[string]*loader.Document{}
	for uri, text := range docMap {
		docs[uri] = loader.Load(uri, []byte(text))
	}
	lookup := func(uri string) (*loader.Document, bool) { d, ok := docs[uri]; return d, ok }
	graph := refgraph.Build(docs)
	resolver := refgraph.NewResolver(lookup)
	root := rootresolver.New(lookup, graph)
	idx := project.Build(docs, graph, resolver)
	return docs, idx, resolver, graph, root
}

func TestEngineDispatchesOperationVisitor(t *testing.T) {
	docs, idx, resolver, graph, root := buildWorkspace(map[string]string{
		"file:///root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\npaths:\n  /a:\n    get:\n      operationId: getA\n      responses:\n        '200':\n          description: ok\n",
	})

	var seen []string
	r := Rule{
		ID:              "collect-operations",
		DefaultSeverity: SeverityInformation,
		Visitor: Visitor{
			Operation: func(ctx *Context, ref *project.OperationRef) {
				seen = append(seen, ref.OperationID)
			},
		},
	}
	e := NewEngine(r)
	e.Run(docs, idx, resolver, graph, root)
	assert.Equal(t, []string{"getA"}, seen)
}

func TestEngineIsolatesPanickingRule(t *testing.T) {
	docs, idx, resolver, graph, root := buildWorkspace(map[string]string{
		"file:///root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\npaths: {}\n",
	})

	bad := Rule{
		ID:              "explodes",
		DefaultSeverity: SeverityError,
		Visitor: Visitor{
			Document: func(ctx *Context, uri string, doc *loader.Document) {
				panic("boom")
			},
		},
	}
	good := Rule{
		ID:              "fine",
		DefaultSeverity: SeverityInformation,
		Visitor: Visitor{
			Document: func(ctx *Context, uri string, doc *loader.Document) {
				ctx.ReportAt(uri, ctx.RangeOf(uri, doc.IR.Loc), "ok")
			},
		},
	}
	e := NewEngine(bad, good)
	agg := e.Run(docs, idx, resolver, graph, root)

	all := agg.ForURI("file:///root.yaml")
	require.Len(t, all, 2)
	ids := []string{all[0].RuleID, all[1].RuleID}
	assert.Contains(t, ids, "rule-internal-error")
	assert.Contains(t, ids, "fine")
}

func TestEngineGatesElementVisitorByDocumentVersion(t *testing.T) {
	docs, idx, resolver, graph, root := buildWorkspace(map[string]string{
		"file:///v2.yaml": "swagger: \"2.0\"\ninfo:\n  title: x\n  version: \"1\"\npaths:\n  /a:\n    get:\n      operationId: getA\n      responses:\n        '200':\n          description: ok\n",
		"file:///v3.yaml": "openapi: 3.1.0\ninfo:\n  title: x\n  version: \"1\"\npaths:\n  /b:\n    get:\n      operationId: getB\n      responses:\n        '200':\n          description: ok\n",
	})

	var seen []string
	r := Rule{
		ID:              "v31-plus-only",
		DefaultSeverity: SeverityInformation,
		MinVersion:      loader.Version31,
		Visitor: Visitor{
			Operation: func(ctx *Context, ref *project.OperationRef) {
				seen = append(seen, ref.OperationID)
			},
		},
	}
	e := NewEngine(r)
	e.Run(docs, idx, resolver, graph, root)
	assert.Equal(t, []string{"getB"}, seen)
}

func TestEngineOverrideOffDisablesRule(t *testing.T) {
	docs, idx, resolver, graph, root := buildWorkspace(map[string]string{
		"file:///root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\npaths: {}\n",
	})

	r := Rule{
		ID:              "always-fires",
		DefaultSeverity: SeverityError,
		Visitor: Visitor{
			Document: func(ctx *Context, uri string, doc *loader.Document) {
				ctx.ReportAt(uri, ctx.RangeOf(uri, doc.IR.Loc), "should not appear")
			},
		},
	}
	e := NewEngine(r).WithOverrides(Overrides{"always-fires": "off"})
	agg := e.Run(docs, idx, resolver, graph, root)
	assert.Empty(t, agg.ForURI("file:///root.yaml"))
}

func TestEngineOverrideReplacesSeverity(t *testing.T) {
	docs, idx, resolver, graph, root := buildWorkspace(map[string]string{
		"file:///root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\npaths: {}\n",
	})

	r := Rule{
		ID:              "demoted",
		DefaultSeverity: SeverityError,
		Visitor: Visitor{
			Document: func(ctx *Context, uri string, doc *loader.Document) {
				ctx.ReportAt(uri, ctx.RangeOf(uri, doc.IR.Loc), "demoted")
			},
		},
	}
	e := NewEngine(r).WithOverrides(Overrides{"demoted": "hint"})
	agg := e.Run(docs, idx, resolver, graph, root)
	items := agg.ForURI("file:///root.yaml")
	require.Len(t, items, 1)
	assert.Equal(t, int(SeverityHint), items[0].Severity)
}
