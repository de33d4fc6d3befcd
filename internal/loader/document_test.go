package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSimpleRoot(t *testing.T) {
	text := []byte("openapi: 3.0.1\ninfo:\n  title: Test\n  version: \"1.0\"\npaths: {}\n")
	doc := Load("file:///a/spec.yaml", text)
	require.Empty(t, doc.ParseErrors)
	assert.Equal(t, KindRoot, doc.Kind)
	assert.Equal(t, Version30, doc.Version)
	assert.Equal(t, "#", doc.IR.Ptr)
	info := doc.IR.Child("info")
	require.NotNil(t, info)
	title := info.Child("title")
	require.NotNil(t, title)
	assert.Equal(t, "#/info/title", title.Ptr)
	v, ok := title.StringValue()
	assert.True(t, ok)
	assert.Equal(t, "Test", v)
}

func TestDetectVersions(t *testing.T) {
	cases := map[string]Version{
		"openapi: 3.0.3\n":  Version30,
		"openapi: 3.1.0\n":  Version31,
		"openapi: 3.2.0\n":  Version32,
		"swagger: \"2.0\"\n": Version20,
		"swagger: \"1.2\"\n": VersionUnknown,
		"{}":                 VersionUnknown,
	}
	for text, want := range cases {
		doc := Load("file:///x.yaml", []byte(text))
		assert.Equal(t, want, doc.Version, "text=%q", text)
	}
}

func TestIdentifyKindPathItem(t *testing.T) {
	text := []byte("get:\n  summary: list\nparameters: []\n")
	doc := Load("file:///frag.yaml", text)
	assert.Equal(t, KindPathItem, doc.Kind)
}

func TestIdentifyKindParameter(t *testing.T) {
	text := []byte("name: id\nin: path\nrequired: true\n")
	doc := Load("file:///param.yaml", text)
	assert.Equal(t, KindParameter, doc.Kind)
}

func TestPointerEscaping(t *testing.T) {
	text := []byte("paths:\n  /users/{id}:\n    get:\n      summary: x\n")
	doc := Load("file:///spec.yaml", text)
	paths := doc.IR.Child("paths")
	require.NotNil(t, paths)
	require.Len(t, paths.Children, 1)
	assert.Equal(t, "#/paths/~1users~1{id}", paths.Children[0].Ptr)
}

func TestEmptyDocument(t *testing.T) {
	doc := Load("file:///empty.yaml", []byte(""))
	assert.Equal(t, KindUnknown, doc.Kind)
	assert.NotNil(t, doc.IR)
}

func TestNonUTF8Rejected(t *testing.T) {
	text := []byte{0x80, 0x81, 'a'}
	doc := Load("file:///bad.yaml", text)
	require.NotEmpty(t, doc.ParseErrors)
	assert.Equal(t, 0, doc.ParseErrors[0].Offset)
}

func TestLocInvariants(t *testing.T) {
	text := []byte("openapi: 3.0.0\ninfo:\n  title: \"Hello World\"\n")
	doc := Load("file:///spec.yaml", text)
	info := doc.IR.Child("info")
	title := info.Child("title")
	require.NotNil(t, title)
	loc := title.Loc
	assert.True(t, loc.Start <= loc.End)
	if loc.HasKeyRange {
		assert.True(t, loc.KeyStart <= loc.KeyEnd)
		assert.True(t, loc.KeyEnd <= loc.ValStart)
		assert.True(t, loc.ValStart <= loc.ValEnd)
	}
	got, ok := title.StringValue()
	assert.True(t, ok)
	assert.Equal(t, "Hello World", got)
}
