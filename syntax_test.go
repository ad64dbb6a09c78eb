package treehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	treehouse "go.gopad.dev/tree-house"
	"go.gopad.dev/tree-house/internal/highlight"
	"go.gopad.dev/tree-house/language"
)

const htmlInjectionsQuery = `
(script_element
  (raw_text) @injection.content
  (#set! injection.language "javascript"))
`

const htmlCombinedInjectionsQuery = `
(script_element
  (raw_text) @injection.content
  (#set! injection.language "javascript")
  (#set! injection.combined))
`

// testHarness drives Syntax.Parse with a real per-language parser pool,
// the shape a real caller's ParseLayer implementation takes.
type testHarness struct {
	t       *testing.T
	syntax  *treehouse.Syntax
	loader  *language.Registry
	parsers *highlight.Registry
	source  []byte
}

func newHarness(t *testing.T, rootLanguage string, source []byte) *testHarness {
	t.Helper()
	return newHarnessWithQuery(t, rootLanguage, source, htmlInjectionsQuery)
}

func newHarnessWithQuery(t *testing.T, rootLanguage string, source []byte, htmlQuery string) *testHarness {
	t.Helper()

	cache, err := language.NewGrammarCache(8)
	require.NoError(t, err)
	loader := language.NewRegistry(cache)

	loader.Register(language.NewLanguage("html", tree_sitter_html.Language(), nil, []byte(htmlQuery), nil))
	loader.Register(language.NewLanguage("javascript", tree_sitter_javascript.Language(), nil, nil, nil))

	h := &testHarness{
		t:       t,
		loader:  loader,
		parsers: highlight.NewRegistry(),
		source:  source,
	}
	h.syntax = treehouse.NewSyntax(treehouse.SyntaxOptions{
		Loader:       loader,
		RootLanguage: rootLanguage,
	})
	return h
}

func (h *testHarness) parseLayer(id treehouse.Layer) {
	data, err := h.syntax.Layer(id)
	require.NoError(h.t, err)

	cfg, ok := h.loader.Config(data.Language)
	require.True(h.t, ok, "no config for language %q", data.Language)

	pool, err := h.parsers.Pool(data.Language, cfg.Grammar.Language)
	require.NoError(h.t, err)

	require.NoError(h.t, pool.Parser.SetIncludedRanges(data.Ranges))
	tree := pool.Parser.Parse(h.source, nil)
	require.NotNil(h.t, tree)
	h.syntax.SetLayerTree(id, tree)
}

func (h *testHarness) parse(ctx context.Context, edits []treehouse.InputEdit) {
	err := h.syntax.Parse(ctx, h.source, edits, h.parseLayer)
	require.NoError(h.t, err)
}

// TestParseDiscoversScriptInjection covers S1: a single <script> tag
// produces one javascript child layer covering just the script body.
func TestParseDiscoversScriptInjection(t *testing.T) {
	source := []byte("<html><script>let x=1;</script></html>")
	h := newHarness(t, "html", source)
	h.parse(context.Background(), nil)

	var found []treehouse.LayerData
	for _, id := range h.syntax.Layers() {
		if id == h.syntax.Root() {
			continue
		}
		data, err := h.syntax.Layer(id)
		require.NoError(t, err)
		found = append(found, data)
	}

	require.Len(t, found, 1)
	require.Equal(t, "javascript", found[0].Language)
	require.Len(t, found[0].Ranges, 1)
	require.Equal(t, "let x=1;", string(source[found[0].Ranges[0].StartByte:found[0].Ranges[0].EndByte]))
}

// TestParseIsStableAcrossIdenticalReparse covers P4: reparsing identical
// content with no edits produces the same single child layer, not a
// duplicate.
func TestParseIsStableAcrossIdenticalReparse(t *testing.T) {
	source := []byte("<html><script>let x=1;</script></html>")
	h := newHarness(t, "html", source)
	h.parse(context.Background(), nil)
	h.parse(context.Background(), nil)

	count := 0
	for _, id := range h.syntax.Layers() {
		if id != h.syntax.Root() {
			count++
		}
	}
	require.Equal(t, 1, count)
}

// TestParseReconcilesAcrossEdit covers P5/P3: editing inside the script
// body keeps the same child layer (by id) and updates its range, without
// creating a second layer.
func TestParseReconcilesAcrossEdit(t *testing.T) {
	source := []byte("<html><script>let x=1;</script></html>")
	h := newHarness(t, "html", source)
	h.parse(context.Background(), nil)

	var before treehouse.Layer
	for _, id := range h.syntax.Layers() {
		if id != h.syntax.Root() {
			before = id
		}
	}

	newSource := []byte("<html><script>let x=12;</script></html>")
	edit := treehouse.InputEdit{
		StartByte:      21,
		OldEndByte:     21,
		NewEndByte:     22,
		StartPosition:  tree_sitter.Point{Row: 0, Column: 21},
		OldEndPosition: tree_sitter.Point{Row: 0, Column: 21},
		NewEndPosition: tree_sitter.Point{Row: 0, Column: 22},
	}
	h.source = newSource
	h.parse(context.Background(), []treehouse.InputEdit{edit})

	var after treehouse.Layer
	count := 0
	for _, id := range h.syntax.Layers() {
		if id != h.syntax.Root() {
			after = id
			count++
		}
	}
	require.Equal(t, 1, count)
	require.Equal(t, before, after)

	data, err := h.syntax.Layer(after)
	require.NoError(t, err)
	require.Equal(t, "let x=12;", string(newSource[data.Ranges[0].StartByte:data.Ranges[0].EndByte]))
}

// TestParseCombinedInjectionMergesIntoOneLayer covers S2: two separately
// matched script bodies tagged #set! injection.combined fold into a single
// child layer with two ranges, and parseLayer is called for it only once.
func TestParseCombinedInjectionMergesIntoOneLayer(t *testing.T) {
	source := []byte("<html><script>let x=1;</script><script>let y=2;</script></html>")
	h := newHarnessWithQuery(t, "html", source, htmlCombinedInjectionsQuery)

	parseCalls := 0
	countingParseLayer := func(id treehouse.Layer) {
		data, err := h.syntax.Layer(id)
		require.NoError(t, err)
		if data.Language == "javascript" {
			parseCalls++
		}
		h.parseLayer(id)
	}

	err := h.syntax.Parse(context.Background(), source, nil, countingParseLayer)
	require.NoError(t, err)

	var jsLayers []treehouse.LayerData
	for _, id := range h.syntax.Layers() {
		if id == h.syntax.Root() {
			continue
		}
		data, err := h.syntax.Layer(id)
		require.NoError(t, err)
		jsLayers = append(jsLayers, data)
	}

	require.Len(t, jsLayers, 1)
	require.Equal(t, "javascript", jsLayers[0].Language)
	require.Len(t, jsLayers[0].Ranges, 2)
	require.Equal(t, 1, parseCalls)
}
