package injection

import (
	"testing"

	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func parseJS(t *testing.T, source string) *tree_sitter.Tree {
	t.Helper()
	lang := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	parser := tree_sitter.NewParser()
	defer parser.Close()
	require.NoError(t, parser.SetLanguage(lang))
	tree := parser.Parse([]byte(source), nil)
	require.NotNil(t, tree)
	return tree
}

// TestFuseIdenticalRangesPrecedence covers S4 and P8: of two matches
// covering the identical byte range, new_precedence picks the later one,
// its absence picks the earlier, and exactly one survives either way.
func TestFuseIdenticalRangesPrecedence(t *testing.T) {
	tree := parseJS(t, "let x = 1;")
	defer tree.Close()
	node := tree.RootNode()

	first := Match{Language: "first", Node: node}
	second := Match{Language: "second", Node: node}

	got := fuseIdenticalRanges([]Match{first, second}, false)
	require.Len(t, got, 1)
	require.Equal(t, "first", got[0].Language)

	got = fuseIdenticalRanges([]Match{first, second}, true)
	require.Len(t, got, 1)
	require.Equal(t, "second", got[0].Language)
}

func TestFuseIdenticalRangesDistinctRangesBothSurvive(t *testing.T) {
	tree := parseJS(t, "let x = 1; let y = 2;")
	defer tree.Close()
	root := tree.RootNode()
	require.GreaterOrEqual(t, root.ChildCount(), uint(2))

	a := Match{Language: "a", Node: *root.Child(0)}
	b := Match{Language: "b", Node: *root.Child(1)}

	got := fuseIdenticalRanges([]Match{a, b}, false)
	require.Len(t, got, 2)
}
