package treehouse

import (
	"testing"

	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func newTestSyntax() *Syntax {
	return NewSyntax(SyntaxOptions{RootLanguage: "root"})
}

// TestMapInjectionsEditPastAllInjections covers S5: an edit strictly after
// every injection's end_byte leaves every injection's range untouched and
// never sets Moved.
func TestMapInjectionsEditPastAllInjections(t *testing.T) {
	s := newTestSyntax()
	child := s.store.insert(LayerData{Language: "javascript"})

	root := s.store.mustGet(s.root)
	root.Injections = []Injection{{Range: tree_sitter.Range{StartByte: 10, EndByte: 20}, Layer: child}}

	edits := []InputEdit{{StartByte: 50, OldEndByte: 50, NewEndByte: 55}}
	s.mapInjections(s.root, nil, edits)

	root = s.store.mustGet(s.root)
	require.Equal(t, uint(10), root.Injections[0].Range.StartByte)
	require.Equal(t, uint(20), root.Injections[0].Range.EndByte)
	require.False(t, s.store.mustGet(child).Flags.Moved)
	require.False(t, s.store.mustGet(child).Flags.Modified)
}

// TestMapInjectionsEditInsideInjection covers S6: inserting k bytes inside
// an injection's range grows the range's end by k and sets Modified, not
// Moved; a later injection starting after the edited range shifts by +k
// and is marked Moved instead.
func TestMapInjectionsEditInsideInjection(t *testing.T) {
	s := newTestSyntax()
	first := s.store.insert(LayerData{Language: "javascript"})
	second := s.store.insert(LayerData{Language: "javascript"})

	root := s.store.mustGet(s.root)
	root.Injections = []Injection{
		{Range: tree_sitter.Range{StartByte: 10, EndByte: 20}, Layer: first},
		{Range: tree_sitter.Range{StartByte: 30, EndByte: 40}, Layer: second},
	}

	const k = 5
	edits := []InputEdit{{StartByte: 15, OldEndByte: 15, NewEndByte: 15 + k}}
	s.mapInjections(s.root, nil, edits)

	root = s.store.mustGet(s.root)
	require.Equal(t, uint(10), root.Injections[0].Range.StartByte)
	require.Equal(t, uint(20+k), root.Injections[0].Range.EndByte)
	require.True(t, s.store.mustGet(first).Flags.Modified)
	require.False(t, s.store.mustGet(first).Flags.Moved)

	require.Equal(t, uint(30+k), root.Injections[1].Range.StartByte)
	require.Equal(t, uint(40+k), root.Injections[1].Range.EndByte)
	require.True(t, s.store.mustGet(second).Flags.Moved)
}

func TestMapInjectionsNoopWhenNoEditsOrOffset(t *testing.T) {
	s := newTestSyntax()
	child := s.store.insert(LayerData{Language: "javascript"})
	root := s.store.mustGet(s.root)
	root.Injections = []Injection{{Range: tree_sitter.Range{StartByte: 10, EndByte: 20}, Layer: child}}

	s.mapInjections(s.root, nil, nil)

	root = s.store.mustGet(s.root)
	require.Equal(t, uint(10), root.Injections[0].Range.StartByte)
	require.False(t, s.store.mustGet(child).Flags.Modified)
	require.False(t, s.store.mustGet(child).Flags.Moved)
}
