package injection

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Match is one resolved injection: a content node together with the
// language it should be parsed as and how its children participate.
type Match struct {
	Language        string
	IncludeChildren IncludedChildren
	Node            tree_sitter.Node
	// Combined is true for a pattern carrying #set! injection.combined:
	// every match of this pattern across the whole tree should be merged
	// into a single child layer instead of one layer per match.
	Combined bool
	// MatchID is the query match's own id, stable only within one Execute
	// call. Used to fuse together multiple content captures belonging to
	// the same (non-combined) match into one layer.
	MatchID uint32
	Pattern uint
	// LastMatch marks the final content capture of this query match, the
	// point at which the caller should treat accumulation for a match
	// scope as complete.
	LastMatch bool
	// ContentNodes is how many "injection.content" captures this query
	// match produced. A match with anything other than exactly one needs
	// scoping by match id so its pieces are folded into a single layer.
	ContentNodes int
}

// markerFromCapture turns a capture belonging to one of the three marker
// captures into a LanguageMarker.
func markerFromCapture(kind MarkerKind, node tree_sitter.Node, source []byte) (LanguageMarker, bool) {
	switch kind {
	case MarkerName, MarkerFilename:
		return LanguageMarker{Kind: kind, Text: node.Utf8Text(source)}, true
	case MarkerShebang:
		name, ok := matchShebang(node.Utf8Text(source))
		if !ok {
			return LanguageMarker{}, false
		}
		return LanguageMarker{Kind: MarkerShebang, Text: name}, true
	}
	return LanguageMarker{}, false
}

// processMatch inspects every capture in a query match to find its
// injection marker and content node(s), then resolves the marker to a
// language via resolve. nodeIdx is the index within match.Captures of the
// particular content capture the caller is currently positioned at.
func processMatch(q *Query, match tree_sitter.QueryMatch, nodeIdx uint, source []byte, resolve func(LanguageMarker) (string, bool)) (Match, bool) {
	props := q.propertiesFor(match.PatternIndex)

	var (
		marker         LanguageMarker
		haveMarker     bool
		lastContentIdx uint
		contentNodes   int
		contentNode    tree_sitter.Node
	)

	for i, capture := range match.Captures {
		idx := uint(capture.Index)
		if !q.captureIndexKnown(idx) {
			continue
		}
		switch {
		case q.languageCapture != nil && idx == *q.languageCapture:
			if m, ok := markerFromCapture(MarkerName, capture.Node, source); ok {
				marker, haveMarker = m, true
			}
		case q.filenameCapture != nil && idx == *q.filenameCapture:
			if m, ok := markerFromCapture(MarkerFilename, capture.Node, source); ok {
				marker, haveMarker = m, true
			}
		case q.shebangCapture != nil && idx == *q.shebangCapture:
			if m, ok := markerFromCapture(MarkerShebang, capture.Node, source); ok {
				marker, haveMarker = m, true
			}
		case q.contentCapture != nil && idx == *q.contentCapture:
			contentNodes++
			lastContentIdx = uint(i)
			if uint(i) == nodeIdx {
				contentNode = capture.Node
			}
		}
	}

	if !haveMarker && props.language != "" {
		marker, haveMarker = LanguageMarker{Kind: MarkerName, Text: props.language}, true
	}
	if !haveMarker {
		return Match{}, false
	}

	language, ok := resolve(marker)
	if !ok {
		return Match{}, false
	}

	return Match{
		Language:        language,
		IncludeChildren: props.includeChildren,
		Node:            contentNode,
		Combined:        props.combined,
		MatchID:         match.Id,
		Pattern:         match.PatternIndex,
		LastMatch:       lastContentIdx == nodeIdx,
		ContentNodes:    contentNodes,
	}, true
}
