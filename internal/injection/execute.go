package injection

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Execute runs q over node's subtree and returns every injection match it
// finds, ordered by ascending content-node start byte. Ranges in the
// result do not overlap exactly: when two patterns match the identical
// byte range, newPrecedence picks whether the first or the last one in
// query order wins. Ranges can still nest (a match fully inside another
// match's range), which the caller is expected to handle, matching
// tree-sitter's own query match semantics.
func Execute(q *Query, node tree_sitter.Node, source []byte, newPrecedence bool, resolve func(LanguageMarker) (string, bool)) []Match {
	if q == nil || q.contentCapture == nil {
		return nil
	}

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	captures := cursor.Captures(q.Query, node, source)

	var raw []Match
	for {
		match, idx := captures.Next()
		if match == nil {
			break
		}
		if uint(match.Captures[idx].Index) != *q.contentCapture {
			continue
		}

		mat, ok := processMatch(q, *match, idx, source, resolve)
		if !ok {
			match.Remove()
			continue
		}
		if mat.LastMatch {
			match.Remove()
		}
		if mat.Node.StartByte() == mat.Node.EndByte() {
			continue
		}
		raw = append(raw, mat)
	}

	return fuseIdenticalRanges(raw, newPrecedence)
}

// fuseIdenticalRanges collapses consecutive matches whose content node
// covers the exact same byte range, the outcome of ordinary tree-sitter
// pattern precedence applying to an injection query.
func fuseIdenticalRanges(matches []Match, newPrecedence bool) []Match {
	if len(matches) == 0 {
		return nil
	}
	result := make([]Match, 0, len(matches))
	res := matches[0]
	for _, next := range matches[1:] {
		if sameRange(next.Node, res.Node) {
			if newPrecedence {
				res = next
			}
			continue
		}
		result = append(result, res)
		res = next
	}
	result = append(result, res)
	return result
}

func sameRange(a, b tree_sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
