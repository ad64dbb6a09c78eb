package treehouse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// IncludedChildren controls which of an injection content node's children
// fall inside the injected layer's own ranges, as opposed to staying
// exclusively in the parent layer.
type IncludedChildren uint8

const (
	// IncludedChildrenNone excludes every child of the content node: the
	// injected layer sees only the node's own text, with holes cut out for
	// each child range. This is the default ("injection.content" alone).
	IncludedChildrenNone IncludedChildren = iota
	// IncludedChildrenAll includes the content node's entire byte range,
	// children included. Set by "injection.include-children".
	IncludedChildrenAll
	// IncludedChildrenUnnamed includes only the content node's unnamed
	// (anonymous) children, excluding named ones. Set by
	// "injection.include-unnamed-children".
	IncludedChildrenUnnamed
)

// IntersectRanges computes the ranges that should be parsed for an
// injection: the byte ranges of nodes, clipped to fall within
// parentRanges and, depending on policy, with each node's own children cut
// out so they are not reparsed twice.
//
// parentRanges and the returned ranges are both sorted and non-overlapping.
// Panics if parentRanges is empty: a layer is never constructed with no
// ranges to parse.
func IntersectRanges(parentRanges []tree_sitter.Range, nodes []tree_sitter.Node, policy IncludedChildren) []tree_sitter.Range {
	if len(parentRanges) == 0 {
		panic("treehouse: IntersectRanges called with no parent ranges")
	}
	if len(nodes) == 0 {
		return nil
	}

	cursor := nodes[0].Walk()
	defer cursor.Close()

	var result []tree_sitter.Range

	parentRange := parentRanges[0]
	parentRanges = parentRanges[1:]

	for _, node := range nodes {
		precedingRange := tree_sitter.Range{
			EndByte:  node.StartByte(),
			EndPoint: node.StartPosition(),
		}
		followingRange := tree_sitter.Range{
			StartByte:  node.EndByte(),
			StartPoint: node.EndPosition(),
			EndByte:    ^uint(0),
			EndPoint:   tree_sitter.NewPoint(^uint(0), ^uint(0)),
		}

		var excludedRanges []tree_sitter.Range
		if policy != IncludedChildrenAll {
			for _, child := range node.Children(cursor) {
				if policy == IncludedChildrenUnnamed && !child.IsNamed() {
					continue
				}
				excludedRanges = append(excludedRanges, child.Range())
			}
		}
		excludedRanges = append(excludedRanges, followingRange)

		for _, excludedRange := range excludedRanges {
			r := tree_sitter.Range{
				StartByte:  precedingRange.EndByte,
				StartPoint: precedingRange.EndPoint,
				EndByte:    excludedRange.StartByte,
				EndPoint:   excludedRange.StartPoint,
			}
			precedingRange = excludedRange

			if r.EndByte < parentRange.StartByte {
				continue
			}

			for parentRange.StartByte <= r.EndByte {
				if parentRange.EndByte > r.StartByte {
					if r.StartByte < parentRange.StartByte {
						r.StartByte = parentRange.StartByte
						r.StartPoint = parentRange.StartPoint
					}

					if parentRange.EndByte < r.EndByte {
						if r.StartByte < parentRange.EndByte {
							result = append(result, tree_sitter.Range{
								StartByte:  r.StartByte,
								StartPoint: r.StartPoint,
								EndByte:    parentRange.EndByte,
								EndPoint:   precedingRange.EndPoint,
							})
						}
						r.StartByte = parentRange.EndByte
						r.StartPoint = parentRange.EndPoint
					} else {
						if r.StartByte < r.EndByte {
							result = append(result, r)
						}
						break
					}
				}

				if len(parentRanges) > 0 {
					parentRange = parentRanges[0]
					parentRanges = parentRanges[1:]
				} else {
					return result
				}
			}
		}
	}

	return result
}
