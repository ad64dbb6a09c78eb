// Package injection compiles and executes the "injection.*" half of a
// language's queries: the part of RunInjectionQuery's component design that
// decides, for a single parse tree, which nodes should become child
// layers and in what language.
package injection

import (
	"fmt"
	"slices"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

const (
	captureContent  = "injection.content"
	captureLanguage = "injection.language"
	captureFilename = "injection.filename"
	captureShebang  = "injection.shebang"

	propLanguage              = "injection.language"
	propCombined              = "injection.combined"
	propIncludeChildren       = "injection.include-children"
	propIncludeUnnamedChildren = "injection.include-unnamed-children"
)

// IncludedChildren mirrors treehouse.IncludedChildren without importing the
// root package (which itself imports this one).
type IncludedChildren uint8

const (
	IncludedChildrenNone IncludedChildren = iota
	IncludedChildrenAll
	IncludedChildrenUnnamed
)

// properties is the per-pattern state accumulated from #set! directives.
type properties struct {
	includeChildren IncludedChildren
	language        string
	combined        bool
}

// Query is a compiled injection query: the "injection.content" query for
// one language, together with the per-pattern properties attached to it by
// #set! directives.
type Query struct {
	Query *tree_sitter.Query

	properties map[uint]properties

	contentCapture  *uint
	languageCapture *uint
	filenameCapture *uint
	shebangCapture  *uint
}

// HasContent reports whether the query defines any "injection.content"
// capture at all; RunInjectionQuery skips languages with none.
func (q *Query) HasContent() bool {
	return q != nil && q.contentCapture != nil
}

// NewQuery compiles source (the concatenation of a language's
// injections.scm) against lang. Any #set! property other than the four
// injection.* directives this package understands is accepted but ignored,
// since go-tree-sitter does not expose the general predicate-validation
// hook the original implementation relies on; see the package's design
// notes.
func NewQuery(lang *tree_sitter.Language, source string) (*Query, error) {
	tsQuery, err := tree_sitter.NewQuery(lang, source)
	if err != nil {
		return nil, fmt.Errorf("compiling injection query: %w", err)
	}

	props := make(map[uint]properties)
	for i := range tsQuery.PatternCount() {
		for _, setting := range tsQuery.PropertySettings(i) {
			p := props[i]
			switch setting.Key {
			case propLanguage:
				if setting.Value != nil {
					p.language = *setting.Value
				}
			case propCombined:
				p.combined = true
			case propIncludeChildren:
				p.includeChildren = IncludedChildrenAll
			case propIncludeUnnamedChildren:
				p.includeChildren = IncludedChildrenUnnamed
			}
			props[i] = p
		}
	}

	q := &Query{Query: tsQuery, properties: props}
	for i, name := range tsQuery.CaptureNames() {
		idx := uint(i)
		switch name {
		case captureContent:
			q.contentCapture = &idx
		case captureLanguage:
			q.languageCapture = &idx
		case captureFilename:
			q.filenameCapture = &idx
		case captureShebang:
			q.shebangCapture = &idx
		}
	}

	return q, nil
}

func (q *Query) propertiesFor(pattern uint) properties {
	return q.properties[pattern]
}

// captureIndexKnown reports whether idx names one of the four recognized
// injection captures, used by processMatch to skip over unrelated captures
// in a multi-purpose pattern without allocating.
func (q *Query) captureIndexKnown(idx uint) bool {
	known := [...]*uint{q.contentCapture, q.languageCapture, q.filenameCapture, q.shebangCapture}
	return slices.ContainsFunc(known[:], func(p *uint) bool { return p != nil && *p == idx })
}
