package treehouse

import (
	"context"
	"fmt"
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxOptions configures a new Syntax.
type SyntaxOptions struct {
	// Loader resolves injection markers and language names to grammars and
	// injection queries. Required.
	Loader LanguageLoader
	// RootLanguage is the language name of the document's root layer,
	// looked up through Loader.
	RootLanguage string
	// MatchLimit is recorded on the Syntax; zero means DefaultMatchLimit.
	// It is not applied to the injection query cursor, which runs without
	// a match limit.
	MatchLimit uint
	// Logger receives diagnostic events about reconciliation decisions. A
	// nil Logger disables logging rather than falling back to
	// slog.Default, so a library consumer never gets output it didn't ask
	// for.
	Logger *slog.Logger
}

// Syntax owns a document's layer forest: the root layer holding its
// primary language, plus one child layer per discovered injection,
// recursively. It is not safe for concurrent use; callers that parse
// multiple documents concurrently should use one Syntax per document.
type Syntax struct {
	store      *layerStore
	loader     LanguageLoader
	root       Layer
	matchLimit uint
	logger     *slog.Logger
}

// NewSyntax creates a Syntax with an empty, unparsed root layer. Call Parse
// to give it a tree.
func NewSyntax(opts SyntaxOptions) *Syntax {
	store := newLayerStore()
	root := store.insert(LayerData{Language: opts.RootLanguage})

	limit := opts.MatchLimit
	if limit == 0 {
		limit = DefaultMatchLimit
	}

	return &Syntax{
		store:      store,
		loader:     opts.Loader,
		root:       root,
		matchLimit: limit,
		logger:     opts.Logger,
	}
}

// Root returns the id of the document's root layer.
func (s *Syntax) Root() Layer {
	return s.root
}

// Layer returns a read-only view of a layer's current data, or
// ErrLayerNotFound if id no longer names a live layer.
func (s *Syntax) Layer(id Layer) (LayerData, error) {
	data, ok := s.store.get(id)
	if !ok {
		return LayerData{}, fmt.Errorf("%w: %d", ErrLayerNotFound, id)
	}
	return *data, nil
}

// Layers returns every live layer id, in arena order (the root is always
// first, since it is the first layer ever inserted).
func (s *Syntax) Layers() []Layer {
	return s.store.Layers()
}

// SetLayerRanges overwrites the byte ranges a layer should be parsed
// with. ParseLayer callbacks read these via Layer before calling the
// parser, and call SetLayerTree with the result.
func (s *Syntax) SetLayerRanges(id Layer, ranges []tree_sitter.Range) {
	s.store.mustGet(id).Ranges = ranges
}

// SetLayerTree records the tree a ParseLayer callback parsed for id.
func (s *Syntax) SetLayerTree(id Layer, tree *tree_sitter.Tree) {
	s.store.mustGet(id).ParseTree = tree
}

// LayerLanguage returns the language name a layer was created with.
func (s *Syntax) LayerLanguage(id Layer) string {
	return s.store.mustGet(id).Language
}

// Parse (re)synchronizes the whole layer forest against source: the root
// layer is parsed (or reparsed, if edits is non-empty) via parseLayer, and
// every injection its query discovers is recursively reconciled the same
// way, breadth-first. edits should be empty on the very first call and
// otherwise list every edit applied to source since the previous call, in
// ascending, non-overlapping order.
//
// parseLayer is called for the root when it has no tree yet or edits is
// non-empty, and once for every child layer that reconciliation assigned a
// match this pass, new or reused, after its parent's reconciliation has
// set its ranges. It must call SetLayerTree before returning.
func (s *Syntax) Parse(ctx context.Context, source []byte, edits []InputEdit, parseLayer ParseLayer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, id := range s.store.Layers() {
		s.store.mustGet(id).Flags = LayerFlags{}
	}

	root := s.store.mustGet(s.root)
	if len(root.Ranges) == 0 {
		root.Ranges = []tree_sitter.Range{fullRange(len(source))}
	}
	needsParse := root.ParseTree == nil || len(edits) > 0
	if needsParse {
		parseLayer(s.root)
	}

	queue := []Layer{s.root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		layer := queue[0]
		queue = queue[1:]

		// A child's ranges are only complete once its parent's
		// RunInjectionQuery has returned, so children are parsed here, when
		// dequeued, rather than from onTouch.
		if layer != s.root {
			parseLayer(layer)
		}

		onTouch := func(child Layer) {
			queue = append(queue, child)
		}

		// edits are in document-absolute byte offsets, which is also how
		// every layer's own Injections ranges are expressed (tree-sitter
		// node ranges never get rebased for an injected subtree), so the
		// same slice maps correctly against any layer's injection list, not
		// just the root's.
		if err := s.RunInjectionQuery(layer, edits, source, onTouch); err != nil {
			return fmt.Errorf("reconciling layer %d: %w", layer, err)
		}
	}

	return nil
}

func fullRange(sourceLen int) tree_sitter.Range {
	return tree_sitter.Range{
		StartByte: 0,
		EndByte:   uint(sourceLen),
		StartPoint: tree_sitter.Point{Row: 0, Column: 0},
		EndPoint:   tree_sitter.NewPoint(^uint(0), ^uint(0)),
	}
}
