// Package highlight provides a pooled tree-sitter parser/cursor, the piece
// of parsing infrastructure a treehouse.ParseLayer implementation actually
// needs: something to hand a layer's ranges and grammar to and get a tree
// back, without allocating a fresh Parser and QueryCursor per layer.
package highlight

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool wraps a single tree_sitter.Parser together with a stack of
// retired QueryCursors, so a ParseLayer callback driving many layers (one
// document can easily have dozens of injected layers) reuses both instead
// of allocating new ones for every layer.
type ParserPool struct {
	Parser  *tree_sitter.Parser
	cursors []*tree_sitter.QueryCursor
}

// NewParserPool creates a pool around a fresh tree_sitter.Parser.
func NewParserPool() *ParserPool {
	return &ParserPool{Parser: tree_sitter.NewParser()}
}

// PushCursor returns a cursor to the pool once the caller is done with it.
func (p *ParserPool) PushCursor(cursor *tree_sitter.QueryCursor) {
	p.cursors = append(p.cursors, cursor)
}

// PopCursor returns a retired cursor, or a freshly allocated one if the
// pool is empty.
func (p *ParserPool) PopCursor() *tree_sitter.QueryCursor {
	if len(p.cursors) == 0 {
		return tree_sitter.NewQueryCursor()
	}

	cursor := p.cursors[len(p.cursors)-1]
	p.cursors = p.cursors[:len(p.cursors)-1]
	return cursor
}

// Registry keeps one ParserPool per language name, so a ParseLayer
// callback driving a whole layer forest (root plus however many injected
// layers, each possibly a different language) reuses a parser per
// language it has already seen instead of allocating one per layer.
type Registry struct {
	pools map[string]*ParserPool
}

// NewRegistry creates an empty language-keyed parser registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*ParserPool)}
}

// Pool returns the ParserPool for language, creating and configuring one
// against grammar on first use.
func (r *Registry) Pool(language string, grammar *tree_sitter.Language) (*ParserPool, error) {
	if pool, ok := r.pools[language]; ok {
		return pool, nil
	}
	pool := NewParserPool()
	if err := pool.Parser.SetLanguage(grammar); err != nil {
		return nil, err
	}
	r.pools[language] = pool
	return pool, nil
}
