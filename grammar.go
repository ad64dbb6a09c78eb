package treehouse

import (
	"fmt"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ABI version bounds a loaded grammar must fall within. Mirrors
// tree-sitter's own TREE_SITTER_MIN_COMPATIBLE_LANGUAGE_VERSION and
// TREE_SITTER_LANGUAGE_VERSION constants.
const (
	MinCompatibleABI = 13
	CurrentABI       = 15
)

// Grammar is a thin, ABI-checked handle around an already-loaded
// tree-sitter language. Callers obtain the raw language pointer themselves
// (static link, cgo, or a dynamic loader of their choosing); Grammar only
// validates it and exposes the bits RunInjectionQuery and friends need.
// Opening a shared library and resolving its tree_sitter_<name> symbol is
// left to the caller's own loader; the language package builds Grammars
// from the pointers generated bindings return.
type Grammar struct {
	Name     string
	Language *tree_sitter.Language
	version  uint
}

// NewGrammar wraps a tree-sitter language pointer obtained from a grammar's
// tree_sitter_<name> entry point, checking its ABI version. ptr must be a
// non-nil TSLanguage* as returned by that symbol.
func NewGrammar(name string, ptr unsafe.Pointer) (*Grammar, error) {
	if ptr == nil {
		return nil, fmt.Errorf("%w: %s: nil language pointer", ErrGrammarLoad, name)
	}
	lang := tree_sitter.NewLanguage(ptr)
	version := lang.Version()
	if version < MinCompatibleABI || version > CurrentABI {
		return nil, fmt.Errorf("%w: %s: incompatible ABI version %d", ErrGrammarLoad, name, version)
	}
	return &Grammar{Name: name, Language: lang, version: version}, nil
}

// Version reports the grammar's ABI version.
func (g *Grammar) Version() uint {
	return g.version
}

// NodeKindIsVisible reports whether kindID names a regular or anonymous
// node, as opposed to a supertype or auxiliary one that a consumer of the
// tree should never see directly. tree-sitter's own node API never returns
// the latter two kinds, so this only matters when code holds a bare kind id
// (e.g. from a query's pattern metadata) rather than a live Node.
func (g *Grammar) NodeKindIsVisible(kindID uint16) bool {
	return g.Language.NodeKindIsVisible(kindID)
}
