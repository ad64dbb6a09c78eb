package treehouse

import (
	"fmt"

	"go.gopad.dev/tree-house/internal/injection"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// InjectionLanguageMarker is the language identity an injection query match
// resolved to, before a LanguageLoader turns it into an actual language
// name. Exactly one of its three forms is ever populated: either an
// explicit "injection.language" capture/property, a "injection.filename"
// capture naming a file whose extension or glob association picks the
// language, or a "injection.shebang" capture whose first line is matched
// against the shebang pattern.
type InjectionLanguageMarker = injection.LanguageMarker

// LanguageConfig is everything RunInjectionQuery needs to know about one
// language: its grammar and its compiled injection query. Obtained from a
// LanguageLoader by language name.
type LanguageConfig struct {
	Language string
	Grammar  *Grammar
	// InjectionsQuery is the compiled "injection.content" query for this
	// language. A language with no injections (injections.scm is empty or
	// absent) may leave this nil; RunInjectionQuery then leaves the
	// layer's children untouched.
	InjectionsQuery *injection.Query
	// NewPrecedence controls how identical-range duplicate matches within
	// the injection query are resolved: when true, the later match in
	// query order wins; when false (the default, matching tree-sitter's
	// usual pattern precedence) the earlier one does.
	NewPrecedence bool
}

// NewLanguageConfig compiles injectionQuerySource (a language's
// injections.scm, possibly empty) against grammar's language and returns a
// ready-to-use LanguageConfig. Intended for LanguageLoader implementations
// such as language.Registry to call lazily, once per language, on first
// use.
func NewLanguageConfig(name string, grammar *Grammar, injectionQuerySource []byte, newPrecedence bool) (*LanguageConfig, error) {
	var q *injection.Query
	if len(injectionQuerySource) > 0 {
		compiled, err := injection.NewQuery(grammar.Language, string(injectionQuerySource))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrQueryCompile, name, err)
		}
		q = compiled
	}

	return &LanguageConfig{
		Language:        name,
		Grammar:         grammar,
		InjectionsQuery: q,
		NewPrecedence:   newPrecedence,
	}, nil
}

// LanguageLoader resolves the language names and markers RunInjectionQuery
// discovers into the configuration needed to actually parse them. It is
// supplied by the caller so this package never hard-codes a grammar
// registry or a file-association policy; see the language package for a
// ready-made implementation.
type LanguageLoader interface {
	// LoadLanguage resolves a raw marker (an "injection.language" name, an
	// "injection.filename" path, or an "injection.shebang" interpreter) to
	// a canonical language name. Returns ("", false) if no language claims
	// the marker.
	LoadLanguage(marker InjectionLanguageMarker) (string, bool)
	// Config returns the compiled configuration for a language name
	// previously returned by LoadLanguage. Returns (nil, false) if the
	// language has no usable grammar.
	Config(language string) (*LanguageConfig, bool)
}

// ParseLayer is invoked by Syntax.Parse at most once per layer per pass:
// for a child layer, after its parent's reconciliation has assigned it a
// match and set its ranges, so the caller can parse (or reparse) it with
// the layer's current ranges and language before the layer's own
// injections are reconciled. The callback is responsible for calling
// Syntax.SetLayerTree with the result.
type ParseLayer func(layer Layer)

// InputEdit mirrors tree-sitter's own edit record: the byte and point
// ranges of one text replacement, expressed against the buffer positions
// before and after the edit.
type InputEdit = tree_sitter.InputEdit
