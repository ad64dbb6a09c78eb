package language

import "unsafe"

// NewLanguage builds a Language from a generated binding's raw language
// pointer (e.g. tree_sitter_go.Language()) and its three query sources.
// The pointer is stored as-is and only wrapped into a *tree_sitter.Language
// (with its ABI version checked) the first time a Registry actually needs
// it, via GrammarCache; a Language that is registered but never referenced
// by an injection never pays that cost.
func NewLanguage(name string, ptr unsafe.Pointer, highlightsQuery, injectionQuery, localsQuery []byte) Language {
	return Language{
		Name:            name,
		Lang:            ptr,
		HighlightsQuery: highlightsQuery,
		InjectionQuery:  injectionQuery,
		LocalsQuery:     localsQuery,
	}
}

// WithFileAssociations returns a copy of lang with filename globs and
// shebang interpreters attached, so a Registry can resolve
// "injection.filename"/"injection.shebang" markers to it.
func (lang Language) WithFileAssociations(filenames, shebangs []string) Language {
	lang.Filenames = filenames
	lang.Shebangs = shebangs
	return lang
}
