// Package language provides ready-made treehouse.LanguageLoader
// implementations: an in-memory registry keyed by language name, filename
// glob association, and an LRU cache over loaded Grammar handles so a
// grammar is wrapped and version-checked once and then shared by every
// layer that uses it while it stays in the cache.
package language

import (
	"fmt"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"

	"go.gopad.dev/tree-house"
	"go.gopad.dev/tree-house/internal/injection"
)

// Language bundles one grammar's queries and its compiled form, the unit a
// Registry is built from. Lang is the raw tree-sitter language pointer
// (typically a generated binding's xxx.Language() call); it is wrapped and
// ABI-checked lazily, on first use, via GrammarCache.
type Language struct {
	Name            string
	Lang            unsafe.Pointer
	HighlightsQuery []byte
	InjectionQuery  []byte
	LocalsQuery     []byte
	// Filenames are glob patterns (doublestar syntax, so "**" is
	// supported) that should resolve to this language via an
	// "injection.filename" marker.
	Filenames []string
	// Shebangs are interpreter names (as extracted from a "#!" line) that
	// should resolve to this language.
	Shebangs []string
	// NewPrecedence controls identical-range match precedence for this
	// language's injection query; see treehouse.LanguageConfig.
	NewPrecedence bool
}

// GrammarCache memoizes ABI-checked Grammar handles by language name, so a
// grammar already wrapped for one layer is reused for every other layer
// that needs the same language.
type GrammarCache struct {
	cache *lru.Cache[string, *treehouse.Grammar]
}

// NewGrammarCache creates a cache holding up to size distinct grammars.
func NewGrammarCache(size int) (*GrammarCache, error) {
	c, err := lru.New[string, *treehouse.Grammar](size)
	if err != nil {
		return nil, fmt.Errorf("creating grammar cache: %w", err)
	}
	return &GrammarCache{cache: c}, nil
}

func (c *GrammarCache) get(name string, ptr unsafe.Pointer) (*treehouse.Grammar, error) {
	if g, ok := c.cache.Get(name); ok {
		return g, nil
	}
	g, err := treehouse.NewGrammar(name, ptr)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, g)
	return g, nil
}

// Registry is a LanguageLoader backed by an in-memory set of Languages,
// matched by name, filename glob, or shebang interpreter, the way a real
// editor's language-association settings would.
type Registry struct {
	mu        sync.Mutex
	grammars   *GrammarCache
	languages  map[string]Language
	configs    map[string]*treehouse.LanguageConfig
	markerHits map[uint64]string
}

// NewRegistry creates an empty Registry. grammars may be shared across
// multiple Registry instances (e.g. one per open document) so the same
// grammar is never reloaded twice.
func NewRegistry(grammars *GrammarCache) *Registry {
	return &Registry{
		grammars:   grammars,
		languages:  make(map[string]Language),
		configs:    make(map[string]*treehouse.LanguageConfig),
		markerHits: make(map[uint64]string),
	}
}

// Register adds lang to the registry under its own name. Its filename
// globs and shebang interpreters are consulted by LoadLanguage but are not
// separately indexed, so registering a large number of languages with many
// filename patterns makes filename/shebang resolution proportionally
// slower (markerHits amortizes this across repeated lookups of the same
// marker).
func (r *Registry) Register(lang Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[lang.Name] = lang
}

// LoadLanguage implements treehouse.LanguageLoader.
func (r *Registry) LoadLanguage(marker treehouse.InjectionLanguageMarker) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if marker.Kind == injection.MarkerName { // cheap exact lookup, no need to cache
		if _, ok := r.languages[marker.Text]; ok {
			return marker.Text, true
		}
		return "", false
	}

	key := scopeHash(uint8(marker.Kind), marker.Text)
	if name, ok := r.markerHits[key]; ok {
		return name, true
	}

	var (
		name string
		hit  bool
	)
	switch marker.Kind {
	case injection.MarkerFilename:
		base := filepath.Base(marker.Text)
		for _, lang := range r.languages {
			for _, pattern := range lang.Filenames {
				if ok, _ := doublestar.Match(pattern, marker.Text); ok {
					name, hit = lang.Name, true
					break
				}
				if ok, _ := doublestar.Match(pattern, base); ok {
					name, hit = lang.Name, true
					break
				}
			}
			if hit {
				break
			}
		}
	case injection.MarkerShebang:
		for _, lang := range r.languages {
			for _, sh := range lang.Shebangs {
				if sh == marker.Text {
					name, hit = lang.Name, true
					break
				}
			}
			if hit {
				break
			}
		}
	}
	if hit {
		r.markerHits[key] = name
	}
	return name, hit
}

// Config implements treehouse.LanguageLoader, building and caching the
// compiled LanguageConfig for language on first use.
func (r *Registry) Config(language string) (*treehouse.LanguageConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.configs[language]; ok {
		return cfg, true
	}

	lang, ok := r.languages[language]
	if !ok {
		return nil, false
	}

	grammar, err := r.grammars.get(lang.Name, lang.Lang)
	if err != nil {
		return nil, false
	}

	cfg, err := treehouse.NewLanguageConfig(lang.Name, grammar, lang.InjectionQuery, lang.NewPrecedence)
	if err != nil {
		return nil, false
	}

	r.configs[language] = cfg
	return cfg, true
}

// scopeHash hashes a marker kind and text into a stable, compact key; used
// where a Registry needs to deduplicate markers without retaining their
// (potentially large) source text, e.g. a cache of filename-glob match
// results keyed by the input path.
func scopeHash(kind uint8, text string) uint64 {
	h := xxh3.New()
	h.Write([]byte{kind})
	h.WriteString(text)
	return h.Sum64()
}
