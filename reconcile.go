package treehouse

import (
	"fmt"
	"log/slog"

	"go.gopad.dev/tree-house/internal/injection"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// DefaultMatchLimit is the match limit a Syntax records when
// SyntaxOptions.MatchLimit is zero. The recorded value is not passed to the
// query cursor: injection.Execute runs with the cursor's own default
// settings, so no match limit is applied to injection queries.
const DefaultMatchLimit = 64

// scopeKind distinguishes the two forms combined-injection scoping can
// take; see scopeKey.
type scopeKind uint8

const (
	scopeMatch scopeKind = iota
	scopePattern
)

// scopeKey identifies which child layer a combined injection match should
// be folded into: either "this specific query match" (ordinary, per-match
// injections with more than one content node) or "this pattern, this
// language" (#set! injection.combined, merging every match of the pattern
// across the whole tree into one layer).
type scopeKey struct {
	kind     scopeKind
	matchID  uint32
	pattern  uint
	language string
}

// RunInjectionQuery reconciles layer's injection query against its current
// parse tree, updating the layer forest in place: new injections become
// new child layers, vanished ones are left unreferenced for the caller to
// garbage-collect, and injections whose range merely shifted keep their
// existing child layer and tree.
//
// edits are the edits applied to the document since layer's tree was last
// reconciled (nil or empty on first parse). onTouch is invoked at most once
// per layer, the first time this pass assigns it a match. At that point the
// layer's ranges for this pass are not yet complete; they are once
// RunInjectionQuery returns, which is when the layer can be parsed and
// then reconciled in turn.
func (s *Syntax) RunInjectionQuery(layer Layer, edits []InputEdit, source []byte, onTouch func(Layer)) error {
	s.mapInjections(layer, nil, edits)

	data := s.store.mustGet(layer)
	cfg, ok := s.loader.Config(data.Language)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoParser, data.Language)
	}
	if cfg.InjectionsQuery == nil || !cfg.InjectionsQuery.HasContent() {
		return nil
	}
	if data.ParseTree == nil {
		return nil
	}

	parentRanges := data.Ranges
	data.Ranges = nil
	tree := data.ParseTree
	data.ParseTree = nil

	oldInjections := data.Injections
	data.Injections = nil
	oldIdx := 0

	injections := make([]Injection, 0, len(oldInjections))
	combined := make(map[scopeKey]Layer, 8)

	resolve := func(marker injection.LanguageMarker) (string, bool) {
		return s.loader.LoadLanguage(marker)
	}

	matches := injection.Execute(cfg.InjectionsQuery, tree.RootNode(), source, cfg.NewPrecedence, resolve)

	lastInjectionEnd := uint(0)
	for _, mat := range matches {
		rng := mat.Node.Range()
		insertPosition := len(injections)

		if lastInjectionEnd > rng.StartByte {
			if lastInjectionEnd <= rng.EndByte || injections[len(injections)-1].Range.StartByte <= rng.StartByte {
				continue
			}
			insertPosition = partitionPointInjections(injections, rng.StartByte)
			if insertPosition < len(injections) && injections[insertPosition].Range.StartByte < rng.EndByte {
				continue
			}
		}
		lastInjectionEnd = rng.EndByte

		reused, newOldIdx := s.reuseInjection(mat.Language, rng, oldInjections, oldIdx)
		oldIdx = newOldIdx

		var childLayer Layer
		key, hasScope, isMatchScope := scopeFor(mat)
		switch {
		case hasScope && isMatchScope && mat.LastMatch:
			if existing, ok := combined[key]; ok {
				childLayer = existing
				delete(combined, key)
			} else {
				childLayer = s.initInjection(layer, mat.Language, reused)
			}
		case hasScope:
			if existing, ok := combined[key]; ok {
				childLayer = existing
			} else {
				childLayer = s.initInjection(layer, mat.Language, reused)
				combined[key] = childLayer
			}
		default:
			childLayer = s.initInjection(layer, mat.Language, reused)
		}

		childData := s.store.mustGet(childLayer)
		if !childData.Flags.Touched {
			childData.Flags.Touched = true
			if onTouch != nil {
				onTouch(childLayer)
			}
			childData = s.store.mustGet(childLayer)
		}
		if childData.Flags.Reused {
			childData.Flags.Modified = childData.Flags.Modified || reused == nil ||
				reused.Range != rng || reused.Layer != childLayer
		} else if reused != nil {
			childData.Flags.Reused = true
			childData.Flags.Modified = true
			reusedTree := s.store.mustGet(reused.Layer).ParseTree
			childData.ParseTree = reusedTree
		}

		oldLen := len(injections)
		policy := IncludedChildren(mat.IncludeChildren)
		for _, r := range IntersectRanges(parentRanges, []tree_sitter.Node{mat.Node}, policy) {
			childData.Ranges = append(childData.Ranges, r)
			injections = append(injections, Injection{Range: r, Layer: childLayer})
		}
		if oldLen != insertPosition {
			rotateInjectionsRight(injections[insertPosition:], len(injections)-oldLen)
		}

		if s.logger != nil {
			s.logger.Debug("injection reconciled",
				slog.Uint64("layer", uint64(layer)),
				slog.Uint64("child", uint64(childLayer)),
				slog.String("language", mat.Language),
				slog.Bool("reused", childData.Flags.Reused),
				slog.Bool("modified", childData.Flags.Modified))
		}
	}

	data = s.store.mustGet(layer)
	data.Ranges = parentRanges
	data.ParseTree = tree
	data.Injections = injections
	return nil
}

// scopeFor decides whether mat needs to be folded together with other
// matches before becoming a layer, and if so under which key:
//   - a #set! injection.combined pattern folds every match of that pattern
//     and language into one layer for the whole query execution
//   - a match with anything other than exactly one content node folds its
//     own pieces into one layer, keyed by the match's own id
//   - an ordinary single-content-node match needs no folding at all
func scopeFor(mat injection.Match) (key scopeKey, hasScope bool, isMatchScope bool) {
	switch {
	case mat.Combined:
		return scopeKey{kind: scopePattern, pattern: mat.Pattern, language: mat.Language}, true, false
	case mat.ContentNodes != 1:
		return scopeKey{kind: scopeMatch, matchID: mat.MatchID}, true, true
	default:
		return scopeKey{}, false, false
	}
}

// initInjection returns the child layer for an injection match: reuse's
// layer, with its ranges cleared and marked reused and modified, or else a
// fresh layer whose parent is parent.
func (s *Syntax) initInjection(parent Layer, language string, reuse *Injection) Layer {
	if reuse != nil {
		childData := s.store.mustGet(reuse.Layer)
		childData.Flags.Reused = true
		childData.Flags.Modified = true
		childData.Ranges = nil
		return reuse.Layer
	}
	p := parent
	return s.store.insert(LayerData{
		Language: language,
		Parent:   &p,
	})
}

// reuseInjection looks for a prior injection in oldInjections (a slice
// sorted by ascending range, consumed left to right via idx) that the new
// match at newRange can take over: same language, a range overlapping the
// new range (ending after its start and starting before its end), and not
// already claimed this pass.
func (s *Syntax) reuseInjection(language string, newRange tree_sitter.Range, oldInjections []Injection, idx int) (*Injection, int) {
	for idx < len(oldInjections) && oldInjections[idx].Range.EndByte <= newRange.StartByte {
		idx++
	}
	if idx >= len(oldInjections) {
		return nil, idx
	}
	candidate := oldInjections[idx]
	if candidate.Range.StartByte >= newRange.EndByte {
		return nil, idx
	}
	childData, ok := s.store.get(candidate.Layer)
	if !ok || childData.Language != language || childData.Flags.Reused {
		return nil, idx
	}
	idx++
	return &candidate, idx
}

func partitionPointInjections(injections []Injection, beforeStart uint) int {
	lo, hi := 0, len(injections)
	for lo < hi {
		mid := (lo + hi) / 2
		if injections[mid].Range.EndByte <= beforeStart {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func rotateInjectionsRight(s []Injection, n int) {
	if len(s) == 0 {
		return
	}
	n %= len(s)
	if n == 0 {
		return
	}
	k := len(s) - n
	reverseInjections(s[:k])
	reverseInjections(s[k:])
	reverseInjections(s)
}

func reverseInjections(s []Injection) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
