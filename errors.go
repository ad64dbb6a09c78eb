package treehouse

import "errors"

// Sentinel errors. Wrap one of these with fmt.Errorf's %w verb so callers
// can recover the kind with errors.Is.
var (
	// ErrGrammarLoad is returned when NewGrammar is given a nil language
	// pointer or a language whose ABI version is outside
	// [MinCompatibleABI, CurrentABI].
	ErrGrammarLoad = errors.New("treehouse: grammar load failed")

	// ErrQueryCompile is returned when an injection query fails to parse.
	// Captures other than the four injection.* captures and #set!
	// properties other than the recognized injection.* directives are
	// accepted and ignored, not rejected.
	ErrQueryCompile = errors.New("treehouse: query compile failed")

	// ErrNoParser is returned by RunInjectionQuery (and so by Parse) when
	// the LanguageLoader has no usable configuration for a layer's
	// language, so the layer has nothing to parse with.
	ErrNoParser = errors.New("treehouse: no parser available for layer")

	// ErrLayerNotFound is returned when a Layer id does not refer to a live
	// layer in the Syntax it was looked up in.
	ErrLayerNotFound = errors.New("treehouse: layer not found")
)
