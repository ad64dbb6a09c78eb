/*
Package treehouse discovers and reconciles language injections across an
incrementally edited tree-sitter syntax tree.

A document is split into a forest of [Layer]s: the root layer holds the
document's primary language, and each injected region (a fenced code block,
a `<script>` tag, a heredoc) becomes a child layer parsed with its own
grammar. [Syntax] owns that forest and keeps it in sync as the document is
edited, mapping the existing injections through each edit and reusing the
child layers they belong to instead of creating new ones.

# Usage

	grammar, err := treehouse.NewGrammar("go", tree_sitter_go.Language())
	if err != nil {
		log.Fatal(err)
	}

	loader := language.NewRegistry(cache)
	loader.Register(language.NewLanguage("go", tree_sitter_go.Language(), highlightsQuery, injectionQuery, localsQuery))

	syntax := treehouse.NewSyntax(treehouse.SyntaxOptions{
		Loader:       loader,
		RootLanguage: "go",
	})

	if err := syntax.Parse(ctx, source, nil, parseRoot); err != nil {
		log.Fatal(err)
	}

	edits := []treehouse.InputEdit{} // edits collected since the last parse
	newSource := applyEdits(source, edits)
	if err := syntax.Parse(ctx, newSource, edits, parseRoot); err != nil {
		log.Fatal(err)
	}

Calling code supplies a [ParseLayer] callback; this package never parses on
its own schedule or opinion about worker pools, so it stays embeddable in a
caller's own editor or batch-indexing loop. What to do with the resulting
layer forest — turning it into highlighted spans, folding ranges, or
anything else — is left entirely to the caller; this package only
discovers and reconciles layers.
*/
package treehouse
