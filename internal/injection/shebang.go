package injection

import (
	"sync"

	"github.com/dlclark/regexp2"
)

// shebangPattern matches a "#!" interpreter line, tolerating an "/usr/bin/env"
// indirection and leading "-flag" arguments to env, the same shape real
// shebang lines take across shells and scripting languages.
const shebangPattern = `#!\s*(?:\S*[/\\](?:env\s+(?:\-\S+\s+)*)?)?([^\s\.\d]+)`

var (
	shebangOnce  sync.Once
	shebangRegex *regexp2.Regexp
)

func getShebangRegex() *regexp2.Regexp {
	shebangOnce.Do(func() {
		shebangRegex = regexp2.MustCompile(shebangPattern, regexp2.None)
	})
	return shebangRegex
}

// matchShebang extracts the interpreter name from the first one or two
// lines of text (some languages allow leading blank lines before the
// actual shebang), or returns ("", false) if none is found.
func matchShebang(text string) (string, bool) {
	lines := firstLines(text, 2)
	m, err := getShebangRegex().FindStringMatch(lines)
	if err != nil || m == nil {
		return "", false
	}
	groups := m.Groups()
	if len(groups) < 2 {
		return "", false
	}
	captures := groups[1].Captures
	if len(captures) == 0 {
		return "", false
	}
	return captures[0].String(), true
}

func firstLines(text string, n int) string {
	count := 0
	for i, c := range text {
		if c == '\n' {
			count++
			if count == n {
				return text[:i]
			}
		}
	}
	return text
}
