// Package pathmatch implements the glob-style name matcher the scanner
// applies to its ignore and remove lists: `*` wildcards, case-insensitive,
// anchored.
package pathmatch

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher compiles a set of glob patterns once and matches names against
// all of them.
type Matcher struct {
	patterns []string
	compiled []*regexp.Regexp
}

var compileCache sync.Map // pattern string -> *regexp.Regexp

// Compile builds a Matcher from the given glob patterns. An empty pattern
// list yields a Matcher that never matches anything.
func Compile(patterns []string) *Matcher {
	m := &Matcher{patterns: patterns}
	m.compiled = make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		m.compiled = append(m.compiled, compileOne(p))
	}
	return m
}

func compileOne(pattern string) *regexp.Regexp {
	if cached, ok := compileCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	escaped := regexp.QuoteMeta(pattern)
	// QuoteMeta escapes '*' as `\*`; turn it back into a wildcard.
	wildcarded := strings.ReplaceAll(escaped, `\*`, ".*")
	re := regexp.MustCompile("(?i)^" + wildcarded + "$")
	compileCache.Store(pattern, re)
	return re
}

// Match reports whether name matches any of the compiled patterns.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return false
	}
	for _, re := range m.compiled {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Patterns returns the original glob patterns this Matcher was built from.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// Match is a convenience one-shot form for callers that do not want to
// retain a compiled Matcher (e.g. a single ad-hoc comparison in a test).
func Match(pattern, name string) bool {
	return compileOne(pattern).MatchString(name)
}
