// Package patternmatch implements the case-insensitive-regex-then-literal
// fallback used for server-name and query filtering,
// shared between the Capability API's fan-out (internal/codemode/mcpbuiltin)
// and the Search Engine (internal/codemode/search) so both honor the exact
// same matching rule.
package patternmatch

import (
	"regexp"
	"strings"
)

// Server reports whether name matches pattern: pattern is first tried as a
// case-insensitive regular expression; if it fails to compile, the match
// falls back to case-insensitive literal equality. An empty pattern
// matches everything.
func Server(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re.MatchString(name)
	}
	return strings.EqualFold(pattern, name)
}

// Query compiles pattern as a case-insensitive regular expression. On
// parse failure it escapes pattern's metacharacters and retries; on a
// second failure it returns a regex that matches nothing, so callers get
// an empty result rather than an error.
func Query(pattern string) *regexp.Regexp {
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re
	}
	if re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(pattern)); err == nil {
		return re
	}
	// "a^" can never match: it requires a literal 'a' immediately
	// followed by the start-of-text assertion, a contradiction — a
	// compile-safe empty-match regex since RE2 has no negative lookahead.
	return regexp.MustCompile(`a^`)
}
