// Package xregexp matches strings against .NET flavored patterns with a
// process-wide compile cache. Patterns are anchored to the full string when
// no anchors are written out.
package xregexp

import (
	"strings"

	"github.com/dlclark/regexp2/v2"

	"github.com/looplj/adminhub/internal/pkg/xmap"
)

type cachedPattern struct {
	regex      *regexp2.Regexp
	exactMatch bool
	compileErr bool
}

var cache = xmap.New[string, *cachedPattern]()

// Compile compiles an anchored pattern, surfacing the compile error. Use it
// to validate patterns eagerly, MatchString treats broken patterns as
// non-matching.
func Compile(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(ensureAnchored(pattern), regexp2.None)
}

// MatchString checks if str matches pattern. Patterns without regex
// metacharacters compare literally.
func MatchString(pattern string, str string) bool {
	cached := load(pattern)

	if cached.compileErr {
		return false
	}

	if cached.exactMatch {
		return pattern == str
	}

	match, _ := cached.regex.MatchString(str)

	return match
}

// Filter returns the items matching pattern, preserving order. An empty
// pattern matches nothing.
func Filter(items []string, pattern string) []string {
	if pattern == "" {
		return []string{}
	}

	cached := load(pattern)

	if cached.compileErr {
		return []string{}
	}

	matched := make([]string, 0, len(items))

	for _, item := range items {
		if cached.exactMatch {
			if pattern == item {
				matched = append(matched, item)
			}

			continue
		}

		if match, _ := cached.regex.MatchString(item); match {
			matched = append(matched, item)
		}
	}

	return matched
}

func load(pattern string) *cachedPattern {
	if cached, ok := cache.Load(pattern); ok {
		return cached
	}

	cached := &cachedPattern{}

	if !strings.ContainsAny(pattern, `*?+[]{}()^$.|\`) {
		cached.exactMatch = true
	} else if compiled, err := Compile(pattern); err != nil {
		cached.compileErr = true
	} else {
		cached.regex = compiled
	}

	actual, _ := cache.LoadOrStore(pattern, cached)

	return actual
}

// ensureAnchored wraps pattern with ^ and $ unless it already carries them.
// A leading inline modifier group like (?i) is skipped before looking for
// the start anchor.
func ensureAnchored(pattern string) string {
	rest := pattern

	if strings.HasPrefix(rest, "(?") {
		if end := strings.Index(rest, ")"); end > 0 && !strings.ContainsAny(rest[2:end], "=!<:") {
			rest = rest[end+1:]
		}
	}

	if !strings.HasPrefix(rest, "^") {
		pattern = "^" + pattern
	}

	if !strings.HasSuffix(pattern, "$") {
		pattern += "$"
	}

	return pattern
}
