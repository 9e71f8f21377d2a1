// Package skip implements the URL-skip pattern engine: a predicate over
// URLs that the coordinator consults before enqueueing a newly discovered
// destination, plus an explain hook for verbose diagnostics.
package skip

import (
	"fmt"

	"github.com/gobwas/glob"
)

type pattern struct {
	raw string
	g   glob.Glob
}

// Skipper reports whether a URL should be skipped, and why.
type Skipper struct {
	patterns []pattern
}

// Compile builds a Skipper from glob pattern strings such as
// "*/ignore/*" or "*.pdf".
func Compile(patterns []string) (*Skipper, error) {
	s := &Skipper{patterns: make([]pattern, 0, len(patterns))}
	for _, raw := range patterns {
		g, err := glob.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("skip: invalid pattern %q: %w", raw, err)
		}
		s.patterns = append(s.patterns, pattern{raw: raw, g: g})
	}
	return s, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(patterns []string) *Skipper {
	s, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return s
}

// Skips reports whether the given URL (as a string, fragment included)
// matches any configured skip pattern.
func (s *Skipper) Skips(url string) bool {
	for _, p := range s.patterns {
		if p.g.Match(url) {
			return true
		}
	}
	return false
}

// Explain returns a human-readable reason a URL was skipped, or "" if it
// would not be skipped by any pattern.
func (s *Skipper) Explain(url string) string {
	for _, p := range s.patterns {
		if p.g.Match(url) {
			return fmt.Sprintf("matched skip pattern %q", p.raw)
		}
	}
	return ""
}
