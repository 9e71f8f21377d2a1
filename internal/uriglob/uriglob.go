// Package uriglob implements the host/URL pattern matcher used by the
// coordinator to decide whether a destination is internal or external.
package uriglob

import (
	"fmt"
	"net/url"

	"github.com/gobwas/glob"
)

// UriGlob compiles a set of glob patterns (each matched against both the
// host and host+path) and tests URLs against them.
type UriGlob struct {
	globs []glob.Glob
	raw   []string
}

// Compile builds a UriGlob from the given pattern strings. An empty pattern
// set matches nothing, so every URL will be classified external.
func Compile(patterns []string) (*UriGlob, error) {
	g := &UriGlob{
		globs: make([]glob.Glob, 0, len(patterns)),
		raw:   append([]string(nil), patterns...),
	}
	for _, p := range patterns {
		compiled, err := glob.Compile(p, '.', '/')
		if err != nil {
			return nil, fmt.Errorf("uriglob: invalid pattern %q: %w", p, err)
		}
		g.globs = append(g.globs, compiled)
	}
	return g, nil
}

// MustCompile is like Compile but panics on error, for static pattern sets.
func MustCompile(patterns []string) *UriGlob {
	g, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return g
}

// Matches reports whether u is internal according to the compiled patterns.
// A pattern matches if it matches the host alone, or the host joined with
// the URL path.
func (g *UriGlob) Matches(u *url.URL) bool {
	if u == nil {
		return false
	}
	host := u.Hostname()
	withPath := host + u.EscapedPath()
	for _, pattern := range g.globs {
		if pattern.Match(host) || pattern.Match(withPath) {
			return true
		}
	}
	return false
}

// Patterns returns the raw pattern strings the matcher was compiled from.
func (g *UriGlob) Patterns() []string {
	return append([]string(nil), g.raw...)
}
