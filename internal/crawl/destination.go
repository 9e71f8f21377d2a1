// Package crawl implements the crawl coordinator: the single-threaded
// control loop that owns all URL state, dispatches fetch work to a worker
// pool, enforces per-host politeness and robots.txt, and terminates
// cleanly on completion or interruption.
package crawl

import "net/url"

// Destination is a URL (fragment stripped) together with its discovered
// attributes and outcome. Identity is by canonical URL.
type Destination struct {
	URL *url.URL

	IsSeed              bool
	IsSource            bool
	IsExternal          bool
	IsInvalid           bool
	IsUnsupportedScheme bool
	WasSkipped          bool
	DidNotConnect       bool
	WasDeniedByRobotsTxt bool
	WasTried            bool

	StatusCode        int
	FinalURL          *url.URL
	ContentType       string
	StatusDescription string
	IsBroken          bool
}

// Canonical strips the fragment from u and returns the canonical form used
// as a Destination's identity.
func Canonical(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}

// Key returns the string identity of the destination, used as a map key.
func (d *Destination) Key() string {
	return d.URL.String()
}

// Host returns the destination's authority (host[:port]).
func (d *Destination) Host() string {
	return d.URL.Host
}

// NewDestination builds a Destination for the given raw URL string. If the
// URL cannot be parsed, IsInvalid is set and URL is left nil-safe by storing
// whatever partial parse succeeded (or an empty URL).
func NewDestination(raw string) *Destination {
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return &Destination{URL: &url.URL{}, IsInvalid: true}
	}
	d := &Destination{URL: Canonical(parsed)}
	if !d.URL.IsAbs() {
		d.IsInvalid = true
		return d
	}
	switch d.URL.Scheme {
	case "http", "https":
	default:
		d.IsUnsupportedScheme = true
	}
	return d
}
