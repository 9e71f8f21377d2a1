package crawl

import (
	"time"

	"github.com/sturdyco/linkcheck/internal/bouncer"
)

// MinimumDelay is the throttling floor below which a deferred dispatch is
// not worth postponing: spec.md's ServerInfo.minimumDelay.
const MinimumDelay = 100 * time.Millisecond

// ServerInfo is the coordinator's per-host state: reachability, the
// robots.txt-derived bouncer, and the throttling schedule, grounded on the
// teacher's CrawlingRules (delay bookkeeping) but owned exclusively by the
// coordinator rather than shared across goroutines.
type ServerInfo struct {
	Host            string
	HasNotConnected bool
	Bouncer         *bouncer.Bouncer

	// interval is the minimum time that must separate the start of two
	// requests to this host: the host's robots.txt Crawl-delay directive or
	// the fixed politeness delay, whichever is longer.
	interval time.Duration
	// lastRequestStart is set to the time the most recently dispatched
	// request to this host will actually begin (now + its throttling
	// delay), not the time dispatch() ran.
	//
	// ServerInfo is mutated only by the coordinator's single logical
	// thread (see package crawl doc), so no lock guards these fields.
	lastRequestStart time.Time
}

// NewServerInfo builds ServerInfo for a host that connected successfully,
// using the robots-derived crawl delay in place of the fixed delay when it
// is longer.
func NewServerInfo(host string, b *bouncer.Bouncer, fixedDelay time.Duration) *ServerInfo {
	interval := fixedDelay
	if b != nil {
		if d := b.CrawlDelay(); d > interval {
			interval = d
		}
	}
	return &ServerInfo{Host: host, Bouncer: b, interval: interval}
}

// NewUnreachableServerInfo builds ServerInfo for a host whose connection
// attempt failed; no further dispatch will be attempted against it.
func NewUnreachableServerInfo(host string) *ServerInfo {
	return &ServerInfo{Host: host, HasNotConnected: true}
}

// GetThrottlingDuration returns the wait a new request to this host must
// still observe, given the timing of the last dispatched request. Zero
// means a request may start immediately.
func (s *ServerInfo) GetThrottlingDuration() time.Duration {
	if s.lastRequestStart.IsZero() {
		return 0
	}
	nextAllowed := s.lastRequestStart.Add(s.interval)
	wait := time.Until(nextAllowed)
	if wait < 0 {
		return 0
	}
	return wait
}

// MarkRequestStart records that a request dispatched now will actually
// begin after waiting delay, so subsequent throttling calculations measure
// from the request's real start time.
func (s *ServerInfo) MarkRequestStart(delay time.Duration) {
	s.lastRequestStart = time.Now().Add(delay)
}
