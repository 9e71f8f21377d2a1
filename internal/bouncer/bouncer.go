// Package bouncer adapts github.com/temoto/robotstxt, the same backend the
// teacher's CrawlingRules used, into the allow predicate ServerInfo needs.
package bouncer

import (
	"time"

	"github.com/temoto/robotstxt"
)

// Bouncer is a per-host predicate derived from a parsed robots.txt group.
// A nil *Bouncer, or one with no group (as returned by None), allows
// everything, matching the teacher's "no valid robots.txt means full access"
// rule.
type Bouncer struct {
	group *robotstxt.Group
}

// Parse parses raw robots.txt content for the given user agent and returns
// a Bouncer. If the content cannot be parsed, or no directives apply to the
// user agent, a permissive Bouncer is returned, mirroring the teacher's
// GetRobotsTxtGroup fallback behavior.
func Parse(body []byte, userAgent string) *Bouncer {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return &Bouncer{}
	}
	return &Bouncer{group: data.FindGroup(userAgent)}
}

// None returns a permissive Bouncer, used when no robots.txt was found at
// all (as opposed to one that was found but failed to parse — both cases
// are treated the same: full access).
func None() *Bouncer {
	return &Bouncer{}
}

// Allows reports whether path is permitted by the robots group. A Bouncer
// with no group (nil or failed parse) allows everything.
func (b *Bouncer) Allows(path string) bool {
	if b == nil || b.group == nil {
		return true
	}
	return b.group.Test(path)
}

// CrawlDelay returns the Crawl-delay directive from the robots group, or 0
// if none was specified.
func (b *Bouncer) CrawlDelay() time.Duration {
	if b == nil || b.group == nil {
		return 0
	}
	return b.group.CrawlDelay
}
