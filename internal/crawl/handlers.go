package crawl

import "github.com/sturdyco/linkcheck/internal/bouncer"

// handleServerCheck processes a ServerInfoUpdate from the pool, per
// spec.md §4.1.
func (c *Coordinator) handleServerCheck(update ServerInfoUpdate) {
	delete(c.serversInProgress, update.Host)

	var info *ServerInfo
	if update.DidNotConnect {
		info = NewUnreachableServerInfo(update.Host)
	} else {
		b := bouncer.None()
		if len(update.RobotsTxtContents) > 0 {
			b = bouncer.Parse(update.RobotsTxtContents, c.userAgent)
		}
		info = NewServerInfo(update.Host, b, c.politenessDelay)
	}
	c.servers[update.Host] = info

	c.dispatch()
}

// handleFetchResult processes a FetchResults from the pool, per spec.md
// §4.1. It is defensive against duplicate or stale results arriving after
// cancellation: both are logged and dropped rather than causing a panic,
// honoring spec.md §7's "the coordinator never throws" rule.
func (c *Coordinator) handleFetchResult(res FetchResults) {
	checked := res.Checked
	key := checked.Key()

	if c.bin[key] != BinInProgress {
		c.logger.Printf("fetch result for %s arrived with bin=%s, dropping", key, c.bin[key])
		return
	}
	existing, ok := c.inProgress[key]
	if !ok {
		// A URL-keyed inProgress map structurally prevents the "two
		// Destination objects sharing a URL, both in-progress" scenario
		// the teacher's source hinted at (see spec.md §9's open question).
		// The warning is kept for diagnostic parity regardless.
		c.logger.Printf("fetch result for %s has no matching in-progress destination, dropping", key)
		return
	}
	delete(c.inProgress, key)

	existing.StatusCode = checked.StatusCode
	existing.FinalURL = checked.FinalURL
	existing.ContentType = checked.ContentType
	existing.StatusDescription = checked.StatusDescription
	existing.IsBroken = checked.IsBroken
	existing.WasTried = true

	c.bin[key] = BinClosed
	c.closed[key] = existing

	seenTargets := make(map[string]bool)
	var newDestinations []*Destination
	for _, link := range res.Links {
		link.Origin = existing
		if c.skipper.Skips(link.TargetURLWithFragment) {
			link.WasSkipped = true
		} else {
			targetKey := link.Target.Key()
			if c.bin[targetKey] == binUnseen && !seenTargets[targetKey] {
				seenTargets[targetKey] = true
				newDestinations = append(newDestinations, link.Target)
			}
		}
		c.links[link.key()] = link
	}

	for _, d := range newDestinations {
		if d.IsInvalid {
			continue
		}
		targetKey := d.Key()
		d.IsExternal = !c.glob.Matches(d.URL)
		switch {
		case d.IsUnsupportedScheme:
			c.bin[targetKey] = BinClosed
			c.closed[targetKey] = d
		case d.IsExternal:
			if c.shouldCheckExternal {
				c.openExternal = append(c.openExternal, d)
				c.bin[targetKey] = BinOpenExternal
			} else {
				c.bin[targetKey] = BinClosed
				c.closed[targetKey] = d
			}
		default:
			if d.IsSource {
				c.open = pushFront(c.open, d)
			} else {
				c.open = append(c.open, d)
			}
			c.bin[targetKey] = BinOpen
		}
	}

	for _, d := range newDestinations {
		if d.IsInvalid || d.IsUnsupportedScheme {
			continue
		}
		if d.IsExternal && !c.shouldCheckExternal {
			continue
		}
		host := d.Host()
		if _, known := c.servers[host]; known {
			continue
		}
		if c.serversInProgress[host] || c.unknownServersSet[host] {
			continue
		}
		c.unknownServersSet[host] = true
		c.unknownServers = append(c.unknownServers, host)
	}

	c.dispatch()
}

// finish runs the termination dedup phase described in spec.md §4.1: every
// Link's target is retargeted to the canonical closed Destination for its
// URL, the pool is shut down unconditionally, and (outside cancellation) a
// soft terminal-state check is logged rather than enforced as a hard
// assertion, matching spec.md §7's "coordinator never throws".
func (c *Coordinator) finish(cancelled bool) *CrawlResult {
	for _, l := range c.links {
		if canonical, ok := c.closed[l.Target.Key()]; ok {
			l.Target = canonical
		}
	}

	c.pool.Close()

	if !cancelled {
		if len(c.open) != 0 || len(c.openExternal) != 0 {
			c.logger.Printf("warning: %d open / %d open-external destinations remained at termination",
				len(c.open), len(c.openExternal))
		}
		for key, d := range c.closed {
			if !isTerminal(d) {
				c.logger.Printf("warning: destination %s closed without a terminal condition", key)
			}
		}
	}

	links := make([]*Link, 0, len(c.links))
	for _, l := range c.links {
		links = append(links, l)
	}
	destinations := make([]*Destination, 0, len(c.closed))
	for _, d := range c.closed {
		destinations = append(destinations, d)
	}
	return &CrawlResult{Links: links, Destinations: destinations}
}

func isTerminal(d *Destination) bool {
	return d.WasTried ||
		d.IsUnsupportedScheme ||
		(d.IsExternal && !d.WasTried) ||
		d.WasDeniedByRobotsTxt ||
		d.DidNotConnect
}
