package crawl

// dispatch is the core scheduling routine described in spec.md §4.1. It
// must only be called from the coordinator's single logical thread;
// re-entrancy is forbidden (nothing here takes a lock to enforce that —
// the event loop in Crawl never calls it concurrently with itself).
func (c *Coordinator) dispatch() {
	// Step 1 - server checks.
	for len(c.unknownServers) > 0 && c.pool.AnyIdle() {
		host := c.unknownServers[0]
		c.unknownServers = c.unknownServers[1:]
		delete(c.unknownServersSet, host)
		c.pool.CheckServer(host)
		c.serversInProgress[host] = true
	}

	// Step 2 - page fetches.
	candidates := interleave(c.open, c.openExternal)
	toRemove := make(map[string]bool)
dispatchLoop:
	for _, d := range candidates {
		host := d.Host()
		server, known := c.servers[host]
		if !known {
			// Host's server check hasn't completed; not a candidate yet.
			continue
		}
		if !c.pool.AnyIdle() {
			break dispatchLoop
		}
		switch {
		case server.HasNotConnected:
			d.DidNotConnect = true
			c.close(d)
			toRemove[d.Key()] = true
		case server.Bouncer != nil && !server.Bouncer.Allows(d.URL.EscapedPath()):
			d.WasDeniedByRobotsTxt = true
			c.close(d)
			toRemove[d.Key()] = true
		default:
			if c.applyCachedResult(d) {
				c.close(d)
				toRemove[d.Key()] = true
				continue dispatchLoop
			}
			delay := server.GetThrottlingDuration()
			if delay > MinimumDelay {
				// Leave it at the head of its queue; revisit next round.
				continue dispatchLoop
			}
			c.pool.CheckPage(d, delay)
			server.MarkRequestStart(delay)
			c.bin[d.Key()] = BinInProgress
			c.inProgress[d.Key()] = d
			toRemove[d.Key()] = true
		}
	}
	if len(toRemove) > 0 {
		c.open = removeByKey(c.open, toRemove)
		c.openExternal = removeByKey(c.openExternal, toRemove)
	}

	// Step 3 - termination test. This must not consult the pool's AnyIdle/
	// AllIdle: the pool reports a worker idle as soon as it has decremented
	// its busy count, which happens just before the worker hands off its
	// result — so busy can read 0 while a result still sits unconsumed in a
	// buffered channel. Using the coordinator's own bookkeeping instead
	// (inProgress, serversInProgress) is race-free, since both are only
	// ever mutated here on the coordinator's single logical thread and
	// cleared only once their corresponding result has actually been
	// consumed.
	if len(c.unknownServers) == 0 && len(c.serversInProgress) == 0 &&
		len(c.open) == 0 && len(c.openExternal) == 0 && len(c.inProgress) == 0 {
		c.done = true
	}
}

// close moves a destination directly to closed without it ever having been
// dispatched (server unreachable, robots disallow, fresh cache hit).
func (c *Coordinator) close(d *Destination) {
	c.bin[d.Key()] = BinClosed
	c.closed[d.Key()] = d
}

// applyCachedResult consults the configured ResultCache for d and, if a
// fresh entry exists, copies it onto d and reports true so the caller can
// close d without dispatching a page fetch.
func (c *Coordinator) applyCachedResult(d *Destination) bool {
	if c.resultCache == nil {
		return false
	}
	statusCode, isBroken, fresh := c.resultCache.Lookup(d.Key())
	if !fresh {
		return false
	}
	d.StatusCode = statusCode
	d.IsBroken = isBroken
	d.StatusDescription = "cached"
	d.WasTried = true
	return true
}

// interleave forms a fair merge of a and b: one element from a, one from
// b, alternating, continuing with whichever is not yet exhausted.
func interleave(a, b []*Destination) []*Destination {
	out := make([]*Destination, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

// removeByKey returns a new slice with every destination whose key is in
// remove filtered out, preserving relative order of the survivors.
func removeByKey(queue []*Destination, remove map[string]bool) []*Destination {
	if len(remove) == 0 {
		return queue
	}
	out := queue[:0:0]
	for _, d := range queue {
		if !remove[d.Key()] {
			out = append(out, d)
		}
	}
	return out
}

// pushFront prepends d to queue.
func pushFront(queue []*Destination, d *Destination) []*Destination {
	out := make([]*Destination, 0, len(queue)+1)
	out = append(out, d)
	return append(out, queue...)
}
