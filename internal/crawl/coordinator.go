package crawl

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/sturdyco/linkcheck/internal/uriglob"
)

// Config thread counts, per spec.md §6.
const (
	DefaultThreads        = 8
	LocalhostOnlyThreads  = 4
	defaultUserAgent      = "Mozilla/5.0 (compatible; linkcheckbot/1.0; +https://github.com/sturdyco/linkcheck)"
	defaultPolitenessGap  = 500 * time.Millisecond
)

// Skipper is the URL-skip pattern engine consumed by the coordinator.
// Package skip provides the concrete implementation.
type Skipper interface {
	Skips(url string) bool
	Explain(url string) string
}

type noopSkipper struct{}

func (noopSkipper) Skips(string) bool    { return false }
func (noopSkipper) Explain(string) string { return "" }

// HostMatcher is the host/URL pattern predicate consumed by the
// coordinator to classify a destination as internal or external. Package
// uriglob provides the concrete implementation.
type HostMatcher interface {
	Matches(u *url.URL) bool
}

// ResultCache supplies a previously-seen crawl outcome for a URL, letting a
// rerun skip re-fetching a destination that closed cleanly within the
// cache's TTL. Package cache provides the concrete implementation (a
// Cache bound to a max age via Cache.WithTTL). A nil ResultCache (the
// Config default) disables this lookup entirely.
type ResultCache interface {
	// Lookup reports the cached status code and broken state for url, and
	// whether a still-fresh entry exists at all.
	Lookup(url string) (statusCode int, isBroken bool, fresh bool)
}

// Config configures a Coordinator. Seeds and NewPool are required; an empty
// HostGlobs is accepted and classifies every discovered link as external.
// Everything else defaults the way the teacher's CrawlerSettings did.
type Config struct {
	Seeds               []string
	HostGlobs           []string
	ShouldCheckExternal bool
	Skipper             Skipper
	Verbose             bool
	StopSignal          <-chan struct{}
	UserAgent           string
	PolitenessDelay     time.Duration
	// ResultCache, if set, is consulted before dispatching a page fetch so
	// a fresh previous result can close the destination without a request.
	ResultCache ResultCache
	// NewPool constructs a worker pool with the given worker count. The
	// coordinator never imports package pool directly, to keep the
	// dependency arrow pointing from pool -> crawl, not the reverse.
	NewPool func(workers int) WorkerPool
	Logger  *log.Logger
}

// Coordinator is the single-threaded control loop described in spec.md
// §4.1: it owns all URL and server state, serializes all mutation, and
// drives the crawl to quiescence or cancellation.
type Coordinator struct {
	glob                HostMatcher
	shouldCheckExternal bool
	skipper             Skipper
	resultCache         ResultCache
	userAgent           string
	politenessDelay     time.Duration
	newPool             func(int) WorkerPool
	verbose             bool
	logger              *log.Logger
	stopSignal          <-chan struct{}
	workerCount         int

	pool WorkerPool
	done bool

	bin               map[string]Bin
	open              []*Destination
	openExternal      []*Destination
	inProgress        map[string]*Destination
	closed            map[string]*Destination
	servers           map[string]*ServerInfo
	unknownServers    []string
	unknownServersSet map[string]bool
	serversInProgress map[string]bool
	links             map[string]*Link
}

// New validates cfg and builds a Coordinator primed with its seeds, ready
// for Crawl to be called.
func New(cfg Config) (*Coordinator, error) {
	if len(cfg.Seeds) == 0 {
		return nil, errors.New("crawl: at least one seed URL is required")
	}
	if cfg.NewPool == nil {
		return nil, errors.New("crawl: Config.NewPool is required")
	}
	glob, err := uriglob.Compile(cfg.HostGlobs)
	if err != nil {
		return nil, err
	}
	skipper := cfg.Skipper
	if skipper == nil {
		skipper = noopSkipper{}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	politenessDelay := cfg.PolitenessDelay
	if politenessDelay <= 0 {
		politenessDelay = defaultPolitenessGap
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "crawl: ", log.LstdFlags)
	}
	stopSignal := cfg.StopSignal
	if stopSignal == nil {
		stopSignal = make(chan struct{}) // never fires
	}

	c := &Coordinator{
		glob:                glob,
		shouldCheckExternal: cfg.ShouldCheckExternal,
		skipper:             skipper,
		resultCache:         cfg.ResultCache,
		userAgent:           userAgent,
		politenessDelay:     politenessDelay,
		newPool:             cfg.NewPool,
		verbose:             cfg.Verbose,
		logger:              logger,
		stopSignal:          stopSignal,

		bin:               make(map[string]Bin),
		inProgress:        make(map[string]*Destination),
		closed:            make(map[string]*Destination),
		servers:           make(map[string]*ServerInfo),
		unknownServersSet: make(map[string]bool),
		serversInProgress: make(map[string]bool),
		links:             make(map[string]*Link),
	}

	seen := make(map[string]bool, len(cfg.Seeds))
	localOnly := true
	for _, raw := range cfg.Seeds {
		d := NewDestination(raw)
		if d.IsInvalid {
			return nil, fmt.Errorf("crawl: invalid seed URL %q", raw)
		}
		d.IsSeed = true
		d.IsSource = true
		key := d.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		c.open = append(c.open, d)
		c.bin[key] = BinOpen

		host := d.URL.Hostname()
		if host != "localhost" && host != "127.0.0.1" {
			localOnly = false
		}
		authority := d.Host()
		if !c.unknownServersSet[authority] {
			c.unknownServersSet[authority] = true
			c.unknownServers = append(c.unknownServers, authority)
		}
	}
	if cfg.ShouldCheckExternal {
		localOnly = false
	}
	if localOnly {
		c.workerCount = LocalhostOnlyThreads
	} else {
		c.workerCount = DefaultThreads
	}
	return c, nil
}

// Crawl runs the coordinator's event loop to completion (quiescence) or
// cancellation via the configured stop signal, returning the final result.
func (c *Coordinator) Crawl() (*CrawlResult, error) {
	c.pool = c.newPool(c.workerCount)
	c.pool.Spawn()

	c.dispatch()

	cancelled := false
loop:
	for !c.done {
		// A destination deferred by per-host throttling is revisited only
		// when dispatch runs again, so while any remain queued a timer re-runs
		// dispatch even if no worker result is pending.
		var retry <-chan time.Time
		if len(c.open) > 0 || len(c.openExternal) > 0 {
			retry = time.After(MinimumDelay)
		}
		select {
		case <-retry:
			c.dispatch()
		case <-c.stopSignal:
			cancelled = true
			c.pool.Close()
			break loop
		case update, ok := <-c.pool.ServerCheckResults():
			if !ok {
				break loop
			}
			c.handleServerCheck(update)
		case res, ok := <-c.pool.FetchResults():
			if !ok {
				break loop
			}
			c.handleFetchResult(res)
		case msg, ok := <-c.pool.Messages():
			if ok && c.verbose {
				c.logger.Println(msg.Text)
			}
		}
	}

	return c.finish(cancelled), nil
}
