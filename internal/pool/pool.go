// Package pool implements the fixed-size worker pool the crawl coordinator
// dispatches to: spec.md §4.2's WorkerPool, backed by package fetcher.
package pool

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sturdyco/linkcheck/internal/crawl"
	"github.com/sturdyco/linkcheck/internal/fetcher"
)

type requestKind int

const (
	requestCheckServer requestKind = iota
	requestCheckPage
)

type request struct {
	kind        requestKind
	host        string
	destination *crawl.Destination
	delay       time.Duration
}

// Pool is the concrete crawl.WorkerPool: a fixed number of goroutines
// reading off a shared request channel, reporting results on three
// dedicated streams.
type Pool struct {
	workers int

	fetchClient *fetcher.Client

	requests       chan request
	serverResults  chan crawl.ServerInfoUpdate
	fetchResultsCh chan crawl.FetchResults
	messages       chan crawl.Message

	busy int32 // atomic; incremented on dispatch, decremented on completion

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	shutdown  int32 // atomic bool
}

// New builds a Pool with the given worker count and user agent. Call Spawn
// to start its workers.
func New(workers int, userAgent string, timeout time.Duration) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:        workers,
		fetchClient:    fetcher.New(userAgent, timeout),
		requests:       make(chan request, workers),
		serverResults:  make(chan crawl.ServerInfoUpdate, workers),
		fetchResultsCh: make(chan crawl.FetchResults, workers),
		messages:       make(chan crawl.Message, workers*4),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Spawn starts the fixed set of worker goroutines.
func (p *Pool) Spawn() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker()
	}
}

func (p *Pool) runWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case req, ok := <-p.requests:
			if !ok {
				return
			}
			p.handle(req)
		}
	}
}

func (p *Pool) handle(req request) {
	switch req.kind {
	case requestCheckServer:
		p.handleCheckServer(req.host)
	case requestCheckPage:
		p.handleCheckPage(req.destination, req.delay)
	}
}

// idleBeforeSend decrements the busy count before a result is handed to
// the coordinator, so AnyIdle/AllIdle are already accurate by the time the
// corresponding result is observed on its channel.
func (p *Pool) idleBeforeSend() {
	atomic.AddInt32(&p.busy, -1)
}

func (p *Pool) handleCheckServer(host string) {
	check := p.fetchClient.CheckServer(p.ctx, host)
	p.sendMessage(crawl.Message{Text: "checked server " + host})
	p.idleBeforeSend()
	p.sendServerResult(crawl.ServerInfoUpdate{
		Host:              host,
		DidNotConnect:     check.DidNotConnect,
		RobotsTxtContents: check.RobotsTxt,
	})
}

func (p *Pool) handleCheckPage(d *crawl.Destination, delay time.Duration) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-p.ctx.Done():
			p.idleBeforeSend()
			return
		}
	}

	page := p.fetchClient.CheckPage(p.ctx, d.URL.String())

	checked := *d
	checked.StatusCode = page.StatusCode
	checked.ContentType = page.ContentType
	checked.StatusDescription = page.StatusDescription
	checked.IsBroken = page.IsBroken
	if page.FinalURL != "" {
		if final, err := url.Parse(page.FinalURL); err == nil {
			checked.FinalURL = final
		}
	}

	links := make([]*crawl.Link, 0, len(page.Links))
	for _, lf := range page.Links {
		target := crawl.NewDestination(lf.Href)
		links = append(links, &crawl.Link{
			Target:                target,
			Anchor:                lf.Anchor,
			TargetURLWithFragment: lf.Href,
		})
	}

	p.sendMessage(crawl.Message{Text: "fetched " + d.URL.String()})
	p.idleBeforeSend()
	p.sendFetchResult(crawl.FetchResults{Checked: &checked, Links: links})
}

func (p *Pool) sendServerResult(u crawl.ServerInfoUpdate) {
	select {
	case p.serverResults <- u:
	case <-p.ctx.Done():
	}
}

func (p *Pool) sendFetchResult(r crawl.FetchResults) {
	select {
	case p.fetchResultsCh <- r:
	case <-p.ctx.Done():
	}
}

func (p *Pool) sendMessage(m crawl.Message) {
	select {
	case p.messages <- m:
	default:
		// Messages are best-effort diagnostics; never block a worker on a
		// full or unread channel.
	}
}

// CheckServer enqueues a server probe, consuming one worker slot.
func (p *Pool) CheckServer(host string) {
	if p.IsShuttingDown() {
		return
	}
	atomic.AddInt32(&p.busy, 1)
	select {
	case p.requests <- request{kind: requestCheckServer, host: host}:
	case <-p.ctx.Done():
		atomic.AddInt32(&p.busy, -1)
	}
}

// CheckPage enqueues a page fetch, consuming one worker slot. The worker
// waits delay before starting the request.
func (p *Pool) CheckPage(destination *crawl.Destination, delay time.Duration) {
	if p.IsShuttingDown() {
		return
	}
	atomic.AddInt32(&p.busy, 1)
	select {
	case p.requests <- request{kind: requestCheckPage, destination: destination, delay: delay}:
	case <-p.ctx.Done():
		atomic.AddInt32(&p.busy, -1)
	}
}

// AnyIdle reports whether at least one worker is not currently processing
// a request.
func (p *Pool) AnyIdle() bool {
	return atomic.LoadInt32(&p.busy) < int32(p.workers)
}

// AllBusy reports whether every worker is currently processing a request.
func (p *Pool) AllBusy() bool {
	return atomic.LoadInt32(&p.busy) >= int32(p.workers)
}

// AllIdle reports whether no worker is currently processing a request.
func (p *Pool) AllIdle() bool {
	return atomic.LoadInt32(&p.busy) == 0
}

// ServerCheckResults is the stream of ServerInfoUpdate results.
func (p *Pool) ServerCheckResults() <-chan crawl.ServerInfoUpdate { return p.serverResults }

// FetchResults is the stream of FetchResults results.
func (p *Pool) FetchResults() <-chan crawl.FetchResults { return p.fetchResultsCh }

// Messages is the stream of informational, verbose-mode-only results.
func (p *Pool) Messages() <-chan crawl.Message { return p.messages }

// Close initiates shutdown: in-flight requests are aborted best-effort via
// context cancellation. Idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.shutdown, 1)
		p.cancel()
		go func() {
			p.wg.Wait()
			close(p.serverResults)
			close(p.fetchResultsCh)
			close(p.messages)
		}()
	})
}

// IsShuttingDown reports whether Close has been called.
func (p *Pool) IsShuttingDown() bool {
	return atomic.LoadInt32(&p.shutdown) == 1
}
