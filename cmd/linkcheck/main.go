// Command linkcheck crawls a set of seed URLs and reports broken links,
// wiring package crawl's coordinator to package pool's worker pool, package
// uriglob's host matcher, and package skip's skip predicate, and driving a
// SIGINT/SIGTERM cancellation source the way the teacher's crawler/crawler.go
// wired its shutdown goroutine.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sturdyco/linkcheck/internal/cache"
	"github.com/sturdyco/linkcheck/internal/crawl"
	"github.com/sturdyco/linkcheck/internal/env"
	"github.com/sturdyco/linkcheck/internal/pool"
	"github.com/sturdyco/linkcheck/internal/report"
	"github.com/sturdyco/linkcheck/internal/skip"
)

const defaultFetchTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		seeds        []string
		hosts        []string
		skipPatterns []string
		external     bool
		verbose      bool
		cachePath    string
		cacheTTL     time.Duration
		format       string
		userAgent    string
		politeness   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "linkcheck",
		Short: "Crawl seed URLs and report broken links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				seeds:        seeds,
				hosts:        hosts,
				skipPatterns: skipPatterns,
				external:     external,
				verbose:      verbose,
				cachePath:    cachePath,
				cacheTTL:     cacheTTL,
				format:       format,
				userAgent:    userAgent,
				politeness:   politeness,
			})
		},
	}

	cmd.Flags().StringArrayVar(&seeds, "seed", nil, "seed URL to crawl (repeatable)")
	cmd.Flags().StringArrayVar(&hosts, "host", nil, "glob pattern defining an internal host (repeatable)")
	cmd.Flags().StringArrayVar(&skipPatterns, "skip", nil, "glob pattern for URLs to skip (repeatable)")
	cmd.Flags().BoolVar(&external, "external", false, "check external links one hop")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-request diagnostics")
	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a results cache file")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", time.Hour, "max age of a cached result before it is re-checked")
	cmd.Flags().StringVar(&format, "format", "text", "report format: text or json")
	cmd.Flags().StringVar(&userAgent, "user-agent", env.GetEnv("LINKCHECK_USER_AGENT", ""), "User-Agent header sent with every request")
	cmd.Flags().DurationVar(&politeness, "politeness-delay", env.GetEnvAsDuration("LINKCHECK_POLITENESS_DELAY", 0), "minimum delay between requests to the same host; a longer robots.txt Crawl-delay takes precedence")

	_ = cmd.MarkFlagRequired("seed")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

type runOptions struct {
	seeds        []string
	hosts        []string
	skipPatterns []string
	external     bool
	verbose      bool
	cachePath    string
	cacheTTL     time.Duration
	format       string
	userAgent    string
	politeness   time.Duration
}

func run(opts runOptions) error {
	skipper, err := skip.Compile(opts.skipPatterns)
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		close(stop)
	}()

	var resultsCache *cache.Cache
	var resultCacheSeam crawl.ResultCache
	if opts.cachePath != "" {
		resultsCache, err = cache.Load(opts.cachePath)
		if err != nil {
			return fmt.Errorf("loading cache: %w", err)
		}
		resultCacheSeam = resultsCache.WithTTL(opts.cacheTTL)
	}

	coordinator, err := crawl.New(crawl.Config{
		Seeds:               opts.seeds,
		HostGlobs:           opts.hosts,
		ShouldCheckExternal: opts.external,
		Skipper:             skipper,
		Verbose:             opts.verbose,
		StopSignal:          stop,
		UserAgent:           opts.userAgent,
		PolitenessDelay:     opts.politeness,
		ResultCache:         resultCacheSeam,
		NewPool: func(workers int) crawl.WorkerPool {
			return pool.New(workers, opts.userAgent, defaultFetchTimeout)
		},
	})
	if err != nil {
		return err
	}

	result, err := coordinator.Crawl()
	if err != nil {
		return err
	}

	if resultsCache != nil {
		now := time.Now()
		for _, d := range result.Destinations {
			// Only pages fetched cleanly in this run are recorded; an entry
			// that closed a destination from the cache keeps its CheckedAt.
			if !d.WasTried || d.IsBroken || d.StatusDescription == "cached" {
				continue
			}
			resultsCache.Set(cache.Entry{
				URL:        d.URL.String(),
				StatusCode: d.StatusCode,
				IsBroken:   d.IsBroken,
				CheckedAt:  now,
			})
		}
		if err := resultsCache.Flush(); err != nil {
			return fmt.Errorf("flushing cache: %w", err)
		}
	}

	switch opts.format {
	case "json":
		return report.WriteJSON(os.Stdout, result, time.Now())
	default:
		return report.WriteText(os.Stdout, result)
	}
}
