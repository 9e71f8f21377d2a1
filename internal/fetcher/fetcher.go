// Package fetcher defines and implements the downloading and parsing
// utilities backing a worker, grounded on the teacher's fetcher package:
// the same github.com/PuerkitoBio/rehttp retry transport and
// github.com/PuerkitoBio/goquery link extraction, generalized to serve the
// two worker operations the crawl coordinator dispatches (spec.md §6).
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/rehttp"
)

const robotsTxtPath = "/robots.txt"

// LinkFound is a single anchor or canonical link discovered on a fetched
// page, in the raw form the HTML presented it (possibly relative,
// possibly carrying a fragment).
type LinkFound struct {
	Anchor string
	Href   string
}

// ServerCheck is the outcome of probing a host's robots.txt and basic
// reachability.
type ServerCheck struct {
	DidNotConnect bool
	RobotsTxt     []byte
}

// PageFetch is the outcome of fetching and parsing a single page. It never
// carries an error: connection and HTTP-level failures are represented as
// data (IsBroken, StatusDescription) so the coordinator can treat every
// outcome uniformly, per spec.md §7.
type PageFetch struct {
	StatusCode        int
	FinalURL          string
	ContentType       string
	StatusDescription string
	IsBroken          bool
	Links             []LinkFound
}

// Client fetches resources over HTTP. New builds one with the teacher's
// retry transport: exponential jitter backoff over temporary errors, up to
// 3 retries.
type Client struct {
	userAgent string
	client    *http.Client
}

// New creates a new Client specifying a timeout. By default it retries
// when a temporary error occurs for a specified number of times by
// applying an exponential backoff strategy, exactly as the teacher's
// fetcher.New did.
func New(userAgent string, timeout time.Duration) *Client {
	transport := rehttp.NewTransport(
		&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		rehttp.RetryAll(rehttp.RetryMaxRetries(3), rehttp.RetryTemporaryErr()),
		rehttp.ExpJitterDelay(1, 10*time.Second),
	)
	return &Client{
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.client.Do(req)
}

// CheckServer probes host for a robots.txt file and basic reachability, the
// worker-side half of spec.md's CheckServer request.
func (c *Client) CheckServer(ctx context.Context, host string) ServerCheck {
	target := "http://" + host + robotsTxtPath
	resp, err := c.get(ctx, target)
	if err != nil {
		return ServerCheck{DidNotConnect: true}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ServerCheck{}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ServerCheck{}
	}
	return ServerCheck{RobotsTxt: body}
}

// CheckPage fetches target and extracts its links, the worker-side half of
// spec.md's CheckPage request.
func (c *Client) CheckPage(ctx context.Context, target string) PageFetch {
	resp, err := c.get(ctx, target)
	if err != nil {
		return PageFetch{
			IsBroken:          true,
			StatusDescription: err.Error(),
		}
	}
	defer resp.Body.Close()

	result := PageFetch{
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		IsBroken:    resp.StatusCode >= http.StatusBadRequest,
	}
	result.StatusDescription = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		return result
	}

	links, err := extractLinks(result.FinalURL, resp.Body)
	if err != nil {
		result.IsBroken = true
		result.StatusDescription = err.Error()
		return result
	}
	result.Links = links
	return result
}

// extractLinks reads HTML from r and returns every anchor href and
// canonical link href found, resolved against baseURL. Grounded on the
// teacher's GoqueryParser.extractLinks.
func extractLinks(baseURL string, r io.Reader) ([]LinkFound, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var found []LinkFound
	collect := func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, ok := resolveHref(base, href)
		if !ok {
			return
		}
		anchor := strings.TrimSpace(s.Text())
		if anchor == "" {
			anchor = href
		}
		found = append(found, LinkFound{Anchor: anchor, Href: resolved})
	}
	doc.Find("a[href]").Each(collect)
	doc.Find("link[rel=canonical][href]").Each(collect)
	return found, nil
}

func resolveHref(base *url.URL, href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}
