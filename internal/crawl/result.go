package crawl

// CrawlResult is the immutable final tuple of links and destinations
// produced by a crawl.
type CrawlResult struct {
	Links        []*Link
	Destinations []*Destination
}
