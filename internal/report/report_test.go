package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sturdyco/linkcheck/internal/crawl"
)

func sampleResult() *crawl.CrawlResult {
	ok := crawl.NewDestination("http://a/")
	ok.WasTried = true
	ok.StatusCode = 200

	broken := crawl.NewDestination("http://a/missing")
	broken.WasTried = true
	broken.StatusCode = 404
	broken.IsBroken = true

	link := &crawl.Link{Origin: ok, Target: broken, Anchor: "missing"}
	return &crawl.CrawlResult{Destinations: []*crawl.Destination{ok, broken}, Links: []*crawl.Link{link}}
}

func TestWriteJSONListsBrokenFirst(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult(), time.Now()))

	var s summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
	require.Len(t, s.Destinations, 2)
	assert.True(t, s.Destinations[0].IsBroken)
	assert.Equal(t, 1, s.BrokenCount)
	require.Len(t, s.Links, 1)
	assert.Equal(t, "http://a/missing", s.Links[0].Target)
}

func TestWriteTextIncludesSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "2 checked, 1 broken")
	assert.Contains(t, buf.String(), "http://a/missing")
}
