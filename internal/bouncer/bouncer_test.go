package bouncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const robotsTxt = `User-agent: *
Disallow: */private
Crawl-delay: 2`

func TestParseDisallow(t *testing.T) {
	b := Parse([]byte(robotsTxt), "test-agent")
	assert.False(t, b.Allows("/private"))
	assert.True(t, b.Allows("/public"))
	assert.Equal(t, 2*time.Second, b.CrawlDelay())
}

func TestParseInvalidBodyIsPermissive(t *testing.T) {
	b := Parse([]byte("\x00\x01not robots"), "test-agent")
	assert.True(t, b.Allows("/anything"))
}

func TestNoneIsPermissive(t *testing.T) {
	b := None()
	assert.True(t, b.Allows("/anything"))
	assert.Equal(t, time.Duration(0), b.CrawlDelay())
}

func TestNilBouncerIsPermissive(t *testing.T) {
	var b *Bouncer
	assert.True(t, b.Allows("/anything"))
}
