package uriglob

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestMatchesHost(t *testing.T) {
	g, err := Compile([]string{"example.com", "*.docs.example.com"})
	require.NoError(t, err)

	assert.True(t, g.Matches(mustParse(t, "http://example.com/foo")))
	assert.True(t, g.Matches(mustParse(t, "http://sub.docs.example.com/bar")))
	assert.False(t, g.Matches(mustParse(t, "http://other.com/")))
}

func TestMatchesHostAndPath(t *testing.T) {
	g, err := Compile([]string{"example.com/docs/*"})
	require.NoError(t, err)

	assert.True(t, g.Matches(mustParse(t, "http://example.com/docs/page")))
	assert.False(t, g.Matches(mustParse(t, "http://example.com/blog/page")))
}

func TestEmptyPatternSetMatchesNothing(t *testing.T) {
	g, err := Compile(nil)
	require.NoError(t, err)
	assert.False(t, g.Matches(mustParse(t, "http://example.com/")))
}

func TestCompileInvalidPattern(t *testing.T) {
	_, err := Compile([]string{"["})
	assert.Error(t, err)
}
