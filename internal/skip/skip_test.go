package skip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipsMatchingPattern(t *testing.T) {
	s, err := Compile([]string{"*/ignore/*"})
	require.NoError(t, err)

	assert.True(t, s.Skips("http://a/ignore/me"))
	assert.False(t, s.Skips("http://a/keep/me"))
}

func TestExplainNamesPattern(t *testing.T) {
	s, err := Compile([]string{"*.pdf"})
	require.NoError(t, err)

	assert.Equal(t, `matched skip pattern "*.pdf"`, s.Explain("http://a/doc.pdf"))
	assert.Equal(t, "", s.Explain("http://a/doc.html"))
}

func TestEmptySkipperSkipsNothing(t *testing.T) {
	s, err := Compile(nil)
	require.NoError(t, err)
	assert.False(t, s.Skips("http://a/anything"))
}
