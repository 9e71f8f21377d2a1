package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPageExtractsLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<head>
			<link rel="canonical" href="/canon" />
		 </head>
		 <body>
			<a href="/foo/bar">Foo Bar</a>
			<img src="/baz.png">
		</body>`))
	}))
	defer server.Close()

	client := New("test-agent", 5*time.Second)
	result := client.CheckPage(context.Background(), server.URL+"/")

	require.False(t, result.IsBroken)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Len(t, result.Links, 2)
	assert.Equal(t, server.URL+"/foo/bar", result.Links[0].Href)
	assert.Equal(t, "Foo Bar", result.Links[0].Anchor)
	assert.Equal(t, server.URL+"/canon", result.Links[1].Href)
}

func TestCheckPageMarksBrokenOn404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New("test-agent", 5*time.Second)
	result := client.CheckPage(context.Background(), server.URL+"/missing")

	assert.True(t, result.IsBroken)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Empty(t, result.Links)
}

func TestCheckPageMarksBrokenOnConnectionFailure(t *testing.T) {
	client := New("test-agent", 200*time.Millisecond)
	result := client.CheckPage(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.True(t, result.IsBroken)
	assert.Zero(t, result.StatusCode)
}

func TestCheckServerFindsRobotsTxt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New("test-agent", 5*time.Second)
	host := server.Listener.Addr().String()
	result := client.CheckServer(context.Background(), host)

	assert.False(t, result.DidNotConnect)
	assert.Contains(t, string(result.RobotsTxt), "Disallow: /private")
}

func TestCheckServerNoRobotsTxt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New("test-agent", 5*time.Second)
	host := server.Listener.Addr().String()
	result := client.CheckServer(context.Background(), host)

	assert.False(t, result.DidNotConnect)
	assert.Empty(t, result.RobotsTxt)
}
