package pool

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sturdyco/linkcheck/internal/crawl"
)

func TestCheckServerRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private"))
	}))
	defer server.Close()

	p := New(2, "test-agent", 2*time.Second)
	p.Spawn()
	defer p.Close()

	host := server.Listener.Addr().String()
	p.CheckServer(host)

	select {
	case update := <-p.ServerCheckResults():
		assert.Equal(t, host, update.Host)
		assert.False(t, update.DidNotConnect)
		assert.Contains(t, string(update.RobotsTxtContents), "Disallow")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server check result")
	}
}

func TestCheckPageRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/next">next</a>`))
	}))
	defer server.Close()

	p := New(2, "test-agent", 2*time.Second)
	p.Spawn()
	defer p.Close()

	d := crawl.NewDestination(server.URL + "/")
	p.CheckPage(d, 0)

	select {
	case res := <-p.FetchResults():
		require.NotNil(t, res.Checked)
		assert.False(t, res.Checked.IsBroken)
		require.Len(t, res.Links, 1)
		assert.Equal(t, server.URL+"/next", res.Links[0].Target.URL.String())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch result")
	}
}

func TestIdleAccounting(t *testing.T) {
	p := New(1, "test-agent", time.Second)
	p.Spawn()
	defer p.Close()

	assert.True(t, p.AnyIdle())
	assert.True(t, p.AllIdle())

	blockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer blockServer.Close()

	d := crawl.NewDestination(blockServer.URL + "/")
	p.CheckPage(d, 0)

	assert.True(t, p.AllBusy())
	assert.False(t, p.AnyIdle())

	<-p.FetchResults()
	assert.True(t, p.AllIdle())
}

func TestClosePreventsFurtherDispatch(t *testing.T) {
	p := New(1, "test-agent", time.Second)
	p.Spawn()
	p.Close()

	assert.True(t, p.IsShuttingDown())
	p.CheckServer("example.com") // must not panic or block
}
