package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ResourcePath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	defer server.Close()

	p := NewForURL(server.URL+ResourcePath, time.Second, zerolog.Nop())
	assert.True(t, p.Probe(context.Background()))
}

func TestProbe_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	p := NewForURL(server.URL+ResourcePath, time.Second, zerolog.Nop())
	assert.False(t, p.Probe(context.Background()))
}

func TestProbe_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	p := New(port, time.Second, zerolog.Nop())
	assert.False(t, p.Probe(context.Background()))
}

func TestProbe_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	p := NewForURL(server.URL+ResourcePath, 50*time.Millisecond, zerolog.Nop())

	start := time.Now()
	assert.False(t, p.Probe(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProbe_MalformedURL(t *testing.T) {
	p := NewForURL("http://[::1", time.Second, zerolog.Nop())
	assert.False(t, p.Probe(context.Background()))
}
