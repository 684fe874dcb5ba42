package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	body := strings.Repeat("x", 4096)
	var gotUA, gotOrigin string

	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotOrigin = r.Header.Get("Origin")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()), WithUserAgent("test-agent"), WithOrigin("https://game.example.com"))

	var lastWritten int64
	data, err := client.Fetch(context.Background(), srv.URL+"/a.txt", func(written, total int64) {
		assert.GreaterOrEqual(t, written, lastWritten)
		lastWritten = written
	})
	require.NoError(t, err)

	assert.Equal(t, body, string(data))
	assert.Equal(t, int64(len(body)), lastWritten)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "https://game.example.com", gotOrigin)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		nethttp.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()))
	_, err := client.Get(context.Background(), srv.URL+"/missing.png")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, nethttp.StatusNotFound, statusErr.StatusCode)
}

func TestClient_NoOriginByDefault(t *testing.T) {
	var gotOrigin string
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotOrigin = r.Header.Get("Origin")
	}))
	defer srv.Close()

	client := NewClient(WithHTTPClient(srv.Client()))
	_, err := client.GetString(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, gotOrigin)
}
