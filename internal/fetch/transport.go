package fetch

import (
	"context"
	"net/url"
	"strings"
)

// Transport performs one fetch attempt. It reports byte progress through
// onProgress (which may be nil) and returns the full content or an error.
// Retrying is the Fetcher's job, not the Transport's.
type Transport interface {
	Fetch(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error)

// Fetch implements Transport.
func (f TransportFunc) Fetch(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error) {
	return f(ctx, url, onProgress)
}

// Router dispatches to a Transport by URL scheme.
//
// URLs without a scheme (plain paths) and file:// URLs go to Files.
// Everything else goes to Remote.
//
// Example:
//
//	router := &fetch.Router{
//	    Remote: http.NewClient(),
//	    Files:  &ioutils.FileTransport{Root: "./assets"},
//	}
type Router struct {
	Remote Transport
	Files  Transport
}

// Fetch implements Transport.
func (r *Router) Fetch(ctx context.Context, rawURL string, onProgress func(written, total int64)) ([]byte, error) {
	if r.Files != nil && isLocal(rawURL) {
		return r.Files.Fetch(ctx, rawURL, onProgress)
	}
	return r.Remote.Fetch(ctx, rawURL, onProgress)
}

func isLocal(rawURL string) bool {
	if strings.HasPrefix(rawURL, "file:") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	// single-letter schemes are Windows drive letters
	return u.Scheme == "" || len(u.Scheme) == 1
}
