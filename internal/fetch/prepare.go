package fetch

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/handiism/asset-loader/internal/versions"
)

// Preparer turns a descriptor URL into the URL actually fetched.
//
// It applies, in order:
//  1. resolution of relative URLs against BaseURL
//  2. a v=<n> parameter from Versions, keyed by the URL as written
//  3. a cb=<random> parameter when CacheBust is set
//
// A nil *Preparer returns URLs unchanged.
type Preparer struct {
	BaseURL   string
	Versions  versions.Table
	CacheBust bool
}

// Prepare returns the URL to fetch for rawURL.
func (p *Preparer) Prepare(rawURL string) string {
	if p == nil {
		return rawURL
	}

	prepared := ResolveURL(p.BaseURL, rawURL)
	prepared = p.Versions.Apply(prepared, rawURL)
	if p.CacheBust {
		prepared = versions.AddQuery(prepared, "cb", uuid.NewString())
	}
	return prepared
}

// ResolveURL resolves ref against base. Absolute refs, and refs that cannot
// be parsed, are returned unchanged. An empty base leaves ref alone.
func ResolveURL(base, ref string) string {
	if base == "" || ref == "" {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil || refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	if baseURL.Scheme == "" {
		// local base: a path, possibly naming a file
		dir := baseURL.Path
		if isFileName(dir) {
			dir = dir[:strings.LastIndex(dir, "/")+1]
		}
		if dir == "" {
			return strings.TrimPrefix(ref, "./")
		}
		return strings.TrimSuffix(dir, "/") + "/" + strings.TrimPrefix(ref, "./")
	}
	if !strings.HasSuffix(baseURL.Path, "/") && !isFileName(baseURL.Path) {
		baseURL.Path += "/"
	}
	return baseURL.ResolveReference(refURL).String()
}

// isFileName reports whether the last path segment looks like a file
// (has an extension) rather than a directory.
func isFileName(p string) bool {
	last := p[strings.LastIndex(p, "/")+1:]
	return strings.Contains(last, ".")
}
