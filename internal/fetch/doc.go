// Package fetch provides the retrying fetch primitive used by every
// network-backed task.
//
// # Fetcher
//
// A Fetcher moves through Idle → Fetching → Succeeded | Failed. A failed
// attempt is retried against the same prepared URL until the policy's
// MaxRetries is exhausted, after which the Fetcher completes with nil
// content. It never returns an error to its owner:
//
//	f := fetch.New(transport, url, fetch.WithPolicy(fetch.RetryPolicy{
//	    MaxRetries: 3,
//	    Cooldown:   200 * time.Millisecond,
//	    Exponent:   2,
//	}))
//	if data := f.Run(ctx); data == nil {
//	    // every attempt failed; f.Err() holds the last error
//	}
//
// # Transports
//
// A Transport performs a single attempt. The http and ioutils packages
// provide remote and local transports; Router chooses between them by URL
// scheme.
//
// # URL Preparation
//
// A Preparer resolves relative URLs against a base URL and adds
// version (v=) and cache-busting (cb=) query parameters.
package fetch
