package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is a Fetcher's position in its retry state machine.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Fetcher performs one logical fetch of a URL, retrying failed attempts
// according to its RetryPolicy.
//
// A Fetcher never returns an error to its owner. When every attempt has
// failed it completes with nil content, so owners must check for nil.
//
// Example:
//
//	f := fetch.New(transport, "images/hero.png", fetch.WithPreparer(prep))
//	f.OnProgress = func(p float64) { fmt.Printf("%.0f%%\n", p*100) }
//	data := f.Run(ctx) // nil after MaxRetries+1 failed attempts
type Fetcher struct {
	// URL is the URL as requested by the owner.
	URL string

	// PreparedURL is the URL actually fetched (base-resolved, versioned,
	// cache-busted). It is fixed for the lifetime of the Fetcher, so every
	// retry hits the same URL.
	PreparedURL string

	// Retries counts failed attempts that were retried. It starts at 0 and
	// only increments on failure.
	Retries int

	// OnComplete receives the content, or nil after a terminal failure.
	// Called at most once, and never after Detach.
	OnComplete func(content []byte)

	// OnProgress receives the fraction of the fetch completed, in [0,1].
	// Reported values never decrease, even across retries.
	OnProgress func(fraction float64)

	transport Transport
	policy    RetryPolicy
	logger    *slog.Logger

	mu       sync.Mutex
	state    State
	progress float64
	lastErr  error
	detached bool
	cancel   context.CancelFunc
	started  bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPolicy sets the retry policy.
func WithPolicy(p RetryPolicy) Option {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithPreparer computes PreparedURL through p.
func WithPreparer(p *Preparer) Option {
	return func(f *Fetcher) {
		f.PreparedURL = p.Prepare(f.URL)
	}
}

// WithLogger sets the logger used for retry and failure messages.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// New creates a Fetcher for url over transport.
func New(transport Transport, url string, opts ...Option) *Fetcher {
	f := &Fetcher{
		URL:         url,
		PreparedURL: url,
		transport:   transport,
		policy:      DefaultRetryPolicy(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Attempts returns the number of attempts made so far.
func (f *Fetcher) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateIdle {
		return 0
	}
	return f.Retries + 1
}

// Err returns the error of the last failed attempt, if any.
func (f *Fetcher) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Start runs the fetch in the background and delivers the outcome to
// OnComplete.
func (f *Fetcher) Start(ctx context.Context) {
	go func() {
		content := f.Run(ctx)

		f.mu.Lock()
		detached := f.detached
		f.mu.Unlock()

		if !detached && f.OnComplete != nil {
			f.OnComplete(content)
		}
	}()
}

// Detach stops delivery of completion and progress callbacks and cancels
// the in-flight attempt. An attempt whose transport ignores the context
// may still finish in the background; its result is discarded.
func (f *Fetcher) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = true
	if f.cancel != nil {
		f.cancel()
	}
}

// Run performs the fetch synchronously and returns the content, or nil
// once MaxRetries+1 attempts have failed or ctx is done.
//
// Run may only be called once per Fetcher.
func (f *Fetcher) Run(ctx context.Context) []byte {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		panic("fetch: Fetcher started twice")
	}
	f.started = true
	f.cancel = cancel
	if f.detached {
		cancel()
	}
	f.mu.Unlock()

	for {
		f.setState(StateFetching)

		content, err := f.attempt(ctx)
		if err == nil {
			f.setState(StateSucceeded)
			f.reportProgress(1)
			return content
		}

		f.mu.Lock()
		f.lastErr = err
		retry := f.Retries < f.policy.MaxRetries && ctx.Err() == nil
		if retry {
			f.Retries++
		}
		retries := f.Retries
		f.mu.Unlock()

		if !retry {
			f.setState(StateFailed)
			f.logger.Warn("fetch failed",
				"url", f.PreparedURL,
				"attempts", retries+1,
				"error", err)
			return nil
		}

		f.logger.Debug("retrying fetch",
			"url", f.PreparedURL,
			"attempt", retries+1,
			"max", f.policy.MaxRetries+1,
			"error", err)

		if !f.wait(ctx, f.policy.Delay(retries-1)) {
			f.setState(StateFailed)
			return nil
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context) ([]byte, error) {
	if f.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.policy.AttemptTimeout)
		defer cancel()
	}

	return f.transport.Fetch(ctx, f.PreparedURL, func(written, total int64) {
		if total > 0 {
			f.reportProgress(float64(written) / float64(total))
		}
	})
}

// reportProgress forwards p if it advances the high-water mark.
func (f *Fetcher) reportProgress(p float64) {
	if p > 1 {
		p = 1
	}

	f.mu.Lock()
	if p <= f.progress || f.detached {
		f.mu.Unlock()
		return
	}
	f.progress = p
	cb := f.OnProgress
	f.mu.Unlock()

	if cb != nil {
		cb(p)
	}
}

func (f *Fetcher) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// wait sleeps for d, returning false if ctx ends first.
func (f *Fetcher) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
