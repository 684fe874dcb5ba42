package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/asset-loader/internal/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetcher_RetryCeiling(t *testing.T) {
	var attempts atomic.Int32
	transport := TransportFunc(func(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
		attempts.Add(1)
		return nil, errBoom
	})

	f := New(transport, "a.png", WithLogger(quietLogger()))

	var mu sync.Mutex
	completions := 0
	var got []byte
	done := make(chan struct{})
	f.OnComplete = func(content []byte) {
		mu.Lock()
		completions++
		got = content
		mu.Unlock()
		close(done)
	}
	f.Start(context.Background())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetcher never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, completions)
	assert.Nil(t, got)
	assert.Equal(t, int32(DefaultMaxRetries+1), attempts.Load())
	assert.Equal(t, DefaultMaxRetries, f.Retries)
	assert.Equal(t, StateFailed, f.State())
	assert.ErrorIs(t, f.Err(), errBoom)
}

func TestFetcher_SucceedsAfterRetry(t *testing.T) {
	var attempts atomic.Int32
	transport := TransportFunc(func(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
		if attempts.Add(1) < 3 {
			return nil, errBoom
		}
		return []byte("ok"), nil
	})

	f := New(transport, "a.json", WithLogger(quietLogger()))
	data := f.Run(context.Background())

	assert.Equal(t, "ok", string(data))
	assert.Equal(t, 2, f.Retries)
	assert.Equal(t, 3, f.Attempts())
	assert.Equal(t, StateSucceeded, f.State())
}

func TestFetcher_SameURLOnRetry(t *testing.T) {
	var urls []string
	transport := TransportFunc(func(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
		urls = append(urls, url)
		return nil, errBoom
	})

	prep := &Preparer{CacheBust: true}
	f := New(transport, "a.png", WithPreparer(prep), WithLogger(quietLogger()),
		WithPolicy(RetryPolicy{MaxRetries: 2}))
	f.Run(context.Background())

	require.Len(t, urls, 3)
	assert.Equal(t, urls[0], urls[1])
	assert.Equal(t, urls[0], urls[2])
	assert.Contains(t, urls[0], "cb=")
}

func TestFetcher_ProgressMonotonic(t *testing.T) {
	var attempts atomic.Int32
	transport := TransportFunc(func(ctx context.Context, url string, onProgress func(int64, int64)) ([]byte, error) {
		n := attempts.Add(1)
		onProgress(30, 100)
		if n == 1 {
			onProgress(60, 100)
			return nil, errBoom
		}
		onProgress(80, 100)
		onProgress(150, 100)
		return []byte("done"), nil
	})

	var reported []float64
	f := New(transport, "a.mp3", WithLogger(quietLogger()))
	f.OnProgress = func(p float64) { reported = append(reported, p) }
	f.Run(context.Background())

	assert.Equal(t, []float64{0.3, 0.6, 0.8, 1}, reported)
}

func TestFetcher_DetachSuppressesCompletion(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	transport := TransportFunc(func(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
		defer close(finished)
		<-release
		return []byte("late"), nil
	})

	f := New(transport, "slow.png", WithLogger(quietLogger()))
	var called atomic.Bool
	f.OnComplete = func([]byte) { called.Store(true) }
	f.Start(context.Background())

	f.Detach()
	close(release)
	<-finished
	time.Sleep(20 * time.Millisecond)

	assert.False(t, called.Load())
}

func TestFetcher_ContextCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts atomic.Int32
	transport := TransportFunc(func(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
		attempts.Add(1)
		cancel()
		return nil, ctx.Err()
	})

	f := New(transport, "a.png", WithLogger(quietLogger()))
	assert.Nil(t, f.Run(ctx))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetcher_AttemptTimeout(t *testing.T) {
	transport := TransportFunc(func(ctx context.Context, url string, _ func(int64, int64)) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	f := New(transport, "hang.png", WithLogger(quietLogger()),
		WithPolicy(RetryPolicy{MaxRetries: 1, AttemptTimeout: 10 * time.Millisecond}))

	start := time.Now()
	assert.Nil(t, f.Run(context.Background()))
	assert.Equal(t, 2, f.Attempts())
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, f.Err(), context.DeadlineExceeded)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{Cooldown: 100 * time.Millisecond, Exponent: 2}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, time.Duration(0), DefaultRetryPolicy().Delay(5))
}

func TestPreparer(t *testing.T) {
	prep := &Preparer{
		BaseURL:  "https://cdn.example.com/game",
		Versions: versions.Table{"images/hero.png": 4},
	}

	assert.Equal(t, "https://cdn.example.com/game/images/hero.png?v=4", prep.Prepare("images/hero.png"))
	assert.Equal(t, "https://other.example.com/x.png", prep.Prepare("https://other.example.com/x.png"))

	var nilPrep *Preparer
	assert.Equal(t, "a.png", nilPrep.Prepare("a.png"))
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://cdn.example.com/lists/music.m3u", "track1.mp3", "https://cdn.example.com/lists/track1.mp3"},
		{"https://cdn.example.com/assets", "a.png", "https://cdn.example.com/assets/a.png"},
		{"assets/sheet.json", "sheet.png", "assets/sheet.png"},
		{"assets", "./sheet.png", "assets/sheet.png"},
		{"sheet.json", "sheet.png", "sheet.png"},
		{"", "x.png", "x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveURL(tt.base, tt.ref))
		})
	}
}

func TestRouter(t *testing.T) {
	var hit string
	remote := TransportFunc(func(context.Context, string, func(int64, int64)) ([]byte, error) {
		hit = "remote"
		return nil, nil
	})
	files := TransportFunc(func(context.Context, string, func(int64, int64)) ([]byte, error) {
		hit = "files"
		return nil, nil
	})
	router := &Router{Remote: remote, Files: files}

	for url, want := range map[string]string{
		"https://cdn.example.com/a.png": "remote",
		"file:///tmp/a.png":             "files",
		"assets/a.png":                  "files",
		`C:\assets\a.png`:               "files",
	} {
		_, _ = router.Fetch(context.Background(), url, nil)
		assert.Equal(t, want, hit, url)
	}
}
