package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/handiism/asset-loader/internal/config"
	"github.com/handiism/asset-loader/internal/logger"
	"github.com/handiism/asset-loader/internal/model"
	"github.com/stretchr/testify/require"
)

// fakeTransport serves files from memory and records every attempt.
type fakeTransport struct {
	mu          sync.Mutex
	files       map[string][]byte
	delays      map[string]time.Duration
	block       map[string]chan struct{}
	calls       map[string]int
	order       []string
	inFlight    int
	maxInFlight int
}

func newFakeTransport(files map[string][]byte) *fakeTransport {
	return &fakeTransport{
		files:  files,
		delays: make(map[string]time.Duration),
		block:  make(map[string]chan struct{}),
		calls:  make(map[string]int),
	}
}

func (f *fakeTransport) Fetch(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	f.order = append(f.order, url)
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	data, ok := f.files[url]
	delay := f.delays[url]
	started := f.block[url]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if started != nil {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("not found: %s", url)
	}
	if onProgress != nil {
		onProgress(int64(len(data))/2, int64(len(data)))
		onProgress(int64(len(data)), int64(len(data)))
	}
	return data, nil
}

func (f *fakeTransport) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeTransport) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func newTestManager(t *testing.T, ft *fakeTransport, modify ...func(s *config.Settings)) *Manager {
	t.Helper()

	settings := config.DefaultSettings()
	for _, fn := range modify {
		fn(settings)
	}
	m, err := New(settings, WithTransport(ft), WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func loadAndWait(t *testing.T, m *Manager, assets any, opts LoadOptions) model.Results {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := m.LoadAndWait(ctx, assets, opts)
	require.NoError(t, err)
	return results
}

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
