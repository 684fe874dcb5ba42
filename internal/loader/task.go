package loader

import (
	"context"
	"log/slog"

	"github.com/handiism/asset-loader/internal/fetch"
	ioutils "github.com/handiism/asset-loader/internal/io"
	"github.com/handiism/asset-loader/internal/model"
	"github.com/handiism/asset-loader/internal/size"
)

// Output is what a task hands back when it is done.
type Output struct {
	// Content is the synthesized result, nil on failure.
	Content any

	// Raw holds the bytes of every sub-fetch, in request order. A failed
	// sub-fetch is nil.
	Raw [][]byte
}

// DoneFunc reports a task's outcome. Only the first call counts.
type DoneFunc func(out Output)

// ProgressFunc reports a task's own progress in [0,1].
type ProgressFunc func(fraction float64)

// Task resolves one descriptor into a result.
//
// The orchestrator calls Start on its own goroutine, so Start may block.
// It must call done exactly once, including when ctx is cancelled.
type Task interface {
	Descriptor() *Descriptor
	Start(ctx context.Context, done DoneFunc, progress ProgressFunc)
}

// Env is what tasks may use from the loader.
type Env interface {
	// RunBatch runs a nested batch on a fresh orchestrator and calls
	// complete with its results. complete is not called if the batch is
	// stopped.
	RunBatch(ctx context.Context, assets []Descriptor, opts LoadOptions, complete func(model.Results))

	// NewFetcher returns a Fetcher for url, with the loader's transport,
	// URL preparation and retry policy.
	NewFetcher(url string) *fetch.Fetcher

	Images() *ioutils.ImageService
	Sizes() *size.Resolver
	Logger() *slog.Logger
}
