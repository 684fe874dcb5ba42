package loader

import (
	"context"
	"sync"

	"github.com/handiism/asset-loader/internal/model"
)

// Handle is the caller's view of one batch.
//
// A Handle stays valid after its orchestrator has been reused for another
// batch: Start and Stop check the run generation and do nothing for a run
// that has ended.
type Handle struct {
	o          *Orchestrator
	generation uint64
	runID      string
	ctx        context.Context
	unmatched  []Descriptor

	done    chan struct{}
	mu      sync.Mutex
	results model.Results
	err     error
}

// Start begins a batch loaded with Deferred set. It is a no-op otherwise.
func (h *Handle) Start() {
	ctx := h.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	h.o.start(ctx, h.generation)
}

// Stop abandons the batch. In-flight fetches are cancelled where the
// transport allows; whatever they produce is discarded. Complete is not
// called and Wait returns ErrStopped.
func (h *Handle) Stop() {
	h.o.stop(h.generation)
}

// Done is closed when the batch has completed or stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the batch ends or ctx is done.
func (h *Handle) Wait(ctx context.Context) (model.Results, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return h.Results()
	}
}

// Results returns the batch results, or nil before the batch has ended.
func (h *Handle) Results() (model.Results, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.results, h.err
}

// Unmatched returns the descriptors no task type accepted.
func (h *Handle) Unmatched() []Descriptor {
	return h.unmatched
}

// ID returns the unique id of the run.
func (h *Handle) ID() string {
	return h.runID
}

// Generation returns the orchestrator generation the run was set up in.
func (h *Handle) Generation() uint64 {
	return h.generation
}

func (h *Handle) finish(results model.Results, err error) {
	h.mu.Lock()
	h.results = results
	h.err = err
	h.mu.Unlock()
	close(h.done)
}
