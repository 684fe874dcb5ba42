package loader

import (
	"fmt"

	"github.com/handiism/asset-loader/internal/model"
)

// LoadOptions configures one batch.
//
// The zero value runs every task at once, starts immediately and caches
// only descriptors that ask for it.
type LoadOptions struct {
	// Complete receives the batch results once every matched task is done.
	Complete func(results model.Results)

	// Progress receives the weighted fraction of the batch completed.
	// Values only increase.
	Progress func(fraction float64)

	// TaskDone receives each task's content as it finishes. content is nil
	// when the task failed.
	TaskDone func(content any, task Task)

	// CacheAll stores every result that has an id in the result cache.
	CacheAll bool

	// Sequential runs tasks one at a time in submission order.
	Sequential bool

	// Deferred leaves the batch unstarted until Handle.Start.
	Deferred bool

	// Type is the task type name given to descriptors that have none.
	Type string

	// Strict puts an *UnmatchedError in the results for each descriptor
	// no task type accepted, instead of dropping it.
	Strict bool

	// MaxConcurrent caps the tasks in flight. Zero uses the manager's
	// setting; Sequential overrides both.
	MaxConcurrent int

	nested bool
}

// inherit fills options a nested batch takes from its parent.
func (o LoadOptions) inherit(parent LoadOptions) LoadOptions {
	o.CacheAll = o.CacheAll || parent.CacheAll
	o.Sequential = o.Sequential || parent.Sequential
	o.Strict = o.Strict || parent.Strict
	if o.MaxConcurrent == 0 {
		o.MaxConcurrent = parent.MaxConcurrent
	}
	if o.Type == "" {
		o.Type = parent.Type
	}
	o.nested = true
	return o
}

// UnmatchedError stands in for the result of a descriptor that no task
// type accepted, in Strict mode.
type UnmatchedError struct {
	Descriptor Descriptor
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("no task type matched %s", e.Descriptor.label())
}
