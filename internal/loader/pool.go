package loader

import (
	"fmt"
	"sync"
)

// pool is a free list of idle orchestrators.
type pool struct {
	mu        sync.Mutex
	free      []*Orchestrator
	allocated int
	newFn     func() *Orchestrator
}

func newPool(newFn func() *Orchestrator) *pool {
	return &pool{newFn: newFn}
}

// get returns an idle orchestrator, allocating one if the list is empty.
func (p *pool) get() *Orchestrator {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		o := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return o
	}
	p.allocated++
	return p.newFn()
}

// put returns o to the list. o must be idle.
func (p *pool) put(o *Orchestrator) {
	if s := o.State(); s != StateIdle {
		panic(fmt.Sprintf("loader: pooling %s orchestrator", s))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, o)
}

// stats returns the number of idle and allocated orchestrators.
func (p *pool) stats() (idle, allocated int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free), p.allocated
}
