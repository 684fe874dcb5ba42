package loader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/handiism/asset-loader/internal/model"
)

// ErrStopped is returned by Handle.Wait for a batch that was stopped
// before it completed.
var ErrStopped = errors.New("load stopped")

// State is an Orchestrator's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// slot is one submitted descriptor. task is nil when nothing matched.
type slot struct {
	desc Descriptor
	key  string
	task Task
}

type eventKind int

const (
	eventDone eventKind = iota
	eventProgress
)

type event struct {
	kind     eventKind
	slot     int
	out      Output
	progress float64
}

// Orchestrator runs one batch at a time and returns itself to the manager's
// pool when the batch ends.
//
// All batch callbacks run on the orchestrator's event loop goroutine, one
// at a time. Tasks report back over a channel owned by the current run, so
// a task that outlives its run cannot reach the next one.
type Orchestrator struct {
	m *Manager

	mu         sync.Mutex
	state      State
	generation uint64
	runID      string
	slots      []*slot
	matched    []int
	keyed      bool
	opts       LoadOptions
	handle     *Handle
	events     chan event
	quit       chan struct{}
	cancel     context.CancelFunc
	started    bool
}

func newOrchestrator(m *Manager) *Orchestrator {
	return &Orchestrator{m: m}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Generation returns the number of runs set up so far.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

// setup matches descs against the registry and prepares a run. It panics
// if the orchestrator is not idle.
func (o *Orchestrator) setup(descs []Descriptor, opts LoadOptions) *Handle {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateIdle {
		panic(fmt.Sprintf("loader: setup on %s orchestrator", o.state))
	}
	o.generation++
	o.state = StateRunning
	o.runID = uuid.NewString()
	o.opts = opts

	env := &batchEnv{m: o.m, opts: opts}
	var unmatched []Descriptor
	for i, d := range descs {
		if d.ID != "" {
			o.keyed = true
		}
		if d.Type == "" {
			d.Type = opts.Type
		}
		d.resolveVariant(o.m.sizes)

		s := &slot{desc: d, key: d.ID}
		if s.key == "" {
			s.key = strconv.Itoa(i)
		}
		if tt, ok := o.m.registry.Match(&s.desc); ok {
			s.task = tt.New(&s.desc, env)
			o.matched = append(o.matched, i)
		} else {
			o.m.logger.Warn("no task type matched descriptor",
				"id", d.ID,
				"url", d.URL,
				"type", d.Type)
			unmatched = append(unmatched, d)
		}
		o.slots = append(o.slots, s)
	}

	o.events = make(chan event)
	o.quit = make(chan struct{})
	o.handle = &Handle{
		o:          o,
		generation: o.generation,
		runID:      o.runID,
		done:       make(chan struct{}),
		unmatched:  unmatched,
	}
	return o.handle
}

// start launches the event loop of run gen. Later calls, and calls for a
// stale generation, do nothing.
func (o *Orchestrator) start(parent context.Context, gen uint64) {
	o.mu.Lock()
	if o.generation != gen || o.state != StateRunning || o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	ctx, cancel := context.WithCancel(parent)
	o.cancel = cancel
	o.mu.Unlock()

	go o.loop(ctx, gen)
}

// stop ends run gen without calling Complete. Tasks are cancelled through
// their context; anything they report afterwards is dropped.
func (o *Orchestrator) stop(gen uint64) {
	o.mu.Lock()
	if o.generation != gen || o.state != StateRunning {
		o.mu.Unlock()
		return
	}
	if o.started {
		cancel := o.cancel
		o.mu.Unlock()
		cancel()
		return
	}
	o.mu.Unlock()
	o.finish(gen, nil, ErrStopped)
}

func (o *Orchestrator) loop(ctx context.Context, gen uint64) {
	n := len(o.matched)
	limit := o.limit(n)

	results := make([]any, len(o.slots))
	partial := make([]float64, len(o.slots))
	finished := make([]bool, len(o.slots))

	total := 0.0
	for _, i := range o.matched {
		total += o.slots[i].desc.weight()
	}

	next, running, doneCount := 0, 0, 0
	reported := 0.0

	launch := func() {
		for running < limit && next < n {
			o.launch(ctx, o.matched[next])
			next++
			running++
		}
	}
	launch()

	for doneCount < n {
		select {
		case <-ctx.Done():
			o.finish(gen, nil, ErrStopped)
			return

		case ev := <-o.events:
			if ctx.Err() != nil {
				o.finish(gen, nil, ErrStopped)
				return
			}
			if finished[ev.slot] {
				continue
			}
			switch ev.kind {
			case eventProgress:
				p := min(ev.progress, 1)
				if p <= partial[ev.slot] {
					continue
				}
				partial[ev.slot] = p
			case eventDone:
				finished[ev.slot] = true
				partial[ev.slot] = 1
				doneCount++
				running--
				results[ev.slot] = o.taskDone(ev.slot, ev.out)
			}

			sum := 0.0
			for _, i := range o.matched {
				sum += o.slots[i].desc.weight() * partial[i]
			}
			if p := min(sum/total, 1); p > reported {
				reported = p
				if o.opts.Progress != nil {
					o.opts.Progress(p)
				}
			}

			if ev.kind == eventDone {
				launch()
			}
		}
	}

	o.finish(gen, o.build(results), nil)
}

// limit returns how many tasks may run at once.
func (o *Orchestrator) limit(n int) int {
	switch {
	case o.opts.Sequential:
		return 1
	case o.opts.MaxConcurrent > 0:
		return o.opts.MaxConcurrent
	case o.m.settings.MaxConcurrentTasks > 0:
		return o.m.settings.MaxConcurrentTasks
	}
	return max(n, 1)
}

// launch starts the task in slot i on its own goroutine.
func (o *Orchestrator) launch(ctx context.Context, i int) {
	events, quit := o.events, o.quit
	send := func(ev event) {
		select {
		case events <- ev:
		case <-quit:
		}
	}

	var once sync.Once
	done := func(out Output) {
		once.Do(func() {
			send(event{kind: eventDone, slot: i, out: out})
		})
	}
	progress := func(p float64) {
		send(event{kind: eventProgress, slot: i, progress: p})
	}

	go o.slots[i].task.Start(ctx, done, progress)
}

// taskDone records one finished task and returns its content.
func (o *Orchestrator) taskDone(i int, out Output) any {
	s := o.slots[i]
	content := out.Content

	if a, ok := content.(model.Attacher); ok {
		a.Attach(s.desc.ID, s.desc.Data)
	}

	if content != nil && s.desc.ID != "" && (o.opts.CacheAll || s.desc.Cache) {
		if err := o.m.cache.Write(s.desc.ID, content); err != nil {
			o.m.logger.Warn("failed to cache result", "id", s.desc.ID, "error", err)
		}
	}

	if o.opts.TaskDone != nil {
		o.opts.TaskDone(content, s.task)
	}

	if !o.opts.nested {
		if content == nil {
			o.m.emit(Event{Message: fmt.Sprintf("Failed: %s", s.desc.label()), Level: LevelWarning, ID: s.desc.ID})
		} else {
			o.m.emit(Event{Message: fmt.Sprintf("Loaded: %s", s.desc.label()), Level: LevelVerbose, ID: s.desc.ID})
		}
	}
	return content
}

// build assembles the batch results: a map when any descriptor had an id,
// otherwise a list of the matched results in submission order.
func (o *Orchestrator) build(results []any) model.Results {
	if o.keyed {
		m := make(model.ResultMap, len(o.slots))
		for i, s := range o.slots {
			switch {
			case s.task != nil:
				m[s.key] = results[i]
			case o.opts.Strict:
				m[s.key] = &UnmatchedError{Descriptor: s.desc}
			}
		}
		return m
	}

	list := make(model.ResultList, 0, len(o.slots))
	for i, s := range o.slots {
		switch {
		case s.task != nil:
			list = append(list, results[i])
		case o.opts.Strict:
			list = append(list, &UnmatchedError{Descriptor: s.desc})
		}
	}
	return list
}

// finish ends run gen: Complete fires for a normal end, the orchestrator
// is reset and pooled, and then the handle is released.
func (o *Orchestrator) finish(gen uint64, results model.Results, err error) {
	o.mu.Lock()
	if o.generation != gen || o.state != StateRunning {
		o.mu.Unlock()
		return
	}
	o.state = StateComplete
	close(o.quit)
	if o.cancel != nil {
		o.cancel()
	}
	h := o.handle
	opts := o.opts
	o.mu.Unlock()

	if err == nil {
		if opts.Complete != nil {
			opts.Complete(results)
		}
		if !opts.nested {
			o.m.emit(Event{Message: fmt.Sprintf("Loaded %d assets", results.Len()), Level: LevelSuccess})
		}
	}

	o.reset()
	o.m.pool.put(o)
	h.finish(results, err)
}

// reset returns the orchestrator to Idle, dropping every reference to the
// finished run.
func (o *Orchestrator) reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.runID = ""
	o.slots = nil
	o.matched = nil
	o.keyed = false
	o.opts = LoadOptions{}
	o.handle = nil
	o.events = nil
	o.quit = nil
	o.cancel = nil
	o.started = false
}
