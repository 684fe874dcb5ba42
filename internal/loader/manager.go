package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/handiism/asset-loader/internal/cache"
	"github.com/handiism/asset-loader/internal/config"
	"github.com/handiism/asset-loader/internal/fetch"
	"github.com/handiism/asset-loader/internal/http"
	ioutils "github.com/handiism/asset-loader/internal/io"
	"github.com/handiism/asset-loader/internal/model"
	"github.com/handiism/asset-loader/internal/size"
	"github.com/handiism/asset-loader/internal/versions"
)

// ErrUnsupportedAssets is returned by Load for an assets value of a type
// it cannot turn into descriptors.
var ErrUnsupportedAssets = errors.New("unsupported assets value")

// Level indicates the severity/type of an Event.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event is a human-readable load update for front ends.
type Event struct {
	Message string
	Level   Level

	// ID is the descriptor id the event is about, if any.
	ID string
}

// Manager owns the task registry, result cache, size resolver and
// orchestrator pool. Create one per application and pass it to whatever
// needs to load assets.
//
// Example:
//
//	mgr, err := loader.New(settings, loader.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	mgr.Refresh(1280, 720)
//	results, err := mgr.LoadAndWait(ctx, []loader.Descriptor{
//	    {ID: "hero", URL: "images/hero.png", Cache: true},
//	    {ID: "level", URL: "levels/1.json"},
//	}, loader.LoadOptions{})
type Manager struct {
	settings  *config.Settings
	registry  *Registry
	cache     *cache.Cache
	sizes     *size.Resolver
	pool      *pool
	transport fetch.Transport
	preparer  *fetch.Preparer
	policy    fetch.RetryPolicy
	images    *ioutils.ImageService
	logger    *slog.Logger
	onEvent   func(Event)

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithTransport replaces the default HTTP-and-files transport.
func WithTransport(t fetch.Transport) Option {
	return func(m *Manager) {
		m.transport = t
	}
}

// WithSizes replaces the size resolver built from the settings.
func WithSizes(r *size.Resolver) Option {
	return func(m *Manager) {
		m.sizes = r
	}
}

// WithEventHandler receives load updates for top-level batches.
func WithEventHandler(fn func(Event)) Option {
	return func(m *Manager) {
		m.onEvent = fn
	}
}

// New creates a Manager from settings. Nil settings use the defaults.
func New(settings *config.Settings, opts ...Option) (*Manager, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		settings: settings,
		policy:   settings.ToRetryPolicy(),
		images:   ioutils.NewImageService(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.transport == nil {
		m.transport = defaultTransport(settings)
	}
	if m.sizes == nil {
		if defs := settings.ToSizeDefinitions(); len(defs) > 0 {
			m.sizes = size.FromDefinitions(defs)
		} else {
			m.sizes = size.NewDefault()
		}
	}

	var table versions.Table
	if settings.VersionsFile != "" {
		var err error
		table, err = versions.LoadFile(settings.VersionsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load versions: %w", err)
		}
	}
	m.preparer = &fetch.Preparer{
		BaseURL:   settings.BaseURL,
		Versions:  table,
		CacheBust: settings.CacheBust,
	}

	m.cache = cache.New(m.logger)
	m.registry = NewRegistry(m.logger)
	if err := RegisterBuiltins(m.registry); err != nil {
		return nil, err
	}
	m.pool = newPool(func() *Orchestrator { return newOrchestrator(m) })
	m.ctx, m.cancel = context.WithCancel(context.Background())

	return m, nil
}

func defaultTransport(s *config.Settings) fetch.Transport {
	opts := []http.Option{
		http.WithTimeout(s.RequestTimeoutDuration()),
		http.WithUserAgent(s.UserAgent),
	}
	if s.CrossOrigin {
		origin := s.Origin
		if origin == "" {
			origin = s.BaseURL
		}
		opts = append(opts, http.WithOrigin(origin))
	}
	return &fetch.Router{
		Remote: http.NewClient(opts...),
		Files:  &ioutils.FileTransport{Root: s.AssetRoot},
	}
}

// Load submits a batch and returns its handle.
//
// assets is a Descriptor, a *Descriptor, a slice of either, a URL string,
// a []string of URLs, or a map from id to Descriptor, *Descriptor or URL.
// Map entries get their key as ID and are submitted in key order.
//
// Complete fires exactly once, on the batch's event loop, even for an
// empty batch.
func (m *Manager) Load(assets any, opts LoadOptions) (*Handle, error) {
	descs, err := normalizeAssets(assets)
	if err != nil {
		return nil, err
	}

	o := m.pool.get()
	h := o.setup(descs, opts)
	h.ctx = m.ctx

	m.emit(Event{Message: fmt.Sprintf("Loading %d assets", len(descs)), Level: LevelInfo})
	for _, d := range h.unmatched {
		m.emit(Event{Message: fmt.Sprintf("No task type for %s", d.label()), Level: LevelWarning, ID: d.ID})
	}

	if !opts.Deferred {
		h.Start()
	}
	return h, nil
}

// LoadAndWait loads assets and blocks until the batch completes. If ctx
// ends first the batch is stopped and ctx's error returned.
func (m *Manager) LoadAndWait(ctx context.Context, assets any, opts LoadOptions) (model.Results, error) {
	opts.Deferred = false
	h, err := m.Load(assets, opts)
	if err != nil {
		return nil, err
	}
	results, err := h.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		h.Stop()
	}
	return results, err
}

// Unload removes cached results and returns how many were removed.
//
// refs is an id, a Descriptor or anything with an AssetID method, or a
// slice or id-keyed map of those.
func (m *Manager) Unload(refs any) int {
	n := 0
	switch r := refs.(type) {
	case []string:
		for _, id := range r {
			n += m.unloadOne(id)
		}
	case []Descriptor:
		for _, d := range r {
			n += m.unloadOne(d)
		}
	case []*Descriptor:
		for _, d := range r {
			if d != nil {
				n += m.unloadOne(d.ID)
			}
		}
	case []any:
		for _, v := range r {
			n += m.Unload(v)
		}
	case map[string]Descriptor:
		for id := range r {
			n += m.unloadOne(id)
		}
	case *Descriptor:
		if r != nil {
			n += m.unloadOne(r.ID)
		}
	default:
		n += m.unloadOne(refs)
	}
	return n
}

func (m *Manager) unloadOne(ref any) int {
	if m.cache.Delete(ref) {
		return 1
	}
	return 0
}

// GetCached returns the cached result for id, or nil.
func (m *Manager) GetCached(id string) any {
	v, _ := m.cache.Read(id)
	return v
}

// Refresh recomputes the active size variant for a viewport and returns
// its name. Later batches resolve variants against it.
func (m *Manager) Refresh(width, height int) string {
	return m.sizes.Refresh(width, height)
}

// DefineSize registers or replaces a size variant.
func (m *Manager) DefineSize(name string, maxBound int, scale float64, fallbacks []string) {
	m.sizes.Define(name, maxBound, scale, fallbacks)
}

// Register adds a task type.
func (m *Manager) Register(tt TaskType, priority int) error {
	return m.registry.Register(tt, priority)
}

// Registry returns the task type registry.
func (m *Manager) Registry() *Registry { return m.registry }

// Cache returns the result cache.
func (m *Manager) Cache() *cache.Cache { return m.cache }

// Sizes returns the size resolver.
func (m *Manager) Sizes() *size.Resolver { return m.sizes }

// Close stops every running batch and destroys the cache.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.cache.Destroy()
	})
}

func (m *Manager) emit(e Event) {
	if m.onEvent != nil {
		m.onEvent(e)
	}
}

func (m *Manager) newFetcher(url string) *fetch.Fetcher {
	return fetch.New(m.transport, url,
		fetch.WithPolicy(m.policy),
		fetch.WithPreparer(m.preparer),
		fetch.WithLogger(m.logger))
}

// batchEnv is the Env handed to the tasks of one batch. Nested batches
// inherit the batch's options.
type batchEnv struct {
	m    *Manager
	opts LoadOptions
}

func (e *batchEnv) RunBatch(ctx context.Context, assets []Descriptor, opts LoadOptions, complete func(model.Results)) {
	opts = opts.inherit(e.opts)
	opts.Complete = complete
	opts.Deferred = false

	o := e.m.pool.get()
	h := o.setup(assets, opts)
	o.start(ctx, h.generation)
}

func (e *batchEnv) NewFetcher(url string) *fetch.Fetcher { return e.m.newFetcher(url) }
func (e *batchEnv) Images() *ioutils.ImageService { return e.m.images }
func (e *batchEnv) Sizes() *size.Resolver { return e.m.sizes }
func (e *batchEnv) Logger() *slog.Logger { return e.m.logger }

// normalizeAssets turns the values Load accepts into a descriptor slice.
func normalizeAssets(assets any) ([]Descriptor, error) {
	switch a := assets.(type) {
	case nil:
		return nil, nil
	case Descriptor:
		return []Descriptor{a}, nil
	case *Descriptor:
		if a == nil {
			return nil, nil
		}
		return []Descriptor{*a}, nil
	case []Descriptor:
		return append([]Descriptor(nil), a...), nil
	case []*Descriptor:
		out := make([]Descriptor, 0, len(a))
		for _, d := range a {
			if d != nil {
				out = append(out, *d)
			}
		}
		return out, nil
	case string:
		return []Descriptor{URLDescriptor(a)}, nil
	case []string:
		out := make([]Descriptor, len(a))
		for i, u := range a {
			out[i] = URLDescriptor(u)
		}
		return out, nil
	case map[string]Descriptor:
		out := make([]Descriptor, 0, len(a))
		for _, id := range sortedKeys(a) {
			d := a[id]
			d.ID = id
			out = append(out, d)
		}
		return out, nil
	case map[string]*Descriptor:
		out := make([]Descriptor, 0, len(a))
		for _, id := range sortedKeys(a) {
			if d := a[id]; d != nil {
				c := *d
				c.ID = id
				out = append(out, c)
			}
		}
		return out, nil
	case map[string]string:
		out := make([]Descriptor, 0, len(a))
		for _, id := range sortedKeys(a) {
			out = append(out, Descriptor{ID: id, URL: a[id]})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedAssets, assets)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
