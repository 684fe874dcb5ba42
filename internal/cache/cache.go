// Package cache stores finished load results by id and owns their teardown.
//
// Every value that leaves the cache (overwrite, Delete, Empty, Destroy) is
// destroyed through model.Destroy, recursively for composite results, so
// no result is silently leaked.
//
// Example:
//
//	c := cache.New(logger)
//	_ = c.Write("hero", img)
//	v, ok := c.Read("hero") // v == img
//	c.Delete("hero")        // img.Destroy() called
//	c.Delete("hero")        // no-op
package cache

import (
	"errors"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/handiism/asset-loader/internal/model"
)

// ErrDestroyed is returned by Write after Destroy.
var ErrDestroyed = errors.New("cache destroyed")

// Identifier is implemented by descriptor-like values that carry an id.
type Identifier interface {
	AssetID() string
}

// Cache is an id-indexed result store.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]any
	logger    *slog.Logger
	destroyed bool
}

// New creates an empty cache. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]any),
		logger:  logger,
	}
}

// Write stores v under id. A value already stored under id is destroyed
// first.
func (c *Cache) Write(id string, v any) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	old, exists := c.entries[id]
	c.entries[id] = v
	c.mu.Unlock()

	if exists && !sameValue(old, v) {
		c.logger.Warn("overwriting cached result", "id", id)
		model.Destroy(old)
	}
	return nil
}

// Read returns the value stored under id.
func (c *Cache) Read(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[id]
	return v, ok
}

// Has reports whether id is stored.
func (c *Cache) Has(id string) bool {
	_, ok := c.Read(id)
	return ok
}

// Delete destroys and removes the entry named by ref, which is either a
// string id or an Identifier. It reports whether an entry was removed.
// Deleting an absent id is a no-op.
func (c *Cache) Delete(ref any) bool {
	id, ok := ResolveID(ref)
	if !ok {
		return false
	}

	c.mu.Lock()
	v, exists := c.entries[id]
	delete(c.entries, id)
	c.mu.Unlock()

	if exists {
		model.Destroy(v)
	}
	return exists
}

// Empty destroys and removes every entry.
func (c *Cache) Empty() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]any)
	c.mu.Unlock()

	for _, v := range entries {
		model.Destroy(v)
	}
}

// Destroy empties the cache and rejects further writes.
func (c *Cache) Destroy() {
	c.Empty()
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the stored ids in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Strings(keys)
	return keys
}

// ResolveID extracts an id from a string or an Identifier.
func ResolveID(ref any) (string, bool) {
	switch r := ref.(type) {
	case string:
		return r, r != ""
	case Identifier:
		id := r.AssetID()
		return id, id != ""
	}
	return "", false
}

// sameValue reports whether a and b are the same stored value, so that
// rewriting an entry with itself does not destroy it.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
