// Package size maps the viewport to a named size variant and picks the
// per-variant fields of an asset descriptor.
//
// Example:
//
//	r := size.NewDefault() // "half" up to 400px, "full" beyond
//	r.Refresh(300, 200)    // "half"
//	url, name := size.Resolve(r, map[string]string{"full": "hero@1x.png"}, "hero.png")
//	// url = "hero@1x.png", name = "full" (half falls back to full)
package size

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Unbounded is the MaxBound of a definition that matches any viewport.
const Unbounded = math.MaxInt

// Names of the built-in definitions.
const (
	Half = "half"
	Full = "full"
)

// HalfBound is the built-in reduced variant's threshold in pixels.
const HalfBound = 400

// Definition is one named size variant.
type Definition struct {
	Name string

	// MaxBound is the largest viewport dimension (the smaller of width and
	// height) this variant serves.
	MaxBound int

	// Scale is the resolution factor of art authored for this variant.
	Scale float64

	// Fallbacks lists variant names to try, in order, when an asset has no
	// art for this variant.
	Fallbacks []string
}

// Resolver holds the size definitions and the currently active variant.
type Resolver struct {
	mu     sync.RWMutex
	defs   []Definition // ascending MaxBound
	active string
}

// New returns a Resolver with a single unbounded "full" definition, so
// resolution always succeeds.
func New() *Resolver {
	r := &Resolver{}
	r.Define(Full, Unbounded, 1, nil)
	return r
}

// NewDefault returns a Resolver with the built-in "half" and "full"
// variants, each falling back to the other.
func NewDefault() *Resolver {
	r := &Resolver{}
	r.Define(Half, HalfBound, 0.5, []string{Full})
	r.Define(Full, Unbounded, 1, []string{Half})
	return r
}

// FromDefinitions returns a Resolver holding defs. The largest-bound
// definition is active until the first Refresh.
func FromDefinitions(defs []Definition) *Resolver {
	r := &Resolver{}
	for _, d := range defs {
		r.Define(d.Name, d.MaxBound, d.Scale, d.Fallbacks)
	}
	r.mu.Lock()
	if len(r.defs) > 0 {
		r.active = r.defs[len(r.defs)-1].Name
	}
	r.mu.Unlock()
	return r
}

// Define registers or replaces a size variant. The active variant is left
// unchanged until the next Refresh, except on the first definition.
func (r *Resolver) Define(name string, maxBound int, scale float64, fallbacks []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if scale <= 0 {
		scale = 1
	}
	def := Definition{
		Name:      name,
		MaxBound:  maxBound,
		Scale:     scale,
		Fallbacks: append([]string(nil), fallbacks...),
	}

	replaced := false
	for i := range r.defs {
		if r.defs[i].Name == name {
			r.defs[i] = def
			replaced = true
			break
		}
	}
	if !replaced {
		r.defs = append(r.defs, def)
	}
	sort.SliceStable(r.defs, func(i, j int) bool {
		return r.defs[i].MaxBound < r.defs[j].MaxBound
	})

	if r.active == "" {
		r.active = r.defs[len(r.defs)-1].Name
	}
}

// Refresh recomputes the active variant for a viewport of width x height
// and returns its name.
//
// The smaller dimension is compared against each definition's MaxBound,
// smallest bound first; the first bound that is >= the dimension wins. If
// none does, the largest-bound definition is used.
func (r *Resolver) Refresh(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.defs) == 0 {
		return ""
	}

	dim := min(width, height)
	r.active = r.defs[len(r.defs)-1].Name
	for _, def := range r.defs {
		if def.MaxBound >= dim {
			r.active = def.Name
			break
		}
	}
	return r.active
}

// Active returns the name of the active variant.
func (r *Resolver) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Definition returns the named definition.
func (r *Resolver) Definition(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, def := range r.defs {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Definitions returns a copy of all definitions, ascending by MaxBound.
func (r *Resolver) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Definition(nil), r.defs...)
}

// Scale returns the scale of the named variant, or 1 if it is unknown.
func (r *Resolver) Scale(name string) float64 {
	if def, ok := r.Definition(name); ok {
		return def.Scale
	}
	return 1
}

// Candidates returns the names to try for the active variant: the active
// name followed by its fallbacks, without duplicates.
func (r *Resolver) Candidates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == "" {
		return nil
	}
	names := []string{r.active}
	seen := map[string]bool{r.active: true}
	for _, def := range r.defs {
		if def.Name != r.active {
			continue
		}
		for _, fb := range def.Fallbacks {
			if !seen[fb] {
				seen[fb] = true
				names = append(names, fb)
			}
		}
	}
	return names
}

// Resolve picks the entry of variants for the active size, falling back
// through the active definition's fallbacks in order, and finally to def.
// It returns the chosen value and the variant name ("" for def).
func Resolve[T any](r *Resolver, variants map[string]T, def T) (T, string) {
	if len(variants) == 0 {
		return def, ""
	}
	for _, name := range r.Candidates() {
		if v, ok := variants[name]; ok {
			return v, name
		}
	}
	return def, ""
}

// String describes the definition.
func (d Definition) String() string {
	bound := "unbounded"
	if d.MaxBound != Unbounded {
		bound = fmt.Sprintf("<=%dpx", d.MaxBound)
	}
	return fmt.Sprintf("%s (%s, x%.2g)", d.Name, bound, d.Scale)
}
