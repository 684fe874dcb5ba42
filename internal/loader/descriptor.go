package loader

import (
	"context"
	"path"
	"strings"

	"github.com/handiism/asset-loader/internal/size"
)

// WorkFunc is the unit of work run by a function descriptor. It may block;
// the orchestrator always runs it off the event loop.
type WorkFunc func(ctx context.Context, d *Descriptor) (any, error)

// Variant holds the per-size fields of a descriptor.
type Variant struct {
	URL      string `json:"url" yaml:"url"`
	AlphaURL string `json:"alpha_url,omitempty" yaml:"alpha_url,omitempty"`
}

// Descriptor identifies one resource request.
//
// Only the fields a task type needs are read; everything else is ignored.
// Which type handles a descriptor is decided by its shape: nested Assets
// make a list, Func makes a function task, otherwise Type or the URL
// extension picks the type.
//
// Example:
//
//	loader.Descriptor{
//	    ID:       "hero",
//	    URL:      "images/hero.jpg",
//	    AlphaURL: "images/hero_alpha.png",
//	    Variants: map[string]loader.Variant{
//	        "half": {URL: "images/hero@0.5x.jpg", AlphaURL: "images/hero_alpha@0.5x.png"},
//	    },
//	    Cache: true,
//	}
type Descriptor struct {
	// ID keys the result in the batch and in the cache. Optional.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Type names the task type that should handle the descriptor.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// AlphaURL is a greyscale image merged into URL's image as its alpha
	// channel.
	AlphaURL string `json:"alpha_url,omitempty" yaml:"alpha_url,omitempty"`

	// Assets is a nested batch. A descriptor with assets is a list.
	Assets []Descriptor `json:"assets,omitempty" yaml:"assets,omitempty"`

	// Variants maps size variant names to alternative URLs.
	Variants map[string]Variant `json:"variants,omitempty" yaml:"variants,omitempty"`

	// Cache stores the result in the result cache under ID.
	Cache bool `json:"cache,omitempty" yaml:"cache,omitempty"`

	// Weight is the share of batch progress this descriptor accounts
	// for. Zero counts as 1.
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	// MaxDimension downscales decoded images to fit a square of this
	// size. Zero leaves images alone.
	MaxDimension int `json:"max_dimension,omitempty" yaml:"max_dimension,omitempty"`

	// Data is passed through to the result untouched.
	Data any `json:"data,omitempty" yaml:"data,omitempty"`

	// Props holds extra fields for custom task types.
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`

	Func WorkFunc `json:"-" yaml:"-"`

	// Variant is the size variant the URLs were resolved for, set by the
	// orchestrator. Empty when Variants is empty or nothing matched.
	Variant string `json:"-" yaml:"-"`
}

// AssetID returns ID. It lets a descriptor be passed to Unload.
func (d Descriptor) AssetID() string {
	return d.ID
}

// weight returns the progress weight, defaulting to 1.
func (d *Descriptor) weight() float64 {
	if d.Weight > 0 {
		return d.Weight
	}
	return 1
}

// resolveVariant rewrites URL and AlphaURL for the active size variant.
func (d *Descriptor) resolveVariant(r *size.Resolver) {
	if len(d.Variants) == 0 || r == nil {
		return
	}
	v, name := size.Resolve(r, d.Variants, Variant{URL: d.URL, AlphaURL: d.AlphaURL})
	if name == "" {
		return
	}
	d.URL = v.URL
	d.AlphaURL = v.AlphaURL
	d.Variant = name
}

// label names the descriptor in logs and errors.
func (d *Descriptor) label() string {
	switch {
	case d.ID != "":
		return d.ID
	case d.URL != "":
		return d.URL
	case len(d.Assets) > 0:
		return "list"
	}
	return "descriptor"
}

// extension returns the lower-case extension of the URL path, without
// query or fragment.
func (d *Descriptor) extension() string {
	u := d.URL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.ToLower(path.Ext(u))
}

// URLDescriptor is shorthand for a descriptor that only has a URL.
func URLDescriptor(url string) Descriptor {
	return Descriptor{URL: url}
}
