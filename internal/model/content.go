package model

import (
	"image"
)

// Destroyable is implemented by every loaded result that owns resources.
//
// The result cache calls Destroy when an entry is overwritten, deleted or
// emptied. Composite results (ResultMap, ResultList, Atlas) destroy their
// children recursively.
type Destroyable interface {
	Destroy()
}

// Destroy calls v.Destroy if v implements Destroyable. Values without the
// capability are left untouched.
func Destroy(v any) {
	if d, ok := v.(Destroyable); ok && d != nil {
		d.Destroy()
	}
}

// Attacher is implemented by results that carry the id and opaque data of
// the descriptor that produced them.
type Attacher interface {
	Attach(id string, data any)
}

// Meta holds the descriptor id and the caller's passthrough data.
// It is embedded in every content type.
type Meta struct {
	// ID is the id of the descriptor that produced the result.
	ID string

	// Data is the descriptor's opaque data field, copied as-is.
	Data any
}

// Attach implements Attacher.
func (m *Meta) Attach(id string, data any) {
	m.ID = id
	m.Data = data
}

// Image is a decoded image asset.
//
// Source holds the encoded bytes as fetched (or the colour channel when the
// image was merged from separate colour and alpha files). Destroy nulls both
// Source and Image so the backing memory can be reclaimed.
//
// Example:
//
//	img := content.(*model.Image)
//	fmt.Printf("%dx%d @%.1fx (%s)\n", img.Width, img.Height, img.Scale, img.Variant)
type Image struct {
	Meta

	// Source is the encoded image data.
	Source []byte

	// Image is the decoded image. Nil after Destroy.
	Image image.Image

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string

	// Width and Height are the pixel dimensions of Image.
	Width  int
	Height int

	// Scale is the resolution factor of the size variant the image was
	// loaded for. 1 for full-resolution art.
	Scale float64

	// Variant is the size variant name the URL was resolved against.
	// Empty when the descriptor declared no variants.
	Variant string

	destroyed bool
}

// Destroy releases the image data.
func (i *Image) Destroy() {
	if i == nil {
		return
	}
	i.Source = nil
	i.Image = nil
	i.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (i *Image) Destroyed() bool {
	return i.destroyed
}

// Audio is a fetched audio asset with the ID3 metadata found in it.
type Audio struct {
	Meta

	// URL is the location the audio was fetched from.
	URL    string
	Source []byte

	Title  string
	Artist string
	Album  string
	Year   string
	Genre  string
	Track  string

	// Artwork is the first attached picture, if any.
	Artwork []byte
}

// Destroy releases the audio data.
func (a *Audio) Destroy() {
	if a == nil {
		return
	}
	a.Source = nil
	a.Artwork = nil
}

// Document is a parsed JSON asset.
type Document struct {
	Meta

	// Raw is the document as fetched.
	Raw []byte

	// Value is the decoded document: map[string]any, []any or a scalar.
	Value any
}

// Destroy releases the document.
func (d *Document) Destroy() {
	if d == nil {
		return
	}
	d.Raw = nil
	d.Value = nil
}

// Blob is an uninterpreted text or binary asset.
type Blob struct {
	Meta

	Data        []byte
	ContentType string
}

// Text returns the blob as a string.
func (b *Blob) Text() string {
	return string(b.Data)
}

// Destroy releases the data.
func (b *Blob) Destroy() {
	if b == nil {
		return
	}
	b.Data = nil
}

// Frame is one named rectangle inside an atlas image.
type Frame struct {
	X, Y, W, H int
	Rotated    bool
	Trimmed    bool
}

// Atlas is a sprite sheet: a frame table plus the image the frames index
// into. It is composite; Destroy also destroys Image.
type Atlas struct {
	Meta

	Frames map[string]Frame

	// ImagePath is the image reference found in the atlas document,
	// relative to the atlas URL.
	ImagePath string

	// Image is nil when the image sub-fetch failed.
	Image *Image
}

// Destroy releases the atlas image and frame table.
func (a *Atlas) Destroy() {
	if a == nil {
		return
	}
	if a.Image != nil {
		a.Image.Destroy()
	}
	a.Frames = nil
}

// PlaylistEntry is one item of a loaded playlist as listed in the file.
type PlaylistEntry struct {
	URL      string
	Title    string
	Duration int
}

// Playlist is a playlist file and the audio tracks it lists. Tracks is
// positional with Entries; a failed track is a nil element.
type Playlist struct {
	Meta

	Entries []PlaylistEntry
	Tracks  ResultList
}

// Destroy destroys every track.
func (p *Playlist) Destroy() {
	if p == nil {
		return
	}
	p.Tracks.Destroy()
	p.Tracks = nil
}
