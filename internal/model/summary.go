package model

import (
	"fmt"
	"strconv"
)

// Walk calls fn for every leaf of r in a stable order. Nested results are
// flattened and their keys joined with "/"; list entries are keyed by
// index. Nil entries (failed loads) are visited too.
func Walk(r Results, fn func(key string, v any)) {
	walk("", r, fn)
}

func walk(prefix string, v any, fn func(key string, v any)) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "/" + k
	}

	switch r := v.(type) {
	case ResultMap:
		for _, k := range r.Keys() {
			walk(join(k), r[k], fn)
		}
	case ResultList:
		for i, e := range r {
			walk(join(strconv.Itoa(i)), e, fn)
		}
	default:
		fn(prefix, v)
	}
}

// Describe returns a one-line human summary of a loaded value.
func Describe(v any) string {
	switch c := v.(type) {
	case nil:
		return "failed"
	case *Image:
		s := fmt.Sprintf("image %dx%d %s", c.Width, c.Height, c.Format)
		if c.Variant != "" {
			s += fmt.Sprintf(" (%s @%gx)", c.Variant, c.Scale)
		}
		return s
	case *Audio:
		if c.Title != "" {
			return fmt.Sprintf("audio %q, %d bytes", c.Title, len(c.Source))
		}
		return fmt.Sprintf("audio, %d bytes", len(c.Source))
	case *Document:
		return fmt.Sprintf("json, %d bytes", len(c.Raw))
	case *Blob:
		return fmt.Sprintf("%s, %d bytes", c.ContentType, len(c.Data))
	case *Atlas:
		if c.Image == nil {
			return fmt.Sprintf("atlas, %d frames, image missing", len(c.Frames))
		}
		return fmt.Sprintf("atlas, %d frames, %dx%d", len(c.Frames), c.Image.Width, c.Image.Height)
	case *Playlist:
		loaded := 0
		for _, t := range c.Tracks {
			if t != nil {
				loaded++
			}
		}
		return fmt.Sprintf("playlist, %d/%d tracks", loaded, len(c.Entries))
	}
	return fmt.Sprintf("%T", v)
}

// AudioTracks returns every audio result in r in Walk order, including
// the tracks of loaded playlists.
func AudioTracks(r Results) []*Audio {
	var tracks []*Audio
	Walk(r, func(_ string, v any) {
		switch c := v.(type) {
		case *Audio:
			tracks = append(tracks, c)
		case *Playlist:
			for _, t := range c.Tracks {
				if a, ok := t.(*Audio); ok {
					tracks = append(tracks, a)
				}
			}
		}
	})
	return tracks
}
