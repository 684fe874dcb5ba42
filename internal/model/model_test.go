package model

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

type spy struct {
	calls int
}

func (s *spy) Destroy() { s.calls++ }

func TestDestroy_NoCapability(t *testing.T) {
	// Values without Destroy must be ignored, not panic.
	Destroy(nil)
	Destroy(42)
	Destroy("text")
	Destroy([]byte{1, 2, 3})
}

func TestImage_Destroy(t *testing.T) {
	img := &Image{
		Source: []byte{1, 2, 3},
		Image:  image.NewRGBA(image.Rect(0, 0, 2, 2)),
	}

	img.Destroy()

	if img.Source != nil {
		t.Error("Source should be nil after Destroy")
	}
	if img.Image != nil {
		t.Error("Image should be nil after Destroy")
	}
	if !img.Destroyed() {
		t.Error("Destroyed() should report true")
	}
}

func TestAtlas_DestroysImage(t *testing.T) {
	img := &Image{Source: []byte{1}}
	atlas := &Atlas{Frames: map[string]Frame{"a": {W: 1, H: 1}}, Image: img}

	atlas.Destroy()

	if !img.Destroyed() {
		t.Error("atlas Destroy should destroy its image")
	}
	if atlas.Frames != nil {
		t.Error("Frames should be nil after Destroy")
	}
}

func TestResults_RecursiveDestroy(t *testing.T) {
	a, b, c := &spy{}, &spy{}, &spy{}

	results := ResultMap{
		"a":      a,
		"nested": ResultList{b, nil, "plain", c},
		"scalar": 7,
	}
	results.Destroy()

	for name, s := range map[string]*spy{"a": a, "b": b, "c": c} {
		if s.calls != 1 {
			t.Errorf("%s destroyed %d times, want 1", name, s.calls)
		}
	}
}

func TestResultMap_Keys(t *testing.T) {
	m := ResultMap{"b": 1, "a": 2, "c": 3}
	keys := m.Keys()

	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestMeta_Attach(t *testing.T) {
	doc := &Document{}
	var att Attacher = doc

	att.Attach("cfg", map[string]int{"x": 1})

	if doc.ID != "cfg" {
		t.Errorf("ID = %q, want cfg", doc.ID)
	}
	if doc.Data == nil {
		t.Error("Data should be attached")
	}
}

func TestPlaylist_DestroysTracks(t *testing.T) {
	track := &spy{}
	pl := &Playlist{
		Entries: []PlaylistEntry{{URL: "a.mp3"}, {URL: "b.mp3"}},
		Tracks:  ResultList{track, nil},
	}

	pl.Destroy()

	if track.calls != 1 {
		t.Errorf("track destroyed %d times, want 1", track.calls)
	}
	if pl.Tracks != nil {
		t.Error("Tracks should be nil after Destroy")
	}
}

func TestWalk_FlattensNestedResults(t *testing.T) {
	results := ResultMap{
		"b": ResultList{&Blob{}, nil},
		"a": &Document{},
	}

	var keys []string
	Walk(results, func(key string, _ any) {
		keys = append(keys, key)
	})

	assert.Equal(t, []string{"a", "b/0", "b/1"}, keys)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"nil", nil, "failed"},
		{"image", &Image{Width: 4, Height: 2, Format: "png"}, "image 4x2 png"},
		{"image variant", &Image{Width: 4, Height: 2, Format: "png", Variant: "half", Scale: 0.5}, "image 4x2 png (half @0.5x)"},
		{"audio", &Audio{Title: "Theme", Source: []byte{1, 2}}, `audio "Theme", 2 bytes`},
		{"blob", &Blob{ContentType: "text/plain", Data: []byte("hi")}, "text/plain, 2 bytes"},
		{"playlist", &Playlist{Entries: make([]PlaylistEntry, 2), Tracks: ResultList{&Audio{}, nil}}, "playlist, 1/2 tracks"},
		{"other", 42, "int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.v))
		})
	}
}

func TestAudioTracks(t *testing.T) {
	a, b, c := &Audio{URL: "a.mp3"}, &Audio{URL: "b.mp3"}, &Audio{URL: "c.mp3"}
	results := ResultMap{
		"music": &Playlist{Tracks: ResultList{b, nil, c}},
		"intro": a,
		"cfg":   &Document{},
	}

	assert.Equal(t, []*Audio{a, b, c}, AudioTracks(results))
}
