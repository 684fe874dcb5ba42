package loader

import (
	"context"
	"testing"

	"github.com/handiism/asset-loader/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	baseTask
}

func (t *stubTask) Start(ctx context.Context, done DoneFunc, progress ProgressFunc) {
	done(Output{Content: t.desc.URL})
}

func stubType(name string, test func(d *Descriptor) bool) TaskType {
	return TaskType{
		Name: name,
		Test: test,
		New: func(d *Descriptor, env Env) Task {
			return &stubTask{baseTask{desc: d, env: env}}
		},
	}
}

func always(*Descriptor) bool { return true }

func TestRegistry_PriorityOrder(t *testing.T) {
	r := NewRegistry(logger.Discard())
	require.NoError(t, r.Register(stubType("low", always), 1))
	require.NoError(t, r.Register(stubType("high", always), 10))
	require.NoError(t, r.Register(stubType("mid", always), 5))

	tt, ok := r.Match(&Descriptor{})
	require.True(t, ok)
	assert.Equal(t, "high", tt.Name)

	var names []string
	for _, tt := range r.Types() {
		names = append(names, tt.Name)
	}
	assert.Equal(t, []string{"high", "mid", "low"}, names)
}

func TestRegistry_TieKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry(logger.Discard())
	require.NoError(t, r.Register(stubType("first", always), 7))
	require.NoError(t, r.Register(stubType("second", always), 7))

	tt, ok := r.Match(&Descriptor{})
	require.True(t, ok)
	assert.Equal(t, "first", tt.Name)
}

func TestRegistry_MatchIndependentOfRegistrationOrder(t *testing.T) {
	types := []struct {
		tt       TaskType
		priority int
	}{
		{stubType("png", func(d *Descriptor) bool { return d.extension() == ".png" }), 50},
		{stubType("list", func(d *Descriptor) bool { return len(d.Assets) > 0 }), 100},
		{stubType("any", func(d *Descriptor) bool { return d.URL != "" }), 0},
	}
	descs := []Descriptor{
		{URL: "a.png"},
		{URL: "a.txt"},
		{Assets: []Descriptor{{URL: "a.png"}}, URL: "b.png"},
		{},
	}

	forward := NewRegistry(logger.Discard())
	backward := NewRegistry(logger.Discard())
	for i := range types {
		require.NoError(t, forward.Register(types[i].tt, types[i].priority))
		j := len(types) - 1 - i
		require.NoError(t, backward.Register(types[j].tt, types[j].priority))
	}

	for _, d := range descs {
		a, okA := forward.Match(&d)
		b, okB := backward.Match(&d)
		assert.Equal(t, okA, okB, d.label())
		assert.Equal(t, a.Name, b.Name, d.label())

		again, _ := forward.Match(&d)
		assert.Equal(t, a.Name, again.Name, "match must be repeatable")
	}
}

func TestRegistry_RejectsIncompleteType(t *testing.T) {
	r := NewRegistry(logger.Discard())

	err := r.Register(TaskType{Name: "no-test", New: stubType("", always).New}, 1)
	assert.ErrorIs(t, err, ErrInvalidTaskType)

	err = r.Register(TaskType{Name: "no-new", Test: always}, 1)
	assert.ErrorIs(t, err, ErrInvalidTaskType)

	assert.Equal(t, 0, r.Len())
}

func TestRegistry_NoMatch(t *testing.T) {
	r := NewRegistry(logger.Discard())
	_, ok := r.Match(&Descriptor{URL: "a.png"})
	assert.False(t, ok)
}

func TestBuiltins_Dispatch(t *testing.T) {
	r := NewRegistry(logger.Discard())
	require.NoError(t, RegisterBuiltins(r))

	work := func(context.Context, *Descriptor) (any, error) { return nil, nil }

	tests := []struct {
		name string
		desc Descriptor
		want string
	}{
		{"nested assets", Descriptor{URL: "a.png", Assets: []Descriptor{{URL: "b.png"}}}, "list"},
		{"function", Descriptor{URL: "a.png", Func: work}, "func"},
		{"atlas suffix", Descriptor{URL: "sprites/ui.atlas.json"}, "atlas"},
		{"atlas type", Descriptor{URL: "sprites/ui.json", Type: "atlas"}, "atlas"},
		{"playlist", Descriptor{URL: "music/list.m3u"}, "playlist"},
		{"png", Descriptor{URL: "images/hero.PNG?v=2"}, "image"},
		{"webp", Descriptor{URL: "images/hero.webp"}, "image"},
		{"mp3", Descriptor{URL: "sfx/click.mp3"}, "audio"},
		{"json", Descriptor{URL: "levels/1.json"}, "json"},
		{"type beats extension", Descriptor{URL: "levels/1.json", Type: "text"}, "text"},
		{"unknown extension", Descriptor{URL: "shaders/blur.glsl"}, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(&tt.desc)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, ok := r.Match(&Descriptor{URL: "model.glb", Type: "mesh"})
		assert.False(t, ok)
	})
	t.Run("no url", func(t *testing.T) {
		_, ok := r.Match(&Descriptor{ID: "empty"})
		assert.False(t, ok)
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "atlas", KindAtlas.String())
	assert.Equal(t, "custom", KindCustom.String())
}
