package cache

import (
	"io"
	"log/slog"
	"testing"

	"github.com/handiism/asset-loader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type destroySpy struct {
	calls int
}

func (d *destroySpy) Destroy() { d.calls++ }

type ref struct{ id string }

func (r ref) AssetID() string { return r.id }

func newCache() *Cache {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCache_RoundTripIdentity(t *testing.T) {
	c := newCache()
	img := &model.Image{Source: []byte{1}}

	require.NoError(t, c.Write("hero", img))
	got, ok := c.Read("hero")

	require.True(t, ok)
	assert.Same(t, img, got)
}

func TestCache_ReadMissing(t *testing.T) {
	c := newCache()
	v, ok := c.Read("nope")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestCache_OverwriteDestroysPrevious(t *testing.T) {
	c := newCache()
	a := &destroySpy{}
	b := &destroySpy{}

	require.NoError(t, c.Write("x", a))
	require.NoError(t, c.Write("x", b))

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)

	got, _ := c.Read("x")
	assert.Same(t, b, got)
}

func TestCache_DeleteRecursive(t *testing.T) {
	c := newCache()
	inner := &destroySpy{}
	img := &model.Image{Source: []byte{1, 2}}

	results := model.ResultMap{
		"list": model.ResultList{inner, nil, 3},
		"img":  img,
	}
	require.NoError(t, c.Write("batch", results))

	assert.True(t, c.Delete("batch"))
	assert.Equal(t, 1, inner.calls)
	assert.Nil(t, img.Source)
	assert.False(t, c.Has("batch"))
}

func TestCache_DeleteIdempotent(t *testing.T) {
	c := newCache()
	s := &destroySpy{}
	require.NoError(t, c.Write("x", s))

	assert.True(t, c.Delete("x"))
	assert.NotPanics(t, func() {
		assert.False(t, c.Delete("x"))
	})
	assert.Equal(t, 1, s.calls)
}

func TestCache_DeleteByIdentifier(t *testing.T) {
	c := newCache()
	require.NoError(t, c.Write("cfg", "value"))

	assert.True(t, c.Delete(ref{id: "cfg"}))
	assert.False(t, c.Delete(ref{}))
	assert.False(t, c.Delete(42))
}

func TestCache_EmptyAndDestroy(t *testing.T) {
	c := newCache()
	a, b := &destroySpy{}, &destroySpy{}
	require.NoError(t, c.Write("a", a))
	require.NoError(t, c.Write("b", b))
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	c.Empty()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)

	require.NoError(t, c.Write("c", 1))
	c.Destroy()
	assert.Equal(t, 0, c.Len())
	assert.ErrorIs(t, c.Write("d", 1), ErrDestroyed)
}

func TestCache_RewriteSameValueKeepsIt(t *testing.T) {
	c := newCache()
	s := &destroySpy{}
	results := model.ResultList{s}

	require.NoError(t, c.Write("x", results))
	require.NoError(t, c.Write("x", results))

	assert.Equal(t, 0, s.calls)
}
