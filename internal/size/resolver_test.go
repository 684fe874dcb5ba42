package size

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefresh(t *testing.T) {
	r := New()
	r.Define("half", 400, 0.5, []string{"full"})

	tests := []struct {
		name          string
		width, height int
		want          string
	}{
		{"small viewport", 300, 200, "half"},
		{"large viewport", 800, 600, "full"},
		{"narrow but tall", 350, 2000, "half"},
		{"exactly on bound", 400, 900, "half"},
		{"just past bound", 401, 900, "full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Refresh(tt.width, tt.height))
			assert.Equal(t, tt.want, r.Active())
		})
	}
}

func TestRefresh_NoUnboundedFallsBackToLargest(t *testing.T) {
	r := &Resolver{}
	r.Define("small", 100, 0.25, nil)
	r.Define("medium", 500, 0.5, nil)

	assert.Equal(t, "medium", r.Refresh(4000, 3000))
}

func TestDefine_OrderIndependent(t *testing.T) {
	a := &Resolver{}
	a.Define("full", Unbounded, 1, nil)
	a.Define("half", 400, 0.5, nil)

	b := &Resolver{}
	b.Define("half", 400, 0.5, nil)
	b.Define("full", Unbounded, 1, nil)

	for _, dim := range []int{10, 399, 400, 401, 5000} {
		assert.Equal(t, a.Refresh(dim, dim), b.Refresh(dim, dim), "dim %d", dim)
	}
}

func TestResolve_Fallbacks(t *testing.T) {
	r := NewDefault()
	r.Refresh(300, 300) // half

	tests := []struct {
		name     string
		variants map[string]string
		want     string
		wantName string
	}{
		{"active variant present", map[string]string{"half": "h.png", "full": "f.png"}, "h.png", "half"},
		{"falls back to full", map[string]string{"full": "f.png"}, "f.png", "full"},
		{"no matching variant", map[string]string{"tiny": "t.png"}, "default.png", ""},
		{"no variants", nil, "default.png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, name := Resolve(r, tt.variants, "default.png")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestScale(t *testing.T) {
	r := NewDefault()
	assert.Equal(t, 0.5, r.Scale(Half))
	assert.Equal(t, 1.0, r.Scale(Full))
	assert.Equal(t, 1.0, r.Scale("unknown"))
}

func TestDefine_Replace(t *testing.T) {
	r := NewDefault()
	r.Define(Half, 800, 0.5, nil)

	def, ok := r.Definition(Half)
	assert.True(t, ok)
	assert.Equal(t, 800, def.MaxBound)
	assert.Len(t, r.Definitions(), 2)
	assert.Equal(t, Half, r.Refresh(700, 700))
}

func TestFromDefinitions(t *testing.T) {
	r := FromDefinitions([]Definition{
		{Name: "small", MaxBound: 320, Scale: 0.25, Fallbacks: []string{"large"}},
		{Name: "large", MaxBound: Unbounded, Scale: 1},
	})

	if got := r.Active(); got != "large" {
		t.Errorf("Active() = %q before Refresh, want large", got)
	}
	if got := r.Refresh(240, 320); got != "small" {
		t.Errorf("Refresh(240, 320) = %q, want small", got)
	}
	if got := r.Candidates(); len(got) != 2 || got[1] != "large" {
		t.Errorf("Candidates() = %v", got)
	}
}
