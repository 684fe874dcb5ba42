package versions

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# asset versions
images/hero.png 3
./config/levels.json   12

/audio/theme.mp3 1
`
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"images/hero.png", 3, true},
		{"/images/hero.png", 3, true},
		{"config/levels.json", 12, true},
		{"audio/theme.mp3?x=1", 1, true},
		{"images/missing.png", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := table.Lookup(tt.path)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Lookup(%q) = %d, %v; want %d, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"images/hero.png",
		"images/hero.png three",
		"a b c",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("Parse(%q) error = %v, want ErrMalformedLine", input, err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	table := Table{"images/hero.png": 3}

	tests := []struct {
		name   string
		rawURL string
		path   string
		want   string
	}{
		{"adds version", "https://cdn.example.com/images/hero.png", "images/hero.png", "https://cdn.example.com/images/hero.png?v=3"},
		{"keeps query", "https://cdn.example.com/images/hero.png?a=1", "images/hero.png", "https://cdn.example.com/images/hero.png?a=1&v=3"},
		{"unknown path", "https://cdn.example.com/x.png", "x.png", "https://cdn.example.com/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Apply(tt.rawURL, tt.path); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNilTable(t *testing.T) {
	var table Table
	if got := table.Apply("a.png", "a.png"); got != "a.png" {
		t.Errorf("nil table Apply() = %q, want unchanged", got)
	}
}
