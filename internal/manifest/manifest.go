package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/handiism/asset-loader/internal/loader"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDescriptor is returned for a descriptor with neither a URL nor
// nested assets.
var ErrEmptyDescriptor = errors.New("descriptor has no url and no assets")

// Manifest is a batch of descriptors and the options to load them with.
type Manifest struct {
	Assets  []loader.Descriptor
	Options Options
}

// Options is the serialized form of loader.LoadOptions. StartAll and
// AutoStart default to true when absent.
type Options struct {
	CacheAll      bool   `yaml:"cache_all"`
	StartAll      *bool  `yaml:"start_all"`
	AutoStart     *bool  `yaml:"auto_start"`
	Type          string `yaml:"type"`
	Strict        bool   `yaml:"strict"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// LoadOptions converts o to loader options. Callbacks are left unset.
func (o Options) LoadOptions() loader.LoadOptions {
	return loader.LoadOptions{
		CacheAll:      o.CacheAll,
		Sequential:    o.StartAll != nil && !*o.StartAll,
		Deferred:      o.AutoStart != nil && !*o.AutoStart,
		Type:          o.Type,
		Strict:        o.Strict,
		MaxConcurrent: o.MaxConcurrent,
	}
}

type document struct {
	Assets  yaml.Node `yaml:"assets"`
	Options Options   `yaml:"options"`
}

// Decode parses a YAML or JSON manifest.
//
// assets is either a list of descriptors or a map from id to descriptor.
// Map entries take their key as id and keep key order.
//
// Example:
//
//	options:
//	  cache_all: true
//	assets:
//	  hero:
//	    url: images/hero.png
//	    variants:
//	      half: {url: images/hero@0.5x.png}
//	  level: {url: levels/1.json}
func Decode(data []byte) (*Manifest, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m := &Manifest{Options: doc.Options}

	switch doc.Assets.Kind {
	case 0:
		// no assets key
	case yaml.SequenceNode:
		if err := doc.Assets.Decode(&m.Assets); err != nil {
			return nil, fmt.Errorf("failed to decode assets: %w", err)
		}
	case yaml.MappingNode:
		var byID map[string]loader.Descriptor
		if err := doc.Assets.Decode(&byID); err != nil {
			return nil, fmt.Errorf("failed to decode assets: %w", err)
		}
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			d := byID[id]
			d.ID = id
			m.Assets = append(m.Assets, d)
		}
	default:
		return nil, fmt.Errorf("assets must be a list or a map (line %d)", doc.Assets.Line)
	}

	if err := validate(m.Assets, "assets"); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Count returns the number of leaf descriptors, nested ones included.
func (m *Manifest) Count() int {
	return count(m.Assets)
}

func count(descs []loader.Descriptor) int {
	n := 0
	for _, d := range descs {
		if len(d.Assets) > 0 {
			n += count(d.Assets)
		} else {
			n++
		}
	}
	return n
}

func validate(descs []loader.Descriptor, path string) error {
	for i, d := range descs {
		where := fmt.Sprintf("%s[%d]", path, i)
		if d.ID != "" {
			where = fmt.Sprintf("%s[%s]", path, d.ID)
		}
		if d.URL == "" && len(d.Assets) == 0 && d.Type != "list" {
			return fmt.Errorf("%s: %w", where, ErrEmptyDescriptor)
		}
		if d.Weight < 0 || d.MaxDimension < 0 {
			return fmt.Errorf("%s: weight and max_dimension must not be negative", where)
		}
		if err := validate(d.Assets, where+".assets"); err != nil {
			return err
		}
	}
	return nil
}
