package atlas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/handiism/asset-loader/internal/atlas/dto"
	"github.com/handiism/asset-loader/internal/model"
)

// ErrNoImage is returned when an atlas document names no image.
var ErrNoImage = errors.New("atlas has no meta.image")

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Parse decodes a TexturePacker JSON atlas document.
//
// The returned Atlas has its frame table and ImagePath set; Image is left
// nil for the caller to load. Parse fails if the document is not valid
// JSON or names no image.
//
// Example:
//
//	a, err := atlas.Parse(data)
//	if err != nil {
//	    return fmt.Errorf("failed to parse atlas: %w", err)
//	}
//	imgURL := fetch.ResolveURL(atlasURL, a.ImagePath)
func Parse(data []byte) (*model.Atlas, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc dto.JSONAtlas
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse atlas JSON: %w", err)
	}
	if doc.Meta.Image == "" {
		return nil, ErrNoImage
	}
	return doc.ToAtlas(), nil
}

// IsAtlas reports whether data looks like an atlas document: a JSON
// object with both frames and meta.image. Tasks use it to tell atlases
// from plain JSON when the descriptor gives no type.
func IsAtlas(data []byte) bool {
	var probe struct {
		Frames json.RawMessage `json:"frames"`
		Meta   struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &probe); err != nil {
		return false
	}
	return len(probe.Frames) > 0 && probe.Meta.Image != ""
}
