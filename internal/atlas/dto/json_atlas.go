package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/handiism/asset-loader/internal/model"
)

// JSONRect is a rectangle as written by TexturePacker.
type JSONRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// JSONFrame is one entry of the frames table.
type JSONFrame struct {
	// Filename is only present in the array form of the table.
	Filename string   `json:"filename"`
	Frame    JSONRect `json:"frame"`
	Rotated  bool     `json:"rotated"`
	Trimmed  bool     `json:"trimmed"`
}

// FrameSet accepts the frames table in either of TexturePacker's layouts:
//
//	"frames": {"hero.png": {"frame": {...}}}        // hash
//	"frames": [{"filename": "hero.png", "frame": {...}}] // array
//
// Hash keys become the frame names; array entries use their filename.
type FrameSet map[string]JSONFrame

// UnmarshalJSON implements json.Unmarshaler.
func (fs *FrameSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*fs = FrameSet{}
		return nil
	}

	if data[0] == '[' {
		var list []JSONFrame
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		set := make(FrameSet, len(list))
		for i, f := range list {
			name := f.Filename
			if name == "" {
				name = strconv.Itoa(i)
			}
			set[name] = f
		}
		*fs = set
		return nil
	}

	var hash map[string]JSONFrame
	if err := json.Unmarshal(data, &hash); err != nil {
		return fmt.Errorf("frames must be an object or an array: %w", err)
	}
	*fs = FrameSet(hash)
	return nil
}

// JSONMeta is the meta block of an atlas document.
type JSONMeta struct {
	Image string   `json:"image"`
	Size  JSONRect `json:"size"`
	Scale string   `json:"scale"`
}

// JSONAtlas is a deserialized TexturePacker JSON document.
type JSONAtlas struct {
	Frames FrameSet `json:"frames"`
	Meta   JSONMeta `json:"meta"`
}

// ToAtlas converts the document to a model.Atlas without an image.
func (ja *JSONAtlas) ToAtlas() *model.Atlas {
	frames := make(map[string]model.Frame, len(ja.Frames))
	for name, f := range ja.Frames {
		frames[name] = model.Frame{
			X:       f.Frame.X,
			Y:       f.Frame.Y,
			W:       f.Frame.W,
			H:       f.Frame.H,
			Rotated: f.Rotated,
			Trimmed: f.Trimmed,
		}
	}
	return &model.Atlas{
		Frames:    frames,
		ImagePath: ja.Meta.Image,
	}
}
