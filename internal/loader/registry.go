package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/handiism/asset-loader/internal/audio"
)

// ErrInvalidTaskType is returned by Register for a type without a test
// predicate or a constructor.
var ErrInvalidTaskType = errors.New("task type needs a test and a constructor")

// Kind is the closed set of built-in task kinds. Types registered from
// outside the package use KindCustom.
type Kind int

const (
	KindCustom Kind = iota
	KindList
	KindFunc
	KindAtlas
	KindPlaylist
	KindImage
	KindAudio
	KindJSON
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindFunc:
		return "func"
	case KindAtlas:
		return "atlas"
	case KindPlaylist:
		return "playlist"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindJSON:
		return "json"
	case KindText:
		return "text"
	}
	return "custom"
}

// Built-in priorities. Shape-based kinds outrank URL-based ones, and text
// is the catch-all for any URL.
const (
	PriorityList     = 100
	PriorityFunc     = 90
	PriorityAtlas    = 60
	PriorityPlaylist = 55
	PriorityImage    = 50
	PriorityAudio    = 50
	PriorityJSON     = 40
	PriorityText     = 0
)

// TaskType decides whether a descriptor belongs to it and builds the Task
// for one that does.
type TaskType struct {
	Name string
	Kind Kind

	// Test must depend only on the descriptor.
	Test func(d *Descriptor) bool

	New func(d *Descriptor, env Env) Task
}

type registeredType struct {
	TaskType
	priority int
}

// Registry is an ordered set of task types, highest priority first.
// Types of equal priority keep registration order.
type Registry struct {
	mu     sync.RWMutex
	types  []registeredType
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds tt with the given priority.
func (r *Registry) Register(tt TaskType, priority int) error {
	if tt.Test == nil || tt.New == nil {
		r.logger.Warn("rejected task type", "name", tt.Name)
		return fmt.Errorf("%w: %q", ErrInvalidTaskType, tt.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, registeredType{TaskType: tt, priority: priority})
	sort.SliceStable(r.types, func(i, j int) bool {
		return r.types[i].priority > r.types[j].priority
	})
	return nil
}

// Match returns the first type whose Test accepts d.
func (r *Registry) Match(d *Descriptor) (TaskType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.types {
		if t.Test(d) {
			return t.TaskType, true
		}
	}
	return TaskType{}, false
}

// Types returns the registered types in match order.
func (r *Registry) Types() []TaskType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TaskType, len(r.types))
	for i, t := range r.types {
		out[i] = t.TaskType
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

var (
	imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}
	audioExts = []string{".mp3", ".ogg", ".wav", ".m4a", ".aac", ".flac"}
)

// RegisterBuiltins registers the built-in task types.
func RegisterBuiltins(r *Registry) error {
	builtins := []struct {
		tt       TaskType
		priority int
	}{
		{TaskType{Name: "list", Kind: KindList, Test: isList, New: newListTask}, PriorityList},
		{TaskType{Name: "func", Kind: KindFunc, Test: isFunc, New: newFuncTask}, PriorityFunc},
		{TaskType{Name: "atlas", Kind: KindAtlas, Test: isAtlas, New: newAtlasTask}, PriorityAtlas},
		{TaskType{Name: "playlist", Kind: KindPlaylist, Test: isPlaylist, New: newPlaylistTask}, PriorityPlaylist},
		{TaskType{Name: "image", Kind: KindImage, Test: byType("image", imageExts...), New: fetchTaskOf(KindImage)}, PriorityImage},
		{TaskType{Name: "audio", Kind: KindAudio, Test: byType("audio", audioExts...), New: fetchTaskOf(KindAudio)}, PriorityAudio},
		{TaskType{Name: "json", Kind: KindJSON, Test: byType("json", ".json"), New: fetchTaskOf(KindJSON)}, PriorityJSON},
		{TaskType{Name: "text", Kind: KindText, Test: isText, New: fetchTaskOf(KindText)}, PriorityText},
	}
	for _, b := range builtins {
		if err := r.Register(b.tt, b.priority); err != nil {
			return err
		}
	}
	return nil
}

func isList(d *Descriptor) bool {
	return len(d.Assets) > 0 || d.Type == "list"
}

func isFunc(d *Descriptor) bool {
	return d.Func != nil
}

func isAtlas(d *Descriptor) bool {
	if d.URL == "" {
		return false
	}
	if d.Type != "" {
		return d.Type == "atlas"
	}
	u := strings.ToLower(d.URL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".atlas") || strings.HasSuffix(u, ".atlas.json")
}

func isPlaylist(d *Descriptor) bool {
	if d.URL == "" {
		return false
	}
	if d.Type != "" {
		return d.Type == "playlist"
	}
	return audio.DetectFormat(d.URL) != audio.FormatUnknown
}

func isText(d *Descriptor) bool {
	if d.URL == "" {
		return false
	}
	return d.Type == "" || d.Type == "text"
}

// byType matches descriptors whose Type is name, or whose URL has one of
// exts when no Type is given.
func byType(name string, exts ...string) func(d *Descriptor) bool {
	return func(d *Descriptor) bool {
		if d.URL == "" {
			return false
		}
		if d.Type != "" {
			return d.Type == name
		}
		ext := d.extension()
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}
