package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/handiism/asset-loader/internal/atlas"
	"github.com/handiism/asset-loader/internal/audio"
	"github.com/handiism/asset-loader/internal/fetch"
	"github.com/handiism/asset-loader/internal/model"
	"golang.org/x/sync/errgroup"
)

var errFetchFailed = errors.New("fetch failed")

type baseTask struct {
	desc *Descriptor
	env  Env
}

func (t *baseTask) Descriptor() *Descriptor { return t.desc }

// fetchAll fetches urls concurrently and returns their contents in order.
// The first terminal failure cancels the remaining fetches; failed or
// cancelled entries are nil. progress receives the mean fraction.
func fetchAll(ctx context.Context, env Env, urls []string, progress ProgressFunc) [][]byte {
	raw := make([][]byte, len(urls))

	var mu sync.Mutex
	fractions := make([]float64, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		f := env.NewFetcher(u)
		f.OnProgress = func(p float64) {
			mu.Lock()
			fractions[i] = p
			sum := 0.0
			for _, v := range fractions {
				sum += v
			}
			mu.Unlock()
			if progress != nil {
				progress(sum / float64(len(urls)))
			}
		}
		g.Go(func() error {
			raw[i] = f.Run(gctx)
			if raw[i] == nil {
				return fmt.Errorf("%w: %s", errFetchFailed, u)
			}
			return nil
		})
	}
	_ = g.Wait()
	return raw
}

// span maps a task phase onto [from, from+width] of the task's progress.
func span(progress ProgressFunc, from, width float64) ProgressFunc {
	return func(p float64) {
		if progress != nil {
			progress(from + p*width)
		}
	}
}

// fetchTask is the leaf network task: image, audio, json and text.
type fetchTask struct {
	baseTask
	kind Kind
}

func fetchTaskOf(kind Kind) func(d *Descriptor, env Env) Task {
	return func(d *Descriptor, env Env) Task {
		return &fetchTask{baseTask: baseTask{desc: d, env: env}, kind: kind}
	}
}

func (t *fetchTask) Start(ctx context.Context, done DoneFunc, progress ProgressFunc) {
	urls := []string{t.desc.URL}
	if t.kind == KindImage && t.desc.AlphaURL != "" {
		urls = append(urls, t.desc.AlphaURL)
	}

	raw := fetchAll(ctx, t.env, urls, progress)
	for _, r := range raw {
		if r == nil {
			done(Output{Raw: raw})
			return
		}
	}

	content, err := t.synthesize(raw)
	if err != nil {
		t.env.Logger().Warn("failed to build result",
			"id", t.desc.ID,
			"url", t.desc.URL,
			"kind", t.kind.String(),
			"error", err)
		done(Output{Raw: raw})
		return
	}
	done(Output{Content: content, Raw: raw})
}

func (t *fetchTask) synthesize(raw [][]byte) (any, error) {
	data := raw[0]
	switch t.kind {
	case KindImage:
		var alpha []byte
		if len(raw) > 1 {
			alpha = raw[1]
		}
		return decodeImage(t.env, data, alpha, t.desc.MaxDimension, t.desc.Variant)

	case KindAudio:
		a := &model.Audio{Source: data, URL: t.desc.URL}
		tags, err := audio.ReadTags(data)
		if err != nil {
			// the audio itself is still usable
			t.env.Logger().Warn("failed to read audio tags", "url", t.desc.URL, "error", err)
			return a, nil
		}
		a.Title = tags.Title
		a.Artist = tags.Artist
		a.Album = tags.Album
		a.Year = tags.Year
		a.Genre = tags.Genre
		a.Track = tags.Track
		a.Artwork = tags.Artwork
		return a, nil

	case KindJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return &model.Document{Raw: data, Value: v}, nil
	}

	return &model.Blob{Data: data, ContentType: mimetype.Detect(data).String()}, nil
}

// decodeImage decodes colour data, merges in alpha when given, and
// downscales to maxDim.
func decodeImage(env Env, data, alpha []byte, maxDim int, variant string) (*model.Image, error) {
	images := env.Images()

	img, format, err := images.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if alpha != nil {
		mask, _, err := images.Decode(alpha)
		if err != nil {
			return nil, fmt.Errorf("failed to decode alpha image: %w", err)
		}
		merged, err := images.MergeAlpha(img, mask)
		if err != nil {
			return nil, err
		}
		img = merged
	}
	if maxDim > 0 {
		img = images.ResizeToFit(img, maxDim, maxDim)
	}

	scale := 1.0
	if variant != "" {
		scale = env.Sizes().Scale(variant)
	}
	b := img.Bounds()
	return &model.Image{
		Source:  data,
		Image:   img,
		Format:  format,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Scale:   scale,
		Variant: variant,
	}, nil
}

// atlasTask fetches an atlas document, then the image it names.
type atlasTask struct {
	baseTask
}

func newAtlasTask(d *Descriptor, env Env) Task {
	return &atlasTask{baseTask{desc: d, env: env}}
}

func (t *atlasTask) Start(ctx context.Context, done DoneFunc, progress ProgressFunc) {
	docs := fetchAll(ctx, t.env, []string{t.desc.URL}, span(progress, 0, 0.3))
	if docs[0] == nil {
		done(Output{Raw: docs})
		return
	}

	a, err := atlas.Parse(docs[0])
	if err != nil {
		t.env.Logger().Warn("failed to parse atlas", "url", t.desc.URL, "error", err)
		done(Output{Raw: docs})
		return
	}

	imgURL := fetch.ResolveURL(t.desc.URL, a.ImagePath)
	imgs := fetchAll(ctx, t.env, []string{imgURL}, span(progress, 0.3, 0.7))
	raw := [][]byte{docs[0], imgs[0]}

	if imgs[0] != nil {
		img, err := decodeImage(t.env, imgs[0], nil, 0, t.desc.Variant)
		if err != nil {
			t.env.Logger().Warn("failed to build result", "url", imgURL, "kind", KindAtlas.String(), "error", err)
		} else {
			a.Image = img
		}
	}
	done(Output{Content: a, Raw: raw})
}

// playlistTask fetches a playlist and loads its entries as a nested batch
// of audio descriptors.
type playlistTask struct {
	baseTask
}

func newPlaylistTask(d *Descriptor, env Env) Task {
	return &playlistTask{baseTask{desc: d, env: env}}
}

func (t *playlistTask) Start(ctx context.Context, done DoneFunc, progress ProgressFunc) {
	raw := fetchAll(ctx, t.env, []string{t.desc.URL}, span(progress, 0, 0.1))
	if raw[0] == nil {
		done(Output{Raw: raw})
		return
	}

	format := audio.DetectFormat(t.desc.URL)
	if format == audio.FormatUnknown {
		format = audio.FormatM3U
	}
	entries, err := audio.ParsePlaylist(raw[0], format)
	if err != nil {
		t.env.Logger().Warn("failed to parse playlist", "url", t.desc.URL, "error", err)
		done(Output{Raw: raw})
		return
	}

	pl := &model.Playlist{Entries: make([]model.PlaylistEntry, len(entries))}
	tracks := make([]Descriptor, len(entries))
	for i, e := range entries {
		pl.Entries[i] = model.PlaylistEntry{URL: e.URL, Title: e.Title, Duration: e.Duration}
		tracks[i] = Descriptor{URL: fetch.ResolveURL(t.desc.URL, e.URL), Type: "audio"}
	}

	opts := LoadOptions{Progress: span(progress, 0.1, 0.9)}
	t.env.RunBatch(ctx, tracks, opts, func(results model.Results) {
		pl.Tracks, _ = results.(model.ResultList)
		for i, track := range pl.Tracks {
			if a, ok := track.(*model.Audio); ok && a.Title == "" && i < len(pl.Entries) {
				a.Title = pl.Entries[i].Title
			}
		}
		done(Output{Content: pl, Raw: raw})
	})
}

// listTask runs its nested assets as a batch of their own.
type listTask struct {
	baseTask
}

func newListTask(d *Descriptor, env Env) Task {
	return &listTask{baseTask{desc: d, env: env}}
}

func (t *listTask) Start(ctx context.Context, done DoneFunc, progress ProgressFunc) {
	opts := LoadOptions{Progress: progress}
	t.env.RunBatch(ctx, t.desc.Assets, opts, func(results model.Results) {
		done(Output{Content: results})
	})
}

// funcTask runs the descriptor's WorkFunc.
type funcTask struct {
	baseTask
}

func newFuncTask(d *Descriptor, env Env) Task {
	return &funcTask{baseTask{desc: d, env: env}}
}

func (t *funcTask) Start(ctx context.Context, done DoneFunc, progress ProgressFunc) {
	defer func() {
		if r := recover(); r != nil {
			t.env.Logger().Error("function task panicked", "id", t.desc.ID, "panic", r)
			done(Output{})
		}
	}()

	v, err := t.desc.Func(ctx, t.desc)
	if err != nil {
		t.env.Logger().Warn("function task failed", "id", t.desc.ID, "error", err)
		done(Output{})
		return
	}
	if progress != nil {
		progress(1)
	}
	done(Output{Content: v})
}
