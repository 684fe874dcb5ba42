// Package loader resolves batches of asset descriptors into results.
//
// The Manager is the entry point. It owns:
//   - a Registry of task types, matched highest priority first
//   - the result cache
//   - the size resolver that rewrites descriptors for the viewport
//   - a pool of orchestrators, one per running batch
//
// # Loading
//
// A batch is submitted with Load and completes exactly once:
//
//	h, err := mgr.Load([]loader.Descriptor{
//	    {ID: "hero", URL: "images/hero.png"},
//	    {ID: "sheet", URL: "sprites/ui.atlas.json", Cache: true},
//	}, loader.LoadOptions{
//	    Progress: func(p float64) { fmt.Printf("%.0f%%\n", p*100) },
//	    Complete: func(results model.Results) {
//	        hero := results.(model.ResultMap)["hero"].(*model.Image)
//	        fmt.Println(hero.Width, hero.Height)
//	    },
//	})
//
// When any descriptor has an ID the results are a model.ResultMap;
// otherwise they are a model.ResultList in submission order. A failed
// resource is a nil entry, never an error.
//
// # Task Types
//
// Built-in types, in match order:
//
//	list      descriptors with nested Assets
//	func      descriptors with a Func
//	atlas     *.atlas / *.atlas.json, or type "atlas"
//	playlist  *.m3u, *.pls, *.wpl, *.zpl, or type "playlist"
//	image     *.png, *.jpg, *.gif, *.bmp, *.webp, or type "image"
//	audio     *.mp3, *.ogg, *.wav, ..., or type "audio"
//	json      *.json, or type "json"
//	text      any other URL
//
// Custom types are added with Manager.Register. A descriptor no type
// accepts is dropped with a warning, or reported as an *UnmatchedError
// in Strict mode.
//
// # Scheduling
//
// Tasks run concurrently by default, capped by LoadOptions.MaxConcurrent
// or the manager's settings. Sequential runs them one at a time in
// submission order. Every callback of a batch runs on that batch's event
// loop goroutine, one at a time.
package loader
