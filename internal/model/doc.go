// Package model defines the result types produced by the asset loader.
//
// # Content Types
//
// Each built-in task kind produces one content type:
//
//	*model.Image    // image tasks, decoded and optionally merged with an alpha channel
//	*model.Audio    // audio tasks, with ID3 metadata
//	*model.Document // JSON tasks
//	*model.Blob     // text/binary tasks
//	*model.Atlas    // sprite atlas tasks (frame table + image)
//	*model.Playlist // playlist tasks (entries + loaded tracks)
//
// List tasks produce a nested Results value.
//
// # Ownership
//
// Every content type implements Destroyable. The result cache destroys
// values it evicts, and composite values destroy their children:
//
//	results := model.ResultMap{"hero": img, "sheet": atlas}
//	results.Destroy() // destroys img, atlas and atlas.Image
//
// A failed sub-resource is a nil entry in its Results; callers must check
// each entry.
package model
