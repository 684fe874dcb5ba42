// Package atlas parses sprite atlas documents.
//
// An atlas is a JSON frame table plus one image that the frames index
// into. The loader fetches the document first, parses it here, then
// fetches the image it names relative to the document URL.
//
// # Document Format
//
// The TexturePacker JSON layout is supported, with frames either as a hash
// keyed by frame name or as an array of entries carrying a filename:
//
//	{
//	  "frames": {
//	    "hero.png": {"frame": {"x": 0, "y": 0, "w": 32, "h": 32}, "rotated": false}
//	  },
//	  "meta": {"image": "sheet.png", "size": {"w": 256, "h": 256}}
//	}
package atlas
