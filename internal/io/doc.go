// Package ioutils provides file system access and image processing utilities.
//
// This package contains:
//   - FileTransport, a fetch.Transport that reads assets from disk
//   - ImageService, which decodes, merges and resizes images
//
// # File Transport
//
//	ft := &ioutils.FileTransport{Root: "./assets"}
//	data, err := ft.Fetch(ctx, "file:///srv/assets/hero.png", nil)
//
// Query strings (version or cache-busting parameters) are stripped before
// the path is opened.
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//
//	// Merge a JPEG colour channel with a PNG alpha mask
//	merged, _ := svc.MergeAlpha(color, alpha)
//
//	// Fit within 500x500
//	small := svc.ResizeToFit(merged, 500, 500)
package ioutils
