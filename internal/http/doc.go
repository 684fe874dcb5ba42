// Package http provides the HTTP transport used to fetch remote assets.
//
// The Client in this package handles:
//   - User-Agent and optional Origin headers
//   - In-memory downloads with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch a text resource
//	body, err := client.GetString(ctx, "https://cdn.example.com/strings.json")
//
//	// Fetch with progress callback
//	data, err := client.Fetch(ctx, imageURL, func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
