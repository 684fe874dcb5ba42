// Package config provides configuration management for the asset loader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation of field constraints
//   - Conversion to fetch.RetryPolicy and size definitions
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 3 retries, no backoff
//	// no concurrency cap
//	// built-in half/full size variants
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	if err := settings.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Saving Settings
//
//	settings.BaseURL = "https://cdn.example.com/game/"
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Base URL, local asset root and versions file
//   - Cache busting and the cross-origin flag
//   - Retry count, backoff and per-attempt timeout
//   - Concurrent task limits
//   - Size variant definitions
//   - Playlist export and logging
package config
