// Package audio reads audio metadata and playlist files.
//
// # ID3 Tags
//
// ReadTags extracts metadata from fetched MP3 data:
//
//	tags, err := audio.ReadTags(data)
//	fmt.Println(tags.Artist, tags.Album, tags.Title)
//
// The reader supports:
//   - Artist, Album, Title, Year, Genre
//   - Track Number
//   - Cover Art (first attached picture)
//
// # Playlists
//
// Playlists are parsed into entries whose URLs are relative to the
// playlist's own location:
//
//	entries, err := audio.ParsePlaylist(data, audio.DetectFormat(url))
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
//
// CreatePlaylist renders entries back into any of these formats.
package audio
