package audio

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U is a .m3u/.m3u8 file, optionally extended with EXTINF lines.
	FormatM3U PlaylistFormat = iota

	// FormatPLS is a .pls file (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL is a .wpl file (Windows Media Player, SMIL).
	FormatWPL

	// FormatZPL is a .zpl file (Zune/Groove Music, SMIL).
	FormatZPL

	// FormatUnknown is returned by DetectFormat for other extensions.
	FormatUnknown PlaylistFormat = -1
)

// Extension returns the file extension for the format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// DetectFormat returns the playlist format implied by a URL's extension.
func DetectFormat(rawURL string) PlaylistFormat {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	switch strings.ToLower(path.Ext(rawURL)) {
	case ".m3u", ".m3u8":
		return FormatM3U
	case ".pls":
		return FormatPLS
	case ".wpl":
		return FormatWPL
	case ".zpl":
		return FormatZPL
	}
	return FormatUnknown
}

// Entry is one playlist item.
type Entry struct {
	// URL is the item location as written in the playlist, usually
	// relative to the playlist itself.
	URL string

	// Title is the display title, if the format carries one.
	Title string

	// Duration is the length in seconds; -1 or 0 when unknown.
	Duration int
}

// ParsePlaylist reads playlist entries in the given format.
//
// Example:
//
//	entries, err := audio.ParsePlaylist(data, audio.DetectFormat(url))
//	for _, e := range entries {
//	    fmt.Println(e.Title, e.URL)
//	}
func ParsePlaylist(data []byte, format PlaylistFormat) ([]Entry, error) {
	switch format {
	case FormatM3U:
		return parseM3U(data)
	case FormatPLS:
		return parsePLS(data)
	case FormatWPL, FormatZPL:
		return parseSMIL(data)
	}
	return nil, fmt.Errorf("unsupported playlist format %d", format)
}

// parseM3U reads plain and extended M3U.
//
// Extended M3U format:
//
//	#EXTM3U
//	#EXTINF:180,Artist - Title
//	filename1.mp3
func parseM3U(data []byte) ([]Entry, error) {
	var entries []Entry
	var pending *Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			info := strings.TrimPrefix(line, "#EXTINF:")
			e := Entry{Duration: -1}
			if comma := strings.Index(info, ","); comma >= 0 {
				e.Title = strings.TrimSpace(info[comma+1:])
				info = info[:comma]
			}
			// attributes may follow the duration: #EXTINF:180 tvg-id="x",Title
			if fields := strings.Fields(info); len(fields) > 0 {
				if d, err := strconv.Atoi(fields[0]); err == nil {
					e.Duration = d
				}
			}
			pending = &e
		case strings.HasPrefix(line, "#"):
			continue
		default:
			e := Entry{URL: line, Duration: -1}
			if pending != nil {
				e.Title = pending.Title
				e.Duration = pending.Duration
				pending = nil
			}
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}

// parsePLS reads the INI-style PLS format:
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func parsePLS(data []byte) ([]Entry, error) {
	byIndex := make(map[int]*Entry)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		var field string
		for _, prefix := range []string{"File", "Title", "Length"} {
			if strings.HasPrefix(key, prefix) {
				field = prefix
				break
			}
		}
		if field == "" {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, field))
		if err != nil {
			continue
		}

		e, ok := byIndex[idx]
		if !ok {
			e = &Entry{Duration: -1}
			byIndex[idx] = e
		}
		switch field {
		case "File":
			e.URL = value
		case "Title":
			e.Title = value
		case "Length":
			if d, err := strconv.Atoi(value); err == nil {
				e.Duration = d
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	entries := make([]Entry, 0, len(indexes))
	for _, idx := range indexes {
		if e := byIndex[idx]; e.URL != "" {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

type smilDoc struct {
	Media []struct {
		Src        string `xml:"src,attr"`
		TrackTitle string `xml:"trackTitle,attr"`
		Duration   int    `xml:"duration,attr"`
	} `xml:"body>seq>media"`
}

// parseSMIL reads WPL and ZPL, which share the SMIL body layout.
// ZPL durations are in milliseconds.
func parseSMIL(data []byte) ([]Entry, error) {
	var doc smilDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse playlist XML: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Media))
	for _, m := range doc.Media {
		if m.Src == "" {
			continue
		}
		e := Entry{URL: m.Src, Title: m.TrackTitle, Duration: -1}
		if m.Duration > 0 {
			e.Duration = m.Duration / 1000
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CreatePlaylist renders entries in the given format.
//
// For M3U, extended adds the #EXTM3U header and #EXTINF lines.
//
// Example:
//
//	content := audio.CreatePlaylist(entries, audio.FormatM3U, true)
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// music/song.mp3
func CreatePlaylist(entries []Entry, format PlaylistFormat, extended bool) string {
	var sb strings.Builder

	switch format {
	case FormatPLS:
		sb.WriteString("[playlist]\n")
		for i, e := range entries {
			idx := i + 1
			sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, e.URL))
			sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, e.Title))
			sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, e.Duration))
		}
		sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(entries)))
		sb.WriteString("Version=2\n")

	case FormatWPL, FormatZPL:
		if format == FormatZPL {
			sb.WriteString("<?zpl version=\"2.0\"?>\n")
		} else {
			sb.WriteString("<?wpl version=\"1.0\"?>\n")
		}
		sb.WriteString("<smil>\n  <body>\n    <seq>\n")
		for _, e := range entries {
			if format == FormatZPL {
				sb.WriteString(fmt.Sprintf("      <media src=\"%s\" trackTitle=\"%s\" duration=\"%d\"/>\n",
					escapeXML(e.URL), escapeXML(e.Title), max(e.Duration, 0)*1000))
			} else {
				sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(e.URL)))
			}
		}
		sb.WriteString("    </seq>\n  </body>\n</smil>\n")

	default:
		if extended {
			sb.WriteString("#EXTM3U\n")
		}
		for _, e := range entries {
			if extended {
				sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", e.Duration, e.Title))
			}
			sb.WriteString(e.URL + "\n")
		}
	}

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
