package audio

import (
	"bytes"
	"fmt"

	"github.com/bogem/id3v2"
)

// Tags holds the ID3 metadata read from an audio file.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   string
	Genre  string

	// Track is the raw TRCK frame, e.g. "3" or "3/12".
	Track string

	// Artwork is the first attached picture, nil if there is none.
	Artwork []byte

	// ArtworkMIME is the MIME type of Artwork.
	ArtworkMIME string
}

// ReadTags parses the ID3v2 tag at the start of data.
//
// Data without an ID3v2 header is not an error; it yields empty Tags.
// Only string frames and the first attached picture are read; the audio
// frames themselves are left untouched.
//
// Example:
//
//	tags, err := audio.ReadTags(mp3Bytes)
//	if err == nil {
//	    fmt.Printf("%s - %s\n", tags.Artist, tags.Title)
//	}
func ReadTags(data []byte) (*Tags, error) {
	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID3 tag: %w", err)
	}
	defer tag.Close()

	tags := &Tags{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Year:   tag.Year(),
		Genre:  tag.Genre(),
	}

	if tf := tag.GetTextFrame("TRCK"); tf.Text != "" {
		tags.Track = tf.Text
	}

	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		tags.Artwork = pic.Picture
		tags.ArtworkMIME = pic.MimeType
		break
	}

	return tags, nil
}
