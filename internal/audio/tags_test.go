package audio

import (
	"bytes"
	"testing"

	"github.com/bogem/id3v2"
)

func buildMP3(t *testing.T) []byte {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle("Theme")
	tag.SetArtist("Composer")
	tag.SetAlbum("Soundtrack")
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, "3/12")
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     []byte{0xff, 0xd8, 0xff},
	})

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	// fake MPEG frame data after the tag
	buf.Write([]byte{0xff, 0xfb, 0x90, 0x00})
	return buf.Bytes()
}

func TestReadTags(t *testing.T) {
	tags, err := ReadTags(buildMP3(t))
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}

	if tags.Title != "Theme" {
		t.Errorf("Title = %q, want Theme", tags.Title)
	}
	if tags.Artist != "Composer" {
		t.Errorf("Artist = %q, want Composer", tags.Artist)
	}
	if tags.Album != "Soundtrack" {
		t.Errorf("Album = %q, want Soundtrack", tags.Album)
	}
	if tags.Track != "3/12" {
		t.Errorf("Track = %q, want 3/12", tags.Track)
	}
	if !bytes.Equal(tags.Artwork, []byte{0xff, 0xd8, 0xff}) {
		t.Errorf("Artwork = %v", tags.Artwork)
	}
	if tags.ArtworkMIME != "image/jpeg" {
		t.Errorf("ArtworkMIME = %q", tags.ArtworkMIME)
	}
}

func TestReadTags_NoTag(t *testing.T) {
	tags, err := ReadTags([]byte{0xff, 0xfb, 0x90, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06})
	if err != nil {
		t.Fatalf("ReadTags() error = %v", err)
	}
	if tags.Title != "" || tags.Artwork != nil {
		t.Errorf("expected empty tags, got %+v", tags)
	}
}
