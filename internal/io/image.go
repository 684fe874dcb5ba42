package ioutils

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrSizeMismatch is returned by MergeAlpha when the colour and alpha
// images have different bounds.
var ErrSizeMismatch = errors.New("colour and alpha images differ in size")

// ImageService provides the image operations image tasks need.
//
// ImageService is used to:
//   - Decode fetched image bytes
//   - Merge a colour image with a separate greyscale alpha image
//   - Downscale images that exceed a descriptor's maximum dimension
//
// Example usage:
//
//	svc := NewImageService()
//
//	color, _, _ := svc.Decode(colorBytes)
//	alpha, _, _ := svc.Decode(alphaBytes)
//	merged, err := svc.MergeAlpha(color, alpha)
//
//	// Fit within 512x512, maintaining aspect ratio
//	small := svc.ResizeToFit(merged, 512, 512)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Decode decodes PNG, JPEG, GIF, BMP or WebP data and returns the image and the
// format name.
func (s *ImageService) Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

// MergeAlpha combines a colour image with an alpha mask image.
//
// The alpha image's luminance (or its own alpha, for images that have one)
// becomes the alpha channel of the result. Both images must have the same
// dimensions.
//
// The result is a non-premultiplied NRGBA image with origin (0,0).
func (s *ImageService) MergeAlpha(color, alpha image.Image) (*image.NRGBA, error) {
	cb := color.Bounds()
	ab := alpha.Bounds()
	if cb.Dx() != ab.Dx() || cb.Dy() != ab.Dy() {
		return nil, ErrSizeMismatch
	}

	rect := image.Rect(0, 0, cb.Dx(), cb.Dy())
	mask := image.NewAlpha(rect)
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			mask.Pix[mask.PixOffset(x, y)] = maskValue(alpha, ab.Min.X+x, ab.Min.Y+y)
		}
	}

	dst := image.NewNRGBA(rect)
	draw.DrawMask(dst, rect, color, cb.Min, mask, image.Point{}, draw.Src)
	return dst, nil
}

// maskValue reads a mask pixel. Opaque images are treated as greyscale
// masks; images with transparency contribute their own alpha.
func maskValue(img image.Image, x, y int) uint8 {
	r, g, b, a := img.At(x, y).RGBA()
	if a < 0xffff {
		return uint8(a >> 8)
	}
	// ITU-R 601 luma
	lum := (19595*r + 38470*g + 7471*b + 1<<15) >> 16
	return uint8(lum >> 8)
}

// ResizeToFit scales img down to fit within maxWidth x maxHeight.
//
// The aspect ratio is preserved. Images already within bounds are returned
// unchanged. A non-positive bound disables resizing along that axis.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x667
//	resized := svc.ResizeToFit(img, 1000, 1000)
func (s *ImageService) ResizeToFit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxWidth <= 0 {
		maxWidth = width
	}
	if maxHeight <= 0 {
		maxHeight = height
	}
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	// Calculate new dimensions maintaining aspect ratio
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
