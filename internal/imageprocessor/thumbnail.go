package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// ImageSize is a bounding box.
type ImageSize struct {
	Name   string
	Width  int
	Height int
}

var SizeThumbnail = ImageSize{Name: "thumbnail", Width: 300, Height: 300}

// Thumbnailer renders JPEG previews of uploaded scans and photos.
type Thumbnailer struct {
	quality int // JPEG quality (1-100)
	size    ImageSize
}

func NewThumbnailer(quality int, size ImageSize) *Thumbnailer {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = SizeThumbnail
	}
	return &Thumbnailer{quality: quality, size: size}
}

// Thumbnail decodes a JPEG or PNG and returns a JPEG that fits the bounding box.
// Images already inside the box are re-encoded at their own size.
func (t *Thumbnailer) Thumbnail(reader io.Reader) ([]byte, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	scaled := fit(img, t.size.Width, t.size.Height)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down to the box keeping the aspect ratio. It never upscales.
func fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	newWidth, newHeight := maxWidth, maxHeight
	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
