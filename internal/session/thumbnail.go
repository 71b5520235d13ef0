package session

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Import for image format support
	"image/jpeg"
	_ "image/png" // Import for image format support

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Import for image format support
)

const (
	thumbMaxDim      = 256
	thumbJPEGQuality = 80
)

// Thumbnail downsizes image data to a small JPEG suitable for the
// archive. Aspect ratio is preserved; images already within bounds are
// still re-encoded so the archive holds uniform JPEGs.
func Thumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("decode preview: empty image")
	}

	scale := 1.0
	if w > h && w > thumbMaxDim {
		scale = float64(thumbMaxDim) / float64(w)
	} else if h >= w && h > thumbMaxDim {
		scale = float64(thumbMaxDim) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Placeholder generates a neutral gray thumbnail used when an item has
// no decodable preview (videos, or archive entries missing their
// thumbnail payload)
func Placeholder() []byte {
	const dim = 128
	img := image.NewRGBA(image.Rect(0, 0, dim, dim))
	bg := color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	fg := color.RGBA{0xB0, 0xB0, 0xB0, 0xFF}
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			// Checker pattern so the placeholder is visibly synthetic.
			if (x/16+y/16)%2 == 0 {
				img.Set(x, y, bg)
			} else {
				img.Set(x, y, fg)
			}
		}
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA cannot fail.
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbJPEGQuality})
	return buf.Bytes()
}
