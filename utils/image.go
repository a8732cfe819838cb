package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	color_extractor "github.com/marekm4/color-extractor"
	"github.com/nfnt/resize"
)

const (
	UserAgent = "mediabridge/1.0 (+https://github.com/marcus-crane/mediabridge)"

	DefaultImageSize = 256
)

// ImageEncoder turns artwork into the base64 PNG strings the host renders.
// Images larger than MaxSize on either side are scaled down first.
type ImageEncoder struct {
	MaxSize uint
}

func NewImageEncoder(maxSize uint) ImageEncoder {
	if maxSize == 0 {
		maxSize = DefaultImageSize
	}
	return ImageEncoder{MaxSize: maxSize}
}

func (e ImageEncoder) Encode(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to encode")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return "", fmt.Errorf("image has no pixels")
	}

	if e.MaxSize > 0 && (uint(bounds.Dx()) > e.MaxSize || uint(bounds.Dy()) > e.MaxSize) {
		img = resize.Thumbnail(e.MaxSize, e.MaxSize, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DominantColours returns the main colours of an image as hex strings.
func DominantColours(img image.Image) []string {
	if img == nil {
		return nil
	}
	var domColours []string
	for _, c := range color_extractor.ExtractColors(img) {
		domColours = append(domColours, colorToHexString(c))
	}
	return domColours
}

func colorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}
