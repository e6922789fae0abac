package thumbnail

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// ErrNotAnImage is returned when the input bytes cannot be decoded as an
// image. Callers treat it as "no thumbnail", never as a fatal error.
var ErrNotAnImage = errors.New("input is not a decodable image")

const jpegQuality = 85

// Derive resizes raw image bytes so that neither dimension exceeds the given
// bounding box, preserving aspect ratio and never upscaling, and re-encodes
// the result as JPEG. It is pure and safe for concurrent use.
func Derive(raw []byte, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, errors.New("thumbnail bounding box must be positive")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(ErrNotAnImage, err.Error())
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.Wrap(ErrNotAnImage, "image has zero dimension")
	}

	targetWidth, targetHeight := fit(width, height, maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, "encoding thumbnail")
	}
	return buf.Bytes(), nil
}

// fit computes the largest dimensions within (maxW, maxH) that keep the
// source aspect ratio without upscaling.
func fit(w, h, maxW, maxH int) (int, int) {
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale >= 1 {
		return w, h
	}
	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}
