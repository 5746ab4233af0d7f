// Package transform decodes, resizes and re-encodes raster images.
package transform

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Options bounds the output size. Zero means unconstrained.
type Options struct {
	Width  int
	Height int
}

// Resizes reports whether any bound is set.
func (o Options) Resizes() bool {
	return o.Width > 0 || o.Height > 0
}

// Output is an encoded image and the format name it was encoded in.
type Output struct {
	Data   []byte
	Format string
}

// Transformer fits images inside the requested box without enlarging them.
type Transformer struct{}

func New() *Transformer {
	return &Transformer{}
}

// Probe reads dimensions and format from the image header.
func (t *Transformer) Probe(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode config: %w", err)
	}
	return cfg, format, nil
}

// Transform returns data unchanged when no resize is requested or the image
// already fits. Otherwise it scales the image down to fit inside the box and
// encodes it in the source format. WebP has no encoder here and comes out as PNG.
func (t *Transformer) Transform(data []byte, opts Options) (Output, error) {
	cfg, format, err := t.Probe(data)
	if err != nil {
		return Output{}, err
	}

	maxW, maxH := opts.Width, opts.Height
	if maxW <= 0 {
		maxW = cfg.Width
	}
	if maxH <= 0 {
		maxH = cfg.Height
	}
	if !opts.Resizes() || (cfg.Width <= maxW && cfg.Height <= maxH) {
		return Output{Data: data, Format: format}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Output{}, fmt.Errorf("decode %s: %w", format, err)
	}
	w, h := fitBox(cfg.Width, cfg.Height, maxW, maxH)
	resized := imaging.Resize(src, w, h, imaging.Lanczos)

	var (
		buf    bytes.Buffer
		encErr error
	)
	switch format {
	case "jpeg":
		encErr = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	case "gif":
		encErr = imaging.Encode(&buf, resized, imaging.GIF)
	default:
		format = "png"
		encErr = imaging.Encode(&buf, resized, imaging.PNG)
	}
	if encErr != nil {
		return Output{}, fmt.Errorf("encode %s: %w", format, encErr)
	}
	return Output{Data: buf.Bytes(), Format: format}, nil
}

// fitBox scales srcW x srcH to fit inside maxW x maxH, keeping the aspect
// ratio. The scaled side is rounded to the nearest pixel, never below 1.
func fitBox(srcW, srcH, maxW, maxH int) (int, int) {
	srcRatio := float64(srcW) / float64(srcH)
	if srcRatio > float64(maxW)/float64(maxH) {
		return maxW, max(1, int(math.Round(float64(maxW)/srcRatio)))
	}
	return max(1, int(math.Round(float64(maxH)*srcRatio))), maxH
}
