package transform

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height, format
}

func TestProbe(t *testing.T) {
	cfg, format, err := New().Probe(encodePNG(t, 200, 100))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
	assert.Equal(t, "png", format)

	_, _, err = New().Probe([]byte("nope"))
	assert.Error(t, err)
}

func TestTransformPassthroughWithoutOptions(t *testing.T) {
	data := encodePNG(t, 200, 100)

	out, err := New().Transform(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
	assert.Equal(t, "png", out.Format)
}

func TestTransformFitsInsideBox(t *testing.T) {
	data := encodePNG(t, 200, 100)

	tests := []struct {
		name        string
		opts        Options
		wantW       int
		wantH       int
		passthrough bool
	}{
		{name: "width only", opts: Options{Width: 100}, wantW: 100, wantH: 50},
		{name: "height only", opts: Options{Height: 20}, wantW: 40, wantH: 20},
		{name: "square box", opts: Options{Width: 50, Height: 50}, wantW: 50, wantH: 25},
		{name: "box larger than source", opts: Options{Width: 400, Height: 400}, wantW: 200, wantH: 100, passthrough: true},
		{name: "width larger than source", opts: Options{Width: 300}, wantW: 200, wantH: 100, passthrough: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New().Transform(data, tt.opts)
			require.NoError(t, err)

			w, h, format := decodedSize(t, out.Data)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, "png", format)
			assert.Equal(t, "png", out.Format)
			if tt.passthrough {
				assert.Equal(t, data, out.Data)
			}
		})
	}
}

func TestTransformRoundsScaledSide(t *testing.T) {
	out, err := New().Transform(encodePNG(t, 201, 100), Options{Width: 100})
	require.NoError(t, err)

	w, h, _ := decodedSize(t, out.Data)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestFitBox(t *testing.T) {
	tests := []struct {
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{201, 100, 100, 100, 100, 50},
		{200, 100, 100, 100, 100, 50},
		{100, 201, 100, 100, 50, 100},
		{200, 100, 200, 20, 40, 20},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := fitBox(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantW, w, "%dx%d in %dx%d", tt.srcW, tt.srcH, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantH, h, "%dx%d in %dx%d", tt.srcW, tt.srcH, tt.maxW, tt.maxH)
	}
}

func TestTransformKeepsJPEG(t *testing.T) {
	out, err := New().Transform(encodeJPEG(t, 120, 80), Options{Width: 60})
	require.NoError(t, err)

	w, h, format := decodedSize(t, out.Data)
	assert.Equal(t, 60, w)
	assert.Equal(t, 40, h)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, "jpeg", out.Format)
}

func TestTransformRejectsGarbage(t *testing.T) {
	_, err := New().Transform([]byte("garbage"), Options{Width: 10})
	assert.Error(t, err)

	_, err = New().Transform([]byte("garbage"), Options{})
	assert.Error(t, err)
}
