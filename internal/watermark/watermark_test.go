package watermark

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func samePixel(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func TestApplyAbsentWatermarkCopiesBytesExactly(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	writePNG(t, src, 64, 64, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	c := &Compositor{WatermarkPath: filepath.Join(dir, "missing.png"), Transparency: 25}
	outcome := c.Apply(src, dst)

	assert.False(t, outcome.Composited)
	assert.NoError(t, outcome.Err)

	srcBytes, err := os.ReadFile(src)
	require.NoError(t, err)
	dstBytes, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(srcBytes, dstBytes))
}

func TestApplyInPlacePassThroughLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 32, 32, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	before, err := os.ReadFile(src)
	require.NoError(t, err)

	c := &Compositor{Transparency: 25}
	outcome := c.Apply(src, src)

	assert.False(t, outcome.Composited)
	assert.NoError(t, outcome.Err)
	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))
}

func TestApplyCompositesBottomLeft(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	mark := filepath.Join(dir, "logo.png")
	dst := filepath.Join(dir, "out.png")

	blue := color.NRGBA{B: 255, A: 255}
	red := color.NRGBA{R: 255, A: 255}
	writePNG(t, src, 100, 80, blue)
	writePNG(t, mark, 10, 10, red)

	c := &Compositor{WatermarkPath: mark, Transparency: 100}
	outcome := c.Apply(src, dst)

	require.True(t, outcome.Composited)
	require.NoError(t, outcome.Err)

	srcImg := decodePNG(t, src)
	out := decodePNG(t, dst)

	// Output dimensions match the source.
	assert.Equal(t, srcImg.Bounds(), out.Bounds())

	// The watermark footprint is 14% of the smaller source dimension:
	// 0.14*80 = 11.2 -> an 11x11 block anchored bottom-left.
	assert.True(t, samePixel(red, out.At(2, 75)), "inside the watermark footprint")

	// Everything outside the footprint is unchanged from the source.
	for _, p := range []image.Point{{50, 10}, {99, 79}, {30, 75}, {2, 10}} {
		assert.True(t, samePixel(srcImg.At(p.X, p.Y), out.At(p.X, p.Y)), "pixel %v outside footprint", p)
	}
}

func TestApplyZeroTransparencyLeavesPixelsUnchanged(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	mark := filepath.Join(dir, "logo.png")
	dst := filepath.Join(dir, "out.png")

	blue := color.NRGBA{B: 255, A: 255}
	writePNG(t, src, 100, 80, blue)
	writePNG(t, mark, 10, 10, color.NRGBA{R: 255, A: 255})

	c := &Compositor{WatermarkPath: mark, Transparency: 0}
	outcome := c.Apply(src, dst)
	require.True(t, outcome.Composited)

	out := decodePNG(t, dst)
	assert.True(t, samePixel(blue, out.At(2, 75)))
}

func TestApplyCorruptWatermarkFallsBackToSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	mark := filepath.Join(dir, "logo.png")
	dst := filepath.Join(dir, "out.png")

	writePNG(t, src, 40, 40, color.NRGBA{G: 255, A: 255})
	require.NoError(t, os.WriteFile(mark, []byte("not a png"), 0o644))

	c := &Compositor{WatermarkPath: mark, Transparency: 25}
	outcome := c.Apply(src, dst)

	assert.False(t, outcome.Composited)
	assert.Error(t, outcome.Err)

	srcBytes, err := os.ReadFile(src)
	require.NoError(t, err)
	dstBytes, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(srcBytes, dstBytes))
}
