package watermark

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Outcome reports which of the two paths Apply took. Composited is false when
// the watermark was absent or composition failed and the source was passed
// through unchanged. Err records a swallowed composition error, if any.
type Outcome struct {
	Composited bool
	Err        error
}

// Compositor overlays a translucent logo onto generated images.
type Compositor struct {
	// WatermarkPath may point at a missing file; Apply then degrades to a
	// plain copy.
	WatermarkPath string
	// Transparency is the watermark opacity in percent, 0..100.
	Transparency int
}

// Apply writes src to dst with the watermark composited at the bottom-left
// corner. It never fails from the caller's perspective: every error path
// falls back to saving the unmodified source.
func (c *Compositor) Apply(srcPath, dstPath string) Outcome {
	if c.WatermarkPath == "" {
		return Outcome{Composited: false, Err: copyFile(srcPath, dstPath)}
	}
	if _, err := os.Stat(c.WatermarkPath); err != nil {
		return Outcome{Composited: false, Err: copyFile(srcPath, dstPath)}
	}

	if err := c.composite(srcPath, dstPath); err != nil {
		return Outcome{Composited: false, Err: firstErr(err, copyFile(srcPath, dstPath))}
	}
	return Outcome{Composited: true}
}

func (c *Compositor) composite(srcPath, dstPath string) error {
	src, err := decodeImage(srcPath)
	if err != nil {
		return fmt.Errorf("decode source: %w", err)
	}
	mark, err := decodeImage(c.WatermarkPath)
	if err != nil {
		return fmt.Errorf("decode watermark: %w", err)
	}

	srcBounds := src.Bounds()
	scaled := c.scaleWatermark(mark, srcBounds)

	out := image.NewNRGBA(srcBounds)
	draw.Draw(out, srcBounds, src, srcBounds.Min, draw.Src)

	position := image.Pt(srcBounds.Min.X, srcBounds.Max.Y-scaled.Bounds().Dy())
	target := scaled.Bounds().Add(position.Sub(scaled.Bounds().Min))
	draw.Draw(out, target, scaled, scaled.Bounds().Min, draw.Over)

	return encodePNG(dstPath, out)
}

// scaleWatermark resizes the watermark so its larger dimension is 14% of the
// source's smaller dimension, then scales its alpha channel by the configured
// transparency.
func (c *Compositor) scaleWatermark(mark image.Image, srcBounds image.Rectangle) *image.NRGBA {
	minDim := srcBounds.Dx()
	if srcBounds.Dy() < minDim {
		minDim = srcBounds.Dy()
	}
	markBounds := mark.Bounds()
	maxMark := markBounds.Dx()
	if markBounds.Dy() > maxMark {
		maxMark = markBounds.Dy()
	}

	factor := 0.14 * float64(minDim) / float64(maxMark)
	w := int(float64(markBounds.Dx()) * factor)
	h := int(float64(markBounds.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), mark, markBounds, xdraw.Src, nil)

	opacity := c.Transparency
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 100 {
		opacity = 100
	}
	for i := 3; i < len(scaled.Pix); i += 4 {
		scaled.Pix[i] = uint8(int(scaled.Pix[i]) * opacity / 100)
	}
	return scaled
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// copyFile writes the source bytes to dst unchanged. A same-path copy is a
// no-op so in-place watermarking can pass through without touching the file.
func copyFile(src, dst string) error {
	if src == dst {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
