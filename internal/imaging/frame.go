package imaging

import (
	"image"
	"time"

	"github.com/disintegration/imaging"
)

// Frame is an immutable snapshot of one capture instant.
//
// The pixel data is copied on construction, so later changes to the source
// image do not affect the frame. Frames are owned by the pipeline pass that
// receives them and are dropped once that pass completes.
type Frame struct {
	img      *image.NRGBA
	seq      uint64
	captured time.Time
}

// NewFrame copies img into a new Frame.
//
// Parameters:
//   - img: Source image in any color model. Its bounds need not start at (0,0).
//   - seq: Capture sequence number assigned by the frame source.
//   - captured: Capture timestamp. The pipeline uses it as "now" for all
//     cooldown and eviction decisions made on this frame.
//
// Returns nil if img is nil or has an empty bounds rectangle.
func NewFrame(img image.Image, seq uint64, captured time.Time) *Frame {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	return &Frame{
		img:      imaging.Clone(img),
		seq:      seq,
		captured: captured,
	}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.img.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.img.Rect.Dy() }

// Seq returns the capture sequence number.
func (f *Frame) Seq() uint64 { return f.seq }

// CapturedAt returns the capture timestamp.
func (f *Frame) CapturedAt() time.Time { return f.captured }

// Image exposes the frame pixels as a read-only image.Image.
// Callers must not type-assert and modify the result.
func (f *Frame) Image() image.Image { return f.img }

// Contains reports whether (x, y) lies inside the frame.
func (f *Frame) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.img.Rect.Dx() && y < f.img.Rect.Dy()
}

// RGB returns the 8-bit color components at (x, y).
// No bounds checking is performed; caller must ensure coordinates are valid.
func (f *Frame) RGB(x, y int) RGBColor {
	i := f.img.PixOffset(x, y)
	p := f.img.Pix[i : i+3 : i+3]
	return RGBColor{R: p[0], G: p[1], B: p[2]}
}

// HSV returns the HSV representation of the pixel at (x, y).
// No bounds checking is performed; caller must ensure coordinates are valid.
func (f *Frame) HSV(x, y int) HSVColor {
	return f.RGB(x, y).HSV()
}
