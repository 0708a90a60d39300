package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
)

// Annotation is one box to draw on a debug overlay.
type Annotation struct {
	Box   image.Rectangle // Pixel rectangle, Max exclusive
	Label int             // Numeric label drawn at the top-left corner; negative for none
	Color color.RGBA
}

// OverlayOptions controls the zone grid of an overlay.
//
// Columns and Rows hold normalized (0-1) positions of the vertical and
// horizontal zone boundaries.
type OverlayOptions struct {
	Columns   []float64
	Rows      []float64
	GridColor color.RGBA
}

// Overlay renders a copy of the frame with zone boundaries and annotated boxes.
//
// The frame itself is not modified. Boxes are outlined one pixel wide and
// clipped to the frame; labels use a tiny built-in digit font so the overlay
// needs no font assets.
func Overlay(f *Frame, opts OverlayOptions, notes []Annotation) *image.RGBA {
	bounds := f.img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, f.img, bounds.Min, draw.Src)

	for _, c := range opts.Columns {
		x := int(c * float64(width))
		if x <= 0 || x >= width {
			continue
		}
		for y := 0; y < height; y++ {
			result.Set(x, y, opts.GridColor)
		}
	}
	for _, r := range opts.Rows {
		y := int(r * float64(height))
		if y <= 0 || y >= height {
			continue
		}
		for x := 0; x < width; x++ {
			result.Set(x, y, opts.GridColor)
		}
	}

	labelColor := color.RGBA{255, 255, 255, 255}
	for _, n := range notes {
		box := n.Box.Intersect(bounds)
		if box.Empty() {
			continue
		}
		strokeRect(result, box, n.Color)
		if n.Label >= 0 {
			drawLabel(result, box.Min.X+2, box.Min.Y+2, strconv.Itoa(n.Label), labelColor, n.Color)
		}
	}

	return result
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLabel draws a simple text label at the given position
// with a 3x5 digit font; other runes leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
