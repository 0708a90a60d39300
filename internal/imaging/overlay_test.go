package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

var zeroTime time.Time

func TestOverlay_DoesNotModifyFrame(t *testing.T) {
	f := NewFrame(createInMemoryImage(90, 90, color.White), 0, zeroTime)
	notes := []Annotation{{Box: image.Rect(10, 10, 40, 40), Label: 1, Color: color.RGBA{255, 0, 0, 255}}}

	result := Overlay(f, OverlayOptions{Columns: []float64{1.0 / 3}}, notes)

	if result == nil {
		t.Fatal("Overlay returned nil")
	}
	if got := f.RGB(10, 10); got != (RGBColor{255, 255, 255}) {
		t.Errorf("frame was modified: %+v", got)
	}
}

func TestOverlay_GridLines(t *testing.T) {
	f := NewFrame(createInMemoryImage(100, 100, color.White), 0, zeroTime)
	grid := color.RGBA{0, 255, 0, 255}
	opts := OverlayOptions{
		Columns:   []float64{0.25, 0.5},
		Rows:      []float64{0.66},
		GridColor: grid,
	}

	result := Overlay(f, opts, nil)

	for _, p := range []image.Point{{25, 5}, {50, 80}, {5, 66}} {
		if result.RGBAAt(p.X, p.Y) != grid {
			t.Errorf("expected grid line at %v, got %v", p, result.RGBAAt(p.X, p.Y))
		}
	}
	if result.RGBAAt(40, 40) == grid {
		t.Error("unexpected grid pixel away from boundaries")
	}
}

func TestOverlay_GridIgnoresEdges(t *testing.T) {
	f := NewFrame(createInMemoryImage(20, 20, color.White), 0, zeroTime)
	grid := color.RGBA{0, 255, 0, 255}

	result := Overlay(f, OverlayOptions{Columns: []float64{0, 1}, Rows: []float64{-1, 2}, GridColor: grid}, nil)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if result.RGBAAt(x, y) == grid {
				t.Fatalf("boundary at frame edge should not be drawn, found at (%d,%d)", x, y)
			}
		}
	}
}

func TestOverlay_BoxOutline(t *testing.T) {
	f := NewFrame(createInMemoryImage(100, 100, color.White), 0, zeroTime)
	red := color.RGBA{255, 0, 0, 255}
	notes := []Annotation{{Box: image.Rect(20, 30, 60, 70), Label: -1, Color: red}}

	result := Overlay(f, OverlayOptions{}, notes)

	for _, p := range []image.Point{{20, 30}, {59, 30}, {20, 69}, {59, 69}, {40, 30}, {20, 50}} {
		if result.RGBAAt(p.X, p.Y) != red {
			t.Errorf("expected outline at %v", p)
		}
	}
	if result.RGBAAt(40, 50) == red {
		t.Error("box interior should not be filled")
	}
}

func TestOverlay_BoxClippedToFrame(t *testing.T) {
	f := NewFrame(createInMemoryImage(50, 50, color.White), 0, zeroTime)
	notes := []Annotation{
		{Box: image.Rect(-10, -10, 20, 20), Label: 12, Color: color.RGBA{0, 0, 255, 255}},
		{Box: image.Rect(100, 100, 120, 120), Label: 3, Color: color.RGBA{0, 0, 255, 255}},
	}

	// Should not panic
	Overlay(f, OverlayOptions{}, notes)
}

func TestEncodePNG(t *testing.T) {
	f := NewFrame(createPatternImage(40, 40), 0, zeroTime)
	result := Overlay(f, OverlayOptions{}, nil)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, result); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 40 {
		t.Errorf("unexpected dimensions: %v", decoded.Bounds())
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 255}
	drawLabel(img, 10, 10, "42", fg, bg)

	hasWhite := false
	hasBlack := false
	for y := 9; y < 17; y++ {
		for x := 9; x < 18; x++ {
			r, _, _, a := img.At(x, y).RGBA()
			if r > 200<<8 {
				hasWhite = true
			}
			if r < 50<<8 && a > 0 {
				hasBlack = true
			}
		}
	}

	if !hasWhite {
		t.Error("label should have white pixels (text)")
	}
	if !hasBlack {
		t.Error("label should have dark pixels (background)")
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// These should not panic even if label extends past bounds
	drawLabel(img, 15, 15, "100", fg, bg)
	drawLabel(img, 0, 0, "0", fg, bg)
	drawLabel(img, -5, -5, "7", fg, bg)
	drawLabel(img, 10, 10, "", fg, bg)
}
