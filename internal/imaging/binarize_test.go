package imaging

import (
	"image"
	"image/color"
	"testing"
	"time"
)

// createSquareImage draws a filled square of color c on a white background
func createSquareImage(width, height, x1, y1, x2, y2 int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= x1 && x < x2 && y >= y1 && y < y2 {
				img.Set(x, y, c)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func countForeground(bin *image.Gray) int {
	n := 0
	for y := 0; y < bin.Rect.Dy(); y++ {
		for x := 0; x < bin.Rect.Dx(); x++ {
			if IsForeground(bin, x, y) {
				n++
			}
		}
	}
	return n
}

func TestBinarize_DarkObjectOnWhite(t *testing.T) {
	f := NewFrame(createSquareImage(100, 100, 30, 30, 70, 70, color.Black), 0, time.Time{})

	bin := Binarize(f, BinarizeConfig{Threshold: 127})

	if IsForeground(bin, 50, 50) {
		t.Error("dark object should be background before polarity correction")
	}
	if !IsForeground(bin, 5, 5) {
		t.Error("white background should be foreground before polarity correction")
	}
	if n := countForeground(bin); n != 100*100-40*40 {
		t.Errorf("foreground count: got %d, want %d", n, 100*100-40*40)
	}
}

func TestBinarize_BlurKeepsObject(t *testing.T) {
	f := NewFrame(createSquareImage(100, 100, 30, 30, 70, 70, color.Black), 0, time.Time{})

	bin := Binarize(f, DefaultBinarizeConfig())

	if IsForeground(bin, 50, 50) || !IsForeground(bin, 5, 5) {
		t.Error("blurred binarization lost the object")
	}
}

func TestInvert(t *testing.T) {
	bin := NewBinary(10, 10)
	bin.SetGray(3, 3, color.Gray{Y: Foreground})

	inv := Invert(bin)

	if IsForeground(inv, 3, 3) {
		t.Error("inverted foreground pixel should be background")
	}
	if !IsForeground(inv, 0, 0) {
		t.Error("inverted background pixel should be foreground")
	}
}

func TestOpen_RemovesSpeckle(t *testing.T) {
	bin := NewBinary(60, 60)
	// Isolated speckle
	bin.SetGray(5, 5, color.Gray{Y: Foreground})
	// Solid block
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			bin.SetGray(x, y, color.Gray{Y: Foreground})
		}
	}

	opened := Open(bin, 1)

	if IsForeground(opened, 5, 5) {
		t.Error("Open should remove single pixel speckle")
	}
	if !IsForeground(opened, 30, 30) {
		t.Error("Open should keep the interior of a solid block")
	}
	if n := countForeground(opened); n < 20*20-8 {
		t.Errorf("Open eroded the block too much: %d pixels left", n)
	}
}

func TestClose_FillsPinhole(t *testing.T) {
	bin := NewBinary(60, 60)
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			bin.SetGray(x, y, color.Gray{Y: Foreground})
		}
	}
	bin.SetGray(30, 30, color.Gray{Y: Background})

	closed := Close(bin, 1)

	if !IsForeground(closed, 30, 30) {
		t.Error("Close should fill a single pixel hole")
	}
}

func TestMorphology_ZeroRadius(t *testing.T) {
	bin := NewBinary(10, 10)
	if Open(bin, 0) != bin || Close(bin, 0) != bin {
		t.Error("zero radius should return the input unchanged")
	}
}

func TestIsForeground_OutOfBounds(t *testing.T) {
	bin := NewBinary(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			bin.SetGray(x, y, color.Gray{Y: Foreground})
		}
	}
	if IsForeground(bin, -1, 0) || IsForeground(bin, 10, 5) {
		t.Error("pixels outside the image must be background")
	}
}
