package imaging

import (
	"image/color"
	"testing"
)

func TestDownscale(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxWidth      int
		wantW, wantH  int
	}{
		{"wider than max", 640, 480, 320, 320, 240},
		{"exactly max", 320, 240, 320, 320, 240},
		{"narrower than max", 200, 100, 320, 200, 100},
		{"disabled", 640, 480, 0, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(tt.width, tt.height, color.White)
			got := Downscale(img, tt.maxWidth)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDownscale_ReturnsInputWhenNarrow(t *testing.T) {
	img := createInMemoryImage(50, 50, color.Black)
	if Downscale(img, 100) != img {
		t.Error("narrow images should be returned unchanged")
	}
}

func TestDownscale_PreservesColor(t *testing.T) {
	img := createPatternImage(200, 200)
	f := NewFrame(Downscale(img, 100), 0, zeroTime)

	// Sample well inside each quadrant to avoid resampling seams.
	if got := f.RGB(20, 20); got.R < 240 || got.G > 15 || got.B > 15 {
		t.Errorf("top-left should stay red, got %+v", got)
	}
	if got := f.RGB(80, 80); got.R < 240 || got.G < 240 || got.B < 240 {
		t.Errorf("bottom-right should stay white, got %+v", got)
	}
}
