package imaging

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSVColor represents a color in HSV (Hue, Saturation, Value) color space.
//
// HSV separates the color type from its intensity, which is what the color
// classifier needs:
//   - Hue represents the color type (red, green, blue, etc.)
//   - Saturation represents color intensity (gray to vivid)
//   - Value represents brightness (black to full)
type HSVColor struct {
	H float64 `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S float64 `json:"s"` // Saturation: 0-1 (0=gray, 1=vivid)
	V float64 `json:"v"` // Value: 0-1 (0=black, 1=full brightness)
}

// Hex returns the color in "#RRGGBB" form.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// HSV converts the color to HSV space using go-colorful.
//
// Achromatic colors (R == G == B) report a hue of 0. Callers that care about
// hue must look at saturation first.
func (c RGBColor) HSV() HSVColor {
	h, s, v := c.colorful().Hsv()
	return HSVColor{H: h, S: s, V: v}
}

func (c RGBColor) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// MeanColor returns the per-channel arithmetic mean of the sampled colors.
//
// Averaging happens in RGB rather than in HSV so that hues on either side of
// the 0/360 seam (dark reds and magenta reds) average to a red instead of a
// cyan. Returns black for an empty sample set.
func MeanColor(samples []RGBColor) RGBColor {
	if len(samples) == 0 {
		return RGBColor{}
	}
	rs := make([]float64, len(samples))
	gs := make([]float64, len(samples))
	bs := make([]float64, len(samples))
	for i, c := range samples {
		rs[i] = float64(c.R)
		gs[i] = float64(c.G)
		bs[i] = float64(c.B)
	}
	return RGBColor{
		R: roundChannel(stat.Mean(rs, nil)),
		G: roundChannel(stat.Mean(gs, nil)),
		B: roundChannel(stat.Mean(bs, nil)),
	}
}

func roundChannel(v float64) uint8 {
	v += 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
