package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Foreground and Background are the two pixel values of a binary image.
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// BinarizeConfig controls how a frame is separated into foreground and
// background.
type BinarizeConfig struct {
	// BlurSigma is the Gaussian blur sigma applied before thresholding.
	// Zero disables the blur.
	BlurSigma float64

	// Threshold is the luminance level (0-255). Pixels at or above it become
	// foreground.
	Threshold uint8
}

// DefaultBinarizeConfig returns a light blur and a mid-gray threshold,
// which separates colored objects from a plain background.
func DefaultBinarizeConfig() BinarizeConfig {
	return BinarizeConfig{
		BlurSigma: 1.0,
		Threshold: 127,
	}
}

// Binarize converts a frame into a binary image.
//
// # Algorithm
//
//  1. Gaussian blur with cfg.BlurSigma to suppress sensor noise
//  2. Grayscale conversion
//  3. Fixed-level threshold: luminance >= cfg.Threshold becomes Foreground
//
// The result is not polarity corrected: bright objects on a dark background
// come out as foreground, dark objects on a bright background come out as
// background. The region extractor detects and fixes polarity itself.
func Binarize(f *Frame, cfg BinarizeConfig) *image.Gray {
	var img image.Image = f.img
	if cfg.BlurSigma > 0 {
		img = imaging.Blur(img, cfg.BlurSigma)
	}
	return segment.Threshold(imaging.Grayscale(img), cfg.Threshold)
}

// Invert swaps foreground and background.
func Invert(bin *image.Gray) *image.Gray {
	return segment.Threshold(effect.Invert(bin), 128)
}

// Open applies a morphological opening (erode, then dilate).
//
// Opening removes foreground speckle smaller than the structuring element
// while leaving larger shapes at their original size. A radius of zero or
// less returns the input unchanged.
func Open(bin *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return bin
	}
	return segment.Threshold(effect.Dilate(effect.Erode(bin, radius), radius), 128)
}

// Close applies a morphological closing (dilate, then erode).
//
// Closing fills pinholes and hairline gaps inside foreground shapes. A
// radius of zero or less returns the input unchanged.
func Close(bin *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return bin
	}
	return segment.Threshold(effect.Erode(effect.Dilate(bin, radius), radius), 128)
}

// NewBinary allocates an all-background binary image.
func NewBinary(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// IsForeground reports whether the pixel at (x, y) is foreground.
// Coordinates outside the image are background.
func IsForeground(bin *image.Gray, x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(bin.Rect) {
		return false
	}
	return bin.Pix[bin.PixOffset(x, y)] >= 128
}
