package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Downscale shrinks img so that its width is at most maxWidth, preserving the
// aspect ratio. Images that are already narrow enough are returned unchanged.
//
// Region extraction cost grows with pixel count, so capture sources wider
// than the working resolution are reduced here rather than in the pipeline.
// Lanczos resampling keeps edges crisp enough for boundary tracing.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}
