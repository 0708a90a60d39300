package detection

import (
	"image"
	"math"
)

// Box is a bounding box normalized to the frame, each field in 0-1.
//
// (X, Y) is the top-left corner; W and H are the width and height as
// fractions of the frame width and height.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NormalizeRect converts a pixel rectangle (Max exclusive) into a Box for a
// frame of the given size.
func NormalizeRect(r image.Rectangle, frameWidth, frameHeight int) Box {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Box{}
	}
	fw := float64(frameWidth)
	fh := float64(frameHeight)
	return Box{
		X: float64(r.Min.X) / fw,
		Y: float64(r.Min.Y) / fh,
		W: float64(r.Dx()) / fw,
		H: float64(r.Dy()) / fh,
	}
}

// CenterX returns the horizontal centre of the box.
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical centre of the box.
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Bottom returns the normalized y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Area returns the fraction of the frame covered by the box.
func (b Box) Area() float64 { return b.W * b.H }

// Degenerate reports whether the box has no width or no height.
func (b Box) Degenerate() bool { return !(b.W > 0) || !(b.H > 0) }

// CenterDistance returns the Euclidean distance between the centres of two
// boxes in normalized units.
func (b Box) CenterDistance(o Box) float64 {
	return math.Hypot(b.CenterX()-o.CenterX(), b.CenterY()-o.CenterY())
}

// Region is one extracted foreground component.
type Region struct {
	// Boundary is the outer boundary in clockwise order (screen
	// orientation), one entry per traced pixel centre. The polyline is
	// implicitly closed.
	Boundary []image.Point `json:"-"`

	// Pixels lists every pixel of the component in raster order.
	Pixels []image.Point `json:"-"`

	// Bounds is the pixel bounding box, Max exclusive.
	Bounds image.Rectangle `json:"bounds"`

	// Box is Bounds normalized to the frame size.
	Box Box `json:"box"`

	// Area is the contour area (shoelace formula over Boundary).
	Area float64 `json:"area"`

	// Perimeter is the length of the closed boundary polyline.
	Perimeter float64 `json:"perimeter"`
}

// Circularity returns 4πA/P², 1.0 for a perfect circle and smaller for
// elongated or angular outlines. Zero when the perimeter is zero.
func (r *Region) Circularity() float64 {
	if r.Perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * r.Area / (r.Perimeter * r.Perimeter)
}
