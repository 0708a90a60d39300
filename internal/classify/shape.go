package classify

import (
	"fmt"
	"math"

	"github.com/ironsheep/sightline/internal/detection"
)

// ShapeConfig holds the shape classification thresholds.
type ShapeConfig struct {
	// ApproxEpsilon is the polygon approximation tolerance as a fraction
	// of the region perimeter.
	ApproxEpsilon float64 `json:"approx_epsilon"`

	// A region is a circle when its circularity exceeds CircleCircularity
	// and its approximation has more than CircleMinVertices vertices.
	CircleCircularity float64 `json:"circle_circularity"`
	CircleMinVertices int     `json:"circle_min_vertices"`

	// SquareAspectBand is the maximum |aspect-1| of a square.
	SquareAspectBand float64 `json:"square_aspect_band"`

	// Regions smaller than MinClassifyArea are always ShapeUnknown.
	MinClassifyArea float64 `json:"min_classify_area"`

	// Results with confidence below ConfidenceFloor are flagged LowConfidence.
	ConfidenceFloor float64 `json:"confidence_floor"`
}

// DefaultShapeConfig returns the standard shape thresholds.
func DefaultShapeConfig() ShapeConfig {
	return ShapeConfig{
		ApproxEpsilon:     0.02,
		CircleCircularity: 0.85,
		CircleMinVertices: 6,
		SquareAspectBand:  0.1,
		MinClassifyArea:   100,
		ConfidenceFloor:   0.5,
	}
}

// Validate reports the first invalid field.
func (c ShapeConfig) Validate() error {
	if !(c.ApproxEpsilon > 0) {
		return fmt.Errorf("approximation epsilon must be positive, got %v", c.ApproxEpsilon)
	}
	if c.CircleCircularity <= 0 || c.CircleCircularity > 1 {
		return fmt.Errorf("circle circularity must be in (0, 1], got %v", c.CircleCircularity)
	}
	if c.CircleMinVertices < 3 {
		return fmt.Errorf("circle min vertices must be at least 3, got %v", c.CircleMinVertices)
	}
	if c.SquareAspectBand < 0 {
		return fmt.Errorf("square aspect band must be non-negative, got %v", c.SquareAspectBand)
	}
	if c.MinClassifyArea < 0 {
		return fmt.Errorf("min classify area must be non-negative, got %v", c.MinClassifyArea)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence floor must be in [0, 1], got %v", c.ConfidenceFloor)
	}
	return nil
}

// ShapeResult is the outcome of classifying one region.
type ShapeResult struct {
	Label      ShapeLabel `json:"label"`
	Confidence float64    `json:"confidence"`

	// Vertices is the vertex count of the approximated polygon.
	Vertices int `json:"vertices"`

	// AreaRatio is contour area over bounding box area, both measured
	// through pixel centres (1.0 for an axis-aligned rectangle).
	AreaRatio float64 `json:"area_ratio"`

	// AspectRatio is bounding box width over height.
	AspectRatio float64 `json:"aspect_ratio"`

	// Circularity is 4πA/P².
	Circularity float64 `json:"circularity"`

	LowConfidence bool `json:"low_confidence"`
}

// Ideal circularity of regular polygons, used to score pentagons and
// hexagons.
const (
	pentagonCircularity = 0.865
	hexagonCircularity  = 0.907
)

// ShapeClassifier labels regions by outline.
type ShapeClassifier struct {
	cfg ShapeConfig
}

// NewShapeClassifier creates a shape classifier.
func NewShapeClassifier(cfg ShapeConfig) *ShapeClassifier {
	return &ShapeClassifier{cfg: cfg}
}

// Classify labels the shape of region r.
//
// The rules are applied in order:
//
//	circularity > CircleCircularity and vertices > CircleMinVertices  circle
//	3 vertices                                                        triangle
//	4 vertices, |aspect-1| <= SquareAspectBand                        square
//	4 vertices                                                        rectangle
//	5 vertices                                                        pentagon
//	6 vertices                                                        hexagon
//	more than 6 vertices                                              polygon
//	anything else                                                     unknown
//
// Confidence is a per-label base value raised by how decisively the
// measurements meet the rule.
func (c *ShapeClassifier) Classify(r *detection.Region) ShapeResult {
	if r == nil || len(r.Boundary) < 3 || r.Area < c.cfg.MinClassifyArea {
		return ShapeResult{Label: ShapeUnknown, LowConfidence: true}
	}

	poly := detection.ApproxPolygon(r.Boundary, c.cfg.ApproxEpsilon*r.Perimeter)

	res := ShapeResult{
		Vertices:    len(poly),
		Circularity: r.Circularity(),
	}
	w := r.Bounds.Dx()
	h := r.Bounds.Dy()
	if h > 0 {
		res.AspectRatio = float64(w) / float64(h)
	}
	if boxArea := float64((w - 1) * (h - 1)); boxArea > 0 {
		res.AreaRatio = r.Area / boxArea
	}

	switch {
	case res.Circularity > c.cfg.CircleCircularity && res.Vertices > c.cfg.CircleMinVertices:
		res.Label = Circle
		d := (res.Circularity - c.cfg.CircleCircularity) / (1 - c.cfg.CircleCircularity)
		res.Confidence = 0.5 + 0.5*clamp01(d)
	case res.Vertices == 3:
		res.Label = Triangle
		// An upright triangle fills half its bounding box.
		res.Confidence = 0.6 + 0.4*clamp01(1-math.Abs(res.AreaRatio-0.5)/0.5)
	case res.Vertices == 4:
		aspectMargin := math.Abs(res.AspectRatio - 1)
		fill := clamp01(res.AreaRatio)
		if aspectMargin <= c.cfg.SquareAspectBand {
			res.Label = Square
			res.Confidence = 0.6 + 0.4*math.Min(fill, 1-aspectMargin/c.cfg.SquareAspectBand)
		} else {
			res.Label = Rectangle
			res.Confidence = 0.6 + 0.4*math.Min(fill, clamp01((aspectMargin-c.cfg.SquareAspectBand)/c.cfg.SquareAspectBand))
		}
	case res.Vertices == 5:
		res.Label = Pentagon
		res.Confidence = 0.6 + 0.4*clamp01(1-math.Abs(res.Circularity-pentagonCircularity)/0.2)
	case res.Vertices == 6:
		res.Label = Hexagon
		res.Confidence = 0.6 + 0.4*clamp01(1-math.Abs(res.Circularity-hexagonCircularity)/0.2)
	case res.Vertices > 6:
		res.Label = Polygon
		res.Confidence = 0.4 + 0.3*clamp01(res.Circularity/c.cfg.CircleCircularity)
	default:
		res.Label = ShapeUnknown
	}

	res.Confidence = clamp01(res.Confidence)
	res.LowConfidence = res.Confidence < c.cfg.ConfidenceFloor
	return res
}
