package detection

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/sightline/internal/imaging"
)

// Config controls region extraction.
type Config struct {
	// Binarize is applied by ExtractFrame before extraction.
	Binarize imaging.BinarizeConfig `json:"binarize"`

	// MinArea and MaxArea bound the contour area in square pixels. Both
	// bounds are inclusive.
	MinArea float64 `json:"min_area"`
	MaxArea float64 `json:"max_area"`

	// MorphRadius is the structuring element radius of the opening and
	// closing cleanup. Zero disables cleanup.
	MorphRadius float64 `json:"morph_radius"`
}

// DefaultConfig returns extraction settings suited to a 640x480 capture.
func DefaultConfig() Config {
	return Config{
		Binarize:    imaging.DefaultBinarizeConfig(),
		MinArea:     500,
		MaxArea:     50000,
		MorphRadius: 1,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.MinArea < 0 {
		return fmt.Errorf("min area must be non-negative, got %v", c.MinArea)
	}
	if c.MaxArea < c.MinArea {
		return fmt.Errorf("max area %v is below min area %v", c.MaxArea, c.MinArea)
	}
	if c.MorphRadius < 0 {
		return fmt.Errorf("morph radius must be non-negative, got %v", c.MorphRadius)
	}
	if c.Binarize.BlurSigma < 0 {
		return fmt.Errorf("blur sigma must be non-negative, got %v", c.Binarize.BlurSigma)
	}
	return nil
}

// Extractor turns binary images into regions. It holds no per-frame state
// and is safe for concurrent use.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given configuration.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// ExtractFrame binarizes f with the configured settings and extracts its
// regions (see Extract).
func (e *Extractor) ExtractFrame(f *imaging.Frame) []Region {
	return e.Extract(imaging.Binarize(f, e.cfg.Binarize))
}

// Extract finds candidate object regions in a binary image.
//
// Returns a fresh slice on every call, sorted by contour area (largest
// first) with ties in raster order of each region's topmost-leftmost pixel.
// Regions with an empty boundary, a zero contour area, or an area outside
// [MinArea, MaxArea] are omitted. The input image is not modified.
func (e *Extractor) Extract(bin *image.Gray) []Region {
	width := bin.Rect.Dx()
	height := bin.Rect.Dy()
	if width == 0 || height == 0 {
		return []Region{}
	}

	work := bin
	if bin.Rect.Min != (image.Point{}) {
		work = imaging.NewBinary(width, height)
		for y := 0; y < height; y++ {
			copy(work.Pix[y*work.Stride:y*work.Stride+width], bin.Pix[bin.PixOffset(bin.Rect.Min.X, bin.Rect.Min.Y+y):])
		}
	}

	if backgroundIsForeground(work) {
		work = imaging.Invert(work)
	}
	work = imaging.Close(imaging.Open(work, e.cfg.MorphRadius), e.cfg.MorphRadius)

	fg := foregroundMask(work)
	components := findComponents(fg, width, height)

	regions := make([]Region, 0, len(components))
	for _, comp := range components {
		region, ok := e.buildRegion(comp, width, height)
		if ok {
			regions = append(regions, region)
		}
	}

	// Components come out in raster order of their first pixel, so a
	// stable sort keeps that order among equal areas.
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Area > regions[j].Area
	})

	return regions
}

type component struct {
	labels *labelGrid
	label  int32
	pixels []image.Point
}

func (e *Extractor) buildRegion(comp component, width, height int) (Region, bool) {
	inside := func(x, y int) bool {
		return comp.labels.at(x, y) == comp.label
	}
	boundary := traceBoundary(comp.pixels[0], inside, 4*len(comp.pixels)+8)
	if len(boundary) == 0 {
		return Region{}, false
	}

	area := PolygonArea(boundary)
	if area <= 0 || area < e.cfg.MinArea || area > e.cfg.MaxArea {
		return Region{}, false
	}

	bounds := pixelBounds(comp.pixels)
	if bounds.Empty() {
		return Region{}, false
	}

	return Region{
		Boundary:  boundary,
		Pixels:    comp.pixels,
		Bounds:    bounds,
		Box:       NormalizeRect(bounds, width, height),
		Area:      area,
		Perimeter: PolygonPerimeter(boundary),
	}, true
}

// backgroundIsForeground reports whether more than half of the one pixel
// border of bin is foreground.
func backgroundIsForeground(bin *image.Gray) bool {
	width := bin.Rect.Dx()
	height := bin.Rect.Dy()

	total, fg := 0, 0
	count := func(x, y int) {
		total++
		if imaging.IsForeground(bin, x, y) {
			fg++
		}
	}
	for x := 0; x < width; x++ {
		count(x, 0)
		if height > 1 {
			count(x, height-1)
		}
	}
	for y := 1; y < height-1; y++ {
		count(0, y)
		if width > 1 {
			count(width-1, y)
		}
	}
	return fg*2 > total
}

func foregroundMask(bin *image.Gray) [][]bool {
	width := bin.Rect.Dx()
	height := bin.Rect.Dy()
	mask := make([][]bool, height)
	for y := 0; y < height; y++ {
		mask[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			mask[y][x] = imaging.IsForeground(bin, x, y)
		}
	}
	return mask
}

// labelGrid stores the component label of each pixel; 0 is unlabeled.
type labelGrid struct {
	width, height int
	cells         []int32
}

func (g *labelGrid) at(x, y int) int32 {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0
	}
	return g.cells[y*g.width+x]
}

// findComponents groups 8-connected foreground pixels.
//
// Components are returned in raster order of their first pixel, which is
// always the component's topmost-leftmost pixel.
func findComponents(fg [][]bool, width, height int) []component {
	labels := &labelGrid{width: width, height: height, cells: make([]int32, width*height)}
	components := make([]component, 0)

	next := int32(1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if fg[y][x] && labels.cells[y*width+x] == 0 {
				pixels := floodFill(fg, labels, next, x, y)
				sortRaster(pixels)
				components = append(components, component{labels: labels, label: next, pixels: pixels})
				next++
			}
		}
	}

	return components
}

// floodFill labels the component containing (startX, startY).
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large regions. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(fg [][]bool, labels *labelGrid, label int32, startX, startY int) []image.Point {
	width, height := labels.width, labels.height
	stack := []image.Point{{X: startX, Y: startY}}
	pixels := make([]image.Point, 0)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		idx := p.Y*width + p.X
		if labels.cells[idx] != 0 || !fg[p.Y][p.X] {
			continue
		}

		labels.cells[idx] = label
		pixels = append(pixels, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return pixels
}

func sortRaster(pts []image.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Y != pts[j].Y {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})
}

func pixelBounds(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Point{X: 1, Y: 1})}
	for _, p := range pts[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})
	}
	return r
}
