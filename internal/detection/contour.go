package detection

import (
	"image"
	"math"
)

// mooreOffsets lists the 8 neighbours of a pixel in clockwise screen order
// starting east: E, SE, S, SW, W, NW, N, NE.
var mooreOffsets = [8]image.Point{
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
}

// mooreIndex returns the index of offset d in mooreOffsets, or -1.
func mooreIndex(d image.Point) int {
	for i, o := range mooreOffsets {
		if o == d {
			return i
		}
	}
	return -1
}

// traceBoundary walks the outer boundary of the component containing start
// using Moore-neighbour tracing.
//
// start must be the topmost-leftmost pixel of the component, so its west
// neighbour is known to be outside. inside reports component membership and
// must return false for out-of-range coordinates.
//
// Tracing stops when the walk is about to repeat its first move (Jacob's
// stopping criterion), so pixels on one-pixel-wide parts are listed once per
// pass. The walk is capped at maxSteps moves.
func traceBoundary(start image.Point, inside func(x, y int) bool, maxSteps int) []image.Point {
	type state struct{ c, b image.Point }

	boundary := []image.Point{}
	c := start
	b := start.Add(mooreOffsets[4])
	var first state

	for step := 0; step < maxSteps; step++ {
		from := mooreIndex(b.Sub(c))
		moved := false
		var next state
		for k := 1; k <= 8; k++ {
			d := (from + k) % 8
			p := c.Add(mooreOffsets[d])
			if inside(p.X, p.Y) {
				next = state{c: p, b: c.Add(mooreOffsets[(d+7)%8])}
				moved = true
				break
			}
		}
		if !moved {
			// Isolated pixel
			return []image.Point{start}
		}
		if step == 0 {
			first = next
		} else if next == first {
			break
		}
		boundary = append(boundary, c)
		c, b = next.c, next.b
	}

	return boundary
}

// PolygonArea returns the absolute area enclosed by the closed polyline pts
// using the shoelace formula.
func PolygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(float64(sum)) / 2
}

// PolygonPerimeter returns the length of the closed polyline pts.
func PolygonPerimeter(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		total += pointDistance(pts[i], pts[j])
	}
	return total
}

// ApproxPolygon simplifies a closed boundary with the Douglas-Peucker
// algorithm.
//
// Parameters:
//   - pts: Closed polyline, in traversal order.
//   - epsilon: Maximum allowed deviation in pixels. Shape classification
//     uses 2% of the perimeter.
//
// Returns the retained vertices in traversal order.
//
// # Algorithm
//
//  1. Split the closed curve at pts[0] and the point farthest from it.
//  2. Run Douglas-Peucker on each half independently.
//  3. Closing pass: drop vertices that lie within epsilon of the line
//     through their neighbours, including the split points, until stable.
//
// Without step 3 the arbitrary split point survives as a spurious vertex,
// turning squares into pentagons.
func ApproxPolygon(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n < 3 {
		out := make([]image.Point, n)
		copy(out, pts)
		return out
	}

	far := 0
	farDist := -1.0
	for i, p := range pts {
		if d := pointDistance(pts[0], p); d > farDist {
			far = i
			farDist = d
		}
	}
	if far == 0 {
		return []image.Point{pts[0]}
	}

	// Second half wraps back to pts[0].
	second := make([]image.Point, 0, n-far+1)
	second = append(second, pts[far:]...)
	second = append(second, pts[0])

	a := douglasPeucker(pts[:far+1], epsilon)
	b := douglasPeucker(second, epsilon)

	// Both halves repeat their shared endpoints.
	poly := make([]image.Point, 0, len(a)+len(b))
	poly = append(poly, a[:len(a)-1]...)
	poly = append(poly, b[:len(b)-1]...)

	return dropCollinear(poly, epsilon)
}

func douglasPeucker(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return pts
	}

	first := pts[0]
	last := pts[len(pts)-1]
	index := 0
	maxDist := 0.0
	for i := 1; i < len(pts)-1; i++ {
		if d := lineDistance(pts[i], first, last); d > maxDist {
			index = i
			maxDist = d
		}
	}

	if maxDist <= epsilon {
		return []image.Point{first, last}
	}

	left := douglasPeucker(pts[:index+1], epsilon)
	right := douglasPeucker(pts[index:], epsilon)

	result := make([]image.Point, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	result = append(result, right...)
	return result
}

func dropCollinear(poly []image.Point, epsilon float64) []image.Point {
	for len(poly) > 3 {
		removed := false
		for i := 0; i < len(poly) && len(poly) > 3; i++ {
			prev := poly[(i+len(poly)-1)%len(poly)]
			next := poly[(i+1)%len(poly)]
			if lineDistance(poly[i], prev, next) <= epsilon {
				poly = append(poly[:i], poly[i+1:]...)
				removed = true
				i--
			}
		}
		if !removed {
			break
		}
	}
	return poly
}

// lineDistance returns the perpendicular distance from p to the line
// through a and b, or the distance to a when a == b.
func lineDistance(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return pointDistance(p, a)
	}
	cross := dx*float64(p.Y-a.Y) - dy*float64(p.X-a.X)
	return math.Abs(cross) / length
}

func pointDistance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
