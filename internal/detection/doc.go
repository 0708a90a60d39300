// Package detection extracts candidate object regions from binary images.
//
// A Region is one 8-connected foreground component: its traced outer
// boundary, the pixels it covers and the derived geometry (contour area,
// perimeter, pixel and normalized bounding boxes). Regions feed the color
// and shape classifiers and the zone mapper.
//
// # Algorithm Overview
//
//  1. Polarity: the one pixel frame border is assumed to be background. If
//     most of it is foreground the binary image is inverted first.
//  2. Cleanup: a morphological opening removes speckle, a closing fills
//     pinholes (see imaging.Open and imaging.Close).
//  3. Components: iterative flood fill groups 8-connected foreground pixels.
//  4. Boundary: Moore-neighbour tracing walks the outer boundary of each
//     component clockwise, starting at its topmost-leftmost pixel.
//  5. Geometry: shoelace area over the boundary, perimeter, bounding boxes.
//  6. Filtering: regions outside [MinArea, MaxArea] are dropped.
//
// # Coordinate System
//
// Pixel coordinates follow the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Boundary points are pixel centres, so a filled w×h rectangle has a
// contour area of (w-1)×(h-1). Normalized boxes (Box) express position and
// size as fractions of the frame so that downstream decisions do not depend
// on the capture resolution.
//
// # Limitations
//
// Only outer boundaries are traced; holes count towards a region's area.
// Touching objects of similar brightness merge into one region.
package detection
