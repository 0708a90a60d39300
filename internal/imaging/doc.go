// Package imaging provides the frame representation and pixel level
// operations used by the navigation pipeline.
//
// A Frame is an immutable copy of one camera capture. Everything downstream
// (region extraction, colour sampling, overlays) reads from frames and never
// writes to them, so a single Frame can be shared by concurrent classifiers
// without locking.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with the origin at the
// top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Frames always start at (0,0) regardless of the source image bounds
//
// # Color Representation
//
// Pixels are exposed as 8-bit RGB and as HSV, where:
//   - H: hue in degrees, 0-360 (0=red, 120=green, 240=blue)
//   - S: saturation, 0-1 (0=gray, 1=vivid)
//   - V: value, 0-1 (0=black, 1=full brightness)
//
// HSV conversion is delegated to go-colorful.
//
// # Binary Images
//
// Binarize turns a frame into an *image.Gray in which foreground pixels are
// 255 and background pixels are 0. Morphological cleanup (Open, Close) and
// polarity inversion operate on the same representation.
//
// # Thread Safety
//
// Frame and the free functions are safe for concurrent use. ImageCache is
// safe for concurrent use by multiple goroutines.
package imaging
