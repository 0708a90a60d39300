// Package classify assigns color and shape labels to extracted regions.
//
// Both classifiers are pure: the same frame and region always yield the
// same result, and neither holds per-frame state, so they may be called
// concurrently for different regions of one frame.
//
// # Color
//
// ColorClassifier samples the region's pixels in HSV space and scores every
// label by a weighted sum of pixel coverage and alignment of the dominant
// hue with the label's reference hue. Mostly gray, white or black regions
// bypass hue scoring entirely. When no label scores well enough the mean
// region color is classified instead and the result is flagged as a
// fallback.
//
// # Shape
//
// ShapeClassifier approximates the region boundary with a polygon and
// labels it by vertex count, aspect ratio and circularity.
//
// # Confidence
//
// Both results carry a confidence in 0-1 and a LowConfidence flag. Low
// confidence labels are still reported; callers decide how to word them.
package classify
