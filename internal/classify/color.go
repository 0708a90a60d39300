package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/imaging"
)

// ColorConfig holds the color classification thresholds.
// Saturation and value thresholds are in 0-1, hue distances in degrees.
type ColorConfig struct {
	// MaxSamples caps the number of region pixels examined.
	MaxSamples int `json:"max_samples"`

	CoverageWeight float64 `json:"coverage_weight"`
	HueWeight      float64 `json:"hue_weight"`

	// MaxHueDistance is the hue distance at which alignment reaches zero.
	MaxHueDistance float64 `json:"max_hue_distance"`

	// ChromaticSaturation and ChromaticValue are the minimum saturation and
	// value of a pixel that counts towards a hue label.
	ChromaticSaturation float64 `json:"chromatic_saturation"`
	ChromaticValue      float64 `json:"chromatic_value"`

	// AchromaticSaturation is the saturation at or below which a pixel is
	// white or gray. A region whose mean saturation is below it skips hue
	// scoring.
	AchromaticSaturation float64 `json:"achromatic_saturation"`

	// BlackValue is the value below which a pixel is black.
	BlackValue float64 `json:"black_value"`

	// WhiteValue is the value at or above which an unsaturated pixel is white.
	WhiteValue float64 `json:"white_value"`

	// LowConfidenceFloor is the score below which the mean color is
	// classified instead, and the confidence below which a result is
	// flagged LowConfidence.
	LowConfidenceFloor float64 `json:"low_confidence_floor"`
}

// DefaultColorConfig returns the standard color thresholds.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		MaxSamples:           4096,
		CoverageWeight:       0.7,
		HueWeight:            0.3,
		MaxHueDistance:       60,
		ChromaticSaturation:  0.2,
		ChromaticValue:       0.2,
		AchromaticSaturation: 0.15,
		BlackValue:           0.2,
		WhiteValue:           0.78,
		LowConfidenceFloor:   0.4,
	}
}

// Validate reports the first invalid field.
func (c ColorConfig) Validate() error {
	if c.MaxSamples < 1 {
		return fmt.Errorf("max samples must be at least 1, got %v", c.MaxSamples)
	}
	if c.CoverageWeight < 0 || c.HueWeight < 0 || c.CoverageWeight+c.HueWeight <= 0 {
		return fmt.Errorf("score weights must be non-negative and not both zero, got %v and %v", c.CoverageWeight, c.HueWeight)
	}
	if !(c.MaxHueDistance > 0) {
		return fmt.Errorf("max hue distance must be positive, got %v", c.MaxHueDistance)
	}
	for _, v := range []float64{c.ChromaticSaturation, c.ChromaticValue, c.AchromaticSaturation, c.BlackValue, c.WhiteValue, c.LowConfidenceFloor} {
		if v < 0 || v > 1 {
			return fmt.Errorf("saturation, value and confidence thresholds must be in [0, 1], got %v", v)
		}
	}
	if c.BlackValue >= c.WhiteValue {
		return fmt.Errorf("black value %v must be below white value %v", c.BlackValue, c.WhiteValue)
	}
	return nil
}

// ColorResult is the outcome of classifying one region.
type ColorResult struct {
	Label      ColorLabel `json:"label"`
	Confidence float64    `json:"confidence"`

	// DominantHue is the refined peak of the hue histogram in degrees, or
	// 0 when the region has no chromatic pixels.
	DominantHue float64 `json:"dominant_hue"`

	// Coverage is the fraction of sampled pixels that carry Label.
	Coverage float64 `json:"coverage"`

	// Mean is the mean sampled color.
	Mean imaging.RGBColor `json:"mean"`

	// Fallback is set when the label comes from the mean color because no
	// label scored above the floor.
	Fallback bool `json:"fallback"`

	LowConfidence bool `json:"low_confidence"`
}

type hueRange struct {
	label ColorLabel
	from  float64 // inclusive
	to    float64 // exclusive; below from when the range wraps through 0
	ref   float64
}

func (r hueRange) contains(h float64) bool {
	if r.from <= r.to {
		return h >= r.from && h < r.to
	}
	return h >= r.from || h < r.to
}

func (r hueRange) width() float64 {
	if r.from <= r.to {
		return r.to - r.from
	}
	return 360 - r.from + r.to
}

var hueRanges = []hueRange{
	{Red, 340, 20, 0},
	{Orange, 20, 50, 35},
	{Yellow, 50, 70, 60},
	{Green, 70, 170, 120},
	{Cyan, 170, 190, 180},
	{Blue, 190, 250, 220},
	{Purple, 250, 290, 270},
	{Pink, 290, 340, 315},
}

const (
	histogramBins = 36
	binWidth      = 360.0 / histogramBins
	labelCount    = int(Gray) + 1
)

// ColorClassifier labels regions by color.
type ColorClassifier struct {
	cfg ColorConfig
}

// NewColorClassifier creates a color classifier.
func NewColorClassifier(cfg ColorConfig) *ColorClassifier {
	return &ColorClassifier{cfg: cfg}
}

// Classify labels the color of region r in frame f.
//
// # Algorithm
//
//  1. Sample up to MaxSamples region pixels with a fixed stride and label
//     each pixel by its HSV coordinates.
//  2. Build a 36-bin hue histogram of the chromatic pixels. The peak bin and
//     its neighbours are refined with a circular mean into the dominant hue.
//  3. If the region is mostly unsaturated or dark on average, pick black,
//     white or gray from the mean value and use its coverage as confidence.
//  4. Otherwise score each label as
//     CoverageWeight*coverage + HueWeight*alignment, where alignment falls
//     linearly from 1 at the label's reference hue to 0 at MaxHueDistance.
//     Ties go to the label with the narrower hue range.
//  5. If the best score is below LowConfidenceFloor, classify the mean
//     region color instead (Fallback).
//
// A region without pixels yields ColorUnknown with zero confidence.
func (c *ColorClassifier) Classify(f *imaging.Frame, r *detection.Region) ColorResult {
	samples := c.sample(f, r)
	if len(samples) == 0 {
		return ColorResult{Label: ColorUnknown, LowConfidence: true}
	}

	total := float64(len(samples))
	var counts [labelCount]float64
	var hist [histogramBins]float64
	rgb := make([]imaging.RGBColor, len(samples))
	sats := make([]float64, len(samples))
	vals := make([]float64, len(samples))
	chromaticHues := make([]float64, 0, len(samples))

	for i, s := range samples {
		rgb[i] = s.rgb
		sats[i] = s.hsv.S
		vals[i] = s.hsv.V
		counts[c.pixelLabel(s.hsv)]++
		if c.chromatic(s.hsv) {
			hist[hueBin(s.hsv.H)]++
			chromaticHues = append(chromaticHues, s.hsv.H)
		}
	}

	coverage := func(l ColorLabel) float64 { return counts[l] / total }
	mean := imaging.MeanColor(rgb)
	meanS := stat.Mean(sats, nil)
	meanV := stat.Mean(vals, nil)

	dominant := 0.0
	if len(chromaticHues) > 0 {
		dominant = refinePeak(hist[:], chromaticHues)
	}

	result := ColorResult{DominantHue: dominant, Mean: mean}

	if meanS < c.cfg.AchromaticSaturation || meanV < c.cfg.BlackValue {
		result.Label = c.achromaticLabel(meanV)
		result.Confidence = coverage(result.Label)
		result.Coverage = result.Confidence
		result.LowConfidence = result.Confidence < c.cfg.LowConfidenceFloor
		return result
	}

	best, bestScore := c.bestLabel(dominant, len(chromaticHues) > 0, coverage)
	if bestScore >= c.cfg.LowConfidenceFloor {
		result.Label = best
		result.Confidence = clamp01(bestScore)
		result.Coverage = coverage(best)
		return result
	}

	// Fallback: classify the mean color.
	meanHSV := mean.HSV()
	label := c.pixelLabel(meanHSV)
	if label == ColorUnknown {
		label = c.achromaticLabel(meanHSV.V)
	}
	alignment := 0.0
	if !label.Achromatic() {
		alignment = c.alignment(meanHSV.H, label)
	}
	result.Label = label
	result.Confidence = clamp01(0.5*alignment + 0.5*coverage(label))
	result.Coverage = coverage(label)
	result.Fallback = true
	result.LowConfidence = result.Confidence < c.cfg.LowConfidenceFloor
	return result
}

type colorSample struct {
	rgb imaging.RGBColor
	hsv imaging.HSVColor
}

func (c *ColorClassifier) sample(f *imaging.Frame, r *detection.Region) []colorSample {
	if f == nil || r == nil || len(r.Pixels) == 0 {
		return nil
	}
	stride := 1
	if c.cfg.MaxSamples > 0 && len(r.Pixels) > c.cfg.MaxSamples {
		stride = (len(r.Pixels) + c.cfg.MaxSamples - 1) / c.cfg.MaxSamples
	}

	samples := make([]colorSample, 0, len(r.Pixels)/stride+1)
	for i := 0; i < len(r.Pixels); i += stride {
		p := r.Pixels[i]
		if !f.Contains(p.X, p.Y) {
			continue
		}
		rgb := f.RGB(p.X, p.Y)
		samples = append(samples, colorSample{rgb: rgb, hsv: rgb.HSV()})
	}
	return samples
}

func (c *ColorClassifier) chromatic(hsv imaging.HSVColor) bool {
	return hsv.S >= c.cfg.ChromaticSaturation && hsv.V >= c.cfg.ChromaticValue
}

// pixelLabel labels a single HSV color. Colors in the gap between the
// achromatic and chromatic saturation thresholds are ColorUnknown.
func (c *ColorClassifier) pixelLabel(hsv imaging.HSVColor) ColorLabel {
	switch {
	case hsv.V < c.cfg.BlackValue:
		return Black
	case c.chromatic(hsv):
		return hueLabel(hsv.H)
	case hsv.S <= c.cfg.AchromaticSaturation && hsv.V >= c.cfg.WhiteValue:
		return White
	case hsv.S <= c.cfg.AchromaticSaturation:
		return Gray
	}
	return ColorUnknown
}

func (c *ColorClassifier) achromaticLabel(v float64) ColorLabel {
	switch {
	case v < c.cfg.BlackValue:
		return Black
	case v >= c.cfg.WhiteValue:
		return White
	}
	return Gray
}

func (c *ColorClassifier) alignment(hue float64, label ColorLabel) float64 {
	for _, r := range hueRanges {
		if r.label == label {
			return math.Max(0, 1-hueDistance(hue, r.ref)/c.cfg.MaxHueDistance)
		}
	}
	return 0
}

// bestLabel returns the highest scoring label. Achromatic labels score on
// coverage alone.
func (c *ColorClassifier) bestLabel(dominant float64, hasHue bool, coverage func(ColorLabel) float64) (ColorLabel, float64) {
	best := ColorUnknown
	bestScore := -1.0
	bestWidth := math.Inf(1)

	for l := Red; l <= Gray; l++ {
		score := c.cfg.CoverageWeight * coverage(l)
		width := 360.0
		if !l.Achromatic() {
			width = hueWidth(l)
			if hasHue {
				score += c.cfg.HueWeight * c.alignment(dominant, l)
			}
		}
		// Strictly greater, or an exact tie won by the narrower range;
		// equal widths keep the earlier label.
		if score > bestScore || (score == bestScore && width < bestWidth) {
			best, bestScore, bestWidth = l, score, width
		}
	}
	return best, bestScore
}

func hueLabel(h float64) ColorLabel {
	for _, r := range hueRanges {
		if r.contains(h) {
			return r.label
		}
	}
	return ColorUnknown
}

func hueWidth(l ColorLabel) float64 {
	for _, r := range hueRanges {
		if r.label == l {
			return r.width()
		}
	}
	return 360
}

func hueBin(h float64) int {
	b := int(h / binWidth)
	if b < 0 {
		return 0
	}
	if b >= histogramBins {
		return histogramBins - 1
	}
	return b
}

// refinePeak returns the circular mean of the hues that fall into the
// histogram peak bin and its two neighbours.
func refinePeak(hist []float64, hues []float64) float64 {
	peak := floats.MaxIdx(hist)
	near := func(b int) bool {
		d := b - peak
		if d < 0 {
			d = -d
		}
		return d <= 1 || d == histogramBins-1
	}

	rad := make([]float64, 0, len(hues))
	for _, h := range hues {
		if near(hueBin(h)) {
			rad = append(rad, h*math.Pi/180)
		}
	}

	deg := stat.CircularMean(rad, nil) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// hueDistance returns the shortest angular distance between two hues.
func hueDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
