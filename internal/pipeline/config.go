package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/sightline/internal/classify"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/navigation"
	"github.com/ironsheep/sightline/internal/tracking"
	"github.com/ironsheep/sightline/internal/zone"
)

// ErrInvalidConfig is wrapped by every Config validation error.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Config aggregates the configuration of every stage. It is a plain value;
// the pipeline keeps its own copy.
type Config struct {
	Extraction detection.Config     `json:"extraction"`
	Color      classify.ColorConfig `json:"color"`
	Shape      classify.ShapeConfig `json:"shape"`
	Zone       zone.Config          `json:"zone"`
	Tracking   tracking.Config      `json:"tracking"`
	Navigation navigation.Config    `json:"navigation"`

	// ParallelClassify classifies the regions of a frame concurrently.
	ParallelClassify bool `json:"parallel_classify"`

	// LatencyBudget is the per-frame processing time above which a debug
	// message is logged. Zero disables the check.
	LatencyBudget time.Duration `json:"latency_budget"`
}

// DefaultConfig returns the defaults of every stage.
func DefaultConfig() Config {
	return Config{
		Extraction:       detection.DefaultConfig(),
		Color:            classify.DefaultColorConfig(),
		Shape:            classify.DefaultShapeConfig(),
		Zone:             zone.DefaultConfig(),
		Tracking:         tracking.DefaultConfig(),
		Navigation:       navigation.DefaultConfig(),
		ParallelClassify: true,
		LatencyBudget:    200 * time.Millisecond,
	}
}

// Validate checks every stage and returns the first problem found, wrapped
// in ErrInvalidConfig.
func (c Config) Validate() error {
	checks := []struct {
		stage string
		err   error
	}{
		{"extraction", c.Extraction.Validate()},
		{"color", c.Color.Validate()},
		{"shape", c.Shape.Validate()},
		{"zone", c.Zone.Validate()},
		{"tracking", c.Tracking.Validate()},
		{"navigation", c.Navigation.Validate()},
	}
	for _, check := range checks {
		if check.err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, check.stage, check.err)
		}
	}
	if c.LatencyBudget < 0 {
		return fmt.Errorf("%w: latency budget must be non-negative, got %v", ErrInvalidConfig, c.LatencyBudget)
	}
	return nil
}
