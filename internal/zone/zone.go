// Package zone maps normalized bounding boxes onto a 2x3 grid of
// navigation zones relative to the walking direction.
//
// The grid has three columns (left, centre, right) and two depth bands.
// Boxes low in the frame or large enough to dominate it are "immediate";
// everything else is "far". Every zone carries a fixed priority tier.
package zone

import (
	"errors"
	"fmt"

	"github.com/ironsheep/sightline/internal/detection"
)

// ErrDegenerateBox is returned for boxes with zero or negative extent.
var ErrDegenerateBox = errors.New("degenerate bounding box")

// Zone is one cell of the navigation grid.
type Zone int

// Zones, nearest band first.
const (
	ImmediateLeft Zone = iota
	ImmediateCenter
	ImmediateRight
	FarLeft
	FarCenter
	FarRight
)

// All lists every zone.
var All = []Zone{ImmediateLeft, ImmediateCenter, ImmediateRight, FarLeft, FarCenter, FarRight}

// Priority is an alert tier. Higher values are more urgent.
type Priority int

// Priorities in increasing urgency. Low is used only for path-clear alerts.
const (
	Low Priority = iota
	Medium
	High
	Critical
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// MarshalText encodes the priority as its name.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

type zoneInfo struct {
	name        string
	description string
	priority    Priority
}

var zones = map[Zone]zoneInfo{
	ImmediateLeft:   {"immediate_left", "immediate left", High},
	ImmediateCenter: {"immediate_center", "directly ahead", Critical},
	ImmediateRight:  {"immediate_right", "immediate right", High},
	FarLeft:         {"far_left", "far left", Medium},
	FarCenter:       {"far_center", "far ahead", High},
	FarRight:        {"far_right", "far right", Medium},
}

func (z Zone) String() string {
	if info, ok := zones[z]; ok {
		return info.name
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// MarshalText encodes the zone as its name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// Description returns the spoken form of the zone, e.g. "directly ahead".
func (z Zone) Description() string {
	if info, ok := zones[z]; ok {
		return info.description
	}
	return "nearby"
}

// Priority returns the static tier of the zone.
func (z Zone) Priority() Priority {
	if info, ok := zones[z]; ok {
		return info.priority
	}
	return Low
}

// Immediate reports whether the zone is in the near band.
func (z Zone) Immediate() bool {
	return z == ImmediateLeft || z == ImmediateCenter || z == ImmediateRight
}

// Config holds the grid boundaries, all as fractions of the frame.
type Config struct {
	// LeftBoundary and RightBoundary split the frame into columns. A box
	// centre exactly on a boundary belongs to the centre column.
	LeftBoundary  float64 `json:"left_boundary"`
	RightBoundary float64 `json:"right_boundary"`

	// A box is immediate when its bottom edge is at or below NearBottom or
	// it covers at least NearArea of the frame.
	NearBottom float64 `json:"near_bottom"`
	NearArea   float64 `json:"near_area"`
}

// DefaultConfig returns equal thirds and the standard proximity cues.
func DefaultConfig() Config {
	return Config{
		LeftBoundary:  1.0 / 3.0,
		RightBoundary: 2.0 / 3.0,
		NearBottom:    0.66,
		NearArea:      0.12,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !(c.LeftBoundary > 0 && c.LeftBoundary < c.RightBoundary && c.RightBoundary < 1) {
		return fmt.Errorf("zone boundaries must satisfy 0 < left < right < 1, got %v and %v", c.LeftBoundary, c.RightBoundary)
	}
	if !(c.NearBottom > 0 && c.NearBottom <= 1) {
		return fmt.Errorf("near bottom must be in (0, 1], got %v", c.NearBottom)
	}
	if !(c.NearArea > 0 && c.NearArea <= 1) {
		return fmt.Errorf("near area must be in (0, 1], got %v", c.NearArea)
	}
	return nil
}

// Mapper assigns zones to boxes. It is stateless and safe for concurrent use.
type Mapper struct {
	cfg Config
}

// NewMapper creates a zone mapper.
func NewMapper(cfg Config) *Mapper {
	return &Mapper{cfg: cfg}
}

// Map returns the zone of a normalized box.
//
// Because the box is normalized, the result does not depend on the frame
// resolution. Returns ErrDegenerateBox if the box has no width or height.
func (m *Mapper) Map(box detection.Box) (Zone, error) {
	if box.Degenerate() {
		return 0, fmt.Errorf("%w: %v x %v", ErrDegenerateBox, box.W, box.H)
	}

	column := 1
	cx := box.CenterX()
	if cx < m.cfg.LeftBoundary {
		column = 0
	} else if cx > m.cfg.RightBoundary {
		column = 2
	}

	near := box.Bottom() >= m.cfg.NearBottom || box.Area() >= m.cfg.NearArea

	if near {
		return []Zone{ImmediateLeft, ImmediateCenter, ImmediateRight}[column], nil
	}
	return []Zone{FarLeft, FarCenter, FarRight}[column], nil
}
