package navigation

import (
	"github.com/ironsheep/sightline/internal/tracking"
	"github.com/ironsheep/sightline/internal/zone"
)

// Guidance is the avoidance advice attached to a collision warning.
type Guidance int

const (
	NoGuidance Guidance = iota
	MoveLeft            // both immediate sides are clear; left is preferred
	OnlyLeft            // only the immediate left is clear
	OnlyRight           // only the immediate right is clear
	Blocked             // neither side is clear
)

var guidanceText = map[Guidance]struct{ name, advice string }{
	NoGuidance: {"none", ""},
	MoveLeft:   {"move_left", "Move slightly left"},
	OnlyLeft:   {"only_left", "Narrow passage: only left side available"},
	OnlyRight:  {"only_right", "Narrow passage: only right side available"},
	Blocked:    {"blocked", "Blocked: no clear path ahead"},
}

func (g Guidance) String() string {
	if t, ok := guidanceText[g]; ok {
		return t.name
	}
	return "unknown"
}

// Advice returns the spoken advice, empty for NoGuidance.
func (g Guidance) Advice() string {
	return guidanceText[g].advice
}

// MarshalText encodes the guidance as its name.
func (g Guidance) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// escapeRoute picks the advice for an obstacle directly ahead from the
// occupancy of the immediate side zones in seen.
func escapeRoute(seen []*tracking.Object) Guidance {
	var left, right bool
	for _, obj := range seen {
		switch obj.Zone {
		case zone.ImmediateLeft:
			left = true
		case zone.ImmediateRight:
			right = true
		}
	}
	switch {
	case !left && !right:
		return MoveLeft
	case !left:
		return OnlyLeft
	case !right:
		return OnlyRight
	}
	return Blocked
}
