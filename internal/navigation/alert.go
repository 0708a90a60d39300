package navigation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/sightline/internal/classify"
	"github.com/ironsheep/sightline/internal/tracking"
	"github.com/ironsheep/sightline/internal/zone"
)

// Alert is an announcement handed to the speech collaborator.
type Alert struct {
	ID       uuid.UUID          `json:"id"`
	Kind     tracking.AlertKind `json:"kind"`
	Zone     zone.Zone          `json:"zone"`
	Priority zone.Priority      `json:"priority"`
	Time     time.Time          `json:"time"`

	// ObjectID is the announced object, or 0 for path clear.
	ObjectID uint64 `json:"object_id,omitempty"`

	// Guidance is the avoidance advice of a collision warning.
	Guidance Guidance `json:"guidance,omitempty"`

	// Message is the text to speak.
	Message string `json:"message"`

	// Color and Shape are the labels used in Message; unknown when the
	// message does not name them.
	Color classify.ColorLabel `json:"color"`
	Shape classify.ShapeLabel `json:"shape"`
}

// Sink receives alerts. Offer must not block; it returns false when the
// alert was dropped because the collaborator is busy or unavailable.
type Sink interface {
	Offer(a Alert) bool
}

// Spoken messages.
const (
	collisionMessage = "Caution: obstacle directly ahead"
	pathClearMessage = "Path ahead is clear"
	genericObject    = "object"
)

// render builds the alert text for d.
//
// Identifications read "<color> <shape> <zone>", such as "red square far
// left". Low confidence labels are left out: an uncertain color is
// omitted and an uncertain shape becomes "object". Collision warnings never
// name labels; they end with the guidance advice, such as "Caution:
// obstacle directly ahead. Move slightly left".
func render(d *Decision) (msg string, color classify.ColorLabel, shape classify.ShapeLabel) {
	switch d.Kind {
	case tracking.CollisionWarning:
		msg = collisionMessage
		if advice := d.Guidance.Advice(); advice != "" {
			msg += ". " + advice
		}
		return msg, classify.ColorUnknown, classify.ShapeUnknown
	case tracking.PathClear:
		return pathClearMessage, classify.ColorUnknown, classify.ShapeUnknown
	}

	obj := d.Object
	words := make([]string, 0, 4)
	color = classify.ColorUnknown
	shape = classify.ShapeUnknown

	if !obj.Color.LowConfidence && obj.Color.Label != classify.ColorUnknown {
		color = obj.Color.Label
		words = append(words, color.String())
	}
	if !obj.Shape.LowConfidence && obj.Shape.Label != classify.ShapeUnknown {
		shape = obj.Shape.Label
		words = append(words, shape.String())
	} else {
		words = append(words, genericObject)
	}
	words = append(words, d.Zone.Description())

	return strings.Join(words, " "), color, shape
}
